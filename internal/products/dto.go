package products

import (
	"time"

	"github.com/angelmondragon/webmarket/pkg/db/models"
	"github.com/angelmondragon/webmarket/pkg/enums"
	"github.com/shopspring/decimal"
)

// ProductSummary is the catalog list shape. It omits gallery, features and specifications.
type ProductSummary struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Price       decimal.Decimal  `json:"price"`
	Image       string           `json:"image"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Rating      *decimal.Decimal `json:"rating"`
	Reviews     *int             `json:"reviews"`
}

// ProductDetail is the single product shape.
type ProductDetail struct {
	ProductSummary
	Images         []string          `json:"images"`
	Features       []string          `json:"features"`
	Specifications map[string]string `json:"specifications"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// ProductInput is the full-replace payload for create and update.
type ProductInput struct {
	Name           string            `json:"name" validate:"required,max=255"`
	Price          decimal.Decimal   `json:"price"`
	ImageMain      string            `json:"image_main" validate:"omitempty,max=2048"`
	Description    string            `json:"description" validate:"max=10000"`
	Category       string            `json:"category" validate:"required"`
	Rating         *decimal.Decimal  `json:"rating"`
	Reviews        *int              `json:"reviews" validate:"omitempty,gte=0"`
	Images         []string          `json:"images" validate:"omitempty,max=20,dive,max=2048"`
	Features       []string          `json:"features" validate:"omitempty,max=50,dive,max=500"`
	Specifications map[string]string `json:"specifications" validate:"omitempty,max=50"`
}

// MutationResult is returned by create, update and delete.
type MutationResult struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

func summaryFromModel(p models.Product) ProductSummary {
	return ProductSummary{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.ImageMain,
		Description: p.Description,
		Category:    p.Category.String(),
		Rating:      p.Rating,
		Reviews:     p.Reviews,
	}
}

func detailFromModel(p models.Product) *ProductDetail {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	specs := p.Specifications
	if specs == nil {
		specs = map[string]string{}
	}
	return &ProductDetail{
		ProductSummary: summaryFromModel(p),
		Images:         images,
		Features:       features,
		Specifications: specs,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (in ProductInput) toModel(category enums.ProductCategory) models.Product {
	return models.Product{
		Name:           in.Name,
		Price:          in.Price.Round(2),
		ImageMain:      in.ImageMain,
		Description:    in.Description,
		Category:       category,
		Rating:         in.Rating,
		Reviews:        in.Reviews,
		Images:         append([]string{}, in.Images...),
		Features:       append([]string{}, in.Features...),
		Specifications: copySpecs(in.Specifications),
	}
}

func copySpecs(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
