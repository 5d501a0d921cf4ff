package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/webmarket/pkg/db/models"
	"github.com/angelmondragon/webmarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var maxRating = decimal.NewFromInt(5)

// Service exposes catalog reads and admin product management.
type Service interface {
	List(ctx context.Context) ([]ProductSummary, error)
	Get(ctx context.Context, id uint) (*ProductDetail, error)
	Create(ctx context.Context, input ProductInput) (*MutationResult, error)
	Update(ctx context.Context, id uint, input ProductInput) (*MutationResult, error)
	Delete(ctx context.Context, id uint) (*MutationResult, error)
}

type productStore interface {
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Replace(ctx context.Context, product *models.Product) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
}

type service struct {
	repo  productStore
	cache listCache
	logg  *logger.Logger
}

// NewService constructs the product service. cache may be nil to disable list caching.
func NewService(repo productStore, cache listCache, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, cache: cache, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]ProductSummary, error) {
	if cached, ok := s.cachedList(ctx); ok {
		return cached, nil
	}
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, summaryFromModel(row))
	}
	s.storeList(ctx, out)
	return out, nil
}

func (s *service) Get(ctx context.Context, id uint) (*ProductDetail, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return detailFromModel(*product), nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*MutationResult, error) {
	category, err := validateInput(input)
	if err != nil {
		return nil, err
	}
	product := input.toModel(category)
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	s.invalidateList(ctx)
	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID), "product.created")
	return &MutationResult{ID: product.ID, Message: "Product created successfully"}, nil
}

func (s *service) Update(ctx context.Context, id uint, input ProductInput) (*MutationResult, error) {
	category, err := validateInput(input)
	if err != nil {
		return nil, err
	}
	product := input.toModel(category)
	product.ID = id
	found, err := s.repo.Replace(ctx, &product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	s.invalidateList(ctx)
	s.logg.Info(s.logg.WithField(ctx, "product_id", id), "product.updated")
	return &MutationResult{ID: id, Message: "Product updated successfully"}, nil
}

func (s *service) Delete(ctx context.Context, id uint) (*MutationResult, error) {
	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	s.invalidateList(ctx)
	s.logg.Info(s.logg.WithField(ctx, "product_id", id), "product.deleted")
	return &MutationResult{ID: id, Message: "Product deleted successfully"}, nil
}

func validateInput(input ProductInput) (enums.ProductCategory, error) {
	if input.Price.IsNegative() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.Rating != nil && (input.Rating.IsNegative() || input.Rating.GreaterThan(maxRating)) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 0 and 5")
	}
	category, err := enums.ParseProductCategory(input.Category)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category").
			WithDetails(map[string]any{"field": "category"})
	}
	return category, nil
}
