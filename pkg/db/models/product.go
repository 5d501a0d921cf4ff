package models

import (
	"time"

	"github.com/angelmondragon/webmarket/pkg/enums"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Images, features and specifications are stored as JSON text.
type Product struct {
	ID             uint                  `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string                `gorm:"column:name;not null"`
	Price          decimal.Decimal       `gorm:"column:price;type:numeric(10,2);not null"`
	ImageMain      string                `gorm:"column:image_main;not null;default:''"`
	Description    string                `gorm:"column:description;type:text;not null;default:''"`
	Category       enums.ProductCategory `gorm:"column:category;type:text;not null;default:'Other'"`
	Rating         *decimal.Decimal      `gorm:"column:rating;type:numeric(3,2)"`
	Reviews        *int                  `gorm:"column:reviews"`
	Images         []string              `gorm:"column:images_json;type:text;serializer:json"`
	Features       []string              `gorm:"column:features_json;type:text;serializer:json"`
	Specifications map[string]string     `gorm:"column:specs_json;type:text;serializer:json"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
