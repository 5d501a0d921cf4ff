package analytics

import (
	"context"

	"github.com/angelmondragon/webmarket/internal/repo"
	"github.com/angelmondragon/webmarket/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads the rows the dashboard is computed from.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Orders loads every order with its items.
func (r *Repository) Orders(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.DB(ctx).
		Preload("Items").
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// Products loads the catalog columns needed for category lookups.
func (r *Repository) Products(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.DB(ctx).
		Select("id", "name", "category").
		Find(&rows).Error
	return rows, err
}
