package analytics

import (
	"context"
	"fmt"

	"github.com/angelmondragon/webmarket/pkg/db/models"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/logger"
)

type source interface {
	Orders(ctx context.Context) ([]models.Order, error)
	Products(ctx context.Context) ([]models.Product, error)
}

// Service provides the admin dashboard.
type Service interface {
	// Dashboard computes the KPI snapshot over all orders.
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	source source
	logg   *logger.Logger
}

// NewService builds an analytics service over the order store.
func NewService(src source, logg *logger.Logger) (Service, error) {
	if src == nil {
		return nil, fmt.Errorf("analytics source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{source: src, logg: logg}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	orders, err := s.source.Orders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
	products, err := s.source.Products(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	d := Compute(orders, products)
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"orders":    d.TotalOrders,
		"delivered": d.DeliveredCount,
	}), "analytics.dashboard_computed")
	return &d, nil
}
