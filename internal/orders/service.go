package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/webmarket/internal/events"
	"github.com/angelmondragon/webmarket/pkg/auth"
	"github.com/angelmondragon/webmarket/pkg/db"
	"github.com/angelmondragon/webmarket/pkg/db/models"
	"github.com/angelmondragon/webmarket/pkg/enums"
	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/angelmondragon/webmarket/pkg/metrics"
	"github.com/angelmondragon/webmarket/pkg/outbox"
	"github.com/angelmondragon/webmarket/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ProductLookup resolves catalog products by id.
type ProductLookup interface {
	FindByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error)
}

// Service defines order placement, reads and admin status changes.
type Service interface {
	Create(ctx context.Context, actor auth.Actor, req CreateOrderRequest, idempotencyKey string) (*CreateOrderResponse, error)
	ListAll(ctx context.Context, filters ListFilters) (*OrderList, error)
	ListByUser(ctx context.Context, actor auth.Actor, userID uint) ([]OrderView, error)
	Get(ctx context.Context, actor auth.Actor, orderID uint) (*OrderView, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, orderID uint, status string) (*UpdateStatusResponse, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	outbox   outboxPublisher
	products ProductLookup
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
}

// NewService wires the order service. metrics may be nil.
func NewService(repo *Repository, tx txRunner, emitter outboxPublisher, products ProductLookup, orderMetrics *metrics.OrderMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   emitter,
		products: products,
		metrics:  orderMetrics,
		logg:     logg,
	}, nil
}

func (s *service) Create(ctx context.Context, actor auth.Actor, req CreateOrderRequest, idempotencyKey string) (*CreateOrderResponse, error) {
	if !actor.CanAccessUser(req.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot place orders for another user")
	}
	method, err := parseMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := validateItems(req); err != nil {
		return nil, err
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey != "" {
		if existing, err := s.replay(ctx, req.UserID, idempotencyKey); existing != nil || err != nil {
			return existing, err
		}
	}

	ids := make([]uint, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	catalog, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := catalog[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown products in order").
			WithDetails(map[string]any{"product_ids": missing})
	}

	order := models.Order{
		UserID:        req.UserID,
		TotalAmount:   req.Total.Round(2),
		Status:        enums.OrderStatusPendingConfirmation,
		PaymentMethod: method,
		Items:         make([]models.OrderItem, 0, len(req.Items)),
	}
	if idempotencyKey != "" {
		order.IdempotencyKey = &idempotencyKey
	}
	for _, item := range req.Items {
		product := catalog[item.ProductID]
		name := item.Name
		if name == "" {
			name = product.Name
		}
		image := item.Image
		if image == "" {
			image = product.ImageMain
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID: item.ProductID,
			Name:      name,
			Image:     image,
			Quantity:  item.Quantity,
			Price:     item.Price.Round(2),
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, &order); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data:          orderCreatedPayload(order),
		})
	})
	if err != nil {
		if idempotencyKey != "" && db.IsUniqueViolation(err, "") {
			if existing, replayErr := s.replay(ctx, req.UserID, idempotencyKey); existing != nil || replayErr != nil {
				return existing, replayErr
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.metrics.IncCreated(method.String())
	logCtx := s.logg.WithOrderID(ctx, order.ID)
	logCtx = s.logg.WithFields(logCtx, map[string]any{"user_id": order.UserID, "total": order.TotalAmount.String(), "items": len(order.Items)})
	s.logg.Info(logCtx, "order.created")
	return &CreateOrderResponse{Success: true, OrderID: order.ID}, nil
}

// replay returns the earlier result for an idempotency key, or nil when the key is unused.
func (s *service) replay(ctx context.Context, userID uint, key string) (*CreateOrderResponse, error) {
	existing, err := s.repo.FindByIdempotencyKey(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by idempotency key")
	}
	if existing.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key already used")
	}
	s.logg.Info(s.logg.WithOrderID(ctx, existing.ID), "order.create_replayed")
	return &CreateOrderResponse{Success: true, OrderID: existing.ID}, nil
}

func (s *service) ListAll(ctx context.Context, filters ListFilters) (*OrderList, error) {
	filters.Query = digitsOnly(filters.Query)
	cursor, err := pagination.ParseCursor(filters.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	paged := filters.Limit > 0 || cursor != nil
	limit := 0
	if paged {
		limit = pagination.LimitWithBuffer(filters.Limit)
	}
	rows, err := s.repo.List(ctx, filters, limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	list := &OrderList{}
	if paged && len(rows) > pagination.NormalizeLimit(filters.Limit) {
		rows = rows[:pagination.NormalizeLimit(filters.Limit)]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	list.Orders = make([]OrderView, 0, len(rows))
	for _, row := range rows {
		list.Orders = append(list.Orders, viewFromModel(row, true))
	}
	return list, nil
}

func (s *service) ListByUser(ctx context.Context, actor auth.Actor, userID uint) ([]OrderView, error) {
	if !actor.CanAccessUser(userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot view another user's orders")
	}
	rows, err := s.repo.List(ctx, ListFilters{UserID: &userID}, 0, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user orders")
	}
	out := make([]OrderView, 0, len(rows))
	for _, row := range rows {
		out = append(out, viewFromModel(row, false))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, actor auth.Actor, orderID uint) (*OrderView, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !actor.CanAccessUser(order.UserID) {
		// hide existence from other buyers
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
	}
	view := viewFromModel(*order, true)
	return &view, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor auth.Actor, orderID uint, raw string) (*UpdateStatusResponse, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	status, err := enums.ParseOrderStatus(strings.TrimSpace(raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status").
			WithDetails(map[string]any{"allowed": enums.OrderStatuses()})
	}

	var previous enums.OrderStatus
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		previous = order.Status
		if previous == status {
			return nil
		}
		if _, err := repo.UpdateStatus(ctx, orderID, status); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: actor.Role.String()},
			Data: events.OrderStatusChanged{
				OrderID:   orderID,
				UserID:    order.UserID,
				From:      previous.String(),
				To:        status.String(),
				ChangedAt: time.Now().UTC(),
			},
		})
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	if previous != status {
		s.metrics.IncStatusChange(status.String())
	}
	logCtx := s.logg.WithOrderID(ctx, orderID)
	logCtx = s.logg.WithFields(logCtx, map[string]any{"from": previous.String(), "to": status.String()})
	s.logg.Info(logCtx, "order.status_updated")
	return &UpdateStatusResponse{Success: true, Message: "Order status updated"}, nil
}

func parseMethod(raw string) (enums.PaymentMethod, error) {
	if strings.TrimSpace(raw) == "" {
		return enums.PaymentMethodUPI, nil
	}
	method, err := enums.ParsePaymentMethod(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	return method, nil
}

func validateItems(req CreateOrderRequest) error {
	if len(req.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	seen := make(map[uint]struct{}, len(req.Items))
	sum := decimal.Zero
	for i, item := range req.Items {
		if item.ProductID == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product id required").WithDetails(map[string]any{"index": i})
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1").WithDetails(map[string]any{"index": i})
		}
		if item.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item price must be non-negative").WithDetails(map[string]any{"index": i})
		}
		if _, dup := seen[item.ProductID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate product in order").WithDetails(map[string]any{"product_id": item.ProductID})
		}
		seen[item.ProductID] = struct{}{}
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !sum.Round(2).Equal(req.Total.Round(2)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "total does not match items").
			WithDetails(map[string]any{"expected": sum.Round(2).String(), "got": req.Total.String()})
	}
	return nil
}

func orderCreatedPayload(order models.Order) events.OrderCreated {
	items := make([]events.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, events.OrderItem{ProductID: item.ProductID, Quantity: item.Quantity, Price: item.Price})
	}
	return events.OrderCreated{
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod.String(),
		Items:         items,
		CreatedAt:     order.CreatedAt,
	}
}

func digitsOnly(value string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, value)
}
