package orders

import (
	"time"

	"github.com/angelmondragon/webmarket/pkg/db/models"
	"github.com/angelmondragon/webmarket/pkg/enums"
	"github.com/shopspring/decimal"
)

// CreateOrderItem is one cart line as sent by the storefront at checkout.
type CreateOrderItem struct {
	ProductID uint            `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"max=255"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image" validate:"max=2048"`
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
}

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	UserID        uint              `json:"userId" validate:"required"`
	Total         decimal.Decimal   `json:"total"`
	Items         []CreateOrderItem `json:"items" validate:"required,min=1,max=100,dive"`
	PaymentMethod string            `json:"paymentMethod" validate:"omitempty,max=16"`
}

// CreateOrderResponse mirrors the storefront contract.
type CreateOrderResponse struct {
	Success bool `json:"success"`
	OrderID uint `json:"orderId"`
}

// UpdateStatusRequest is the admin status change payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatusResponse mirrors the admin console contract.
type UpdateStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// OrderUser is the buyer summary shown in admin views and invoices.
type OrderUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// OrderItemView is a purchased line.
type OrderItemView struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
}

// OrderView is the order shape returned by every read endpoint.
type OrderView struct {
	ID            uint            `json:"id"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	Date          time.Time       `json:"date"`
	User          *OrderUser      `json:"user,omitempty"`
	Items         []OrderItemView `json:"items"`
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// ListFilters describe the admin list inputs. Query matches a substring of the order id.
type ListFilters struct {
	Status *enums.OrderStatus
	UserID *uint
	Query  string
	Limit  int
	Cursor string
}

func viewFromModel(o models.Order, withUser bool) OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemView{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			Image:     item.Image,
		})
	}
	view := OrderView{
		ID:            o.ID,
		Total:         o.TotalAmount,
		Status:        o.Status.String(),
		PaymentMethod: o.PaymentMethod.String(),
		Date:          o.CreatedAt,
		Items:         items,
	}
	if withUser && o.User.ID != 0 {
		view.User = &OrderUser{ID: o.User.ID, Name: o.User.Name, Email: o.User.Email}
	}
	return view
}
