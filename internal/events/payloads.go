package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem is the per-line data carried by OrderCreated.
type OrderItem struct {
	ProductID uint            `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderCreated is published after an order and its items are committed.
type OrderCreated struct {
	OrderID       uint            `json:"orderId"`
	UserID        uint            `json:"userId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod string          `json:"paymentMethod"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// OrderStatusChanged is published when an admin moves an order to a new status.
type OrderStatusChanged struct {
	OrderID   uint      `json:"orderId"`
	UserID    uint      `json:"userId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changedAt"`
}
