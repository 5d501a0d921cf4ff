package models

import (
	"time"

	"github.com/angelmondragon/webmarket/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is a placed checkout. Items are snapshots of the cart lines at purchase time.
type Order struct {
	ID             uint                `gorm:"column:id;primaryKey;autoIncrement"`
	UserID         uint                `gorm:"column:user_id;not null;index"`
	TotalAmount    decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status         enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'Pending Confirmation'"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'upi'"`
	IdempotencyKey *string             `gorm:"column:idempotency_key;uniqueIndex"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	User  User        `gorm:"foreignKey:UserID;references:ID"`
	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one purchased line within an order.
type OrderItem struct {
	ID        uint            `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   uint            `gorm:"column:order_id;not null;index"`
	ProductID uint            `gorm:"column:product_id;not null"`
	Name      string          `gorm:"column:name;not null"`
	Image     string          `gorm:"column:image;not null;default:''"`
	Quantity  int             `gorm:"column:quantity;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
}

func (OrderItem) TableName() string { return "order_items" }
