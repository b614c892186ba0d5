package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// forwardRank orders the happy-path states. Cancelled is outside the chain.
var forwardRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusProcessing: 1,
	OrderStatusShipped:    2,
	OrderStatusDelivered:  3,
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	_, ok := forwardRank[s]
	return ok || s == OrderStatusCancelled
}

// CanTransitionTo is the single legality check for every status change:
// forward moves along pending -> processing -> shipped -> delivered, and
// cancellation from any state that has not yet shipped. Both the admin
// update path and user cancellation go through it.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == OrderStatusCancelled {
		return false
	}
	if next == OrderStatusCancelled {
		return s != OrderStatusShipped && s != OrderStatusDelivered
	}
	cur, ok := forwardRank[s]
	nxt, ok2 := forwardRank[next]
	return ok && ok2 && nxt > cur
}

// Cancellable reports whether an order in state s may still be cancelled.
func (s OrderStatus) Cancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

// PaymentStatus is the state of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCreditCard     = "Credit Card"
	PaymentMethodCashOnDelivery = "Cash on Delivery"
)

// ShippingAddress is the destination of an order. Every field is required.
type ShippingAddress struct {
	Street  string `json:"street" gorm:"type:varchar(255)" validate:"required"`
	City    string `json:"city" gorm:"type:varchar(100)" validate:"required"`
	State   string `json:"state" gorm:"type:varchar(100)" validate:"required"`
	Zip     string `json:"zip" gorm:"type:varchar(20)" validate:"required"`
	Country string `json:"country" gorm:"type:varchar(100)" validate:"required"`
}

// OrderItem is an immutable snapshot of one purchased line. PriceAtPurchase
// is frozen at checkout and never reflects later product price changes.
type OrderItem struct {
	ID              uint            `json:"-" gorm:"primaryKey"`
	OrderID         string          `json:"-" gorm:"type:varchar(36);index"`
	ProductID       string          `json:"product_id" gorm:"type:varchar(36)"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" gorm:"type:decimal(12,2)"`
}

// Order is the immutable record created by one successful checkout. Only
// OrderStatus and PaymentStatus change afterwards.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string          `json:"user_id" gorm:"type:varchar(36);index"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2)"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:ship_"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(16);default:pending"`
	OrderStatus     OrderStatus     `json:"order_status" gorm:"type:varchar(16);default:pending"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty" gorm:"type:varchar(255);index"`
	gorm.Model                      // CreatedAt, UpdatedAt, DeletedAt
}
