package services

import (
	"errors"
	"fmt"
)

// Business-rule errors surfaced by the services. Handlers translate them to
// HTTP statuses; everything unmatched is an internal error.
var (
	ErrEmptyCart            = errors.New("your cart is empty")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrPaymentFailed        = errors.New("payment failed")
	ErrIllegalTransition    = errors.New("illegal order status transition")
	ErrNotAuthorized        = errors.New("not authorized")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailTaken           = errors.New("user already exists")
	ErrInvalidAdminKey      = errors.New("invalid admin secret key")
)

// InsufficientStockError reports a line item asking for more than is
// available. The message must identify the product and what is left.
type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s. Available: %d", e.ProductName, e.Available)
}
