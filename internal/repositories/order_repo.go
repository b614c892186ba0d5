package repositories

import "shopsmart/internal/models"

// OrderRepository defines the interface for order data access. Orders are
// created once; only their status fields mutate afterwards.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByPaymentIntentID(intentID string) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
	UpdatePaymentStatus(id string, status models.PaymentStatus) error
}
