package repositories

import (
	"shopsmart/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// DecrementStock must be a single conditional update ("decrement only if
// stock >= amount") so that concurrent checkouts for the same product cannot
// both pass a stock check and oversell.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	DecrementStock(id string, amount int) error
	IncrementStock(id string, amount int) error
}
