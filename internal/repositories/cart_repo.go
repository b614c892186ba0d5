package repositories

import "shopsmart/internal/models"

// CartRepository defines the interface for cart data access. A user owns at
// most one cart; lookups go through the user ID.
type CartRepository interface {
	GetByUserID(userID string) (*models.Cart, error)
	Create(cart *models.Cart) error
	// SaveItems replaces the cart's line items with cart.Items.
	SaveItems(cart *models.Cart) error
	// ClearItems empties the cart but keeps the cart record itself.
	ClearItems(cartID string) error
}
