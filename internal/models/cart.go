package models

import "gorm.io/gorm"

// CartItem is one product line inside a cart. A cart holds at most one line
// per product; adding the same product again merges into Quantity.
type CartItem struct {
	ID        uint     `json:"-" gorm:"primaryKey"`
	CartID    string   `json:"-" gorm:"type:varchar(36);index"`
	ProductID string   `json:"product_id" gorm:"type:varchar(36)" validate:"required"`
	Quantity  int      `json:"quantity" validate:"required,gte=1"`
	Product   *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// Cart is the per-user staging area of intended purchases. Exactly one cart
// per user; it is created lazily and emptied, never deleted, on checkout.
type Cart struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items      []CartItem `json:"items" gorm:"foreignKey:CartID"`
	gorm.Model            // CreatedAt, UpdatedAt, DeletedAt
}
