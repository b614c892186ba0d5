package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the store. Stock is mutated only by the
// checkout decrement, the restock paths, and admin edits; it never goes
// negative.
type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string          `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Description string          `json:"description" gorm:"type:varchar(500)" validate:"required,max=500"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	CategoryID  string          `json:"category_id" gorm:"type:varchar(36);index" validate:"required"`
	ImageURL    string          `json:"image_url" gorm:"type:varchar(500)" validate:"omitempty,url"`
	Stock       int             `json:"stock" validate:"gte=0"`
	gorm.Model                  // CreatedAt, UpdatedAt, DeletedAt
}
