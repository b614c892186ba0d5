package models

import "gorm.io/gorm"

// Category groups products in the catalog.
type Category struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=1,max=100"`
	Image      string `json:"image" gorm:"type:varchar(500)" validate:"omitempty,url"`
	gorm.Model        // CreatedAt, UpdatedAt, DeletedAt
}
