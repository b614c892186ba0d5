package repositories

import "errors"

// Sentinel errors shared by every repository implementation. Callers match
// them with errors.Is; implementations wrap them with context via %w.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)
