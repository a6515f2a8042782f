package domain

import (
	"github.com/shopspring/decimal"
)

// Category represents a product category in the system.
// The json tags correspond to the fields expected in API responses/requests.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product represents a stocked item.
// Quantity is the current stock level and never goes below zero.
type Product struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	CategoryID int64           `json:"category_id"`
	Category   string          `json:"category"` // Resolved from categories on read
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ImagePath  *string         `json:"image_path,omitempty"` // Pointer for nullable fields
}
