package catalog

import (
	"errors"
	"time"
)

// Product is a catalog entry. Stock is only mutated through ReserveStock and
// ReleaseStock so the non-negative invariant holds at all times.
type Product struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	PurchasePrice float64   `json:"purchase_price"`
	SellingPrice  float64   `json:"selling_price"`
	Stock         int       `json:"stock"`
	Unit          string    `json:"unit"`
	MinStock      int       `json:"min_stock"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsLowStock reports whether the product is at or below its minimum stock.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// UnitProfit returns the margin per unit at current prices.
func (p Product) UnitProfit() float64 {
	return p.SellingPrice - p.PurchasePrice
}

// CategoryAll disables category filtering in Search.
const CategoryAll = "all"

// ErrNotFound indicates the referenced product does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// ErrValidation indicates malformed product input.
var ErrValidation = errors.New("catalog: invalid product input")

// ErrDuplicateCode indicates the product code is already taken.
var ErrDuplicateCode = errors.New("catalog: product code already exists")

// ErrInsufficientStock triggered when a reservation exceeds available stock.
var ErrInsufficientStock = errors.New("catalog: insufficient stock")

// ErrInvalidQuantity indicates a non-positive reservation quantity.
var ErrInvalidQuantity = errors.New("catalog: quantity must be positive")
