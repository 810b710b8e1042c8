package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item represents a PPE stock item (quantity-based, not individual tracking).
type Item struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Code       string          `json:"code,omitempty"` // approval certificate number, unique if present
	Size       string          `json:"size,omitempty"`
	Brand      string          `json:"brand,omitempty"`
	CategoryID *int64          `json:"category_id,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	MinStock   int             `json:"min_stock"`
	Supplier   string          `json:"supplier,omitempty"`
	PhotoMime  string          `json:"photo_mime,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	DeletedAt  *time.Time      `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	CategoryName string `json:"category_name,omitempty"`
}

// LowStock reports whether the on-hand quantity has reached the
// minimum-stock threshold.
func (i *Item) LowStock() bool {
	return i.Quantity <= i.MinStock
}

// StockValue returns the value of the on-hand quantity at unit price.
func (i *Item) StockValue() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
