package models

import "time"

// Sale statuses.
const (
	SaleStatusForSale = "FOR_SALE"
	SaleStatusSold    = "SOLD"
)

// SaleItem is a retail item offered at the counter.
type SaleItem struct {
	ID       int64      `json:"id"`
	ItemDesc string     `json:"item_desc"`
	Price    float64    `json:"price"`
	SoldAt   *time.Time `json:"sold_at,omitempty"`
	Status   string     `json:"status"`
}

// SalesSummary aggregates the sold history for the sales page.
type SalesSummary struct {
	SoldCount   int     `json:"sold_count"`
	TotalAmount float64 `json:"total_amount"`
}
