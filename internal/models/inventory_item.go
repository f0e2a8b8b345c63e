package models

import "time"

// Inventory item statuses.
const (
	InventoryStatusForSale = "FOR_SALE"
	InventoryStatusSold    = "SOLD"
)

// InventoryItem is a forfeited article that entered the shop's inventory
// after its loan was marked lost. LoanID is nil once the loan is deleted.
type InventoryItem struct {
	ID        int64     `json:"id"`
	LoanID    *int64    `json:"loan_id,omitempty"`
	ItemDesc  string    `json:"item_desc"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
