package models

import "time"

// Loan statuses. Transitions are one-directional: ACTIVE -> REDEEMED,
// or ACTIVE -> LOST -> SOLD.
const (
	LoanStatusActive   = "ACTIVE"
	LoanStatusRedeemed = "REDEEMED"
	LoanStatusLost     = "LOST"
	LoanStatusSold     = "SOLD"
)

// Loan represents one pawned item under custody. Amount is the outstanding
// principal and decreases as principal payments are applied; it never goes
// below zero.
type Loan struct {
	ID            int64      `json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	ItemName      string     `json:"item_name"`
	WeightGrams   float64    `json:"weight_grams"`
	CustomerName  string     `json:"customer_name"`
	CustomerID    string     `json:"customer_id"`
	Phone         string     `json:"phone"`
	Amount        float64    `json:"amount"`
	InterestRate  float64    `json:"interest_rate"` // percent per month
	DueDate       time.Time  `json:"due_date"`
	Status        string     `json:"status"`
	RedeemedAt    *time.Time `json:"redeemed_at,omitempty"`
	PhotoPath     string     `json:"photo_path,omitempty"`
	IDFrontPath   string     `json:"id_front_path,omitempty"`
	IDBackPath    string     `json:"id_back_path,omitempty"`
	SignaturePath string     `json:"signature_path,omitempty"`
}
