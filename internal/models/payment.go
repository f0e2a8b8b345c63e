package models

import "time"

// Payment types.
const (
	PaymentTypeInterest  = "INTEREST"
	PaymentTypePrincipal = "PRINCIPAL"
)

// Payment is an immutable ledger entry belonging to a loan. Rows sharing the
// same loan and paid-at timestamp form one receipt.
type Payment struct {
	ID     int64     `json:"id"`
	LoanID int64     `json:"loan_id"`
	PaidAt time.Time `json:"paid_at"`
	Amount float64   `json:"amount"`
	Type   string    `json:"type"`
	Notes  string    `json:"notes,omitempty"`
}

// Receipt is one customer transaction: the payment rows of a loan grouped by
// their exact paid-at timestamp.
type Receipt struct {
	LoanID         int64     `json:"loan_id"`
	PaidAt         time.Time `json:"paid_at"`
	Total          float64   `json:"total"`
	InterestAmount float64   `json:"interest_amount"`
	CapitalAmount  float64   `json:"capital_amount"`
	Notes          string    `json:"notes,omitempty"`
}
