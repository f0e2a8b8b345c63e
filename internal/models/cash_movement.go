package models

import "time"

// Cash movement reference tags.
const (
	CashRefLoan = "LOAN" // disbursement, negative
	CashRefPay  = "PAY"  // payment collection, positive
	CashRefUndo = "UNDO" // receipt reversal, negative
	CashRefSale = "SALE" // inventory sale, positive
)

// CashMovement is a signed append-only journal entry for daily cash
// reporting. Disbursements are negative, collections positive.
type CashMovement struct {
	ID      int64     `json:"id"`
	WhenAt  time.Time `json:"when_at"`
	Concept string    `json:"concept"`
	Amount  float64   `json:"amount"`
	Ref     string    `json:"ref,omitempty"`
}
