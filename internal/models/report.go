package models

import "time"

// DashboardMetrics represents the front-page counters
type DashboardMetrics struct {
	ActiveLoans int        `json:"active_loans"`
	CapitalHeld float64    `json:"capital_held"`
	CashToday   float64    `json:"cash_today"`
	DueSoon     []DueLoan  `json:"due_soon"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// DueLoan is a loan approaching its due date
type DueLoan struct {
	ID           int64     `json:"id"`
	CustomerName string    `json:"customer_name"`
	ItemName     string    `json:"item_name"`
	Amount       float64   `json:"amount"`
	DueDate      time.Time `json:"due_date"`
}

// CustomerDayCollection represents one customer's collections for a day
type CustomerDayCollection struct {
	CustomerName  string  `json:"customer_name"`
	Interest      float64 `json:"interest"`
	Capital       float64 `json:"capital"`
	Total         float64 `json:"total"`
	LoansCount    int     `json:"loans_count"`
	PaymentsCount int     `json:"payments_count"`
}

// DailyCashSummary aggregates a day's collections across customers
type DailyCashSummary struct {
	Date          string                  `json:"date"`
	Rows          []CustomerDayCollection `json:"rows"`
	TotalInterest float64                 `json:"total_interest"`
	TotalCapital  float64                 `json:"total_capital"`
	Total         float64                 `json:"total"`
}

// MonthInterest is one month of the flat advisory interest projection
type MonthInterest struct {
	Month    string  `json:"month"` // Format: YYYY-MM
	Interest float64 `json:"interest"`
}
