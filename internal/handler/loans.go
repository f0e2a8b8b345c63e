package handler

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/models"
	"github.com/jdmdelivery/pawn-service/internal/service"
)

type loanRequest struct {
	ItemName     string  `json:"item_name"`
	WeightGrams  float64 `json:"weight_grams"`
	CustomerName string  `json:"customer_name"`
	CustomerID   string  `json:"customer_id"`
	Phone        string  `json:"phone"`
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interest_rate"`
	TermDays     int     `json:"term_days"`
	StartDate    string  `json:"start_date,omitempty"` // YYYY-MM-DD
}

// CreateLoan disburses a new pledge.
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		http.Error(w, "invalid start_date", http.StatusBadRequest)
		return
	}

	loan, err := h.svc.CreateLoan(service.CreateLoanInput{
		ItemName:     req.ItemName,
		WeightGrams:  req.WeightGrams,
		CustomerName: req.CustomerName,
		CustomerID:   req.CustomerID,
		Phone:        req.Phone,
		Amount:       req.Amount,
		InterestRate: req.InterestRate,
		TermDays:     req.TermDays,
		StartDate:    start,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

// ListLoans searches loans by text and status.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	status := r.URL.Query().Get("status")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	loans, err := h.svc.ListLoans(q, status, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

// GetLoan returns a loan with its accrual figures. An optional as_of
// query revalues the interest for another date; from_date overrides the
// accrual start.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	asOf, err := parseDate(r.URL.Query().Get("as_of"))
	if err != nil {
		http.Error(w, "invalid as_of", http.StatusBadRequest)
		return
	}
	fromOverride, err := parseDate(r.URL.Query().Get("from_date"))
	if err != nil {
		http.Error(w, "invalid from_date", http.StatusBadRequest)
		return
	}

	var view *service.LoanView
	if asOf == nil && fromOverride == nil {
		view, err = h.svc.GetLoan(id)
	} else {
		at := time.Now()
		if asOf != nil {
			at = *asOf
		}
		view, err = h.svc.QuoteLoan(id, at, fromOverride)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// UpdateLoan edits a loan's descriptive fields.
func (h *Handler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	view, err := h.svc.GetLoan(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	loan := view.Loan

	var req loanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	loan.ItemName = req.ItemName
	loan.WeightGrams = req.WeightGrams
	loan.CustomerName = req.CustomerName
	loan.CustomerID = req.CustomerID
	loan.Phone = req.Phone
	if req.InterestRate > 0 {
		loan.InterestRate = req.InterestRate
	}

	if err := h.svc.UpdateLoan(loan); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// DeleteLoan removes a loan after password re-authentication.
func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteLoan(ident.UserID, req.Password, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RedeemLoan settles a loan and returns the pledge.
func (h *Handler) RedeemLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.svc.RedeemLoan(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.LoanStatusRedeemed})
}

// MarkLoanLost forfeits the pledge into inventory.
func (h *Handler) MarkLoanLost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.svc.MarkLoanLost(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.LoanStatusLost})
}

// SellLostLoan sells a forfeited pledge at the given price.
func (h *Handler) SellLostLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req struct {
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.SellLostLoan(id, req.Price); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.LoanStatusSold})
}

// ExportLoansCSV streams the loan book as a CSV download.
func (h *Handler) ExportLoansCSV(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.ListLoans(r.URL.Query().Get("q"), r.URL.Query().Get("status"), 500)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="loans-%s.csv"`, time.Now().Format("2006-01-02")))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{
		"id", "created_at", "item_name", "weight_grams", "customer_name",
		"customer_id", "phone", "amount", "interest_rate", "due_date", "status",
	})
	for _, l := range loans {
		_ = cw.Write([]string{
			strconv.FormatInt(l.ID, 10),
			l.CreatedAt.Format("2006-01-02"),
			l.ItemName,
			strconv.FormatFloat(l.WeightGrams, 'f', 2, 64),
			l.CustomerName,
			l.CustomerID,
			l.Phone,
			strconv.FormatFloat(l.Amount, 'f', 2, 64),
			strconv.FormatFloat(l.InterestRate, 'f', 2, 64),
			l.DueDate.Format("2006-01-02"),
			l.Status,
		})
	}
	cw.Flush()
}
