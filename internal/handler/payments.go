package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jdmdelivery/pawn-service/internal/service"
)

type paymentRequest struct {
	Amount       float64 `json:"amount"`
	CapitalExtra float64 `json:"capital_extra"`
	Mode         string  `json:"mode"`
	AsOfDate     string  `json:"as_of_date,omitempty"` // YYYY-MM-DD
	FromDate     string  `json:"from_date,omitempty"`  // accrual start override
	Notes        string  `json:"notes,omitempty"`
}

// QuotePayment previews the interest due and allocation without writing
// anything.
func (h *Handler) QuotePayment(w http.ResponseWriter, r *http.Request) {
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

	at := timeNowOr(asOf)
	view, err := h.svc.QuoteLoan(id, at, fromOverride)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ApplyPayment collects a payment against a loan.
func (h *Handler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	asOf, err := parseDate(req.AsOfDate)
	if err != nil {
		http.Error(w, "invalid as_of_date", http.StatusBadRequest)
		return
	}
	fromOverride, err := parseDate(req.FromDate)
	if err != nil {
		http.Error(w, "invalid from_date", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ApplyPayment(service.PaymentInput{
		LoanID:       id,
		Tendered:     req.Amount,
		CapitalExtra: req.CapitalExtra,
		Mode:         service.ParseMode(req.Mode),
		AsOf:         asOf,
		FromOverride: fromOverride,
		Notes:        req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListReceipts returns a loan's payment history grouped into receipts.
func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	receipts, err := h.svc.Receipts(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

// UndoReceipt reverses one receipt. Admin only, password re-entry required.
func (h *Handler) UndoReceipt(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	paymentID, err := pathID(r, "paymentID")
	if err != nil {
		http.Error(w, "invalid payment id", http.StatusBadRequest)
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

	if err := h.svc.UndoReceipt(ident.UserID, ident.Role, req.Password, loanID, paymentID); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MonthlyBreakdown projects flat monthly interest between two months.
func (h *Handler) MonthlyBreakdown(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	months, total, err := h.svc.MonthlyBreakdown(id, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"months": months,
		"total":  total,
	})
}
