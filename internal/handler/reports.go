package handler

import (
	"net/http"
	"time"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

// Dashboard returns the front-page counters.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.svc.DashboardMetrics()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// DailyCash aggregates one day's collections per customer. The date query
// defaults to today.
func (h *Handler) DailyCash(w http.ResponseWriter, r *http.Request) {
	day, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	summary, err := h.svc.DailyCashSummary(timeNowOr(day), r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// AtRiskLoans lists active loans due within the next week.
func (h *Handler) AtRiskLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.AtRiskLoans()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

// reportPeriod reads the from/to query dates; defaults to the current month.
func reportPeriod(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	if from != nil {
		start = *from
	}
	if to != nil {
		end = to.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}

// CashMovements lists the raw cash journal for a period.
func (h *Handler) CashMovements(w http.ResponseWriter, r *http.Request) {
	from, to, err := reportPeriod(r)
	if err != nil {
		http.Error(w, "invalid period", http.StatusBadRequest)
		return
	}
	movements, net, err := h.svc.CashMovements(from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"movements": movements,
		"net":       net,
	})
}

// InterestReport lists interest collected over a period.
func (h *Handler) InterestReport(w http.ResponseWriter, r *http.Request) {
	h.paymentsReport(w, r, h.svc.InterestCollected)
}

// CapitalReport lists principal collected over a period.
func (h *Handler) CapitalReport(w http.ResponseWriter, r *http.Request) {
	h.paymentsReport(w, r, h.svc.CapitalCollected)
}

func (h *Handler) paymentsReport(w http.ResponseWriter, r *http.Request,
	fetch func(from, to time.Time) ([]models.Payment, float64, error)) {
	from, to, err := reportPeriod(r)
	if err != nil {
		http.Error(w, "invalid period", http.StatusBadRequest)
		return
	}
	payments, total, err := fetch(from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    total,
	})
}

// GetSettings returns the typed shop settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.ShopSettings()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings persists the typed shop settings. Admin only.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.ShopSettings
	if err := decodeJSON(r, &settings); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.SaveShopSettings(settings); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
