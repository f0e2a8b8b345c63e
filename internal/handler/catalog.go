package handler

import (
	"net/http"
	"strconv"

	"github.com/jdmdelivery/pawn-service/internal/models"
)

// CreateClient registers a customer record.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var client models.Client
	if err := decodeJSON(r, &client); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.CreateClient(&client); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

// ListClients returns all customer records.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.svc.ListClients()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// DeleteClient removes a customer record.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.svc.DeleteClient(id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateSaleItem puts a retail item up for sale.
func (h *Handler) CreateSaleItem(w http.ResponseWriter, r *http.Request) {
	var item models.SaleItem
	if err := decodeJSON(r, &item); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.svc.CreateSaleItem(&item); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// ListSaleItems returns the retail catalog with the sold summary.
func (h *Handler) ListSaleItems(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, summary, err := h.svc.ListSaleItems(limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":   items,
		"summary": summary,
	})
}

// SellSaleItem marks a retail item sold.
func (h *Handler) SellSaleItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.svc.SellSaleItem(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": models.SaleStatusSold})
}

// DeleteSaleItem removes an unsold retail item after password re-entry.
func (h *Handler) DeleteSaleItem(w http.ResponseWriter, r *http.Request) {
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
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteSaleItem(ident.UserID, req.Password, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInventory returns forfeited articles held by the shop.
func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListInventory()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListLostLoans returns loans whose pledge awaits sale.
func (h *Handler) ListLostLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.svc.ListLostLoans()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}
