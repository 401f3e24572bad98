package handlers

import (
	"net/http"

	"foodtruck-order-service/internal/reports"
	"foodtruck-order-service/internal/store"
	"foodtruck-order-service/pkg/response"
)

func (h *Handler) AdminFinancialReport(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.List(r.Context(), store.OrderFilter{})
	if err != nil {
		h.writeError(w, err, "admin financial report", "Failed to load orders")
		return
	}
	summary := reports.Summarize(orders, h.now(), h.Config.Location())
	response.Success(w, map[string]any{
		"currency": h.Config.Currency,
		"report":   summary,
	})
}
