package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/queue"
	"foodtruck-order-service/internal/receipt"
	"foodtruck-order-service/internal/store"
	"foodtruck-order-service/pkg/response"

	"go.uber.org/zap"
)

const defaultOrderListLimit = 200

type orderStatusPayload struct {
	Status string `json:"status"`
}

// parseOrderFilter reads ?status=a,b&since=YYYY-MM-DD&limit=n.
func parseOrderFilter(r *http.Request, loc *time.Location) (store.OrderFilter, error) {
	q := r.URL.Query()
	filter := store.OrderFilter{Limit: defaultOrderListLimit}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, ok := domain.ParseOrderStatus(part)
			if !ok {
				return filter, domain.Invalid("status", "unknown status "+strings.TrimSpace(part))
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := strings.TrimSpace(q.Get("since")); raw != "" {
		since, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return filter, domain.Invalid("since", "expected YYYY-MM-DD")
		}
		filter.Since = &since
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			return filter, domain.Invalid("limit", "must be between 1 and 1000")
		}
		filter.Limit = limit
	}
	return filter, nil
}

func (h *Handler) AdminOrdersList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseOrderFilter(r, h.Config.Location())
	if err != nil {
		h.writeError(w, err, "admin orders list", "Invalid filter")
		return
	}
	orders, err := h.Orders.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err, "admin orders list", "Failed to load orders")
		return
	}
	response.Success(w, orders)
}

func (h *Handler) AdminOrdersCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Orders.CountByStatus(r.Context())
	if err != nil {
		h.writeError(w, err, "admin order counts", "Failed to count orders")
		return
	}
	response.Success(w, counts)
}

func (h *Handler) AdminOrderDetail(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, err, "admin order detail", "Failed to load order")
		return
	}
	response.Success(w, order)
}

func (h *Handler) AdminOrderUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload orderStatusPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	next, ok := domain.ParseOrderStatus(payload.Status)
	if !ok {
		validationError(w, "status", "Unknown order status")
		return
	}

	order, err := h.Orders.UpdateStatus(ctx, readPathString(r, "id"), next)
	if err != nil {
		h.writeError(w, err, "admin order status", "Failed to update order")
		return
	}

	if h.Events != nil {
		evt := queue.Event{Type: queue.EventOrderStatusUpdated, ID: order.ID, Status: string(order.Status)}
		if err := h.Events.Publish(ctx, evt); err != nil {
			h.logger().Warn("order status event not published", zap.String("orderId", order.ID), zapError(err))
		}
	}
	response.Success(w, order)
}

func (h *Handler) AdminOrderDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Orders.DeleteOrder(r.Context(), readPathString(r, "id")); err != nil {
		h.writeError(w, err, "admin order delete", "Failed to delete order")
		return
	}
	response.Success(w, map[string]any{"deleted": true})
}

func (h *Handler) AdminOrderReceipt(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, err, "admin order receipt", "Failed to load order")
		return
	}
	h.writeReceipt(w, r, order)
}

func (h *Handler) AdminOrderArchiveReceipt(w http.ResponseWriter, r *http.Request) {
	if h.Archiver == nil {
		response.Error(w, http.StatusServiceUnavailable, "STORAGE_DISABLED", "Receipt archive is not configured")
		return
	}
	order, err := h.Orders.Get(r.Context(), readPathString(r, "id"))
	if err != nil {
		h.writeError(w, err, "admin order archive", "Failed to load order")
		return
	}
	url, err := h.Archiver.Archive(r.Context(), receipt.FromOrder(order, h.orderStop(r, order), h.Config.Currency))
	if err != nil {
		if errors.Is(err, receipt.ErrArchiveDisabled) {
			response.Error(w, http.StatusServiceUnavailable, "STORAGE_DISABLED", "Receipt archive is not configured")
			return
		}
		h.writeError(w, err, "admin order archive", "Failed to archive receipt")
		return
	}
	response.Success(w, map[string]any{"url": url})
}
