package handlers

import (
	"errors"
	"net/http"
	"strings"

	"foodtruck-order-service/internal/auth"
	"foodtruck-order-service/internal/cart"
	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/internal/ordering"
	"foodtruck-order-service/internal/receipt"
	"foodtruck-order-service/pkg/response"

	"go.uber.org/zap"
)

type orderCustomerPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type orderCreatePayload struct {
	StopID     string               `json:"stopId"`
	PickupDate string               `json:"pickupDate"`
	PickupTime string               `json:"pickupTime"`
	Customer   orderCustomerPayload `json:"customer"`
	Items      []cart.RequestItem   `json:"items"`
}

type orderCreated struct {
	OrderID       string       `json:"orderId"`
	OrderNumber   string       `json:"orderNumber"`
	Total         domain.Money `json:"totalCents"`
	TotalLabel    string       `json:"total"`
	TrackingToken string       `json:"trackingToken"`
	ReceiptText   string       `json:"receiptText"`
}

func submissionSessionKey(r *http.Request) string {
	for _, key := range []string{"Idempotency-Key", "X-Client-Session"} {
		if value := strings.TrimSpace(r.Header.Get(key)); value != "" {
			return value
		}
	}
	return ""
}

func (h *Handler) PublicOrderCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload orderCreatePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	if len(payload.Items) == 0 {
		validationError(w, "items", "Your cart is empty")
		return
	}

	catalog, err := h.Menu.Catalog(ctx)
	if err != nil {
		h.writeError(w, err, "order catalog", "Failed to load menu")
		return
	}
	basket, err := cart.FromRequest(payload.Items, catalog, h.Config.MaxLineQuantity)
	if err != nil {
		h.writeError(w, err, "order cart", "Invalid cart")
		return
	}

	result, err := h.Ordering.Submit(ctx, ordering.SubmitRequest{
		SessionKey: submissionSessionKey(r),
		Cart:       basket,
		StopID:     payload.StopID,
		PickupDate: payload.PickupDate,
		PickupTime: payload.PickupTime,
		Customer: domain.Customer{
			FirstName: payload.Customer.FirstName,
			LastName:  payload.Customer.LastName,
			Phone:     payload.Customer.Phone,
			Email:     payload.Customer.Email,
		},
	})
	if err != nil {
		h.writeError(w, err, "order submit", "Failed to place order")
		return
	}

	summary := receipt.FromOrder(result.Order, result.Stop, h.Config.Currency)
	h.logger().Info("order placed",
		zap.String("orderNumber", result.OrderNumber),
		zap.String("stopId", result.Stop.ID),
		zap.Int64("totalCents", int64(result.Total)),
	)
	response.Created(w, orderCreated{
		OrderID:       result.OrderID,
		OrderNumber:   result.OrderNumber,
		Total:         result.Total,
		TotalLabel:    result.Total.Format(h.Config.Currency),
		TrackingToken: auth.CreateOrderTrackingToken(h.Config.OrderTrackingTokenSecret, result.OrderNumber),
		ReceiptText:   receipt.Text(summary),
	})
}

// trackedOrder loads an order by number once its tracking token checks out.
func (h *Handler) trackedOrder(w http.ResponseWriter, r *http.Request) (domain.Order, bool) {
	orderNumber := strings.ToUpper(readPathString(r, "orderNumber"))
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if orderNumber == "" || !auth.VerifyOrderTrackingToken(h.Config.OrderTrackingTokenSecret, token, orderNumber) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Order not found")
		return domain.Order{}, false
	}
	order, err := h.Orders.GetByNumber(r.Context(), orderNumber)
	if err != nil {
		h.writeError(w, err, "tracked order", "Failed to load order")
		return domain.Order{}, false
	}
	return order, true
}

func (h *Handler) PublicOrderDetail(w http.ResponseWriter, r *http.Request) {
	order, ok := h.trackedOrder(w, r)
	if !ok {
		return
	}
	response.Success(w, order)
}

func (h *Handler) PublicOrderReceipt(w http.ResponseWriter, r *http.Request) {
	order, ok := h.trackedOrder(w, r)
	if !ok {
		return
	}
	h.writeReceipt(w, r, order)
}

// orderStop loads the stop for receipts; a deleted stop falls back to the
// name stored on the order.
func (h *Handler) orderStop(r *http.Request, order domain.Order) domain.Stop {
	stop, err := h.Stops.GetStop(r.Context(), order.StopID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.logger().Warn("receipt stop lookup failed", zap.String("orderId", order.ID), zapError(err))
		}
		return domain.Stop{ID: order.StopID, Name: order.StopName}
	}
	return stop
}

func (h *Handler) writeReceipt(w http.ResponseWriter, r *http.Request, order domain.Order) {
	summary := receipt.FromOrder(order, h.orderStop(r, order), h.Config.Currency)

	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))) {
	case "", "txt", "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(receipt.Text(summary)))
	case "html":
		body, err := receipt.HTML(summary)
		if err != nil {
			h.writeError(w, err, "receipt html", "Failed to render receipt")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	case "pdf":
		body, err := receipt.PDF(summary)
		if err != nil {
			h.writeError(w, err, "receipt pdf", "Failed to render receipt")
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.Filename(summary, "pdf")+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	default:
		validationError(w, "format", "format must be txt, html or pdf")
	}
}
