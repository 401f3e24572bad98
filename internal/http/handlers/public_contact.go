package handlers

import (
	"net/http"
	"strings"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/pkg/response"

	"go.uber.org/zap"
)

type contactCreatePayload struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	EventType string `json:"eventType"`
	EventDate string `json:"eventDate"`
	Headcount *int   `json:"headcount"`
	Venue     string `json:"venue"`
	Message   string `json:"message"`
}

func (h *Handler) PublicContactEventTypes(w http.ResponseWriter, r *http.Request) {
	response.Success(w, domain.EventTypes)
}

func (h *Handler) PublicContactCreate(w http.ResponseWriter, r *http.Request) {
	var payload contactCreatePayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	req := domain.ContactRequest{
		Name:      strings.TrimSpace(payload.Name),
		Email:     strings.TrimSpace(payload.Email),
		Phone:     strings.TrimSpace(payload.Phone),
		EventType: strings.TrimSpace(payload.EventType),
		EventDate: strings.TrimSpace(payload.EventDate),
		Headcount: payload.Headcount,
		Venue:     strings.TrimSpace(payload.Venue),
		Message:   strings.TrimSpace(payload.Message),
		Status:    domain.ContactNew,
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, err, "contact create", "Invalid contact request")
		return
	}

	if err := h.Contacts.Create(r.Context(), &req); err != nil {
		h.writeError(w, err, "contact create", "Failed to send your request")
		return
	}
	h.logger().Info("contact request received", zap.String("id", req.ID), zap.String("eventType", req.EventType))
	response.Created(w, req)
}
