package handlers

import (
	"net/http"
	"strings"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/pkg/response"
)

type contactStatusPayload struct {
	Status string `json:"status"`
}

func (h *Handler) AdminContactsList(w http.ResponseWriter, r *http.Request) {
	var status domain.ContactStatus
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		parsed, ok := domain.ParseContactStatus(raw)
		if !ok {
			validationError(w, "status", "Unknown contact status")
			return
		}
		status = parsed
	}
	contacts, err := h.Contacts.List(r.Context(), status)
	if err != nil {
		h.writeError(w, err, "admin contacts list", "Failed to load contact requests")
		return
	}
	response.Success(w, contacts)
}

func (h *Handler) AdminContactUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var payload contactStatusPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	next, ok := domain.ParseContactStatus(payload.Status)
	if !ok {
		validationError(w, "status", "Unknown contact status")
		return
	}
	contact, err := h.Contacts.UpdateStatus(r.Context(), readPathString(r, "id"), next)
	if err != nil {
		h.writeError(w, err, "admin contact status", "Failed to update contact request")
		return
	}
	response.Success(w, contact)
}

func (h *Handler) AdminContactDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Contacts.Delete(r.Context(), readPathString(r, "id")); err != nil {
		h.writeError(w, err, "admin contact delete", "Failed to delete contact request")
		return
	}
	response.Success(w, map[string]any{"deleted": true})
}
