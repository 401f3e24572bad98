package handlers

import (
	"net/http"
	"strings"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/pkg/response"
)

type stopPayload struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Weekday   *string  `json:"weekday"`
	OpensAt   *string  `json:"opensAt"`
	ClosesAt  *string  `json:"closesAt"`
	Active    *bool    `json:"active"`
	// ClearCoordinates removes a stop's position on update.
	ClearCoordinates bool `json:"clearCoordinates"`
}

func (p stopPayload) apply(stop *domain.Stop) error {
	if p.Name != nil {
		stop.Name = strings.TrimSpace(*p.Name)
	}
	if p.Address != nil {
		stop.Address = strings.TrimSpace(*p.Address)
	}
	if p.ClearCoordinates {
		stop.Latitude, stop.Longitude = nil, nil
	}
	if p.Latitude != nil {
		stop.Latitude = p.Latitude
	}
	if p.Longitude != nil {
		stop.Longitude = p.Longitude
	}
	if p.Weekday != nil {
		stop.Weekday = strings.TrimSpace(*p.Weekday)
	}
	if p.OpensAt != nil {
		stop.OpensAt = strings.TrimSpace(*p.OpensAt)
	}
	if p.ClosesAt != nil {
		stop.ClosesAt = strings.TrimSpace(*p.ClosesAt)
	}
	if p.Active != nil {
		stop.Active = *p.Active
	}
	return stop.Validate()
}

func (h *Handler) AdminStopsList(w http.ResponseWriter, r *http.Request) {
	stops, err := h.Stops.List(r.Context(), queryBool(r, "active"))
	if err != nil {
		h.writeError(w, err, "admin stops list", "Failed to load stops")
		return
	}
	response.Success(w, stops)
}

func (h *Handler) AdminStopCreate(w http.ResponseWriter, r *http.Request) {
	var payload stopPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	stop := domain.Stop{Active: true}
	if err := payload.apply(&stop); err != nil {
		h.writeError(w, err, "admin stop create", "Invalid stop")
		return
	}
	if err := h.Stops.Create(r.Context(), &stop); err != nil {
		h.writeError(w, err, "admin stop create", "Failed to create stop")
		return
	}
	response.Created(w, stop)
}

func (h *Handler) AdminStopUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload stopPayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	stop, err := h.Stops.GetStop(ctx, readPathString(r, "id"))
	if err != nil {
		h.writeError(w, err, "admin stop update", "Failed to load stop")
		return
	}
	if err := payload.apply(&stop); err != nil {
		h.writeError(w, err, "admin stop update", "Invalid stop")
		return
	}
	if err := h.Stops.Update(ctx, stop); err != nil {
		h.writeError(w, err, "admin stop update", "Failed to update stop")
		return
	}
	response.Success(w, stop)
}

func (h *Handler) AdminStopDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Stops.Delete(r.Context(), readPathString(r, "id")); err != nil {
		h.writeError(w, err, "admin stop delete", "Failed to delete stop")
		return
	}
	response.Success(w, map[string]any{"deleted": true})
}
