package handlers

import (
	"errors"
	"net/http"

	"foodtruck-order-service/internal/middleware"
	"foodtruck-order-service/internal/notify"
	"foodtruck-order-service/pkg/response"

	"go.uber.org/zap"
)

type permissionPayload struct {
	State string `json:"state"`
}

func (h *Handler) AdminNotificationToasts(w http.ResponseWriter, r *http.Request) {
	toasts := []notify.Toast{}
	if h.Toasts != nil {
		toasts = h.Toasts.Active()
	}
	response.Success(w, toasts)
}

func (h *Handler) AdminNotificationPermission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx, ok := middleware.GetAuthContext(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not signed in")
		return
	}
	mine, err := h.Permissions.Get(ctx, authCtx.AdminID)
	if err != nil {
		h.writeError(w, err, "notification permission get", "Failed to load permission")
		return
	}
	response.Success(w, map[string]any{
		"state":     mine,
		"effective": h.Permissions.Current(ctx),
	})
}

func (h *Handler) AdminNotificationPermissionUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authCtx, ok := middleware.GetAuthContext(ctx)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not signed in")
		return
	}
	var payload permissionPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	current, err := h.Permissions.Get(ctx, authCtx.AdminID)
	if err != nil {
		h.writeError(w, err, "notification permission set", "Failed to load permission")
		return
	}
	next, err := current.Answer(notify.Permission(payload.State))
	if err != nil {
		if errors.Is(err, notify.ErrPermissionAnswered) {
			response.ErrorWith(w, http.StatusConflict, "PERMISSION_ANSWERED",
				"Notification permission was already answered", map[string]any{"state": current})
			return
		}
		validationError(w, "state", "State must be granted or denied")
		return
	}
	if err := h.Permissions.Set(ctx, authCtx.AdminID, next); err != nil {
		h.writeError(w, err, "notification permission set", "Failed to save permission")
		return
	}
	h.logger().Info("notification permission answered", zap.String("adminId", authCtx.AdminID), zap.String("state", string(next)))
	response.Success(w, map[string]any{
		"state":     next,
		"effective": h.Permissions.Current(ctx),
	})
}
