package handlers

import (
	"errors"
	"net/http"

	"foodtruck-order-service/internal/auth"
	"foodtruck-order-service/internal/middleware"
	"foodtruck-order-service/pkg/response"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	session, token, err := h.Auth.SignIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Error(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
			return
		}
		h.writeError(w, err, "admin login", "Failed to sign in")
		return
	}
	response.Success(w, map[string]any{
		"accessToken": token,
		"session":     session,
	})
}

func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not signed in")
		return
	}
	if err := h.Auth.SignOut(r.Context(), authCtx.SessionID); err != nil {
		h.writeError(w, err, "admin logout", "Failed to sign out")
		return
	}
	response.Success(w, map[string]any{"signedOut": true})
}

func (h *Handler) AdminSession(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := middleware.GetAuthContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not signed in")
		return
	}
	response.Success(w, map[string]any{
		"adminId":   authCtx.AdminID,
		"sessionId": authCtx.SessionID,
		"email":     authCtx.Email,
	})
}
