package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"foodtruck-order-service/internal/domain"
	"foodtruck-order-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

func zapError(err error) zap.Field {
	return zap.Error(err)
}

func readPathString(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	return true
}

func queryBool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func validationError(w http.ResponseWriter, field, message string) {
	response.Validation(w, field, message)
}

// writeError maps domain and persistence errors to responses. Unexpected
// failures are logged with the operation name and answered with fallback.
func (h *Handler) writeError(w http.ResponseWriter, err error, op string, fallback string) {
	var (
		invalid *domain.ValidationError
		persist *domain.PersistenceError
	)
	switch {
	case errors.As(err, &invalid):
		validationError(w, invalid.Field, invalid.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		response.Error(w, http.StatusBadRequest, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrSubmissionInProgress):
		response.Error(w, http.StatusConflict, "SUBMISSION_IN_PROGRESS", "An order is already being submitted")
	case errors.Is(err, context.DeadlineExceeded):
		h.logger().Warn(op+" timed out", zapError(err))
		response.Error(w, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", "The service is busy, please retry")
	case errors.As(err, &persist):
		switch persist.Kind() {
		case domain.PersistenceTimeout, domain.PersistenceNetwork:
			h.logger().Warn(op+" backend unavailable", zap.String("collection", persist.Collection), zapError(err))
			response.Error(w, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", "The service is busy, please retry")
		case domain.PersistenceConstraint:
			response.Error(w, http.StatusConflict, "CONFLICT", fallback)
		case domain.PersistenceNotFound:
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
		default:
			h.logger().Error(op+" failed", zap.String("collection", persist.Collection), zapError(err))
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
		}
	default:
		h.logger().Error(op+" failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
