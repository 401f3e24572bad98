package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"foodtruck-order-service/internal/auth"
)

type contextKey string

const authContextKey contextKey = "authContext"

type AuthContext struct {
	AdminID   string
	SessionID string
	Email     string
}

type SessionResolver interface {
	Current(ctx context.Context, token string) (auth.Session, error)
}

func WithAuthContext(ctx context.Context, authCtx *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

func GetAuthContext(ctx context.Context) (*AuthContext, bool) {
	value := ctx.Value(authContextKey)
	if value == nil {
		return nil, false
	}
	ac, ok := value.(*AuthContext)
	return ac, ok
}

func writeAuthError(w http.ResponseWriter, status int, message string, debug string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload := map[string]any{
		"success": false,
		"error":   "UNAUTHORIZED",
		"message": message,
	}
	if os.Getenv("APP_ENV") == "development" && strings.TrimSpace(debug) != "" {
		payload["debug"] = debug
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// AdminAuth accepts a bearer token whose session row is still active.
func AdminAuth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ParseBearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authorization token required", "")
				return
			}

			session, err := sessions.Current(r.Context(), token)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "Session expired, please sign in again", err.Error())
				return
			}

			ctx := WithAuthContext(r.Context(), &AuthContext{
				AdminID:   session.AdminID,
				SessionID: session.ID,
				Email:     session.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
