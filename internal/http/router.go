package httpapi

import (
	"net/http"

	"foodtruck-order-service/internal/config"
	"foodtruck-order-service/internal/http/handlers"
	"foodtruck-order-service/internal/middleware"
	"foodtruck-order-service/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// HealthCheck reports whether the backend is reachable.
type HealthCheck func(r *http.Request) error

func NewRouter(logger *zap.Logger, cfg config.Config, h *handlers.Handler, sessions middleware.SessionResolver, wsServer *ws.Server, health HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Telemetry(logger, cfg.BackendTimeout))

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Idempotency-Key",
				"X-Client-Session",
				"Cache-Control",
			},
			ExposedHeaders:   []string{middleware.RequestIDHeader, "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r); err != nil {
				logger.Warn("health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("backend unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Use(setResponseHeader("Cache-Control", "no-store"))
		r.Get("/menu", h.PublicMenu)
		r.Get("/stops", h.PublicStops)
		r.Get("/stops/map", h.PublicStopsMap)
		r.Get("/stops/nearest", h.PublicStopsNearest)
		r.Get("/stops/{id}/slots", h.PublicStopSlots)
		r.Get("/locations", h.PublicLocations)
		r.Get("/locations/{name}/days", h.PublicLocationDays)
		r.Post("/orders", h.PublicOrderCreate)
		r.Get("/orders/{orderNumber}", h.PublicOrderDetail)
		r.Get("/orders/{orderNumber}/receipt", h.PublicOrderReceipt)
		r.Get("/contact/event-types", h.PublicContactEventTypes)
		r.Post("/contact", h.PublicContactCreate)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(setResponseHeader("Cache-Control", "no-store"))
		r.Post("/auth/login", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(sessions))

			r.Post("/auth/logout", h.AdminLogout)
			r.Get("/auth/session", h.AdminSession)

			r.Get("/orders", h.AdminOrdersList)
			r.Get("/orders/counts", h.AdminOrdersCounts)
			r.Get("/orders/{id}", h.AdminOrderDetail)
			r.Put("/orders/{id}/status", h.AdminOrderUpdateStatus)
			r.Delete("/orders/{id}", h.AdminOrderDelete)
			r.Get("/orders/{id}/receipt", h.AdminOrderReceipt)
			r.Post("/orders/{id}/receipt/archive", h.AdminOrderArchiveReceipt)

			r.Get("/menu/categories", h.AdminCategoriesList)
			r.Post("/menu/categories", h.AdminCategoryCreate)
			r.Put("/menu/categories/{id}", h.AdminCategoryUpdate)
			r.Delete("/menu/categories/{id}", h.AdminCategoryDelete)
			r.Get("/menu/items", h.AdminMenuItemsList)
			r.Post("/menu/items", h.AdminMenuItemCreate)
			r.Put("/menu/items/{id}", h.AdminMenuItemUpdate)
			r.Delete("/menu/items/{id}", h.AdminMenuItemDelete)
			r.Post("/menu/items/{id}/photo", h.AdminMenuItemPhoto)

			r.Get("/stops", h.AdminStopsList)
			r.Post("/stops", h.AdminStopCreate)
			r.Put("/stops/{id}", h.AdminStopUpdate)
			r.Delete("/stops/{id}", h.AdminStopDelete)

			r.Get("/schedule", h.AdminScheduleList)
			r.Put("/schedule", h.AdminScheduleUpdate)

			r.Get("/contacts", h.AdminContactsList)
			r.Put("/contacts/{id}/status", h.AdminContactUpdateStatus)
			r.Delete("/contacts/{id}", h.AdminContactDelete)

			r.Get("/reports/financial", h.AdminFinancialReport)

			r.Get("/notifications/toasts", h.AdminNotificationToasts)
			r.Get("/notifications/permission", h.AdminNotificationPermission)
			r.Put("/notifications/permission", h.AdminNotificationPermissionUpdate)
		})
	})

	if wsServer != nil {
		r.Get("/ws/admin", wsServer.AdminSocket)
	}

	return r
}

func setResponseHeader(name string, value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(name, value)
			next.ServeHTTP(w, r)
		})
	}
}
