package server

import (
	"net/http"

	"github.com/attendai/attendai/internal/chat"
	"github.com/attendai/attendai/internal/config"
	"github.com/attendai/attendai/internal/handler"
	"github.com/attendai/attendai/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the chat API and the public health and metrics endpoints.
func NewRouter(app *App) http.Handler {
	return routes(app.Config, app.Adapter, handler.NewHealthHandler(app.DB, app.Sessions))
}

func routes(cfg *config.Config, adapter *chat.Adapter, healthH *handler.HealthHandler) http.Handler {
	convH := handler.NewConversationHandler(adapter)

	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins, cfg.APIKeyHeader, config.DefaultCORSMaxAge)))
	r.Use(chiMiddleware.RealIP)

	// Public routes
	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Auth + rate limiting for API routes
	apiMiddleware := []func(http.Handler) http.Handler{
		middleware.RateLimit(cfg.RateLimitPerMinute, cfg.APIKeyHeader),
	}
	if cfg.EnableAuth {
		apiMiddleware = append(apiMiddleware, middleware.Auth(cfg.APIKeys, cfg.APIKeyHeader))
	}

	r.Group(func(r chi.Router) {
		for _, m := range apiMiddleware {
			r.Use(m)
		}

		r.Route(cfg.APIPrefix, func(r chi.Router) {
			r.Post("/conversations", convH.Create)
			r.Delete("/conversations/{id}", convH.Delete)
			r.Post("/conversations/{id}/messages", convH.Message)
			r.Post("/conversations/{id}/actions/{action}", convH.Action)
			r.Get("/conversations/{id}/report.pdf", convH.Report)
		})
	})

	return r
}
