package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/xcourier/internal/api/handler"
	mw "github.com/iconidentify/xcourier/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(healthHandler *handler.HealthHandler, apiKey string) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// API v1 (authenticated)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(apiKey))

		r.Get("/stats", healthHandler.Stats)
		r.Get("/activity", healthHandler.Activity)
	})

	return r
}
