// Package api provides a read-only JSON API over the catalog for scripts.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
)

// SetupRoutes configures routes for the JSON API.
func SetupRoutes(router chi.Router, svc *catalog.Service, logger *slog.Logger) error {
	handlers := NewHandlers(svc, logger)

	router.Route("/api", func(r chi.Router) {
		r.Get("/assets", handlers.ListAssets)
		r.Get("/assets/{id}", handlers.GetAsset)
		r.Get("/lineage", handlers.Lineage)
		r.Get("/fraud", handlers.Fraud)
	})

	return nil
}
