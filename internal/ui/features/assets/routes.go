// Package assets provides the asset catalog panel: filtered asset cards,
// the create/edit form and deletion.
package assets

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
)

// SetupRoutes configures routes for the catalog feature.
func SetupRoutes(
	router chi.Router,
	svc *catalog.Service,
	sessionStore sessions.Store,
	isDev bool,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(svc, sessionStore, isDev, logger)

	router.Get("/", handlers.CatalogPage)
	router.Get("/catalog/updates", handlers.CatalogUpdates)
	router.Post("/catalog/filter", handlers.FilterAssets)

	router.Get("/catalog/form/new", handlers.NewAssetForm)
	router.Get("/catalog/form/close", handlers.CloseForm)
	router.Get("/catalog/assets/{id}/edit", handlers.EditAssetForm)
	router.Post("/catalog/assets", handlers.CreateAsset)
	router.Put("/catalog/assets/{id}", handlers.UpdateAsset)
	router.Delete("/catalog/assets/{id}", handlers.DeleteAsset)

	router.Post("/session/view-mode", handlers.ToggleViewMode)

	return nil
}
