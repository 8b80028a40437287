// Package lineage provides the lineage panel: the policy → claim → model
// diagram and a detail view of the selected node.
package lineage

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
)

// SetupRoutes configures routes for the lineage feature.
func SetupRoutes(router chi.Router, svc *catalog.Service, isDev bool) error {
	handlers := NewHandlers(svc, isDev)

	router.Get("/lineage", handlers.LineagePage)
	router.Get("/lineage/updates", handlers.LineageUpdates)
	router.Get("/lineage/nodes/{id}", handlers.NodeDetail)

	return nil
}
