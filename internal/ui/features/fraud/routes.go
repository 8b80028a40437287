// Package fraud provides the fraud panel: claim statistics, per-claim
// verdicts and the rules behind them.
package fraud

import (
	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
)

// SetupRoutes configures routes for the fraud feature.
func SetupRoutes(router chi.Router, svc *catalog.Service, isDev bool) error {
	handlers := NewHandlers(svc, isDev)

	router.Get("/fraud", handlers.FraudPage)
	router.Get("/fraud/updates", handlers.FraudUpdates)

	return nil
}
