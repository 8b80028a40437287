// Package router sets up HTTP routes for the UI server.
package router

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	apiFeature "github.com/leapstack-labs/metacatalog/internal/ui/features/api"
	assetsFeature "github.com/leapstack-labs/metacatalog/internal/ui/features/assets"
	fraudFeature "github.com/leapstack-labs/metacatalog/internal/ui/features/fraud"
	lineageFeature "github.com/leapstack-labs/metacatalog/internal/ui/features/lineage"
	"github.com/leapstack-labs/metacatalog/internal/ui/resources"
	"github.com/leapstack-labs/metacatalog/internal/ui/session"
)

// SetupRoutes configures all routes for the UI server.
func SetupRoutes(
	router chi.Router,
	svc *catalog.Service,
	sessionStore sessions.Store,
	isDev bool,
	logger *slog.Logger,
) error {
	// Hot reload endpoint for dev mode
	if isDev {
		setupReload(router)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Panels need an identity; the JSON API does not.
	var setupErr error
	router.Group(func(r chi.Router) {
		r.Use(session.Middleware(sessionStore, logger))

		if err := assetsFeature.SetupRoutes(r, svc, sessionStore, isDev, logger); err != nil {
			setupErr = err
			return
		}
		if err := lineageFeature.SetupRoutes(r, svc, isDev); err != nil {
			setupErr = err
			return
		}
		if err := fraudFeature.SetupRoutes(r, svc, isDev); err != nil {
			setupErr = err
		}
	})
	if setupErr != nil {
		return setupErr
	}

	return apiFeature.SetupRoutes(router, svc, logger)
}

func setupReload(router chi.Router) {
	reloadChan := make(chan struct{}, 1)
	var hotReloadOnce sync.Once

	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		sse := datastar.NewSSE(w, r)
		reload := func() { _ = sse.ExecuteScript("window.location.reload()") }
		hotReloadOnce.Do(reload)
		select {
		case <-reloadChan:
			reload()
		case <-r.Context().Done():
		}
	})

	router.Get("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		select {
		case reloadChan <- struct{}{}:
		default:
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
