// Package ui serves the metacatalog web interface: the catalog editor, the
// lineage diagram and the fraud report, kept live over SSE.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/ui/router"
	"github.com/leapstack-labs/metacatalog/internal/ui/session"
)

// DefaultShutdownTimeout bounds graceful shutdown when Config leaves it unset.
const DefaultShutdownTimeout = 5 * time.Second

// Runner is a background task that lives as long as the server, such as a
// seed file watcher or a cross-process event bridge.
type Runner interface {
	Start(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) error

// Start implements Runner.
func (f RunnerFunc) Start(ctx context.Context) error { return f(ctx) }

// Config holds configuration for the UI server.
type Config struct {
	Service         *catalog.Service
	Port            int
	SessionSecret   string
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
	// Runners are started with the server and stopped with it.
	Runners []Runner
	IsDev   bool
}

// Server is the main UI server.
type Server struct {
	service         *catalog.Service
	sessionStore    *sessions.CookieStore
	port            int
	shutdownTimeout time.Duration
	logger          *slog.Logger
	runners         []Runner
	isDev           bool
}

// NewServer creates a new UI server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	return &Server{
		service:         cfg.Service,
		sessionStore:    session.NewStore(cfg.SessionSecret),
		port:            cfg.Port,
		shutdownTimeout: timeout,
		logger:          logger,
		runners:         cfg.Runners,
		isDev:           cfg.IsDev,
	}
}

// Handler builds the routed HTTP handler.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.service, s.sessionStore, s.isDev, s.logger); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve starts the UI server and blocks until the context is cancelled or a
// runner fails.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting UI server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	handler, err := s.Handler()
	if err != nil {
		return err
	}

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	for _, runner := range s.runners {
		eg.Go(func() error {
			return runner.Start(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down UI server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// IsDev reports whether the hot reload endpoints are mounted.
func (s *Server) IsDev() bool {
	return s.isDev
}
