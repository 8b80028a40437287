// Package commands implements the metacatalog subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/cli/config"
	"github.com/leapstack-labs/metacatalog/internal/cli/output"
	"github.com/leapstack-labs/metacatalog/internal/events"
	"github.com/leapstack-labs/metacatalog/internal/state"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// DefaultOwner stamps assets created from the command line.
const DefaultOwner = "cli"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    core.Store
	Service  *catalog.Service
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an open, migrated store.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command, opts ...catalog.Option) (*CommandContext, func(), error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	store, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	opts = append([]catalog.Option{catalog.WithLogger(logger)}, opts...)
	svc := catalog.NewService(store, opts...)

	cleanup := func() {
		_ = store.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Store:    store,
		Service:  svc,
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Output)),
	}, cleanup, nil
}

// getConfig returns the current configuration, or the defaults when none
// has been loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}

// openStore opens and migrates the configured store.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (core.Store, error) {
	store, err := state.Open(ctx, cfg.Store.Core(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

// newBus returns the change bus for a long-running command. A configured
// redis address extends the local bus across processes; the returned runner
// is nil otherwise.
func newBus(ctx context.Context, cfg *config.Config, logger *slog.Logger) (events.Bus, func(context.Context) error, error) {
	local := events.NewLocalBus()
	if cfg.Events.RedisAddr == "" {
		return local, nil, nil
	}

	bridge, err := events.NewRedisBridge(ctx, events.RedisConfig{
		Addr:    cfg.Events.RedisAddr,
		Channel: cfg.Events.Channel,
	}, local, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect change bridge: %w", err)
	}
	return bridge, func(ctx context.Context) error {
		if err := bridge.Start(ctx); err != nil {
			_ = bridge.Close()
			return err
		}
		<-ctx.Done()
		return bridge.Close()
	}, nil
}

