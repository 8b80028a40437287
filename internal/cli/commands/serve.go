package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/metacatalog/internal/catalog"
	"github.com/leapstack-labs/metacatalog/internal/cli/config"
	"github.com/leapstack-labs/metacatalog/internal/seed"
	"github.com/leapstack-labs/metacatalog/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	ViewMode  bool
	Dev       bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the catalog web UI",
		Long: `Start a local web server with the catalog UI.

The UI provides:
- Asset catalog with search, type and regulatory tag filters
- Create, edit and delete forms for policies, claims and models
- Lineage diagram with per-asset sources and dependents
- Fraud report over all claims
- JSON API under /api

Every open browser is updated live when the catalog changes. With
events.redis_addr set, changes made by other metacatalog processes
sharing the redis channel are shown too.`,
		Example: `  # Start UI on default port
  metacatalog serve

  # Start on custom port, read-only
  metacatalog serve --port 3000 --view-mode

  # Start without auto-opening browser
  metacatalog ui --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8780)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.ViewMode, "view-mode", false, "Serve the catalog read-only")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Mount the hot reload endpoints")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	ctx := cmd.Context()

	port := cfg.UI.Port
	if opts.Port != 0 {
		port = opts.Port
	}
	autoOpen := cfg.UI.AutoOpen && !opts.NoBrowser
	viewMode := cfg.UI.ViewMode || opts.ViewMode

	bus, bridge, err := newBus(ctx, cfg, logger)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd, catalog.WithBus(bus), catalog.WithReadOnly(viewMode))
	if err != nil {
		return err
	}
	defer cleanup()

	var runners []ui.Runner
	if bridge != nil {
		runners = append(runners, ui.RunnerFunc(bridge))
	}

	if cfg.Seed.File != "" {
		loader := seed.NewLoader(cmdCtx.Service, cfg.Seed.File, DefaultOwner, logger)
		if viewMode {
			logger.Warn("seed file ignored in view mode", "file", cfg.Seed.File)
		} else {
			if _, err := loader.Load(ctx); err != nil {
				return fmt.Errorf("failed to apply seed file: %w", err)
			}
			if cfg.Seed.Watch {
				runners = append(runners, ui.RunnerFunc(loader.Watch))
			}
		}
	}

	server := ui.NewServer(ui.Config{
		Service:         cmdCtx.Service,
		Port:            port,
		SessionSecret:   cfg.UI.SessionSecret,
		ShutdownTimeout: cfg.UI.ShutdownTimeout,
		Logger:          logger,
		Runners:         runners,
		IsDev:           opts.Dev,
	})

	url := fmt.Sprintf("http://localhost:%d", port)
	if autoOpen {
		go openBrowser(url)
	}

	r := cmdCtx.Renderer
	r.Printf("Starting UI server on %s\n", url)
	if viewMode {
		r.Muted("View mode: the catalog is read-only")
	}
	r.Println("Press Ctrl+C to stop")

	return server.Serve(ctx)
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
