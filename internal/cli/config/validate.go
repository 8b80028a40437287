package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/metacatalog/internal/state"
)

// outputModes are the accepted values of the output key.
var outputModes = []string{"auto", "text", "markdown", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	storeType := strings.ToLower(strings.TrimSpace(c.Store.Type))
	if storeType == "" {
		return fmt.Errorf("store.type is required")
	}
	if !state.IsRegistered(storeType) {
		return fmt.Errorf("invalid store configuration: %w", &state.UnknownBackendError{
			Type:      c.Store.Type,
			Available: state.ListBackends(),
		})
	}
	c.Store.Type = storeType

	if storeType == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for sqlite")
	}
	if storeType == "postgres" && c.Store.Port != 0 && !validPort(c.Store.Port) {
		return fmt.Errorf("store.port %d is out of range", c.Store.Port)
	}

	if !validPort(c.UI.Port) {
		return fmt.Errorf("ui.port %d is out of range (1-65535)", c.UI.Port)
	}
	if c.UI.ShutdownTimeout < 0 {
		return fmt.Errorf("ui.shutdown_timeout must not be negative")
	}

	if !slices.Contains(outputModes, c.Output) {
		return fmt.Errorf("output %q is not one of %s", c.Output, strings.Join(outputModes, ", "))
	}

	return nil
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}
