// Package state persists the asset collection.
//
// Backends register themselves by name in init() and are constructed through
// New from a core.StoreConfig. The sqlite backend is the default; postgres is
// available for shared deployments.
package state

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// Factory constructs an unopened store.
type Factory func(*slog.Logger) core.Store

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a backend factory to the registry.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a backend factory by name.
func Get(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// New creates an unopened store for cfg.Type.
// A nil logger is replaced by a discard logger.
func New(cfg core.StoreConfig, logger *slog.Logger) (core.Store, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("store type not specified")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownBackendError{
			Type:      cfg.Type,
			Available: ListBackends(),
		}
	}
	return factory(logger), nil
}

// ListBackends returns all registered backend names (sorted).
func ListBackends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownBackendError is returned when an unknown store type is requested.
type UnknownBackendError struct {
	Type      string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("unknown store type %q\nAvailable stores: %v\nHint: Check store.type in metacatalog.yaml", e.Type, e.Available)
}

// Open creates, opens and migrates a store in one step.
func Open(ctx context.Context, cfg core.StoreConfig, logger *slog.Logger) (core.Store, error) {
	store, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := store.Open(ctx, cfg); err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}
