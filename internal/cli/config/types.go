// Package config provides configuration management for the metacatalog CLI.
//
// Values are layered from built-in defaults, a metacatalog.yaml file,
// METACATALOG_* environment variables and explicitly set command-line flags,
// in increasing order of precedence.
package config

import (
	"time"

	"github.com/leapstack-labs/metacatalog/internal/events"
	"github.com/leapstack-labs/metacatalog/pkg/core"
)

// Default configuration values.
const (
	DefaultStoreType       = "sqlite"
	DefaultStorePath       = ".metacatalog/catalog.db"
	DefaultPort            = 8780
	DefaultShutdownTimeout = 5 * time.Second
	DefaultOutput          = "auto" // Auto-detect: TTY=text, non-TTY=markdown

	// DefaultSessionSecret signs session cookies when nothing else is configured.
	DefaultSessionSecret = "metacatalog-dev-secret-change-in-production" //nolint:gosec
)

// ConfigNames are the file names searched for, in order.
var ConfigNames = []string{"metacatalog.yaml", "metacatalog.yml"}

// Config holds all CLI configuration options.
type Config struct {
	Store   StoreConfig  `koanf:"store"`
	UI      UIConfig     `koanf:"ui"`
	Events  EventsConfig `koanf:"events"`
	Seed    SeedConfig   `koanf:"seed"`
	Output  string       `koanf:"output"`
	Verbose bool         `koanf:"verbose"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// StoreConfig selects and configures the asset store backend.
type StoreConfig struct {
	Type     string            `koanf:"type"`
	Path     string            `koanf:"path"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Options  map[string]string `koanf:"options"`
}

// Core converts the store section to the settings a backend opens with.
func (s StoreConfig) Core() core.StoreConfig {
	return core.StoreConfig{
		Type:     s.Type,
		Path:     s.Path,
		Host:     s.Host,
		Port:     s.Port,
		Database: s.Database,
		Username: s.User,
		Password: s.Password,
		Options:  s.Options,
	}
}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port            int           `koanf:"port"`
	AutoOpen        bool          `koanf:"auto_open"`
	ViewMode        bool          `koanf:"view_mode"`
	SessionSecret   string        `koanf:"session_secret"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// EventsConfig configures the cross-process change bridge.
// An empty RedisAddr keeps change events in-process.
type EventsConfig struct {
	RedisAddr string `koanf:"redis_addr"`
	Channel   string `koanf:"channel"`
}

// SeedConfig points at an optional YAML seed file.
type SeedConfig struct {
	File  string `koanf:"file"`
	Watch bool   `koanf:"watch"`
}

// Default returns the configuration used when nothing has been loaded.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Type: DefaultStoreType,
			Path: DefaultStorePath,
		},
		UI: UIConfig{
			Port:            DefaultPort,
			SessionSecret:   DefaultSessionSecret,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Events: EventsConfig{Channel: events.DefaultChannel},
		Output: DefaultOutput,
	}
}

// defaults is the flat key map loaded before any other source.
func defaults() map[string]any {
	return map[string]any{
		"store.type":          DefaultStoreType,
		"store.path":          DefaultStorePath,
		"ui.port":             DefaultPort,
		"ui.auto_open":        false,
		"ui.view_mode":        false,
		"ui.session_secret":   DefaultSessionSecret,
		"ui.shutdown_timeout": DefaultShutdownTimeout.String(),
		"events.redis_addr":   "",
		"events.channel":      events.DefaultChannel,
		"seed.file":           "",
		"seed.watch":          false,
		"output":              DefaultOutput,
		"verbose":             false,
	}
}
