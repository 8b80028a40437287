package core

import "context"

// StoreConfig holds the connection settings for a Store backend.
type StoreConfig struct {
	// Type selects the backend ("sqlite", "postgres").
	Type string
	// Path is the database file for file-based backends. ":memory:" is allowed.
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	// Options contains driver-specific settings (e.g. sslmode).
	Options map[string]string
}

// Store is the persistence collaborator holding the canonical asset collection.
type Store interface {
	Open(ctx context.Context, cfg StoreConfig) error
	Close() error
	Migrate(ctx context.Context) error
	DialectName() string

	// ListAssets returns a snapshot ordered by creation time, then ID.
	ListAssets(ctx context.Context) ([]Asset, error)
	GetAsset(ctx context.Context, id string) (*Asset, error)
	// CreateAsset inserts a, assigning a.ID when it is empty.
	CreateAsset(ctx context.Context, a *Asset) error
	UpdateAsset(ctx context.Context, a *Asset) error
	DeleteAsset(ctx context.Context, id string) error
}
