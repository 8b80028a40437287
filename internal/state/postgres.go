package state

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/leapstack-labs/metacatalog/pkg/core"
)

func init() {
	Register("postgres", func(logger *slog.Logger) core.Store { return NewPostgresStore(logger) })
}

// PostgresStore implements core.Store using PostgreSQL.
type PostgresStore struct {
	baseSQLStore
	cfg core.StoreConfig
}

// NewPostgresStore creates a new PostgreSQL store instance.
// If logger is nil, a discard logger is used.
func NewPostgresStore(logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PostgresStore{baseSQLStore: baseSQLStore{Logger: logger, numbered: true}}
}

// DialectName returns the SQL dialect for this store.
func (s *PostgresStore) DialectName() string {
	return "postgres"
}

// Open establishes a connection to PostgreSQL.
func (s *PostgresStore) Open(ctx context.Context, cfg core.StoreConfig) error {
	dsn := buildPostgresDSN(cfg)

	s.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	s.DB = db
	s.cfg = cfg
	return nil
}

// Migrate runs all pending database migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.DB, "postgres")
}

// MigrationVersion returns the current migration version.
func (s *PostgresStore) MigrationVersion(ctx context.Context) (int64, error) {
	return migrationVersion(ctx, s.DB, "postgres")
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg core.StoreConfig) string {
	// key=value format: host=localhost port=5432 user=postgres ...
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}
