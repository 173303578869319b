// Package store persists fetched fundamentals in a key-value cache keyed by
// (ticker, data source), with an explicit TTL freshness policy. The
// valuation core never queries it directly; the retriever injects it.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

// CacheStats summarizes cache contents for the status command.
type CacheStats struct {
	Entries int `json:"entries"`
	Expired int `json:"expired"`
}

// Store defines the fundamentals cache interface.
type Store interface {
	// GetFundamentals returns the cached record for (ticker, source), or
	// nil with no error when the cache has no fresh entry.
	GetFundamentals(ctx context.Context, ticker string, source model.DataSource) (*model.RawFundamentals, error)

	// SetFundamentals stores a record with the given freshness window.
	SetFundamentals(ctx context.Context, raw *model.RawFundamentals, ttl time.Duration) error

	// PurgeExpired deletes stale entries and returns how many were removed.
	PurgeExpired(ctx context.Context) (int, error)

	// Stats reports entry counts.
	Stats(ctx context.Context) (*CacheStats, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Pool abstracts the subset of pgxpool.Pool the Postgres store uses, so
// tests can substitute a pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Config selects and configures the cache backend.
type Config struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`             // "sqlite" (default) or "postgres"
	Path        string `yaml:"path" mapstructure:"path"`                 // sqlite database file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"` // postgres connection string
	TTLHours    int    `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// TTL returns the configured freshness window, defaulting to 24 hours.
func (c Config) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TTLHours) * time.Hour
}

// Open creates the configured Store and runs migrations.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		path := cfg.Path
		if path == "" {
			path = "valuation-cache.db"
		}
		s, err = NewSQLite(path)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
