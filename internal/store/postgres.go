package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

// PostgresStore implements Store using pgxpool, for a cache shared across a
// team rather than a single analyst's machine.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool (used by tests with pgxmock).
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS fundamentals_cache (
	id         TEXT PRIMARY KEY,
	ticker     TEXT NOT NULL,
	source     TEXT NOT NULL,
	record     JSONB NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	UNIQUE (ticker, source)
);

CREATE INDEX IF NOT EXISTS idx_fundamentals_cache_expires_at ON fundamentals_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetFundamentals(ctx context.Context, ticker string, source model.DataSource) (*model.RawFundamentals, error) {
	var recordJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM fundamentals_cache
		 WHERE ticker = $1 AND source = $2 AND expires_at > now()
		 ORDER BY fetched_at DESC LIMIT 1`,
		ticker, string(source),
	).Scan(&recordJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get fundamentals %s/%s", ticker, source)
	}

	var raw model.RawFundamentals
	if err := json.Unmarshal(recordJSON, &raw); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached fundamentals")
	}
	return &raw, nil
}

func (s *PostgresStore) SetFundamentals(ctx context.Context, raw *model.RawFundamentals, ttl time.Duration) error {
	recordJSON, err := json.Marshal(raw)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal fundamentals")
	}

	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO fundamentals_cache (id, ticker, source, record, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (ticker, source) DO UPDATE SET record = $4, fetched_at = $5, expires_at = $6`,
		uuid.New().String(), raw.Ticker, string(raw.Source), recordJSON, now, now.Add(ttl),
	)
	return eris.Wrapf(err, "postgres: set fundamentals %s/%s", raw.Ticker, raw.Source)
}

func (s *PostgresStore) PurgeExpired(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM fundamentals_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: purge expired")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) Stats(ctx context.Context) (*CacheStats, error) {
	var stats CacheStats
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at <= now() THEN 1 ELSE 0 END), 0)
		 FROM fundamentals_cache`,
	).Scan(&stats.Entries, &stats.Expired)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats")
	}
	return &stats, nil
}
