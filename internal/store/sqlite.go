package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. This is the
// default backend for single-analyst local use.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS fundamentals_cache (
	id         TEXT PRIMARY KEY,
	ticker     TEXT NOT NULL,
	source     TEXT NOT NULL,
	record     TEXT NOT NULL,
	fetched_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL,
	UNIQUE (ticker, source)
);

CREATE INDEX IF NOT EXISTS idx_fundamentals_cache_expires_at ON fundamentals_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetFundamentals(ctx context.Context, ticker string, source model.DataSource) (*model.RawFundamentals, error) {
	var recordJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM fundamentals_cache
		 WHERE ticker = ? AND source = ? AND expires_at > ?
		 ORDER BY fetched_at DESC LIMIT 1`,
		ticker, string(source), time.Now().UTC(),
	).Scan(&recordJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get fundamentals %s/%s", ticker, source)
	}

	var raw model.RawFundamentals
	if err := json.Unmarshal([]byte(recordJSON), &raw); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached fundamentals")
	}
	return &raw, nil
}

func (s *SQLiteStore) SetFundamentals(ctx context.Context, raw *model.RawFundamentals, ttl time.Duration) error {
	recordJSON, err := json.Marshal(raw)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal fundamentals")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO fundamentals_cache (id, ticker, source, record, fetched_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (ticker, source) DO UPDATE SET record = excluded.record,
		 fetched_at = excluded.fetched_at, expires_at = excluded.expires_at`,
		uuid.New().String(), raw.Ticker, string(raw.Source), string(recordJSON), now, now.Add(ttl),
	)
	return eris.Wrapf(err, "sqlite: set fundamentals %s/%s", raw.Ticker, raw.Source)
}

func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM fundamentals_cache WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: purge expired")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return int(n), nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*CacheStats, error) {
	var stats CacheStats
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		 FROM fundamentals_cache`, time.Now().UTC(),
	).Scan(&stats.Entries, &stats.Expired)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats")
	}
	return &stats, nil
}
