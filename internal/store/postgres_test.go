package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_GetFundamentals(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	record, err := json.Marshal(sampleRaw("ACME"))
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT record FROM fundamentals_cache`).
		WithArgs("ACME", "yahoo").
		WillReturnRows(pgxmock.NewRows([]string{"record"}).AddRow(record))

	got, err := s.GetFundamentals(context.Background(), "ACME", model.SourceYahoo)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ACME", got.Ticker)
	assert.Equal(t, 95.4, got.CurrentSharePrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetFundamentals_Miss(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT record FROM fundamentals_cache`).
		WithArgs("NOPE", "yahoo").
		WillReturnError(pgx.ErrNoRows)

	got, err := s.GetFundamentals(context.Background(), "NOPE", model.SourceYahoo)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetFundamentals(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO fundamentals_cache`).
		WithArgs(pgxmock.AnyArg(), "ACME", "yahoo", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SetFundamentals(context.Background(), sampleRaw("ACME"), time.Hour)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PurgeExpired(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM fundamentals_cache WHERE expires_at`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	removed, err := s.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Stats(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(pgxmock.NewRows([]string{"count", "expired"}).AddRow(7, 2))

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Entries)
	assert.Equal(t, 2, stats.Expired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS fundamentals_cache`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
