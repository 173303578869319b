package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleRaw(ticker string) *model.RawFundamentals {
	return &model.RawFundamentals{
		Ticker:               ticker,
		CompanyName:          "Acme Corp",
		Source:               model.SourceYahoo,
		MarketCapitalization: 1e9,
		FreeCashFlowHistory:  []float64{9e7, 1e8},
		TotalDebt:            2e8,
		CashAndEquivalents:   1e8,
		SharesOutstanding:    1e7,
		Sector:               "Technology",
		Industry:             "Software",
		CurrentSharePrice:    95.4,
		FetchedAt:            time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SetFundamentals(ctx, sampleRaw("ACME"), time.Hour))

	got, err := s.GetFundamentals(ctx, "ACME", model.SourceYahoo)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ACME", got.Ticker)
	assert.Equal(t, []float64{9e7, 1e8}, got.FreeCashFlowHistory)
	assert.Equal(t, 95.4, got.CurrentSharePrice)
}

func TestSQLiteStore_MissReturnsNil(t *testing.T) {
	s := newTestSQLite(t)

	got, err := s.GetFundamentals(context.Background(), "NOPE", model.SourceYahoo)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_SourceIsPartOfTheKey(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	raw := sampleRaw("ACME")
	require.NoError(t, s.SetFundamentals(ctx, raw, time.Hour))

	got, err := s.GetFundamentals(ctx, "ACME", model.SourceAlphaVantage)
	require.NoError(t, err)
	assert.Nil(t, got, "different source must be a cache miss")
}

func TestSQLiteStore_UpsertReplaces(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first := sampleRaw("ACME")
	require.NoError(t, s.SetFundamentals(ctx, first, time.Hour))

	second := sampleRaw("ACME")
	second.CurrentSharePrice = 101.5
	require.NoError(t, s.SetFundamentals(ctx, second, time.Hour))

	got, err := s.GetFundamentals(ctx, "ACME", model.SourceYahoo)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 101.5, got.CurrentSharePrice)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}

func TestSQLiteStore_ExpiredEntryIsAMiss(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SetFundamentals(ctx, sampleRaw("ACME"), -time.Minute))

	got, err := s.GetFundamentals(ctx, "ACME", model.SourceYahoo)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteStore_PurgeExpired(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SetFundamentals(ctx, sampleRaw("OLD"), -time.Minute))
	require.NoError(t, s.SetFundamentals(ctx, sampleRaw("FRESH"), time.Hour))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1, stats.Expired)

	removed, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	stats, err = s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, 0, stats.Expired)
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{Path: filepath.Join(t.TempDir(), "cache.db")})
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.(*SQLiteStore)
	assert.True(t, ok)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestConfig_TTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, Config{}.TTL())
	assert.Equal(t, 6*time.Hour, Config{TTLHours: 6}.TTL())
}
