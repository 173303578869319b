// Package retrieve resolves a ticker to a validated FinancialProfile:
// cache first, provider fetch on miss or staleness, normalization last.
// All blocking I/O lives here, before the valuation core is invoked.
package retrieve

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/intrinsiq/valuation-cli/internal/model"
	"github.com/intrinsiq/valuation-cli/internal/normalize"
	"github.com/intrinsiq/valuation-cli/internal/store"
	"github.com/intrinsiq/valuation-cli/pkg/alphavantage"
	"github.com/intrinsiq/valuation-cli/pkg/yahoo"
)

// Options configures a Retriever.
type Options struct {
	// SkipCache forces a provider fetch even when a fresh entry exists.
	SkipCache bool
	// TTL is the freshness window written on fetched records.
	TTL time.Duration
}

// Retriever fetches, caches, and normalizes fundamentals.
type Retriever struct {
	store store.Store
	av    alphavantage.Client
	yh    yahoo.Client
	opts  Options
}

// New creates a Retriever. Either provider client may be nil if that data
// source is not configured; requesting it then fails.
func New(s store.Store, av alphavantage.Client, yh yahoo.Client, opts Options) *Retriever {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Retriever{store: s, av: av, yh: yh, opts: opts}
}

// ParseSource validates a data source name from flags or config.
func ParseSource(s string) (model.DataSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(model.SourceYahoo):
		return model.SourceYahoo, nil
	case string(model.SourceAlphaVantage), "alpha_vantage", "av":
		return model.SourceAlphaVantage, nil
	default:
		return "", eris.Errorf("retrieve: unknown data source %q", s)
	}
}

// Profile resolves a ticker to a validated FinancialProfile from the given
// data source.
func (r *Retriever) Profile(ctx context.Context, ticker string, source model.DataSource) (*model.FinancialProfile, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, eris.New("retrieve: ticker is required")
	}

	raw, err := r.rawFundamentals(ctx, ticker, source)
	if err != nil {
		return nil, err
	}

	profile, err := normalize.Build(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "retrieve: normalize %s", ticker)
	}
	return profile, nil
}

func (r *Retriever) rawFundamentals(ctx context.Context, ticker string, source model.DataSource) (*model.RawFundamentals, error) {
	if !r.opts.SkipCache && r.store != nil {
		cached, err := r.store.GetFundamentals(ctx, ticker, source)
		if err != nil {
			return nil, eris.Wrapf(err, "retrieve: cache lookup %s", ticker)
		}
		if cached != nil {
			zap.L().Debug("retrieve: cache hit",
				zap.String("ticker", ticker),
				zap.String("source", string(source)),
				zap.Time("fetched_at", cached.FetchedAt),
			)
			return cached, nil
		}
	}

	raw, err := r.fetch(ctx, ticker, source)
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.store.SetFundamentals(ctx, raw, r.opts.TTL); err != nil {
			// A cache write failure should not fail the analysis.
			zap.L().Warn("retrieve: cache write failed",
				zap.String("ticker", ticker),
				zap.Error(err),
			)
		}
	}
	return raw, nil
}

func (r *Retriever) fetch(ctx context.Context, ticker string, source model.DataSource) (*model.RawFundamentals, error) {
	zap.L().Info("retrieve: fetching fundamentals",
		zap.String("ticker", ticker),
		zap.String("source", string(source)),
	)

	switch source {
	case model.SourceAlphaVantage:
		return r.fetchAlphaVantage(ctx, ticker)
	case model.SourceYahoo:
		return r.fetchYahoo(ctx, ticker)
	default:
		return nil, eris.Errorf("retrieve: unknown data source %q", source)
	}
}

func (r *Retriever) fetchAlphaVantage(ctx context.Context, ticker string) (*model.RawFundamentals, error) {
	if r.av == nil {
		return nil, eris.New("retrieve: alpha vantage is not configured (missing API key)")
	}

	ov, err := r.av.Overview(ctx, ticker)
	if err != nil {
		return nil, eris.Wrapf(err, "retrieve: %s overview", ticker)
	}
	cf, err := r.av.CashFlow(ctx, ticker)
	if err != nil {
		return nil, eris.Wrapf(err, "retrieve: %s cash flow", ticker)
	}
	bs, err := r.av.BalanceSheet(ctx, ticker)
	if err != nil {
		return nil, eris.Wrapf(err, "retrieve: %s balance sheet", ticker)
	}
	quote, err := r.av.Quote(ctx, ticker)
	if err != nil {
		return nil, eris.Wrapf(err, "retrieve: %s quote", ticker)
	}

	return normalize.FromAlphaVantage(ticker, ov, cf, bs, quote)
}

func (r *Retriever) fetchYahoo(ctx context.Context, ticker string) (*model.RawFundamentals, error) {
	if r.yh == nil {
		return nil, eris.New("retrieve: yahoo finance is not configured")
	}

	qs, err := r.yh.QuoteSummary(ctx, ticker)
	if err != nil {
		return nil, eris.Wrapf(err, "retrieve: %s quote summary", ticker)
	}
	return normalize.FromYahoo(ticker, qs)
}
