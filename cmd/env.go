package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/intrinsiq/valuation-cli/internal/model"
	"github.com/intrinsiq/valuation-cli/internal/retrieve"
	"github.com/intrinsiq/valuation-cli/internal/store"
	"github.com/intrinsiq/valuation-cli/internal/valuation"
	"github.com/intrinsiq/valuation-cli/pkg/alphavantage"
	"github.com/intrinsiq/valuation-cli/pkg/yahoo"
)

// valuationEnv holds the initialized store, retriever, and engine shared by
// the analyze/export/serve commands.
type valuationEnv struct {
	Store     store.Store
	Retriever *retrieve.Retriever
	Engine    *valuation.Engine
}

// Close releases resources held by the environment.
func (ve *valuationEnv) Close() {
	if ve.Store != nil {
		_ = ve.Store.Close()
	}
}

// initEnv opens the cache store, builds provider clients, and assembles the
// retriever and engine. Callers should defer env.Close().
func initEnv(ctx context.Context, skipCache bool) (*valuationEnv, error) {
	st, err := store.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, eris.Wrap(err, "open cache store")
	}

	var avClient alphavantage.Client
	if cfg.AlphaVantage.Key != "" {
		avOpts := []alphavantage.Option{}
		if cfg.AlphaVantage.BaseURL != "" {
			avOpts = append(avOpts, alphavantage.WithBaseURL(cfg.AlphaVantage.BaseURL))
		}
		avClient = alphavantage.NewClient(cfg.AlphaVantage.Key, avOpts...)
	} else {
		zap.L().Debug("VALUATION_ALPHAVANTAGE_KEY not set, alphavantage source disabled")
	}

	yhOpts := []yahoo.Option{}
	if cfg.Yahoo.BaseURL != "" {
		yhOpts = append(yhOpts, yahoo.WithBaseURL(cfg.Yahoo.BaseURL))
	}
	yhClient := yahoo.NewClient(yhOpts...)

	if cfg.Valuation.ArchetypeTablePath != "" {
		if err := valuation.LoadBaselineOverlay(cfg.Valuation.ArchetypeTablePath); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load archetype table")
		}
		zap.L().Info("archetype baseline overlay loaded",
			zap.String("path", cfg.Valuation.ArchetypeTablePath),
		)
	}

	retriever := retrieve.New(st, avClient, yhClient, retrieve.Options{
		SkipCache: skipCache,
		TTL:       cfg.Cache.TTL(),
	})

	engine := valuation.NewEngine(engineOptions())

	return &valuationEnv{
		Store:     st,
		Retriever: retriever,
		Engine:    engine,
	}, nil
}

// engineOptions maps the valuation config section onto generator options.
func engineOptions() valuation.GeneratorOptions {
	opts := valuation.GeneratorOptions{
		ArchetypeOverride: cfg.Valuation.ArchetypeOverride,
		ProjectionYears:   cfg.Valuation.ProjectionYears,
		AIImpact:          cfg.Valuation.AIImpact,
	}

	for _, s := range cfg.Valuation.ScenarioSet {
		opts.ScenarioSet = append(opts.ScenarioSet, model.ScenarioName(s))
	}

	if len(cfg.Valuation.Perturbations) > 0 {
		opts.Perturbations = valuation.DefaultPerturbations()
		for name, p := range cfg.Valuation.Perturbations {
			opts.Perturbations[model.ScenarioName(name)] = valuation.Perturbation{
				GrowthDelta:   p.GrowthDelta,
				DiscountDelta: p.DiscountDelta,
			}
		}
	}

	return opts
}
