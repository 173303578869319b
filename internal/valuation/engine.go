package valuation

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

// Engine runs the full valuation pipeline for one profile: scenario
// generation, segment decomposition, discounting, and market comparison.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	gen *Generator
}

// NewEngine creates an Engine with the given generator options.
func NewEngine(opts GeneratorOptions) *Engine {
	return &Engine{gen: NewGenerator(opts)}
}

// Valuate produces a ValuationReport covering every requested scenario.
// Any scenario failing aborts the whole ticker; the caller decides whether
// other tickers in a batch continue.
func (e *Engine) Valuate(profile *model.FinancialProfile) (*model.ValuationReport, error) {
	params, archetype, err := e.gen.Generate(profile)
	if err != nil {
		return nil, eris.Wrapf(err, "valuation: generate scenarios for %s", profile.Ticker)
	}

	scenarios := make(map[model.ScenarioName]model.ValuationResult, len(params))
	for _, p := range params {
		cashFlows := ProjectCashFlows(profile, p)

		result, err := Discount(profile, p, cashFlows)
		if err != nil {
			return nil, eris.Wrapf(err, "valuation: %s scenario %s", profile.Ticker, p.Name)
		}

		upside, err := UpsidePercent(result.IntrinsicValuePerShare, profile.CurrentSharePrice)
		if err != nil {
			return nil, eris.Wrapf(err, "valuation: %s scenario %s", profile.Ticker, p.Name)
		}
		result.UpsidePercent = upside

		scenarios[p.Name] = *result

		zap.L().Debug("valuation: scenario complete",
			zap.String("ticker", profile.Ticker),
			zap.String("scenario", string(p.Name)),
			zap.Float64("intrinsic_per_share", result.IntrinsicValuePerShare),
			zap.Float64("upside", upside),
		)
	}

	zap.L().Info("valuation: complete",
		zap.String("ticker", profile.Ticker),
		zap.String("archetype", string(archetype)),
		zap.Int("scenarios", len(scenarios)),
	)

	return &model.ValuationReport{
		Ticker:            profile.Ticker,
		CompanyName:       profile.CompanyName,
		Source:            profile.Source,
		Archetype:         string(archetype),
		CurrentSharePrice: profile.CurrentSharePrice,
		Scenarios:         scenarios,
	}, nil
}
