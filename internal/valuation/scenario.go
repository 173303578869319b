package valuation

import (
	"go.uber.org/zap"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

const (
	// terminalEpsilon is the margin kept between discount rate and terminal
	// growth when clamping, so the Gordon formula stays finite.
	terminalEpsilon = 0.005

	defaultProjectionYears = 5

	// Bounds for the AI-impact adjustment applied to initial growth.
	aiImpactMin = -0.05
	aiImpactMax = 0.10
)

// Perturbation shifts the archetype baseline for one scenario. Deltas are
// additive: bull raises growth and lowers the discount rate, bear inverts.
type Perturbation struct {
	GrowthDelta   float64 `yaml:"growth_delta" mapstructure:"growth_delta"`
	DiscountDelta float64 `yaml:"discount_delta" mapstructure:"discount_delta"`
}

// DefaultPerturbations returns the standard bull/base/bear perturbation
// table. Magnitudes are deliberately configuration-driven; these are the
// documented defaults.
func DefaultPerturbations() map[model.ScenarioName]Perturbation {
	return map[model.ScenarioName]Perturbation{
		model.ScenarioBull: {GrowthDelta: 0.04, DiscountDelta: -0.01},
		model.ScenarioBase: {},
		model.ScenarioBear: {GrowthDelta: -0.04, DiscountDelta: 0.01},
	}
}

// GeneratorOptions is the configuration surface of the scenario generator.
// Zero values select the documented defaults.
type GeneratorOptions struct {
	// ArchetypeOverride forces a specific archetype instead of classifying
	// from sector/industry. Empty means classify.
	ArchetypeOverride string

	// ProjectionYears is the explicit projection horizon (default 5).
	ProjectionYears int

	// ScenarioSet lists the scenarios to generate (default bull/base/bear).
	ScenarioSet []model.ScenarioName

	// AIImpact overrides the archetype's default AI-impact adjustment.
	// It is clamped into [aiImpactMin, aiImpactMax].
	AIImpact *float64

	// Perturbations overrides the default per-scenario perturbation table.
	// Every scenario in ScenarioSet must have an entry.
	Perturbations map[model.ScenarioName]Perturbation
}

// Generator derives scenario parameter bundles from a financial profile.
type Generator struct {
	opts GeneratorOptions
}

// NewGenerator creates a Generator, filling in defaults for unset options.
func NewGenerator(opts GeneratorOptions) *Generator {
	if opts.ProjectionYears <= 0 {
		opts.ProjectionYears = defaultProjectionYears
	}
	if len(opts.ScenarioSet) == 0 {
		opts.ScenarioSet = model.DefaultScenarioSet()
	}
	if opts.Perturbations == nil {
		opts.Perturbations = DefaultPerturbations()
	}
	return &Generator{opts: opts}
}

// Generate produces one ScenarioParameters record per requested scenario,
// plus the archetype that was selected. The same profile and options always
// produce identical output.
func (g *Generator) Generate(profile *model.FinancialProfile) ([]model.ScenarioParameters, Archetype, error) {
	archetype, err := g.resolveArchetype(profile)
	if err != nil {
		return nil, "", err
	}

	baseline, err := BaselineFor(archetype)
	if err != nil {
		return nil, "", err
	}

	aiImpact := clamp(baseline.AIImpactAdjustment, aiImpactMin, aiImpactMax)
	if g.opts.AIImpact != nil {
		aiImpact = clamp(*g.opts.AIImpact, aiImpactMin, aiImpactMax)
	}

	params := make([]model.ScenarioParameters, 0, len(g.opts.ScenarioSet))
	for _, name := range g.opts.ScenarioSet {
		pert, ok := g.opts.Perturbations[name]
		if !ok {
			return nil, "", NewConfigError("scenario %q has no perturbation entry", name)
		}

		p := model.ScenarioParameters{
			Name:               name,
			InitialGrowthRate:  baseline.InitialGrowthRate + pert.GrowthDelta + aiImpact,
			TerminalGrowthRate: baseline.TerminalGrowthRate,
			GrowthDecayYears:   baseline.GrowthDecayYears,
			DiscountRate:       baseline.DiscountRate + pert.DiscountDelta,
			ProjectionYears:    g.opts.ProjectionYears,
			AIImpactAdjustment: aiImpact,
		}

		// Keep the Gordon denominator positive: clamp terminal growth
		// below the discount rate and flag the scenario.
		if p.DiscountRate <= p.TerminalGrowthRate {
			p.TerminalGrowthRate = p.DiscountRate - terminalEpsilon
			p.Clamped = true
			zap.L().Warn("scenario: terminal growth clamped",
				zap.String("ticker", profile.Ticker),
				zap.String("scenario", string(name)),
				zap.Float64("discount_rate", p.DiscountRate),
				zap.Float64("terminal_growth_rate", p.TerminalGrowthRate),
			)
		}

		params = append(params, p)
	}

	return params, archetype, nil
}

func (g *Generator) resolveArchetype(profile *model.FinancialProfile) (Archetype, error) {
	if g.opts.ArchetypeOverride != "" {
		return ParseArchetype(g.opts.ArchetypeOverride)
	}
	return ClassifyArchetype(profile.Sector, profile.Industry), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
