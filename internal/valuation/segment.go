package valuation

import (
	"sort"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

// GrowthPath returns the per-year growth rates for a projection of `years`
// years, decaying linearly from `initial` to `terminal` over `decayYears`.
// With decayYears == 0 the initial rate holds for the whole projection.
func GrowthPath(initial, terminal float64, decayYears, years int) []float64 {
	path := make([]float64, years)
	for t := 1; t <= years; t++ {
		if decayYears <= 0 {
			path[t-1] = initial
			continue
		}
		frac := float64(t) / float64(decayYears)
		if frac > 1 {
			frac = 1
		}
		path[t-1] = initial + (terminal-initial)*frac
	}
	return path
}

// ProjectCashFlows produces the consolidated per-year free-cash-flow
// projection for one scenario. When the profile carries segments, each
// segment's share of the latest FCF is grown on its own path (the segment's
// growth rate as the initial rate, decaying to the scenario's terminal rate
// on the scenario's schedule) and the per-year results are recombined.
// Without segments this is the plain blended projection.
func ProjectCashFlows(profile *model.FinancialProfile, params model.ScenarioParameters) []float64 {
	baseFCF := profile.LatestFreeCashFlow()

	if !profile.HasSegments() {
		return projectSingle(baseFCF, params.InitialGrowthRate, params)
	}

	// Deterministic segment order: map iteration order must not leak into
	// floating-point accumulation.
	names := make([]string, 0, len(profile.Segments))
	for name := range profile.Segments {
		names = append(names, name)
	}
	sort.Strings(names)

	consolidated := make([]float64, params.ProjectionYears)
	for _, name := range names {
		seg := profile.Segments[name]
		segFlows := projectSingle(baseFCF*seg.RevenueShare, seg.GrowthRate, params)
		for t := range consolidated {
			consolidated[t] += segFlows[t]
		}
	}
	return consolidated
}

// projectSingle grows baseFCF year by year along the decay path that starts
// at initialGrowth and settles at the scenario's terminal rate.
func projectSingle(baseFCF, initialGrowth float64, params model.ScenarioParameters) []float64 {
	path := GrowthPath(initialGrowth, params.TerminalGrowthRate, params.GrowthDecayYears, params.ProjectionYears)
	flows := make([]float64, params.ProjectionYears)
	cf := baseFCF
	for t := range flows {
		cf *= 1 + path[t]
		flows[t] = cf
	}
	return flows
}
