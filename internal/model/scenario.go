package model

// ScenarioName identifies one of the named valuation scenarios.
type ScenarioName string

const (
	ScenarioBull ScenarioName = "bull"
	ScenarioBase ScenarioName = "base"
	ScenarioBear ScenarioName = "bear"
)

// DefaultScenarioSet is the standard bull/base/bear trio, ordered from most
// to least optimistic.
func DefaultScenarioSet() []ScenarioName {
	return []ScenarioName{ScenarioBull, ScenarioBase, ScenarioBear}
}

// ScenarioParameters is a complete assumption bundle for one scenario.
// Derived deterministically from the profile and archetype; never persisted.
type ScenarioParameters struct {
	Name                ScenarioName `json:"name"`
	InitialGrowthRate   float64      `json:"initial_growth_rate"`
	TerminalGrowthRate  float64      `json:"terminal_growth_rate"`
	GrowthDecayYears    int          `json:"growth_decay_years"`
	DiscountRate        float64      `json:"discount_rate"` // WACC; must exceed TerminalGrowthRate
	ProjectionYears     int          `json:"projection_years"`
	AIImpactAdjustment  float64      `json:"ai_impact_adjustment"`
	Clamped             bool         `json:"clamped,omitempty"` // terminal growth was clamped to keep the Gordon formula finite
}

// ValuationResult is the output of the engine for a single scenario.
type ValuationResult struct {
	ScenarioName           ScenarioName       `json:"scenario_name"`
	Parameters             ScenarioParameters `json:"parameters"`
	ProjectedFreeCashFlows []float64          `json:"projected_free_cash_flows"`
	TerminalValue          float64            `json:"terminal_value"`
	EnterpriseValue        float64            `json:"enterprise_value"`
	EquityValue            float64            `json:"equity_value"`
	IntrinsicValuePerShare float64            `json:"intrinsic_value_per_share"`
	UpsidePercent          float64            `json:"upside_percent"`
}

// ValuationReport maps scenario name to result for one ticker.
type ValuationReport struct {
	Ticker            string                           `json:"ticker"`
	CompanyName       string                           `json:"company_name,omitempty"`
	Source            DataSource                       `json:"source"`
	Archetype         string                           `json:"archetype"`
	CurrentSharePrice float64                          `json:"current_share_price"`
	Scenarios         map[ScenarioName]ValuationResult `json:"scenarios"`
}
