// Package valuation implements the multi-scenario DCF engine: archetype
// baselines, scenario parameter generation, segment decomposition, the
// discounting core, and the market-price comparator.
package valuation

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Archetype classifies a company into a parameter regime. The set is closed
// at compile time; baselines are extensible via a YAML overlay file.
type Archetype string

const (
	ArchetypeHighGrowthTech    Archetype = "high-growth-tech"
	ArchetypeMatureIndustrial  Archetype = "mature-industrial"
	ArchetypeCyclicalCommodity Archetype = "cyclical-commodity"
	ArchetypeFinancial         Archetype = "financial"
	ArchetypeConsumerDefensive Archetype = "consumer-defensive"
	ArchetypeDefault           Archetype = "default"
)

// Baseline holds the archetype-specific starting parameters the scenario
// generator perturbs.
type Baseline struct {
	DiscountRate       float64 `yaml:"discount_rate"`
	InitialGrowthRate  float64 `yaml:"initial_growth_rate"`
	TerminalGrowthRate float64 `yaml:"terminal_growth_rate"`
	GrowthDecayYears   int     `yaml:"growth_decay_years"`
	AIImpactAdjustment float64 `yaml:"ai_impact_adjustment"`
}

// baselines is the static lookup table keyed by archetype. The "default"
// entry is the documented fallback for companies no rule matches.
var baselines = map[Archetype]Baseline{
	ArchetypeHighGrowthTech:    {DiscountRate: 0.095, InitialGrowthRate: 0.18, TerminalGrowthRate: 0.03, GrowthDecayYears: 8, AIImpactAdjustment: 0.02},
	ArchetypeMatureIndustrial:  {DiscountRate: 0.085, InitialGrowthRate: 0.07, TerminalGrowthRate: 0.025, GrowthDecayYears: 5, AIImpactAdjustment: 0},
	ArchetypeCyclicalCommodity: {DiscountRate: 0.105, InitialGrowthRate: 0.05, TerminalGrowthRate: 0.02, GrowthDecayYears: 4, AIImpactAdjustment: -0.01},
	ArchetypeFinancial:         {DiscountRate: 0.09, InitialGrowthRate: 0.06, TerminalGrowthRate: 0.025, GrowthDecayYears: 5, AIImpactAdjustment: 0},
	ArchetypeConsumerDefensive: {DiscountRate: 0.08, InitialGrowthRate: 0.055, TerminalGrowthRate: 0.025, GrowthDecayYears: 5, AIImpactAdjustment: 0},
	ArchetypeDefault:           {DiscountRate: 0.09, InitialGrowthRate: 0.08, TerminalGrowthRate: 0.025, GrowthDecayYears: 5, AIImpactAdjustment: 0},
}

// archetypeRule maps sector/industry keywords to an archetype. Rules are
// evaluated in order; first match wins.
type archetypeRule struct {
	keywords  []string
	archetype Archetype
}

var archetypeRules = []archetypeRule{
	{[]string{"software", "semiconductor", "internet", "information technology", "biotech"}, ArchetypeHighGrowthTech},
	{[]string{"bank", "insurance", "financial", "capital markets", "asset management"}, ArchetypeFinancial},
	{[]string{"oil", "gas", "mining", "metals", "energy", "basic materials", "chemicals"}, ArchetypeCyclicalCommodity},
	{[]string{"consumer defensive", "consumer staples", "beverages", "food", "household"}, ArchetypeConsumerDefensive},
	{[]string{"industrial", "manufacturing", "machinery", "aerospace", "transportation"}, ArchetypeMatureIndustrial},
}

// ClassifyArchetype derives an archetype from sector and industry strings.
// Matching is case-insensitive substring over industry first (more specific),
// then sector. Unmatched companies fall back to ArchetypeDefault.
func ClassifyArchetype(sector, industry string) Archetype {
	industry = strings.ToLower(industry)
	sector = strings.ToLower(sector)

	for _, rule := range archetypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(industry, kw) {
				return rule.archetype
			}
		}
	}
	for _, rule := range archetypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(sector, kw) {
				return rule.archetype
			}
		}
	}
	return ArchetypeDefault
}

// ParseArchetype validates an archetype override string from configuration.
func ParseArchetype(s string) (Archetype, error) {
	a := Archetype(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := baselines[a]; !ok {
		return "", NewConfigError("unrecognized archetype %q", s)
	}
	return a, nil
}

// BaselineFor returns the baseline parameters for the archetype, falling
// back to the default entry when the archetype has no table row.
func BaselineFor(a Archetype) (Baseline, error) {
	if b, ok := baselines[a]; ok {
		return b, nil
	}
	if b, ok := baselines[ArchetypeDefault]; ok {
		return b, nil
	}
	return Baseline{}, NewConfigError("archetype %q not in baseline table and no default configured", a)
}

// LoadBaselineOverlay merges archetype baselines from a YAML file over the
// built-in table. Only archetypes already in the closed set may be
// overridden; unknown keys are a configuration error.
func LoadBaselineOverlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "archetype: read overlay %s", path)
	}

	var overlay map[string]Baseline
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return eris.Wrapf(err, "archetype: parse overlay %s", path)
	}

	for name, b := range overlay {
		a := Archetype(name)
		if _, ok := baselines[a]; !ok {
			return NewConfigError("archetype overlay: unknown archetype %q", name)
		}
		baselines[a] = b
	}
	return nil
}
