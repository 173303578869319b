package valuation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyArchetype(t *testing.T) {
	tests := []struct {
		name     string
		sector   string
		industry string
		want     Archetype
	}{
		{"software industry", "Technology", "Software—Infrastructure", ArchetypeHighGrowthTech},
		{"semiconductors", "Technology", "Semiconductors", ArchetypeHighGrowthTech},
		{"regional bank", "Financial Services", "Banks—Regional", ArchetypeFinancial},
		{"insurance", "Financial Services", "Insurance—Life", ArchetypeFinancial},
		{"oil and gas", "Energy", "Oil & Gas Integrated", ArchetypeCyclicalCommodity},
		{"beverages", "Consumer Defensive", "Beverages—Non-Alcoholic", ArchetypeConsumerDefensive},
		{"aerospace", "Industrials", "Aerospace & Defense", ArchetypeMatureIndustrial},
		{"sector fallback", "Basic Materials", "Specialty Widgets", ArchetypeCyclicalCommodity},
		{"no match", "Utilities", "Utilities—Regulated Electric", ArchetypeDefault},
		{"empty", "", "", ArchetypeDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyArchetype(tt.sector, tt.industry))
		})
	}
}

func TestClassifyArchetype_IndustryBeatsSector(t *testing.T) {
	// A bank operating inside a tech conglomerate sector string: the
	// industry keyword wins because it is checked first.
	got := ClassifyArchetype("Technology", "Banks—Diversified")
	assert.Equal(t, ArchetypeFinancial, got)
}

func TestParseArchetype(t *testing.T) {
	a, err := ParseArchetype("  High-Growth-Tech ")
	require.NoError(t, err)
	assert.Equal(t, ArchetypeHighGrowthTech, a)

	_, err = ParseArchetype("quantum-startup")
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestBaselineFor_UnknownFallsBackToDefault(t *testing.T) {
	b, err := BaselineFor(Archetype("made-up"))
	require.NoError(t, err)
	assert.Equal(t, baselines[ArchetypeDefault], b)
}

func TestLoadBaselineOverlay(t *testing.T) {
	saved := baselines[ArchetypeFinancial]
	t.Cleanup(func() { baselines[ArchetypeFinancial] = saved })

	path := filepath.Join(t.TempDir(), "archetypes.yaml")
	overlay := `financial:
  discount_rate: 0.11
  initial_growth_rate: 0.05
  terminal_growth_rate: 0.02
  growth_decay_years: 6
  ai_impact_adjustment: 0.01
`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o644))

	require.NoError(t, LoadBaselineOverlay(path))

	b, err := BaselineFor(ArchetypeFinancial)
	require.NoError(t, err)
	assert.Equal(t, 0.11, b.DiscountRate)
	assert.Equal(t, 6, b.GrowthDecayYears)
	assert.Equal(t, 0.01, b.AIImpactAdjustment)
}

func TestLoadBaselineOverlay_UnknownArchetypeRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archetypes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meme-stock:\n  discount_rate: 0.2\n"), 0o644))

	err := LoadBaselineOverlay(path)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestLoadBaselineOverlay_MissingFile(t *testing.T) {
	err := LoadBaselineOverlay(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
