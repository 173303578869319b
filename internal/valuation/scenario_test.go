package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intrinsiq/valuation-cli/internal/model"
)

func TestGenerate_DefaultScenarioTrio(t *testing.T) {
	profile := testProfile() // machinery → mature-industrial
	gen := NewGenerator(GeneratorOptions{})

	params, archetype, err := gen.Generate(profile)
	require.NoError(t, err)
	assert.Equal(t, ArchetypeMatureIndustrial, archetype)
	require.Len(t, params, 3)

	bull, base, bear := params[0], params[1], params[2]
	assert.Equal(t, model.ScenarioBull, bull.Name)
	assert.Equal(t, model.ScenarioBase, base.Name)
	assert.Equal(t, model.ScenarioBear, bear.Name)

	// Bull is more optimistic on both axes.
	assert.Greater(t, bull.InitialGrowthRate, base.InitialGrowthRate)
	assert.Greater(t, base.InitialGrowthRate, bear.InitialGrowthRate)
	assert.Less(t, bull.DiscountRate, base.DiscountRate)
	assert.Less(t, base.DiscountRate, bear.DiscountRate)

	// Base carries the archetype baseline untouched.
	baseline := baselines[ArchetypeMatureIndustrial]
	assert.InDelta(t, baseline.InitialGrowthRate, base.InitialGrowthRate, 1e-12)
	assert.InDelta(t, baseline.DiscountRate, base.DiscountRate, 1e-12)
	assert.Equal(t, baseline.GrowthDecayYears, base.GrowthDecayYears)
	assert.Equal(t, 5, base.ProjectionYears)
}

func TestGenerate_ArchetypeOverride(t *testing.T) {
	profile := testProfile()
	gen := NewGenerator(GeneratorOptions{ArchetypeOverride: "high-growth-tech"})

	_, archetype, err := gen.Generate(profile)
	require.NoError(t, err)
	assert.Equal(t, ArchetypeHighGrowthTech, archetype)
}

func TestGenerate_UnknownOverrideFails(t *testing.T) {
	gen := NewGenerator(GeneratorOptions{ArchetypeOverride: "moonshot"})

	_, _, err := gen.Generate(testProfile())
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestGenerate_AIImpactClamped(t *testing.T) {
	profile := testProfile()
	baseline := baselines[ArchetypeMatureIndustrial]

	tests := []struct {
		name   string
		impact float64
		want   float64
	}{
		{"above cap", 0.50, 0.10},
		{"below floor", -0.30, -0.05},
		{"in range", 0.03, 0.03},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			impact := tt.impact
			gen := NewGenerator(GeneratorOptions{
				AIImpact:    &impact,
				ScenarioSet: []model.ScenarioName{model.ScenarioBase},
			})

			params, _, err := gen.Generate(profile)
			require.NoError(t, err)
			require.Len(t, params, 1)
			assert.InDelta(t, tt.want, params[0].AIImpactAdjustment, 1e-12)
			assert.InDelta(t, baseline.InitialGrowthRate+tt.want, params[0].InitialGrowthRate, 1e-12)
		})
	}
}

func TestGenerate_MissingPerturbationEntryFails(t *testing.T) {
	gen := NewGenerator(GeneratorOptions{
		ScenarioSet: []model.ScenarioName{model.ScenarioBase, "stress"},
	})

	_, _, err := gen.Generate(testProfile())
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Contains(t, err.Error(), "stress")
}

func TestGenerate_TerminalGrowthClamped(t *testing.T) {
	profile := testProfile()
	gen := NewGenerator(GeneratorOptions{
		ScenarioSet: []model.ScenarioName{model.ScenarioBase},
		Perturbations: map[model.ScenarioName]Perturbation{
			// Push the discount rate below terminal growth.
			model.ScenarioBase: {DiscountDelta: -0.07},
		},
	})

	params, _, err := gen.Generate(profile)
	require.NoError(t, err)
	require.Len(t, params, 1)

	p := params[0]
	assert.True(t, p.Clamped)
	assert.Greater(t, p.DiscountRate, p.TerminalGrowthRate)
	assert.InDelta(t, p.DiscountRate-0.005, p.TerminalGrowthRate, 1e-12)
}

func TestGenerate_Deterministic(t *testing.T) {
	profile := testProfile()
	gen := NewGenerator(GeneratorOptions{})

	first, _, err := gen.Generate(profile)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, _, err := gen.Generate(profile)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGenerate_CustomProjectionYears(t *testing.T) {
	gen := NewGenerator(GeneratorOptions{ProjectionYears: 10})

	params, _, err := gen.Generate(testProfile())
	require.NoError(t, err)
	for _, p := range params {
		assert.Equal(t, 10, p.ProjectionYears)
	}
}
