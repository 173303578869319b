package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chtmp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chtmp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.alphavantage.co", cfg.AlphaVantage.BaseURL)
	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, 24, cfg.Cache.TTLHours)
	assert.Equal(t, 5, cfg.Valuation.ProjectionYears)
	assert.Equal(t, []string{"bull", "base", "bear"}, cfg.Valuation.ScenarioSet)
	assert.Nil(t, cfg.Valuation.AIImpact)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentTickers)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	chtmp(t)
	t.Setenv("VALUATION_ALPHAVANTAGE_KEY", "secret")
	t.Setenv("VALUATION_CACHE_TTL_HOURS", "6")
	t.Setenv("VALUATION_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.AlphaVantage.Key)
	assert.Equal(t, 6, cfg.Cache.TTLHours)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chtmp(t)

	body := `valuation:
  projection_years: 10
  archetype_override: high-growth-tech
  ai_impact: 0.04
  perturbations:
    bull:
      growth_delta: 0.06
      discount_delta: -0.015
cache:
  driver: postgres
  database_url: postgres://localhost/valuation
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Valuation.ProjectionYears)
	assert.Equal(t, "high-growth-tech", cfg.Valuation.ArchetypeOverride)
	require.NotNil(t, cfg.Valuation.AIImpact)
	assert.Equal(t, 0.04, *cfg.Valuation.AIImpact)
	require.Contains(t, cfg.Valuation.Perturbations, "bull")
	assert.Equal(t, 0.06, cfg.Valuation.Perturbations["bull"].GrowthDelta)
	assert.Equal(t, "postgres", cfg.Cache.Driver)
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	dir := chtmp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("::::"), 0o644))

	_, err := Load()
	require.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "shouty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
