package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/intrinsiq/valuation-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	AlphaVantage AlphaVantageConfig `yaml:"alphavantage" mapstructure:"alphavantage"`
	Yahoo        YahooConfig        `yaml:"yahoo" mapstructure:"yahoo"`
	Cache        store.Config       `yaml:"cache" mapstructure:"cache"`
	Valuation    ValuationConfig    `yaml:"valuation" mapstructure:"valuation"`
	Batch        BatchConfig        `yaml:"batch" mapstructure:"batch"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// AlphaVantageConfig holds Alpha Vantage API settings.
type AlphaVantageConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// YahooConfig holds Yahoo Finance settings.
type YahooConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PerturbationConfig shifts a scenario away from the archetype baseline.
type PerturbationConfig struct {
	GrowthDelta   float64 `yaml:"growth_delta" mapstructure:"growth_delta"`
	DiscountDelta float64 `yaml:"discount_delta" mapstructure:"discount_delta"`
}

// ValuationConfig is the configuration surface of the scenario generator.
type ValuationConfig struct {
	ProjectionYears    int                           `yaml:"projection_years" mapstructure:"projection_years"`
	ScenarioSet        []string                      `yaml:"scenario_set" mapstructure:"scenario_set"`
	ArchetypeOverride  string                        `yaml:"archetype_override" mapstructure:"archetype_override"`
	AIImpact           *float64                      `yaml:"ai_impact" mapstructure:"ai_impact"`
	ArchetypeTablePath string                        `yaml:"archetype_table_path" mapstructure:"archetype_table_path"`
	Perturbations      map[string]PerturbationConfig `yaml:"perturbations" mapstructure:"perturbations"`
}

// BatchConfig configures batch analysis.
type BatchConfig struct {
	MaxConcurrentTickers int `yaml:"max_concurrent_tickers" mapstructure:"max_concurrent_tickers"`
}

// ServerConfig configures the valuation server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VALUATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so AutomaticEnv can see the keys.
	v.SetDefault("alphavantage.key", "")
	v.SetDefault("alphavantage.base_url", "https://www.alphavantage.co")
	v.SetDefault("cache.database_url", "")
	v.SetDefault("yahoo.base_url", "https://query2.finance.yahoo.com")
	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.path", "valuation-cache.db")
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("valuation.projection_years", 5)
	v.SetDefault("valuation.scenario_set", []string{"bull", "base", "bear"})
	v.SetDefault("batch.max_concurrent_tickers", 4)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
