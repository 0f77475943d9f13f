// Package config loads trailshed configuration from file and environment
// and wires the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Projection ProjectionConfig `yaml:"projection" mapstructure:"projection"`
	Buffer     BufferConfig     `yaml:"buffer" mapstructure:"buffer"`
	Census     CensusConfig     `yaml:"census" mapstructure:"census"`
	Income     IncomeConfig     `yaml:"income" mapstructure:"income"`
	Ledger     LedgerConfig     `yaml:"ledger" mapstructure:"ledger"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the PostGIS backend.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ProjectionConfig fixes the working planar coordinate system. Every area
// and intersection computation happens in this SRID; its units must be
// meters or the buffer radius and area ratios are meaningless.
type ProjectionConfig struct {
	SRID int `yaml:"srid" mapstructure:"srid"`
}

// BufferConfig configures trail buffer generation.
type BufferConfig struct {
	RadiusMeters float64 `yaml:"radius_m" mapstructure:"radius_m"`
	QuadSegments int     `yaml:"quad_segments" mapstructure:"quad_segments"`
}

// CensusConfig configures TIGER/Line block-group downloads.
type CensusConfig struct {
	Year        int      `yaml:"year" mapstructure:"year"`
	TempDir     string   `yaml:"temp_dir" mapstructure:"temp_dir"`
	States      []string `yaml:"states" mapstructure:"states"`
	Concurrency int      `yaml:"concurrency" mapstructure:"concurrency"`
	RatePerSec  float64  `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// IncomeConfig configures income table ingestion.
type IncomeConfig struct {
	SumTolerance int `yaml:"sum_tolerance" mapstructure:"sum_tolerance"`
}

// LedgerConfig configures the local SQLite run ledger.
type LedgerConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
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
	v.SetEnvPrefix("TRAILSHED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Every key needs one: AutomaticEnv only surfaces env vars
	// for keys viper already knows about.
	v.SetDefault("store.database_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	// EPSG:5070 — NAD83 / Conus Albers, an equal-area projection in meters.
	v.SetDefault("projection.srid", 5070)
	// Half a mile, the walkshed radius the corridor studies use.
	v.SetDefault("buffer.radius_m", 805.0)
	v.SetDefault("buffer.quad_segments", 8)
	v.SetDefault("census.year", 2024)
	v.SetDefault("census.temp_dir", "/tmp/trailshed")
	v.SetDefault("census.states", []string{})
	v.SetDefault("census.concurrency", 3)
	v.SetDefault("census.rate_per_sec", 2.0)
	v.SetDefault("income.sum_tolerance", 5)
	v.SetDefault("ledger.path", "trailshed_runs.db")

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
