// Package config loads application configuration from file and
// environment and initializes the global logger.
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
	Outscraper OutscraperConfig `yaml:"outscraper" mapstructure:"outscraper"`
	Yelp       YelpConfig       `yaml:"yelp" mapstructure:"yelp"`
	Refresh    RefreshConfig    `yaml:"refresh" mapstructure:"refresh"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver   string `yaml:"driver" mapstructure:"driver"` // "mongo" or "memory"
	URI      string `yaml:"uri" mapstructure:"uri"`
	Database string `yaml:"database" mapstructure:"database"`
}

// OutscraperConfig holds scrape API settings.
type OutscraperConfig struct {
	Key              string `yaml:"key" mapstructure:"key"`
	BaseURL          string `yaml:"base_url" mapstructure:"base_url"`
	PollIntervalSecs int    `yaml:"poll_interval_secs" mapstructure:"poll_interval_secs"`
	PollTimeoutSecs  int    `yaml:"poll_timeout_secs" mapstructure:"poll_timeout_secs"`
	PollMaxAttempts  int    `yaml:"poll_max_attempts" mapstructure:"poll_max_attempts"`
}

// YelpConfig holds Yelp Fusion API settings.
type YelpConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// RefreshConfig configures the area refresh scheduler.
type RefreshConfig struct {
	IntervalSecs       int    `yaml:"interval_secs" mapstructure:"interval_secs"`
	MaxConcurrentAreas int    `yaml:"max_concurrent_areas" mapstructure:"max_concurrent_areas"`
	Region             string `yaml:"region" mapstructure:"region"`
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
	v.SetEnvPrefix("PLACESYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "mongo")
	v.SetDefault("store.uri", "mongodb://localhost:27017")
	v.SetDefault("store.database", "changeofscenery")
	v.SetDefault("outscraper.base_url", "https://api.app.outscraper.com")
	v.SetDefault("outscraper.poll_interval_secs", 2)
	v.SetDefault("outscraper.poll_timeout_secs", 300)
	v.SetDefault("outscraper.poll_max_attempts", 30)
	v.SetDefault("yelp.base_url", "https://api.yelp.com/v3")
	v.SetDefault("refresh.interval_secs", 5)
	v.SetDefault("refresh.max_concurrent_areas", 1)
	v.SetDefault("refresh.region", "MA")
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
