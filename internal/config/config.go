// Package config loads application configuration and initializes logging.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Synonyms SynonymsConfig `yaml:"synonyms" mapstructure:"synonyms"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SourcesConfig names the two registry endpoints.
type SourcesConfig struct {
	SpeciesURL     string `yaml:"species_url" mapstructure:"species_url"`
	AssessmentsURL string `yaml:"assessments_url" mapstructure:"assessments_url"`
	UserAgent      string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs    int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries     int    `yaml:"max_retries" mapstructure:"max_retries"`
}

// Timeout returns the configured fetch timeout as a duration.
func (s SourcesConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSecs) * time.Second
}

// SynonymsConfig points at an optional synonym table override file.
type SynonymsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// StoreConfig configures the snapshot cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RefreshSecs int      `yaml:"refresh_secs" mapstructure:"refresh_secs"`
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
	v.SetEnvPrefix("FISHSTOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.species_url", "https://api.safmc-dashboard.org/api/species")
	v.SetDefault("sources.assessments_url", "https://api.safmc-dashboard.org/api/assessments")
	v.SetDefault("sources.user_agent", "fishstock/1.0")
	v.SetDefault("sources.timeout_secs", 30)
	v.SetDefault("sources.max_retries", 3)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "fishstock.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.refresh_secs", 300)
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
