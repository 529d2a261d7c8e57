// Package config loads wells configuration from an optional YAML file, an
// optional .env file and WELLS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/johnwards/wells/internal/blob"
	"github.com/johnwards/wells/internal/datagen"
	"github.com/johnwards/wells/internal/logging"
	"github.com/johnwards/wells/internal/lookup"
)

// Config holds application configuration.
type Config struct {
	DBPath string `yaml:"db" env:"WELLS_DB"`

	// MetricsFile receives Prometheus text-format generation metrics when set.
	MetricsFile string `yaml:"metrics_file" env:"WELLS_METRICS_FILE"`

	Log        LogConfig      `yaml:"log"`
	Generation datagen.Config `yaml:"generation"`
	Lookup     lookup.Config  `yaml:"lookup"`
	S3         blob.S3Config  `yaml:"s3"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level" env:"WELLS_LOG_LEVEL"`
	Format string `yaml:"format" env:"WELLS_LOG_FORMAT"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		DBPath:     "wells.db",
		Log:        LogConfig{Level: "info", Format: logging.FormatConsole},
		Generation: datagen.DefaultConfig(),
		Lookup:     lookup.DefaultConfig(),
		S3:         blob.S3Config{Region: "us-east-1"},
	}
}

// Load reads configuration on top of Default. envFile is loaded into the
// environment first; a missing file is ignored. When path is empty only the
// environment is read. Environment variables override YAML values. Keys set
// in neither keep their default, and an explicit zero is kept as zero.
func Load(path, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := Default()
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db must not be empty"))
	}
	if err := c.Generation.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := lookup.ValidateBackend(c.Lookup.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	switch c.Log.Format {
	case logging.FormatJSON, logging.FormatConsole:
	default:
		errs = append(errs, fmt.Errorf("log format %q must be %s or %s",
			c.Log.Format, logging.FormatJSON, logging.FormatConsole))
	}
	return errors.Join(errs...)
}
