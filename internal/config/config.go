// Package config loads halfdist settings from the environment.
package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "HALFDIST"

// Config validation errors
var (
	ErrInvalidBackend       = errors.New("backend cannot be empty")
	ErrInvalidLogFormat     = errors.New("log_format must be 'json' or 'console'")
	ErrInvalidLogLevel      = errors.New("log_level must be debug, info, warn, or error")
	ErrInvalidBenchDim      = errors.New("bench_dim must be positive")
	ErrInvalidBenchWorkers  = errors.New("bench_workers must be positive")
	ErrInvalidBenchDuration = errors.New("bench_duration must be positive")
)

// Config holds runtime settings. Field names map to HALFDIST_<NAME>.
type Config struct {
	// Backend forces a kernel implementation; "auto" picks one from the CPU.
	Backend   string `envconfig:"BACKEND" default:"auto"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`
	// MetricsAddr serves /metrics when non-empty.
	MetricsAddr string `envconfig:"METRICS_ADDR" default:""`

	BenchDim      int           `envconfig:"BENCH_DIM" default:"768"`
	BenchDuration time.Duration `envconfig:"BENCH_DURATION" default:"2s"`
	BenchWorkers  int           `envconfig:"BENCH_WORKERS" default:"1"`
}

// DefaultConfig returns the values used when no variable is set.
func DefaultConfig() Config {
	return Config{
		Backend:       "auto",
		LogLevel:      "info",
		LogFormat:     "console",
		BenchDim:      768,
		BenchDuration: 2 * time.Second,
		BenchWorkers:  1,
	}
}

// Load reads envFile (if it exists) into the environment, then processes
// HALFDIST_* variables. Variables already set take precedence over the file.
// An empty envFile skips the file step.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate returns the first invalid setting as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.Backend == "" {
		return ErrInvalidBackend
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return ErrInvalidLogFormat
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warn" && c.LogLevel != "error" {
		return ErrInvalidLogLevel
	}
	if c.BenchDim <= 0 {
		return ErrInvalidBenchDim
	}
	if c.BenchWorkers <= 0 {
		return ErrInvalidBenchWorkers
	}
	if c.BenchDuration <= 0 {
		return ErrInvalidBenchDuration
	}
	return nil
}
