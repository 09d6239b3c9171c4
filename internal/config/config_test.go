package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty backend", func(c *Config) { c.Backend = "" }, ErrInvalidBackend},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"zero dim", func(c *Config) { c.BenchDim = 0 }, ErrInvalidBenchDim},
		{"negative dim", func(c *Config) { c.BenchDim = -8 }, ErrInvalidBenchDim},
		{"zero workers", func(c *Config) { c.BenchWorkers = 0 }, ErrInvalidBenchWorkers},
		{"zero duration", func(c *Config) { c.BenchDuration = 0 }, ErrInvalidBenchDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

// TestConfigDefaults verifies envconfig defaults match DefaultConfig
func TestConfigDefaults(t *testing.T) {
	for _, k := range []string{"BACKEND", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR", "BENCH_DIM", "BENCH_DURATION", "BENCH_WORKERS"} {
		t.Setenv(Prefix+"_"+k, "")
		require.NoError(t, os.Unsetenv(Prefix+"_"+k))
	}

	var cfg Config
	require.NoError(t, envconfig.Process(Prefix, &cfg))
	assert.Equal(t, DefaultConfig(), cfg)
}

// TestConfigEnvVars verifies environment variable parsing
func TestConfigEnvVars(t *testing.T) {
	t.Setenv("HALFDIST_BACKEND", "f32x8")
	t.Setenv("HALFDIST_LOG_FORMAT", "json")
	t.Setenv("HALFDIST_METRICS_ADDR", "127.0.0.1:9090")
	t.Setenv("HALFDIST_BENCH_DIM", "1536")
	t.Setenv("HALFDIST_BENCH_DURATION", "500ms")
	t.Setenv("HALFDIST_BENCH_WORKERS", "4")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "f32x8", cfg.Backend)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "127.0.0.1:9090", cfg.MetricsAddr)
	assert.Equal(t, 1536, cfg.BenchDim)
	assert.Equal(t, 500*time.Millisecond, cfg.BenchDuration)
	assert.Equal(t, 4, cfg.BenchWorkers)
}

func TestLoadBadValue(t *testing.T) {
	t.Setenv("HALFDIST_BENCH_DIM", "wide")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	// Registered so t.Setenv restores it; godotenv only sets unset keys.
	t.Setenv("HALFDIST_BENCH_WORKERS", "")
	require.NoError(t, os.Unsetenv("HALFDIST_BENCH_WORKERS"))
	t.Setenv("HALFDIST_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HALFDIST_BENCH_WORKERS=3\nHALFDIST_LOG_LEVEL=debug\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.BenchWorkers)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
