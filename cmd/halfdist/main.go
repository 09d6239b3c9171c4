package main

import (
	"net/http"
	"os"

	"github.com/23skdu/halfdist"
	"github.com/23skdu/halfdist/internal/config"
	"github.com/23skdu/halfdist/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries what every subcommand needs after the root pre-run.
type app struct {
	cfg    config.Config
	logger zerolog.Logger

	envFile   string
	backend   string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.DiscardLogger()}

	root := &cobra.Command{
		Use:   "halfdist",
		Short: "Half-precision vector distance kernels",
		Long: `halfdist computes squared Euclidean distance, inner product and cosine
similarity between float16 vectors, and benchmarks the available kernel
implementations on this CPU.

Settings are read from HALFDIST_* environment variables (and an optional
.env file); flags override them.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	root.PersistentFlags().StringVar(&a.backend, "backend", "", "kernel implementation (auto, generic, f32x4, f32x8, f32x16, vek)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format (json, console)")

	root.AddCommand(
		newInfoCmd(a),
		newCompareCmd(a),
		newBenchCmd(a),
		newGenCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides, builds the logger and
// selects the kernel implementation.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.Backend = a.backend
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Config{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		Output:    cmd.ErrOrStderr(),
		Component: "halfdist",
	})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	halfdist.SetLogger(logger)

	if err := halfdist.SetImplementation(cfg.Backend); err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info().Str("address", cfg.MetricsAddr).Msg("Starting metrics server")
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error().Err(err).Msg("Failed to start metrics server")
			}
		}()
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
