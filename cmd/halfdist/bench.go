package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sync/atomic"
	"text/tabwriter"
	"time"

	herrors "github.com/23skdu/halfdist/internal/errors"
	"github.com/23skdu/halfdist/internal/half"
	"github.com/23skdu/halfdist/internal/metrics"
	"github.com/23skdu/halfdist/internal/simd"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// benchBatch is the number of kernel calls timed together.
const benchBatch = 256

type benchOptions struct {
	dim      int
	duration time.Duration
	workers  int
	seed     int64
	backends []string
	// maxDrift fails the run when any result drifts further from generic;
	// zero disables the check.
	maxDrift float64
}

type benchResult struct {
	Backend string
	Metric  simd.MetricType
	Ops     int64
	NsPerOp float64
	// Drift is the relative difference from the generic backend on the
	// benchmark vectors.
	Drift float64
}

func newBenchCmd(a *app) *cobra.Command {
	opts := &benchOptions{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark every kernel implementation",
		Long: `Run each implementation of each metric on random vectors for a fixed
duration and report throughput and drift from the generic implementation.
Dimension, duration and worker count default to HALFDIST_BENCH_*.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("dim") {
				opts.dim = a.cfg.BenchDim
			}
			if !cmd.Flags().Changed("duration") {
				opts.duration = a.cfg.BenchDuration
			}
			if !cmd.Flags().Changed("workers") {
				opts.workers = a.cfg.BenchWorkers
			}

			a.logger.Info().
				Int("dim", opts.dim).
				Dur("duration", opts.duration).
				Int("workers", opts.workers).
				Msg("Starting benchmark")

			results, err := runBench(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			if err := printBench(cmd.OutOrStdout(), opts.dim, results); err != nil {
				return err
			}
			return checkDrift(results, opts.maxDrift)
		},
	}

	cmd.Flags().IntVar(&opts.dim, "dim", 768, "vector dimension")
	cmd.Flags().DurationVar(&opts.duration, "duration", 2*time.Second, "run time per implementation and metric")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "concurrent workers")
	cmd.Flags().Int64Var(&opts.seed, "seed", 1, "random seed for the vectors")
	cmd.Flags().StringSliceVar(&opts.backends, "backends", nil, "implementations to run (default all)")
	cmd.Flags().Float64Var(&opts.maxDrift, "max-drift", 1e-2, "fail when a result drifts further than this from generic (0 disables)")
	return cmd
}

func randomVector(rng *rand.Rand, dim int) []float16.Num {
	v := make([]float16.Num, dim)
	for i := range v {
		v[i] = half.FromFloat32(rng.Float32()*2 - 1)
	}
	return v
}

func runBench(ctx context.Context, opts benchOptions) ([]benchResult, error) {
	if opts.dim <= 0 || opts.workers <= 0 || opts.duration <= 0 {
		return nil, fmt.Errorf("bench: dim, workers and duration must be positive")
	}
	names := opts.backends
	if len(names) == 0 {
		names = simd.Implementations()
	}
	generic, _ := simd.LookupBackend("generic")

	rng := rand.New(rand.NewSource(opts.seed))
	va := randomVector(rng, opts.dim)
	vb := randomVector(rng, opts.dim)

	var results []benchResult
	for _, name := range names {
		backend, ok := simd.LookupBackend(name)
		if !ok {
			return nil, fmt.Errorf("bench: unknown implementation %q", name)
		}
		for _, metric := range simd.Metrics() {
			kernel := backend.Kernel(metric)
			ops, err := runKernel(ctx, kernel, va, vb, opts, metric.String(), name)
			if err != nil {
				return nil, err
			}
			want := generic.Kernel(metric)(va, vb)
			got := kernel(va, vb)
			results = append(results, benchResult{
				Backend: name,
				Metric:  metric,
				Ops:     ops,
				NsPerOp: float64(opts.duration.Nanoseconds()*int64(opts.workers)) / float64(max(ops, 1)),
				Drift:   math.Abs(float64(got-want)) / math.Max(1, math.Abs(float64(want))),
			})
		}
	}
	return results, nil
}

// runKernel calls kernel from opts.workers goroutines until opts.duration
// elapses and returns the total number of calls.
func runKernel(ctx context.Context, kernel simd.KernelF16, va, vb []float16.Num, opts benchOptions, op, impl string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	hist := metrics.BenchOpDurationSeconds.WithLabelValues(op, impl)
	counter := metrics.BenchOpsTotal.WithLabelValues(op, impl)

	var ops atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.workers; w++ {
		g.Go(func() error {
			var sink float32
			for ctx.Err() == nil {
				t0 := time.Now()
				for i := 0; i < benchBatch; i++ {
					sink += kernel(va, vb)
				}
				hist.Observe(time.Since(t0).Seconds() / benchBatch)
				counter.Add(benchBatch)
				ops.Add(benchBatch)
			}
			if math.IsNaN(float64(sink)) {
				return herrors.NewComputationError("bench", "kernel produced NaN").
					WithContext("impl", impl).
					WithContext("metric", op)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return ops.Load(), nil
}

func printBench(w io.Writer, dim int, results []benchResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "metric\timpl\tdim\tops\tns/op\tdrift\n")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f\t%.2e\n", r.Metric, r.Backend, dim, r.Ops, r.NsPerOp, r.Drift)
	}
	return tw.Flush()
}

// checkDrift reports the first result whose drift from generic exceeds limit.
func checkDrift(results []benchResult, limit float64) error {
	if limit <= 0 {
		return nil
	}
	for _, r := range results {
		if r.Drift > limit || math.IsNaN(r.Drift) {
			return herrors.NewComputationError("bench", "drift from generic exceeds limit").
				WithContext("impl", r.Backend).
				WithContext("metric", r.Metric.String()).
				WithContext("drift", r.Drift).
				WithContext("limit", limit)
		}
	}
	return nil
}
