package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SimdDispatchCount counts backend selections by implementation
	SimdDispatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "halfdist_simd_dispatch_count_total",
			Help: "Count of SIMD dispatch selections by implementation",
		},
		[]string{"impl"},
	)

	// SimdStaticDispatchType tracks the currently active implementation
	// 0=Generic, 1=NEON, 2=AVX2, 3=AVX512, 4=vek
	SimdStaticDispatchType = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "halfdist_simd_static_dispatch_type",
		Help: "Type of SIMD implementation dispatched (0=Generic, 1=NEON, 2=AVX2, 3=AVX512, 4=vek)",
	})

	// SimdF16OpsTotal tracks FP16 kernel calls made through the checked API
	SimdF16OpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halfdist_simd_f16_ops_total",
		Help: "Total number of FP16 distance operations dispatched through the checked API",
	}, []string{"operation", "impl"})

	// SimdF16ValidationErrorsTotal counts rejected checked calls
	SimdF16ValidationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "halfdist_simd_f16_validation_errors_total",
		Help: "Total number of FP16 distance calls rejected by input validation",
	}, []string{"operation"})

	// BenchOpDurationSeconds records per-call latency sampled by the bench command
	BenchOpDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "halfdist_bench_op_duration_seconds",
			Help:    "Latency of a single FP16 kernel call during benchmarks",
			Buckets: prometheus.ExponentialBuckets(1e-8, 2, 16), // 10ns to ~330us
		},
		[]string{"operation", "impl"},
	)

	// BenchOpsTotal counts kernel calls made by the bench command
	BenchOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "halfdist_bench_ops_total",
			Help: "Total number of FP16 kernel calls executed by benchmarks",
		},
		[]string{"operation", "impl"},
	)

	// StorageVectorsRead counts vectors decoded from parquet or arrow input
	StorageVectorsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "halfdist_storage_vectors_read_total",
			Help: "Total number of vectors decoded from storage",
		},
		[]string{"format"},
	)

	// StorageVectorsWritten counts vectors encoded to parquet
	StorageVectorsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "halfdist_storage_vectors_written_total",
			Help: "Total number of vectors written to parquet",
		},
	)

	// SnapshotWriteDurationSeconds - Time to write a parquet vector file
	SnapshotWriteDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "halfdist_snapshot_write_duration_seconds",
			Help:    "Duration of parquet vector file writes",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
	)

	// SnapshotSizeBytes - Size of written parquet vector files
	SnapshotSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "halfdist_snapshot_size_bytes",
			Help:    "Size of written parquet vector files",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)
)
