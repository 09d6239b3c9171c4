// Package halfdist computes squared Euclidean distance, inner product and
// cosine similarity between half-precision vectors.
//
// Vectors are []float16.Num. Elements are widened to float32 and all sums
// accumulate in float32; the relative error against a float64 evaluation
// of the same half values stays within 1e-3 for well-conditioned inputs.
// Cosine additionally carries the error of a fast reciprocal square root
// (below 1e-3 relative).
//
// The checked functions validate lengths and return errors. The Unchecked
// variants forward straight to the kernels: len(a) is the vector length, a
// shorter b panics and a longer b is truncated.
//
// The implementation is chosen from the CPU at init and can be forced with
// SetImplementation.
package halfdist

import (
	stderrors "errors"

	herrors "github.com/23skdu/halfdist/internal/errors"
	"github.com/23skdu/halfdist/internal/half"
	"github.com/23skdu/halfdist/internal/metrics"
	"github.com/23skdu/halfdist/internal/simd"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/rs/zerolog"
)

// Metric selects a measure for Distance.
type Metric = simd.MetricType

const (
	SquaredEuclidean = simd.MetricSquaredEuclidean
	InnerProductSim  = simd.MetricInnerProduct
	CosineSim        = simd.MetricCosine
)

var (
	// ErrLengthMismatch is wrapped by every error caused by inputs of
	// different lengths.
	ErrLengthMismatch = stderrors.New("halfdist: vectors differ in length")
	// ErrUnknownMetric is returned by Distance for an unsupported Metric.
	ErrUnknownMetric = stderrors.New("halfdist: unknown metric")
)

// ParseMetric maps "l2sq", "ip", "cosine" and their aliases to a Metric.
func ParseMetric(s string) (Metric, error) {
	m, err := simd.ParseMetric(s)
	if err != nil {
		return 0, herrors.WrapValidationError(ErrUnknownMetric, "parse_metric", err.Error()).
			WithContext("metric", s)
	}
	return m, nil
}

// Distance computes metric between a and b.
func Distance(metric Metric, a, b []float16.Num) (float32, error) {
	switch metric {
	case simd.MetricSquaredEuclidean:
		return SquaredDistance(a, b)
	case simd.MetricInnerProduct:
		return InnerProduct(a, b)
	case simd.MetricCosine:
		return Cosine(a, b)
	}
	return 0, herrors.WrapValidationError(ErrUnknownMetric, "distance", "unsupported metric").
		WithContext("metric", int(metric))
}

// SquaredDistance returns Σ (a[i] − b[i])².
func SquaredDistance(a, b []float16.Num) (float32, error) {
	const op = "squared_distance"
	if err := checkLengths(op, a, b); err != nil {
		return 0, err
	}
	countOp(op)
	return simd.SquaredDistanceF16(a, b), nil
}

// InnerProduct returns Σ a[i]·b[i].
func InnerProduct(a, b []float16.Num) (float32, error) {
	const op = "inner_product"
	if err := checkLengths(op, a, b); err != nil {
		return 0, err
	}
	countOp(op)
	return simd.InnerProductF16(a, b), nil
}

// Cosine returns (a·b) / (‖a‖·‖b‖), or 0 when either vector has zero norm.
// The result is not clamped to [-1, 1].
func Cosine(a, b []float16.Num) (float32, error) {
	const op = "cosine"
	if err := checkLengths(op, a, b); err != nil {
		return 0, err
	}
	countOp(op)
	return simd.CosineF16(a, b), nil
}

// SquaredDistanceUnchecked is SquaredDistance without validation.
func SquaredDistanceUnchecked(a, b []float16.Num) float32 {
	return simd.SquaredDistanceF16(a, b)
}

// InnerProductUnchecked is InnerProduct without validation.
func InnerProductUnchecked(a, b []float16.Num) float32 {
	return simd.InnerProductF16(a, b)
}

// CosineUnchecked is Cosine without validation.
func CosineUnchecked(a, b []float16.Num) float32 {
	return simd.CosineF16(a, b)
}

func checkLengths(op string, a, b []float16.Num) error {
	if len(a) == len(b) {
		return nil
	}
	metrics.SimdF16ValidationErrorsTotal.WithLabelValues(op).Inc()
	return herrors.WrapValidationError(ErrLengthMismatch, op, "vectors differ in length").
		WithContext("len_a", len(a)).
		WithContext("len_b", len(b))
}

func countOp(op string) {
	metrics.SimdF16OpsTotal.WithLabelValues(op, simd.GetImplementation()).Inc()
}

// RuntimeInfo describes the CPU and the selected implementation.
type RuntimeInfo struct {
	Implementation string
	Width          int
	Features       simd.CPUFeatures
	Available      []string
	VekAccelerated bool
	VekFeatures    []string
}

// Info reports what the kernels are currently dispatched to.
func Info() RuntimeInfo {
	backend := simd.CurrentBackend()
	accelerated, vekFeatures := simd.VekInfo()
	return RuntimeInfo{
		Implementation: backend.Name,
		Width:          backend.Width,
		Features:       simd.GetCPUFeatures(),
		Available:      simd.Implementations(),
		VekAccelerated: accelerated,
		VekFeatures:    vekFeatures,
	}
}

// SetImplementation forces a kernel implementation by name ("generic",
// "f32x4", "f32x8", "f32x16", "vek"), or "auto" to pick from the CPU again.
// Call it before any concurrent use of the kernels.
func SetImplementation(name string) error {
	if err := simd.SetImplementation(name); err != nil {
		return herrors.WrapConfigurationError(err, "set_implementation", "unknown implementation").
			WithContext("name", name)
	}
	return nil
}

// SetLogger routes dispatch logging to l.
func SetLogger(l zerolog.Logger) {
	simd.SetLogger(l)
}

// FromFloat32 narrows vals to half precision, rounding to nearest even.
// Magnitudes above the half range become ±Inf; small values keep subnormal
// precision down to 2^-24.
func FromFloat32(vals []float32) []float16.Num {
	return half.FromFloat32Slice(vals)
}

// ToFloat32 widens vals to float32. The conversion is exact, subnormals
// included.
func ToFloat32(vals []float16.Num) []float32 {
	out := make([]float32, len(vals))
	half.ToFloat32Slice(out, vals)
	return out
}
