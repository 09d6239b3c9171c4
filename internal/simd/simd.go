// Package simd implements squared Euclidean distance, inner product and
// cosine similarity over IEEE half-precision vectors.
//
// Inputs are []float16.Num and are never modified or retained. Arithmetic
// is done in float32: each element is widened on load and every sum is a
// float32 accumulator. For inputs of moderate magnitude this keeps the
// relative error of SquaredDistanceF16 and InnerProductF16 within 1e-3 of a
// float64 evaluation over the same half values. CosineF16 adds the error of
// ApproxRSqrt (below 1e-3 relative).
//
// The kernels do not validate their arguments. len(a) is the vector length;
// a shorter b panics on the bounds check and a longer b is truncated.
//
// All kernels are safe for concurrent use.
package simd

import (
	"github.com/apache/arrow-go/v18/arrow/float16"
)

func init() {
	detectCPU()
	for _, b := range dispatchTable {
		Registry.registerBackend(b)
	}
	initializeDispatch()
}

// SquaredDistanceF16 returns Σ (a[i] − b[i])² over len(a) elements.
func SquaredDistanceF16(a, b []float16.Num) float32 {
	return squaredDistanceF16Impl(a, b)
}

// InnerProductF16 returns Σ a[i]·b[i] over len(a) elements.
func InnerProductF16(a, b []float16.Num) float32 {
	return innerProductF16Impl(a, b)
}

// CosineF16 returns (a·b) / (‖a‖·‖b‖), using ApproxRSqrt for the
// normalization. It returns 0 when either vector has zero norm, which
// includes empty input. The result is not clamped and may exceed [-1, 1]
// by the approximation error.
func CosineF16(a, b []float16.Num) float32 {
	return cosineF16Impl(a, b)
}
