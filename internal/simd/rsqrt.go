package simd

import (
	"math"

	"github.com/chewxy/math32"
)

// ApproxRSqrt estimates 1/sqrt(x) for positive x with a maximum relative
// error below 1e-3: a bit-level initial guess followed by one Newton step
// with tuned coefficients.
//
// The result is finite for x == 0, but it is not meaningful there; callers
// that can see a zero argument must handle it themselves.
func ApproxRSqrt(x float32) float32 {
	y := math.Float32frombits(0x5F1FFFF9 - math.Float32bits(x)>>1)
	return y * 0.703952253 * (2.38924456 - x*y*y)
}

// RSqrtPrecise is the correctly rounded-through-sqrt reference for ApproxRSqrt.
func RSqrtPrecise(x float32) float32 {
	return 1 / math32.Sqrt(x)
}

// minNormalFloat32 is the smallest positive normal float32.
const minNormalFloat32 = 0x1p-126

// cosineFinalize turns the three reductions into a similarity.
// A zero norm on either side yields 0. When a2*b2 leaves the normal float32
// range the norms are inverted separately.
func cosineFinalize(ab, a2, b2 float32) float32 {
	if a2 == 0 || b2 == 0 {
		return 0
	}
	p := a2 * b2
	if p < minNormalFloat32 || p > math32.MaxFloat32 {
		return ab * ApproxRSqrt(a2) * ApproxRSqrt(b2)
	}
	return ab * ApproxRSqrt(p)
}
