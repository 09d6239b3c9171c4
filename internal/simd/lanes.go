package simd

import (
	"github.com/23skdu/halfdist/internal/half"
	"github.com/apache/arrow-go/v18/arrow/float16"
)

// Lanes is the register-level capability a backend exposes to the float16
// kernels. R is the register type; it holds Width() float32 lanes.
//
// The kernels are written once against this interface, so a backend only
// decides how wide a register is and how each operation maps onto it.
type Lanes[R any] interface {
	// Name identifies the register shape, e.g. "f32x8".
	Name() string
	// Width is the number of float32 lanes in R.
	Width() int
	// Zero returns a register with every lane set to 0.
	Zero() R
	// LoadHalf widens the first Width() elements of src to float32.
	LoadHalf(src []float16.Num) R
	// Sub returns x - y per lane.
	Sub(x, y R) R
	// MulAdd returns x*y + acc per lane.
	MulAdd(x, y, acc R) R
	// ReduceSum collapses all lanes of v into one float32.
	ReduceSum(v R) float32
}

type (
	f32x4  [4]float32
	f32x8  [8]float32
	f32x16 [16]float32
)

// MulAdd bodies are written as x*y + acc so the compiler emits a fused
// instruction where the target has one (arm64, amd64 with GOAMD64=v3).

// scalarLanes is the width-1 fallback: the register is a plain float32.
type scalarLanes struct{}

func (scalarLanes) Name() string  { return "f32x1" }
func (scalarLanes) Width() int    { return 1 }
func (scalarLanes) Zero() float32 { return 0 }

func (scalarLanes) LoadHalf(src []float16.Num) float32 { return half.ToFloat32(src[0]) }

func (scalarLanes) Sub(x, y float32) float32 { return x - y }

func (scalarLanes) MulAdd(x, y, acc float32) float32 { return x*y + acc }

func (scalarLanes) ReduceSum(v float32) float32 { return v }

// lanes4 matches a 128-bit register (NEON, SSE).
type lanes4 struct{}

func (lanes4) Name() string { return "f32x4" }
func (lanes4) Width() int   { return 4 }
func (lanes4) Zero() f32x4  { return f32x4{} }

func (lanes4) LoadHalf(src []float16.Num) f32x4 {
	src = src[:4]
	return f32x4{half.ToFloat32(src[0]), half.ToFloat32(src[1]), half.ToFloat32(src[2]), half.ToFloat32(src[3])}
}

func (lanes4) Sub(x, y f32x4) f32x4 {
	for i := range x {
		x[i] -= y[i]
	}
	return x
}

func (lanes4) MulAdd(x, y, acc f32x4) f32x4 {
	for i := range acc {
		acc[i] = x[i]*y[i] + acc[i]
	}
	return acc
}

func (lanes4) ReduceSum(v f32x4) float32 { return reduce4(v) }

// lanes8 matches a 256-bit register (AVX2 + F16C + FMA).
type lanes8 struct{}

func (lanes8) Name() string { return "f32x8" }
func (lanes8) Width() int   { return 8 }
func (lanes8) Zero() f32x8  { return f32x8{} }

func (lanes8) LoadHalf(src []float16.Num) f32x8 {
	src = src[:8]
	return f32x8{
		half.ToFloat32(src[0]), half.ToFloat32(src[1]), half.ToFloat32(src[2]), half.ToFloat32(src[3]),
		half.ToFloat32(src[4]), half.ToFloat32(src[5]), half.ToFloat32(src[6]), half.ToFloat32(src[7]),
	}
}

func (lanes8) Sub(x, y f32x8) f32x8 {
	for i := range x {
		x[i] -= y[i]
	}
	return x
}

func (lanes8) MulAdd(x, y, acc f32x8) f32x8 {
	for i := range acc {
		acc[i] = x[i]*y[i] + acc[i]
	}
	return acc
}

func (lanes8) ReduceSum(v f32x8) float32 { return reduce8(v) }

// lanes16 matches a 512-bit register (AVX-512F).
type lanes16 struct{}

func (lanes16) Name() string { return "f32x16" }
func (lanes16) Width() int   { return 16 }
func (lanes16) Zero() f32x16 { return f32x16{} }

func (lanes16) LoadHalf(src []float16.Num) f32x16 {
	src = src[:16]
	var v f32x16
	for i := range v {
		v[i] = half.ToFloat32(src[i])
	}
	return v
}

func (lanes16) Sub(x, y f32x16) f32x16 {
	for i := range x {
		x[i] -= y[i]
	}
	return x
}

func (lanes16) MulAdd(x, y, acc f32x16) f32x16 {
	for i := range acc {
		acc[i] = x[i]*y[i] + acc[i]
	}
	return acc
}

func (lanes16) ReduceSum(v f32x16) float32 { return reduce16(v) }
