package simd

import (
	"github.com/23skdu/halfdist/internal/half"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/viterin/vek/vek32"
)

// vekBlock is the number of halves widened per step of the vek backend.
// Two blocks of float32 stay well inside L1.
const vekBlock = 256

// The vek backend widens up to a block of halves into float32 scratch and
// lets vek32 reduce it, the last block being partial. vek32 runs AVX2
// assembly when the CPU has it, so this is the path that gets hardware
// lanes without hand-written assembly. Cosine issues three dot products
// over each widened block, which is already in cache.

func squaredDistanceVek(a, b []float16.Num) float32 {
	n := len(a)
	b = b[:n:len(b)]

	var bufA, bufB [vekBlock]float32
	var sum float32
	for i := 0; i < n; i += vekBlock {
		m := min(vekBlock, n-i)
		half.ToFloat32Slice(bufA[:], a[i:i+m])
		half.ToFloat32Slice(bufB[:], b[i:i+m])
		vek32.Sub_Inplace(bufA[:m], bufB[:m])
		sum += vek32.Dot(bufA[:m], bufA[:m])
	}
	return sum
}

func innerProductVek(a, b []float16.Num) float32 {
	n := len(a)
	b = b[:n:len(b)]

	var bufA, bufB [vekBlock]float32
	var sum float32
	for i := 0; i < n; i += vekBlock {
		m := min(vekBlock, n-i)
		half.ToFloat32Slice(bufA[:], a[i:i+m])
		half.ToFloat32Slice(bufB[:], b[i:i+m])
		sum += vek32.Dot(bufA[:m], bufB[:m])
	}
	return sum
}

func cosineVek(a, b []float16.Num) float32 {
	n := len(a)
	b = b[:n:len(b)]

	var bufA, bufB [vekBlock]float32
	var ab, a2, b2 float32
	for i := 0; i < n; i += vekBlock {
		m := min(vekBlock, n-i)
		half.ToFloat32Slice(bufA[:], a[i:i+m])
		half.ToFloat32Slice(bufB[:], b[i:i+m])
		ab += vek32.Dot(bufA[:m], bufB[:m])
		a2 += vek32.Dot(bufA[:m], bufA[:m])
		b2 += vek32.Dot(bufB[:m], bufB[:m])
	}
	return cosineFinalize(ab, a2, b2)
}

// VekInfo reports whether vek32 found hardware acceleration on this CPU.
func VekInfo() (accelerated bool, features []string) {
	info := vek32.Info()
	return info.Acceleration, info.CPUFeatures
}
