package simd

import (
	"github.com/23skdu/halfdist/internal/half"
	"github.com/apache/arrow-go/v18/arrow/float16"
)

// Scalar tails. Each continues from index i, the first element not consumed
// by the lane loop, and adds into the reduced accumulator(s).

func squaredDistanceTail(a, b []float16.Num, i int, sum float32) float32 {
	for ; i < len(a); i++ {
		d := half.ToFloat32(a[i]) - half.ToFloat32(b[i])
		sum += d * d
	}
	return sum
}

func innerProductTail(a, b []float16.Num, i int, sum float32) float32 {
	for ; i < len(a); i++ {
		sum += half.ToFloat32(a[i]) * half.ToFloat32(b[i])
	}
	return sum
}

func cosineTail(a, b []float16.Num, i int, ab, a2, b2 float32) (float32, float32, float32) {
	for ; i < len(a); i++ {
		va, vb := half.ToFloat32(a[i]), half.ToFloat32(b[i])
		ab += va * vb
		a2 += va * va
		b2 += vb * vb
	}
	return ab, a2, b2
}
