package simd

import (
	"github.com/apache/arrow-go/v18/arrow/float16"
)

// Float16 kernels, generic over the register width of l.
//
// Values are stored as IEEE binary16 and accumulated in float32. Every
// kernel runs a lane loop over full registers, reduces the lanes once, then
// finishes the remaining len(a) % Width() elements with scalar code.
// b is resliced to len(a) with its capacity capped at len(b), so a short b
// panics even when its backing array is long enough. No other validation
// is done.

func squaredDistance[R any, L Lanes[R]](l L, a, b []float16.Num) float32 {
	n := len(a)
	b = b[:n:len(b)]
	w := l.Width()

	acc := l.Zero()
	i := 0
	for ; i+w <= n; i += w {
		d := l.Sub(l.LoadHalf(a[i:]), l.LoadHalf(b[i:]))
		acc = l.MulAdd(d, d, acc)
	}
	return squaredDistanceTail(a, b, i, l.ReduceSum(acc))
}

func innerProduct[R any, L Lanes[R]](l L, a, b []float16.Num) float32 {
	n := len(a)
	b = b[:n:len(b)]
	w := l.Width()

	acc := l.Zero()
	i := 0
	for ; i+w <= n; i += w {
		acc = l.MulAdd(l.LoadHalf(a[i:]), l.LoadHalf(b[i:]), acc)
	}
	return innerProductTail(a, b, i, l.ReduceSum(acc))
}

// cosine keeps the dot product and both squared norms in flight together so
// the input is read once.
func cosine[R any, L Lanes[R]](l L, a, b []float16.Num) float32 {
	n := len(a)
	b = b[:n:len(b)]
	w := l.Width()

	ab, a2, b2 := l.Zero(), l.Zero(), l.Zero()
	i := 0
	for ; i+w <= n; i += w {
		va := l.LoadHalf(a[i:])
		vb := l.LoadHalf(b[i:])
		ab = l.MulAdd(va, vb, ab)
		a2 = l.MulAdd(va, va, a2)
		b2 = l.MulAdd(vb, vb, b2)
	}
	dot, normA, normB := cosineTail(a, b, i, l.ReduceSum(ab), l.ReduceSum(a2), l.ReduceSum(b2))
	return cosineFinalize(dot, normA, normB)
}
