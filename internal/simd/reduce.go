package simd

// Horizontal reductions. Each folds the upper half of a register onto the
// lower half and recurses, which is the lane order of a 256-bit
// permute2f128 followed by two hadd. Keeping one tree for every width makes
// the result of a backend independent of how the caller reached it.

func reduce4(v f32x4) float32 {
	return (v[0] + v[1]) + (v[2] + v[3])
}

func reduce8(v f32x8) float32 {
	return reduce4(f32x4{v[0] + v[4], v[1] + v[5], v[2] + v[6], v[3] + v[7]})
}

func reduce16(v f32x16) float32 {
	var lo f32x8
	for i := range lo {
		lo[i] = v[i] + v[i+8]
	}
	return reduce8(lo)
}
