// Package half converts between IEEE 754 binary16 and float32.
//
// arrow's float16.Num methods flush subnormals and truncate on narrowing;
// everything in this module that moves between half and single precision
// goes through ToFloat32 and FromFloat32 instead.
package half

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/float16"
)

// ToFloat32 widens h exactly. Subnormal halves are renormalized, and
// infinities and NaN payloads are preserved.
func ToFloat32(h float16.Num) float32 {
	bits := uint32(h.Uint16())
	sign := bits >> 15 << 31
	exp := (bits >> 10) & 0x1f
	mant := bits & 0x3ff

	switch exp {
	case 0:
		if mant == 0 {
			return math.Float32frombits(sign)
		}
		// Shift the leading one into the implicit bit position.
		e := uint32(127 - 15 + 1)
		for mant&0x400 == 0 {
			mant <<= 1
			e--
		}
		mant &= 0x3ff
		return math.Float32frombits(sign | e<<23 | mant<<13)
	case 0x1f:
		if mant == 0 {
			return math.Float32frombits(sign | 0x7f800000)
		}
		return math.Float32frombits(sign | 0x7fc00000 | mant<<13)
	}
	return math.Float32frombits(sign | (exp+127-15)<<23 | mant<<13)
}

// FromFloat32 narrows f with round-to-nearest-even. Values too large for a
// half become ±Inf; values below half the smallest subnormal round to ±0.
func FromFloat32(f float32) float16.Num {
	// float32 widens to float64 exactly, so there is no double rounding.
	return FromFloat64(float64(f))
}

// FromFloat64 narrows f with round-to-nearest-even.
func FromFloat64(f float64) float16.Num {
	bits := math.Float64bits(f)
	sign := uint16(bits>>48) & 0x8000
	exp := int(bits>>52) & 0x7ff
	mant := bits & (1<<52 - 1)

	if exp == 0x7ff {
		if mant != 0 {
			return float16.FromBits(sign | 0x7e00 | uint16(mant>>42))
		}
		return float16.FromBits(sign | 0x7c00)
	}

	e := exp - 1023 + 15
	if e >= 0x1f {
		return float16.FromBits(sign | 0x7c00)
	}
	if e <= 0 {
		if e < -10 {
			return float16.FromBits(sign)
		}
		// A carry out of the subnormal range lands on the smallest normal.
		out := roundShift(mant|1<<52, uint(43-e))
		return float16.FromBits(sign | uint16(out))
	}

	// The rounding carry may ripple into the exponent, up to Inf.
	out := uint64(e)<<10 + roundShift(mant, 42)
	return float16.FromBits(sign | uint16(out))
}

// roundShift returns m >> shift rounded to nearest, ties to even.
func roundShift(m uint64, shift uint) uint64 {
	q := m >> shift
	rem := m & (1<<shift - 1)
	halfway := uint64(1) << (shift - 1)
	if rem > halfway || (rem == halfway && q&1 == 1) {
		q++
	}
	return q
}

// ToFloat32Slice widens src into dst[:len(src)].
func ToFloat32Slice(dst []float32, src []float16.Num) {
	dst = dst[:len(src)]
	for i, v := range src {
		dst[i] = ToFloat32(v)
	}
}

// FromFloat32Slice returns src narrowed element-wise.
func FromFloat32Slice(src []float32) []float16.Num {
	out := make([]float16.Num, len(src))
	for i, v := range src {
		out[i] = FromFloat32(v)
	}
	return out
}
