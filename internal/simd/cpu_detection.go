package simd

import (
	"github.com/klauspost/cpuid/v2"
	"github.com/viterin/vek/vek32"
)

// CPUFeatures contains detected CPU SIMD capabilities
type CPUFeatures struct {
	Vendor    string
	Brand     string
	HasAVX2   bool
	HasFMA    bool
	HasF16C   bool
	HasAVX512 bool
	HasNEON   bool
	// VekAccelerated is set when vek32 runs its assembly on this CPU.
	VekAccelerated bool
}

// Global CPU detection state
var (
	features       CPUFeatures
	implementation string
)

// detectCPU detects CPU capabilities and selects the best implementation
func detectCPU() {
	hasAVX512 := cpuid.CPU.Supports(cpuid.AVX512F) &&
		cpuid.CPU.Supports(cpuid.AVX512DQ)

	features = CPUFeatures{
		Vendor:    cpuid.CPU.VendorString,
		Brand:     cpuid.CPU.BrandName,
		HasAVX2:   cpuid.CPU.Supports(cpuid.AVX2),
		HasFMA:    cpuid.CPU.Supports(cpuid.FMA3),
		HasF16C:   cpuid.CPU.Supports(cpuid.F16C),
		HasAVX512: hasAVX512,
		HasNEON:   cpuid.CPU.Supports(cpuid.ASIMD), // ARM NEON

		VekAccelerated: vek32.Info().Acceleration,
	}
	implementation = selectImplementation(features)
}

// selectImplementation maps capabilities to a dispatch table entry.
// vek wins whenever its assembly is usable; otherwise the lane backend
// matching the widest register is taken. The 8-lane shape needs conversion
// and FMA alongside AVX2.
func selectImplementation(f CPUFeatures) string {
	switch {
	case f.VekAccelerated:
		return "vek"
	case f.HasAVX512:
		return "f32x16"
	case f.HasAVX2 && f.HasFMA && f.HasF16C:
		return "f32x8"
	case f.HasNEON:
		return "f32x4"
	default:
		return "generic"
	}
}

// GetCPUFeatures returns the detected CPU capabilities
func GetCPUFeatures() CPUFeatures {
	return features
}

// GetImplementation returns the selected implementation name
func GetImplementation() string {
	return implementation
}
