package simd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/23skdu/halfdist/internal/metrics"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"github.com/rs/zerolog"
)

// KernelF16 is the signature shared by every float16 kernel.
type KernelF16 func(a, b []float16.Num) float32

// Backend holds the float16 kernels of one implementation.
type Backend struct {
	Name string
	// Width is the number of elements consumed per step of the main loop.
	Width           int
	SquaredDistance KernelF16
	InnerProduct    KernelF16
	Cosine          KernelF16
}

// Kernel returns the backend's kernel for metric, or nil.
func (b Backend) Kernel(metric MetricType) KernelF16 {
	switch metric {
	case MetricSquaredEuclidean:
		return b.SquaredDistance
	case MetricInnerProduct:
		return b.InnerProduct
	case MetricCosine:
		return b.Cosine
	}
	return nil
}

func newLaneBackend[R any, L Lanes[R]](name string, l L) Backend {
	return Backend{
		Name:            name,
		Width:           l.Width(),
		SquaredDistance: func(a, b []float16.Num) float32 { return squaredDistance[R, L](l, a, b) },
		InnerProduct:    func(a, b []float16.Num) float32 { return innerProduct[R, L](l, a, b) },
		Cosine:          func(a, b []float16.Num) float32 { return cosine[R, L](l, a, b) },
	}
}

// Global dispatch table - one entry per implementation
var dispatchTable = map[string]Backend{
	"f32x16":  newLaneBackend[f32x16, lanes16]("f32x16", lanes16{}),
	"f32x8":   newLaneBackend[f32x8, lanes8]("f32x8", lanes8{}),
	"f32x4":   newLaneBackend[f32x4, lanes4]("f32x4", lanes4{}),
	"generic": newLaneBackend[float32, scalarLanes]("generic", scalarLanes{}),
	"vek": {
		Name:            "vek",
		Width:           vekBlock,
		SquaredDistance: squaredDistanceVek,
		InnerProduct:    innerProductVek,
		Cosine:          cosineVek,
	},
}

// dispatchTypeCode feeds SimdStaticDispatchType.
var dispatchTypeCode = map[string]float64{
	"generic": 0,
	"f32x4":   1,
	"f32x8":   2,
	"f32x16":  3,
	"vek":     4,
}

// Current dispatch - read on every kernel call
var (
	currentBackend         Backend
	squaredDistanceF16Impl KernelF16
	innerProductF16Impl    KernelF16
	cosineF16Impl          KernelF16
)

var logger = zerolog.Nop()

// SetLogger replaces the package logger used for dispatch changes.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// initializeDispatch sets function pointers based on the selected
// implementation. Called at startup and on override, never on the hot path.
func initializeDispatch() {
	backend, exists := dispatchTable[implementation]
	if !exists {
		// Fallback to generic if implementation not found
		implementation = "generic"
		backend = dispatchTable[implementation]
	}
	currentBackend = backend
	squaredDistanceF16Impl = backend.SquaredDistance
	innerProductF16Impl = backend.InnerProduct
	cosineF16Impl = backend.Cosine

	metrics.SimdDispatchCount.WithLabelValues(backend.Name).Inc()
	metrics.SimdStaticDispatchType.Set(dispatchTypeCode[backend.Name])

	logger.Debug().
		Str("impl", backend.Name).
		Int("width", backend.Width).
		Msg("simd dispatch initialized")
}

// SetImplementation forces a backend by name. "auto" or "" re-runs CPU
// detection. It must not race with kernel calls; use it at startup.
func SetImplementation(name string) error {
	if name == "" || name == "auto" {
		detectCPU()
		initializeDispatch()
		return nil
	}
	if _, ok := dispatchTable[name]; !ok {
		return fmt.Errorf("simd: unknown implementation %q (available: %s)",
			name, strings.Join(Implementations(), ", "))
	}
	implementation = name
	initializeDispatch()
	logger.Info().Str("impl", name).Msg("simd implementation overridden")
	return nil
}

// Implementations returns the sorted names accepted by SetImplementation.
func Implementations() []string {
	names := make([]string, 0, len(dispatchTable))
	for name := range dispatchTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupBackend returns the backend registered under name.
func LookupBackend(name string) (Backend, bool) {
	b, ok := dispatchTable[name]
	return b, ok
}

// CurrentBackend returns the backend the package-level kernels dispatch to.
func CurrentBackend() Backend {
	return currentBackend
}
