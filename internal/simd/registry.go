package simd

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MetricType defines the measure a kernel computes.
type MetricType int

const (
	MetricSquaredEuclidean MetricType = iota
	MetricInnerProduct
	MetricCosine
)

func (m MetricType) String() string {
	switch m {
	case MetricSquaredEuclidean:
		return "l2sq"
	case MetricInnerProduct:
		return "ip"
	case MetricCosine:
		return "cosine"
	default:
		return "unknown"
	}
}

// ParseMetric accepts the names produced by MetricType.String plus a few
// common aliases.
func ParseMetric(s string) (MetricType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "l2sq", "sqeuclidean", "euclidean":
		return MetricSquaredEuclidean, nil
	case "ip", "dot", "inner":
		return MetricInnerProduct, nil
	case "cosine", "cos":
		return MetricCosine, nil
	}
	return 0, fmt.Errorf("simd: unknown metric %q", s)
}

// Metrics lists every metric in declaration order.
func Metrics() []MetricType {
	return []MetricType{MetricSquaredEuclidean, MetricInnerProduct, MetricCosine}
}

// KernelKey identifies a specific kernel implementation.
type KernelKey struct {
	Metric  MetricType
	Backend string
}

// KernelRegistry holds every float16 kernel of every backend, so callers
// can reach a specific implementation regardless of what was dispatched.
type KernelRegistry struct {
	mu      sync.RWMutex
	kernels map[KernelKey]KernelF16
}

var Registry = &KernelRegistry{
	kernels: make(map[KernelKey]KernelF16),
}

// Register adds a kernel to the registry.
func (r *KernelRegistry) Register(metric MetricType, backend string, kernel KernelF16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kernels[KernelKey{Metric: metric, Backend: backend}] = kernel
}

// Get retrieves a kernel from the registry, or nil if none is registered.
func (r *KernelRegistry) Get(metric MetricType, backend string) KernelF16 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.kernels[KernelKey{Metric: metric, Backend: backend}]
}

// Backends returns the sorted names of backends with at least one kernel.
func (r *KernelRegistry) Backends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for k := range r.kernels {
		seen[k.Backend] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *KernelRegistry) registerBackend(b Backend) {
	r.Register(MetricSquaredEuclidean, b.Name, b.SquaredDistance)
	r.Register(MetricInnerProduct, b.Name, b.InnerProduct)
	r.Register(MetricCosine, b.Name, b.Cosine)
}
