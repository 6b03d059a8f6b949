package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the conformation metrics.
type Registry struct {
	// Registry contents
	VerticesTotal   prometheus.Gauge
	LinesTotal      prometheus.Gauge
	RectanglesTotal prometheus.Gauge
	CuboidsTotal    prometheus.Gauge
	SpacesTotal     prometheus.Gauge

	// Conformation
	IntersectionsTotal *prometheus.CounterVec
	SplitsTotal        *prometheus.CounterVec
	SplitChildren      *prometheus.HistogramVec
	RetiredTotal       *prometheus.CounterVec
	StageDuration      *prometheus.HistogramVec
	RunsTotal          *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with every metric initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}
	r.initModelMetrics()
	r.initConformMetrics()
	return r
}

// Prometheus exposes the underlying registry for gathering.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}
