package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initModelMetrics() {
	r.VerticesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "conform_vertices_total",
			Help: "Number of registered vertices",
		},
	)

	r.LinesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "conform_lines_total",
			Help: "Number of active lines",
		},
	)

	r.RectanglesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "conform_rectangles_total",
			Help: "Number of active rectangles",
		},
	)

	r.CuboidsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "conform_cuboids_total",
			Help: "Number of active cuboids",
		},
	)

	r.SpacesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "conform_spaces_total",
			Help: "Number of spaces added to the model",
		},
	)
}

func (r *Registry) initConformMetrics() {
	r.IntersectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "conform_intersections_total",
			Help: "Intersection points found during detection",
		},
		[]string{"kind"}, // line_line, rectangle_line, sweep
	)

	r.SplitsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "conform_splits_total",
			Help: "Primitives split at an interior vertex",
		},
		[]string{"kind"}, // line, rectangle, cuboid
	)

	r.SplitChildren = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conform_split_children",
			Help:    "Children produced per split",
			Buckets: []float64{2, 4, 8},
		},
		[]string{"kind"},
	)

	r.RetiredTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "conform_retired_total",
			Help: "Retired primitives removed at cleanup",
		},
		[]string{"kind"},
	)

	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conform_stage_duration_seconds",
			Help:    "Duration of each conformation stage in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"stage"}, // detect, membership, cleanup, associate
	)

	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "conform_runs_total",
			Help: "Conformation runs by outcome",
		},
		[]string{"status"}, // ok, error
	)
}
