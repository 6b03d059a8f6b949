package metrics

import (
	"sort"
	"time"

	dto "github.com/prometheus/client_model/go"
)

// A nil *Registry is valid and records nothing, so callers can leave
// metrics unconfigured.

// RecordIntersection counts one detected intersection point.
func (r *Registry) RecordIntersection(kind string) {
	if r == nil {
		return
	}
	r.IntersectionsTotal.WithLabelValues(kind).Inc()
}

// RecordSplit counts a split and the number of children it produced.
func (r *Registry) RecordSplit(kind string, children int) {
	if r == nil {
		return
	}
	r.SplitsTotal.WithLabelValues(kind).Inc()
	r.SplitChildren.WithLabelValues(kind).Observe(float64(children))
}

// RecordRetired counts primitives swept at cleanup.
func (r *Registry) RecordRetired(kind string, n int) {
	if r == nil || n == 0 {
		return
	}
	r.RetiredTotal.WithLabelValues(kind).Add(float64(n))
}

// RecordStage observes the duration of a pipeline stage.
func (r *Registry) RecordStage(stage string, duration time.Duration) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordRun counts a finished conformation run.
func (r *Registry) RecordRun(status string) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(status).Inc()
}

// UpdateModel sets the size gauges.
func (r *Registry) UpdateModel(vertices, lines, rectangles, cuboids, spaces int) {
	if r == nil {
		return
	}
	r.VerticesTotal.Set(float64(vertices))
	r.LinesTotal.Set(float64(lines))
	r.RectanglesTotal.Set(float64(rectangles))
	r.CuboidsTotal.Set(float64(cuboids))
	r.SpacesTotal.Set(float64(spaces))
}

// Sample is one gathered counter or gauge value.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Snapshot gathers every counter and gauge, sorted by name. Histograms
// are reported by their sample count.
func (r *Registry) Snapshot() ([]Sample, error) {
	families, err := r.registry.Gather()
	if err != nil {
		return nil, err
	}
	var out []Sample
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			out = append(out, Sample{
				Name:   mf.GetName(),
				Labels: labels(m),
				Value:  value(mf.GetType(), m),
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func labels(m *dto.Metric) map[string]string {
	if len(m.GetLabel()) == 0 {
		return nil
	}
	l := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		l[lp.GetName()] = lp.GetValue()
	}
	return l
}

func value(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}
