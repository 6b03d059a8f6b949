// Package conform turns independently specified axis-aligned rooms into
// a conformal box complex: every vertex, line, rectangle and cuboid
// shared by adjacent rooms exists exactly once.
//
// A Model owns two graphs. The shared primitive graph (Vertex, Line,
// Rectangle, Cuboid) is deduplicated across rooms and is what
// MakeConformal splits. The shadow graph (Point, Edge, Surface, Space)
// is built per room and keeps the room's own view of its boundary,
// re-resolving onto the finer primitives produced by splits.
//
// Primitives are addressed by integer handles into arenas owned by the
// Model. A split primitive stays in its arena with Deleted set and its
// replacements in Children, so stale handles can always be resolved.
//
// A Model is not safe for concurrent use.
package conform

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/chazu/conformal/pkg/geom"
	"github.com/chazu/conformal/pkg/logging"
	"github.com/chazu/conformal/pkg/metrics"
)

// Model is the conformal model: the coordinate registry, the shared
// primitive graph and one shadow graph per added room.
type Model struct {
	tol     geom.Tolerances
	log     *slog.Logger
	metrics *metrics.Registry
	runID   uuid.UUID

	vertices    []*Vertex
	vertexByPos map[geom.Vec]VertexID

	lines      []*Line
	lineOrder  []LineID
	lineByEnds map[[2]VertexID]LineID

	rectangles  []*Rectangle
	rectOrder   []RectangleID
	rectByLines map[[2]LineID]RectangleID

	cuboids      []*Cuboid
	cuboidOrder  []CuboidID
	cuboidByFace map[[2]RectangleID]CuboidID

	points      []*Point
	edges       []*Edge
	surfaces    []*Surface
	spaces      []*Space
	spaceByRoom map[int]SpaceID

	index *spatialIndex

	// splitting is set while the pipeline runs: registering a vertex
	// then splits every active primitive containing it.
	splitting bool
	conformed bool
}

// Option configures a Model.
type Option func(*Model)

// WithTolerances overrides the default comparison thresholds.
func WithTolerances(tol geom.Tolerances) Option {
	return func(m *Model) { m.tol = tol }
}

// WithLogger sets the logger. The model adds its run ID to every record.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithMetrics records conformation metrics into r.
func WithMetrics(r *metrics.Registry) Option {
	return func(m *Model) { m.metrics = r }
}

// New returns an empty model.
func New(opts ...Option) *Model {
	m := &Model{
		tol:          geom.DefaultTolerances(),
		log:          logging.Discard(),
		runID:        uuid.New(),
		vertexByPos:  make(map[geom.Vec]VertexID),
		lineByEnds:   make(map[[2]VertexID]LineID),
		rectByLines:  make(map[[2]LineID]RectangleID),
		cuboidByFace: make(map[[2]RectangleID]CuboidID),
		spaceByRoom:  make(map[int]SpaceID),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("run_id", m.runID.String())
	m.index = newSpatialIndex(m.tol.Planar)
	return m
}

// RunID identifies this model in logs and metrics.
func (m *Model) RunID() uuid.UUID { return m.runID }

// Tolerances returns the thresholds the model compares with.
func (m *Model) Tolerances() geom.Tolerances { return m.tol }

// Conformed reports whether MakeConformal has completed.
func (m *Model) Conformed() bool { return m.conformed }
