package conform

import (
	"slices"

	"github.com/chazu/conformal/pkg/geom"
)

// LineID is a handle into the line arena.
type LineID int

// Line is a straight segment between two distinct vertices. No two active
// lines share the same unordered vertex pair.
type Line struct {
	ID       LineID
	Vertices [2]VertexID
	A, B     geom.Vec

	Deleted    bool
	Structural bool
	Zoned      bool
	Thickness  float64

	// Children are the lines that replaced this one when it was split.
	Children []LineID

	edges      []EdgeID
	rectangles []RectangleID
}

// Length returns the Euclidean length.
func (l *Line) Length() float64 { return geom.Dist(l.A, l.B) }

// Midpoint returns the center of the segment.
func (l *Line) Midpoint() geom.Vec { return l.A.Add(l.B).MulScalar(0.5) }

// Direction returns B - A.
func (l *Line) Direction() geom.Vec { return l.B.Sub(l.A) }

// Edges returns the shadow edges currently built on this line.
func (l *Line) Edges() []EdgeID { return slices.Clone(l.edges) }

// Rectangles returns the rectangles bounded by this line.
func (l *Line) Rectangles() []RectangleID { return slices.Clone(l.rectangles) }

// HasVertex reports whether v is an endpoint.
func (l *Line) HasVertex(v VertexID) bool {
	return l.Vertices[0] == v || l.Vertices[1] == v
}

// Other returns the endpoint that is not v.
func (l *Line) Other(v VertexID) VertexID {
	if l.Vertices[0] == v {
		return l.Vertices[1]
	}
	return l.Vertices[0]
}

func (l *Line) sharesVertex(o *Line) bool {
	return l.HasVertex(o.Vertices[0]) || l.HasVertex(o.Vertices[1])
}

// Contains reports whether p lies strictly between the endpoints: colinear
// within the vector tolerance, within the planar tolerance of the segment,
// and not on an endpoint.
func (l *Line) Contains(p geom.Vec, tol geom.Tolerances) bool {
	if geom.Near(p, l.A, tol.Planar) || geom.Near(p, l.B, tol.Planar) {
		return false
	}
	if !geom.Colinear(p, l.A, l.B, tol.Vector) {
		return false
	}
	if geom.Dist(p, geom.ClosestPoint(p, l.A, l.B)) >= tol.Planar {
		return false
	}
	n := l.Length()
	return geom.Dist(l.A, p) < n && geom.Dist(l.B, p) < n
}

// Intersects returns the interior crossing point with o, if any.
func (l *Line) Intersects(o *Line, tol geom.Tolerances) (geom.Vec, bool) {
	return geom.SegmentIntersection(l.A, l.B, o.A, o.B, tol)
}

func (l *Line) addEdge(e EdgeID) {
	if !slices.Contains(l.edges, e) {
		l.edges = append(l.edges, e)
	}
}

func (l *Line) addRectangle(r RectangleID) {
	if !slices.Contains(l.rectangles, r) {
		l.rectangles = append(l.rectangles, r)
	}
}

func lineKey(a, b VertexID) [2]VertexID {
	if a > b {
		a, b = b, a
	}
	return [2]VertexID{a, b}
}

// LineFor returns the active line between a and b, creating it if needed.
func (m *Model) LineFor(a, b VertexID) (*Line, error) {
	if err := m.checkVertexID("line_for", a, b); err != nil {
		return nil, err
	}
	id, err := m.lineFor(a, b)
	if err != nil {
		return nil, err
	}
	return m.lines[id], nil
}

func (m *Model) lineFor(a, b VertexID) (LineID, error) {
	if a == b {
		return 0, configErrorf("line_for", "degenerate line at vertex %d", a)
	}
	key := lineKey(a, b)
	if id, ok := m.lineByEnds[key]; ok {
		return id, nil
	}
	id := LineID(len(m.lines))
	l := &Line{
		ID:       id,
		Vertices: [2]VertexID{a, b},
		A:        m.coord(a),
		B:        m.coord(b),
	}
	m.lines = append(m.lines, l)
	m.lineOrder = append(m.lineOrder, id)
	m.lineByEnds[key] = id
	m.index.insert(kindLine, int(id), l.A, l.B)
	return id, nil
}

func (m *Model) retireLine(l *Line) {
	l.Deleted = true
	key := lineKey(l.Vertices[0], l.Vertices[1])
	if m.lineByEnds[key] == l.ID {
		delete(m.lineByEnds, key)
	}
	m.index.remove(kindLine, int(l.ID))
}

func (m *Model) checkVertexID(op string, ids ...VertexID) error {
	for _, id := range ids {
		if id < 0 || int(id) >= len(m.vertices) {
			return configErrorf(op, "unknown vertex %d", id)
		}
	}
	return nil
}
