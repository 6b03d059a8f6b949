package conform

import (
	"github.com/chazu/conformal/pkg/room"
)

func nth[T any](kind string, items []T, i int) (T, error) {
	if i < 0 || i >= len(items) {
		var zero T
		return zero, &LookupError{Kind: kind, Index: i, Len: len(items)}
	}
	return items[i], nil
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// ---------------------------------------------------------------------------
// Shared primitive graph
// ---------------------------------------------------------------------------

// NumVertices returns the number of registered vertices.
func (m *Model) NumVertices() int { return len(m.vertices) }

// Vertex returns the i'th vertex in registration order.
func (m *Model) Vertex(i int) (*Vertex, error) { return nth("vertex", m.vertices, i) }

// MustVertex is like Vertex but panics on a bad index.
func (m *Model) MustVertex(i int) *Vertex { return must(m.Vertex(i)) }

// NumLines returns the number of lines in the active list. Until cleanup
// this includes lines retired by splits.
func (m *Model) NumLines() int { return len(m.lineOrder) }

// Line returns the i'th line of the active list.
func (m *Model) Line(i int) (*Line, error) {
	id, err := nth("line", m.lineOrder, i)
	if err != nil {
		return nil, err
	}
	return m.lines[id], nil
}

// MustLine is like Line but panics on a bad index.
func (m *Model) MustLine(i int) *Line { return must(m.Line(i)) }

// LineByID resolves a line handle, retired or not.
func (m *Model) LineByID(id LineID) (*Line, error) { return nth("line id", m.lines, int(id)) }

// NumRectangles returns the number of rectangles in the active list.
func (m *Model) NumRectangles() int { return len(m.rectOrder) }

// Rectangle returns the i'th rectangle of the active list.
func (m *Model) Rectangle(i int) (*Rectangle, error) {
	id, err := nth("rectangle", m.rectOrder, i)
	if err != nil {
		return nil, err
	}
	return m.rectangles[id], nil
}

// MustRectangle is like Rectangle but panics on a bad index.
func (m *Model) MustRectangle(i int) *Rectangle { return must(m.Rectangle(i)) }

// RectangleByID resolves a rectangle handle, retired or not.
func (m *Model) RectangleByID(id RectangleID) (*Rectangle, error) {
	return nth("rectangle id", m.rectangles, int(id))
}

// NumCuboids returns the number of cuboids in the active list.
func (m *Model) NumCuboids() int { return len(m.cuboidOrder) }

// Cuboid returns the i'th cuboid of the active list.
func (m *Model) Cuboid(i int) (*Cuboid, error) {
	id, err := nth("cuboid", m.cuboidOrder, i)
	if err != nil {
		return nil, err
	}
	return m.cuboids[id], nil
}

// MustCuboid is like Cuboid but panics on a bad index.
func (m *Model) MustCuboid(i int) *Cuboid { return must(m.Cuboid(i)) }

// CuboidByID resolves a cuboid handle, retired or not.
func (m *Model) CuboidByID(id CuboidID) (*Cuboid, error) { return nth("cuboid id", m.cuboids, int(id)) }

// ---------------------------------------------------------------------------
// Shadow graph
// ---------------------------------------------------------------------------

// NumPoints returns the number of room corner points.
func (m *Model) NumPoints() int { return len(m.points) }

// Point returns the i'th point.
func (m *Model) Point(i int) (*Point, error) { return nth("point", m.points, i) }

// MustPoint is like Point but panics on a bad index.
func (m *Model) MustPoint(i int) *Point { return must(m.Point(i)) }

// NumEdges returns the number of room edges.
func (m *Model) NumEdges() int { return len(m.edges) }

// Edge returns the i'th edge.
func (m *Model) Edge(i int) (*Edge, error) { return nth("edge", m.edges, i) }

// MustEdge is like Edge but panics on a bad index.
func (m *Model) MustEdge(i int) *Edge { return must(m.Edge(i)) }

// NumSurfaces returns the number of room surfaces.
func (m *Model) NumSurfaces() int { return len(m.surfaces) }

// Surface returns the i'th surface.
func (m *Model) Surface(i int) (*Surface, error) { return nth("surface", m.surfaces, i) }

// MustSurface is like Surface but panics on a bad index.
func (m *Model) MustSurface(i int) *Surface { return must(m.Surface(i)) }

// NumSpaces returns the number of spaces.
func (m *Model) NumSpaces() int { return len(m.spaces) }

// Space returns the i'th space.
func (m *Model) Space(i int) (*Space, error) { return nth("space", m.spaces, i) }

// MustSpace is like Space but panics on a bad index.
func (m *Model) MustSpace(i int) *Space { return must(m.Space(i)) }

// SpaceByRoom returns the space built from the room with the given ID.
func (m *Model) SpaceByRoom(roomID int) (*Space, error) {
	id, ok := m.spaceByRoom[roomID]
	if !ok {
		return nil, &LookupError{Kind: "room", Index: roomID, Len: len(m.spaces)}
	}
	return m.spaces[id], nil
}

// ---------------------------------------------------------------------------
// Adjacency
// ---------------------------------------------------------------------------

// SurfacesOf returns the room surfaces lying on rectangle id.
func (m *Model) SurfacesOf(id RectangleID) ([]*Surface, error) {
	r, err := m.RectangleByID(id)
	if err != nil {
		return nil, err
	}
	out := make([]*Surface, 0, len(r.surfaces))
	for _, sid := range r.surfaces {
		out = append(out, m.surfaces[sid])
	}
	return out, nil
}

// SpacesOf returns the spaces bounded by rectangle id, one per surface.
func (m *Model) SpacesOf(id RectangleID) ([]*Space, error) {
	surfaces, err := m.SurfacesOf(id)
	if err != nil {
		return nil, err
	}
	out := make([]*Space, 0, len(surfaces))
	for _, s := range surfaces {
		out = append(out, m.spaces[s.Space])
	}
	return out, nil
}

// FacingsOf returns how each adjoining room sees rectangle id.
func (m *Model) FacingsOf(id RectangleID) ([]room.Facing, error) {
	surfaces, err := m.SurfacesOf(id)
	if err != nil {
		return nil, err
	}
	out := make([]room.Facing, 0, len(surfaces))
	for _, s := range surfaces {
		out = append(out, s.Facing)
	}
	return out, nil
}

// IsExternal reports whether exactly one room sees rectangle id. Like the
// Must accessors it panics with a *LookupError on an unknown handle.
func (m *Model) IsExternal(id RectangleID) bool {
	return must(m.RectangleByID(id)).SurfaceCount() == 1
}

// IsInternal reports whether rectangle id separates two rooms. It panics
// like IsExternal.
func (m *Model) IsInternal(id RectangleID) bool {
	return must(m.RectangleByID(id)).SurfaceCount() >= 2
}

// RectanglesOf returns the active rectangles bounded by line id.
func (m *Model) RectanglesOf(id LineID) ([]*Rectangle, error) {
	l, err := m.LineByID(id)
	if err != nil {
		return nil, err
	}
	out := make([]*Rectangle, 0, len(l.rectangles))
	for _, rid := range l.rectangles {
		if r := m.rectangles[rid]; !r.Deleted {
			out = append(out, r)
		}
	}
	return out, nil
}

// EdgesOf returns the room edges lying on line id.
func (m *Model) EdgesOf(id LineID) ([]*Edge, error) {
	l, err := m.LineByID(id)
	if err != nil {
		return nil, err
	}
	out := make([]*Edge, 0, len(l.edges))
	for _, eid := range l.edges {
		out = append(out, m.edges[eid])
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats summarises the model.
type Stats struct {
	Vertices   int `json:"vertices"`
	Lines      int `json:"lines"`
	Rectangles int `json:"rectangles"`
	Cuboids    int `json:"cuboids"`
	Points     int `json:"points"`
	Edges      int `json:"edges"`
	Surfaces   int `json:"surfaces"`
	Spaces     int `json:"spaces"`

	Retired   int  `json:"retired"`
	Internal  int  `json:"internal_rectangles"`
	External  int  `json:"external_rectangles"`
	Conformed bool `json:"conformed"`
}

// Stats counts the model's primitives.
func (m *Model) Stats() Stats {
	s := Stats{
		Vertices:   len(m.vertices),
		Lines:      len(m.lineOrder),
		Rectangles: len(m.rectOrder),
		Cuboids:    len(m.cuboidOrder),
		Points:     len(m.points),
		Edges:      len(m.edges),
		Surfaces:   len(m.surfaces),
		Spaces:     len(m.spaces),
		Conformed:  m.conformed,
	}
	for _, l := range m.lines {
		if l.Deleted {
			s.Retired++
		}
	}
	for _, r := range m.rectangles {
		if r.Deleted {
			s.Retired++
		}
	}
	for _, c := range m.cuboids {
		if c.Deleted {
			s.Retired++
		}
	}
	for _, id := range m.rectOrder {
		switch n := m.rectangles[id].SurfaceCount(); {
		case n == 1:
			s.External++
		case n >= 2:
			s.Internal++
		}
	}
	return s
}
