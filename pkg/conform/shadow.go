package conform

import (
	"slices"

	"github.com/chazu/conformal/pkg/geom"
	"github.com/chazu/conformal/pkg/room"
)

// Shadow graph handles.
type (
	PointID   int
	EdgeID    int
	SurfaceID int
	SpaceID   int
)

// vertexSet records vertices in insertion order without duplicates.
type vertexSet struct {
	ids []VertexID
	has map[VertexID]bool
}

func (s *vertexSet) add(v VertexID) bool {
	if s.has == nil {
		s.has = make(map[VertexID]bool)
	}
	if s.has[v] {
		return false
	}
	s.has[v] = true
	s.ids = append(s.ids, v)
	return true
}

func (s *vertexSet) list() []VertexID { return slices.Clone(s.ids) }

// resolve replaces every retired handle in ids by its active descendants,
// keeping first-seen order and dropping duplicates. A handle retired by a
// split still in progress has no children yet and is kept as is.
func resolve[T ~int](ids []T, node func(T) (deleted bool, children []T)) []T {
	out := make([]T, 0, len(ids))
	seen := make(map[T]bool, len(ids))
	var walk func(T)
	walk = func(id T) {
		deleted, children := node(id)
		if deleted && len(children) > 0 {
			for _, c := range children {
				walk(c)
			}
			return
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, id := range ids {
		walk(id)
	}
	return out
}

func (m *Model) lineNode(id LineID) (bool, []LineID) {
	l := m.lines[id]
	return l.Deleted, l.Children
}

func (m *Model) rectangleNode(id RectangleID) (bool, []RectangleID) {
	r := m.rectangles[id]
	return r.Deleted, r.Children
}

func (m *Model) cuboidNode(id CuboidID) (bool, []CuboidID) {
	c := m.cuboids[id]
	return c.Deleted, c.Children
}

// ---------------------------------------------------------------------------
// Point
// ---------------------------------------------------------------------------

// Point is a room's own corner, coinciding with one registry vertex.
type Point struct {
	ID     PointID
	Space  SpaceID
	Vertex VertexID
	Coord  geom.Vec
}

// ---------------------------------------------------------------------------
// Edge
// ---------------------------------------------------------------------------

// Edge is a room's own box edge. It starts on one line and, as that line
// is split, ends up covering the chain of its descendants.
type Edge struct {
	ID     EdgeID
	Space  SpaceID
	Points [2]PointID
	A, B   geom.Vec

	lines    []LineID
	vertices vertexSet
	m        *Model
}

// Lines returns the active lines the edge currently covers.
func (e *Edge) Lines() []LineID { return slices.Clone(e.lines) }

// Vertices returns the vertices recorded on the edge.
func (e *Edge) Vertices() []VertexID { return e.vertices.list() }

// Length returns the length of the room edge.
func (e *Edge) Length() float64 { return geom.Dist(e.A, e.B) }

// CheckVertex records v if it lies on the edge and re-resolves the edge's
// lines. It reports whether v was newly recorded.
func (e *Edge) CheckVertex(v VertexID) bool {
	p := e.m.coord(v)
	if !inBox(p, geom.Min(e.A, e.B), geom.Max(e.A, e.B), e.m.tol.Planar) {
		return false
	}
	added := e.vertices.add(v)
	e.resolve()
	return added
}

func (e *Edge) resolve() {
	e.lines = resolve(e.lines, e.m.lineNode)
}

func (e *Edge) replaceLine(old LineID, repl ...LineID) {
	i := slices.Index(e.lines, old)
	if i < 0 {
		return
	}
	e.lines = slices.Delete(e.lines, i, i+1)
	for _, id := range repl {
		if !slices.Contains(e.lines, id) {
			e.lines = append(e.lines, id)
		}
	}
}

// ---------------------------------------------------------------------------
// Surface
// ---------------------------------------------------------------------------

// Surface is a room's own face, tagged with the room's view of it.
type Surface struct {
	ID      SurfaceID
	Space   SpaceID
	Facing  room.Facing
	Type    string
	Edges   [4]EdgeID
	Corners [4]geom.Vec
	Min     geom.Vec
	Max     geom.Vec

	rectangles []RectangleID
	vertices   vertexSet
	m          *Model
}

// Normal is the outward normal of the face as seen from its room.
func (s *Surface) Normal() geom.Vec { return s.Facing.Normal() }

// Area returns the area of the room face.
func (s *Surface) Area() float64 {
	return geom.QuadArea(s.Corners[0], s.Corners[1], s.Corners[2], s.Corners[3])
}

// Rectangles returns the active rectangles tiling the face.
func (s *Surface) Rectangles() []RectangleID { return slices.Clone(s.rectangles) }

// Vertices returns the vertices recorded on the face.
func (s *Surface) Vertices() []VertexID { return s.vertices.list() }

// CheckVertex records v if it lies on the face and re-resolves the
// face's rectangles.
func (s *Surface) CheckVertex(v VertexID) bool {
	if !inBox(s.m.coord(v), s.Min, s.Max, s.m.tol.Planar) {
		return false
	}
	added := s.vertices.add(v)
	s.resolve()
	return added
}

func (s *Surface) resolve() {
	s.rectangles = resolve(s.rectangles, s.m.rectangleNode)
}

func (s *Surface) replaceRectangle(old RectangleID, repl []RectangleID) {
	i := slices.Index(s.rectangles, old)
	if i < 0 {
		return
	}
	s.rectangles = slices.Delete(s.rectangles, i, i+1)
	for _, id := range repl {
		if !slices.Contains(s.rectangles, id) {
			s.rectangles = append(s.rectangles, id)
		}
	}
}

// ---------------------------------------------------------------------------
// Space
// ---------------------------------------------------------------------------

// Space is one input room: 8 points, 12 edges, 6 surfaces indexed by
// facing, and the cuboids that fill it.
type Space struct {
	ID       SpaceID
	RoomID   int
	Type     string
	Points   [8]PointID
	Edges    [12]EdgeID
	Surfaces [6]SurfaceID
	Min, Max geom.Vec

	cuboids  []CuboidID
	vertices vertexSet
	m        *Model
}

// Cuboids returns the active cuboids filling the space.
func (sp *Space) Cuboids() []CuboidID { return slices.Clone(sp.cuboids) }

// Vertices returns every vertex recorded in the closed box of the space.
func (sp *Space) Vertices() []VertexID { return sp.vertices.list() }

// Volume returns the room volume.
func (sp *Space) Volume() float64 {
	d := sp.Max.Sub(sp.Min)
	return d.X * d.Y * d.Z
}

// Surface returns the space's surface facing f.
func (sp *Space) Surface(f room.Facing) *Surface {
	return sp.m.surfaces[sp.Surfaces[f]]
}

// CheckVertex records v if it lies in the closed box of the space, passes
// it on to the space's edges and surfaces, and re-resolves the cuboids.
func (sp *Space) CheckVertex(v VertexID) bool {
	if !inBox(sp.m.coord(v), sp.Min, sp.Max, sp.m.tol.Planar) {
		return false
	}
	added := sp.vertices.add(v)
	for _, eid := range sp.Edges {
		sp.m.edges[eid].CheckVertex(v)
	}
	for _, sid := range sp.Surfaces {
		sp.m.surfaces[sid].CheckVertex(v)
	}
	sp.resolve()
	return added
}

func (sp *Space) resolve() {
	sp.cuboids = resolve(sp.cuboids, sp.m.cuboidNode)
}

func (sp *Space) replaceCuboid(old CuboidID, repl []CuboidID) {
	i := slices.Index(sp.cuboids, old)
	if i < 0 {
		return
	}
	sp.cuboids = slices.Delete(sp.cuboids, i, i+1)
	for _, id := range repl {
		if !slices.Contains(sp.cuboids, id) {
			sp.cuboids = append(sp.cuboids, id)
		}
	}
}
