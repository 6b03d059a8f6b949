package conform

import (
	"slices"

	"github.com/chazu/conformal/pkg/geom"
)

// RectangleID is a handle into the rectangle arena.
type RectangleID int

// Rectangle is a planar axis-aligned quadrilateral bounded by four lines.
// Lines[i] runs from Vertices[i] to Vertices[(i+1)%4], so Lines[0] and
// Lines[2] are opposite, as are Lines[1] and Lines[3].
type Rectangle struct {
	ID       RectangleID
	Lines    [4]LineID
	Vertices [4]VertexID
	Corners  [4]geom.Vec
	Normal   geom.Vec
	Center   geom.Vec

	Deleted    bool
	Structural bool
	Zoned      bool
	Horizontal bool
	Thickness  float64
	Loading    float64

	// Children are the rectangles that replaced this one when it was split.
	Children []RectangleID

	surfaces []SurfaceID
	cuboids  []CuboidID
}

// Area returns the area of the face.
func (r *Rectangle) Area() float64 {
	return geom.QuadArea(r.Corners[0], r.Corners[1], r.Corners[2], r.Corners[3])
}

// Bounds returns the axis-aligned extent.
func (r *Rectangle) Bounds() (lo, hi geom.Vec) {
	lo, hi = r.Corners[0], r.Corners[0]
	for _, c := range r.Corners[1:] {
		lo, hi = geom.Min(lo, c), geom.Max(hi, c)
	}
	return lo, hi
}

// Surfaces returns the shadow surfaces built on this rectangle.
func (r *Rectangle) Surfaces() []SurfaceID { return slices.Clone(r.surfaces) }

// SurfaceCount is 1 for an exterior face and 2 for a face shared by two
// rooms.
func (r *Rectangle) SurfaceCount() int { return len(r.surfaces) }

// Cuboids returns the cuboids bounded by this rectangle.
func (r *Rectangle) Cuboids() []CuboidID { return slices.Clone(r.cuboids) }

// HasVertex reports whether v is a corner.
func (r *Rectangle) HasVertex(v VertexID) bool {
	return slices.Contains(r.Vertices[:], v)
}

// HasLine reports whether l bounds the rectangle.
func (r *Rectangle) HasLine(l LineID) bool {
	return slices.Contains(r.Lines[:], l)
}

// Contains reports whether p lies on the face (interior or boundary) but
// is not one of its corners.
func (r *Rectangle) Contains(p geom.Vec, tol geom.Tolerances) bool {
	for _, c := range r.Corners {
		if geom.Near(p, c, tol.Planar) {
			return false
		}
	}
	c := r.Corners
	if !geom.Coplanar(p, c[0], c[1], c[2], tol.Planar) {
		return false
	}
	lo, hi := r.Bounds()
	if !inBox(p, lo, hi, tol.Planar) {
		return false
	}
	return geom.InTriangle(p, c[0], c[1], c[2], tol.Planar) ||
		geom.InTriangle(p, c[0], c[2], c[3], tol.Planar)
}

// Intersects returns the point where l pierces the face, if any. Lines
// lying in the plane never intersect.
func (r *Rectangle) Intersects(l *Line, tol geom.Tolerances) (geom.Vec, bool) {
	p, ok := geom.SegmentPlane(l.A, l.B, r.Corners[0], r.Normal, tol)
	if !ok {
		return geom.Vec{}, false
	}
	p = geom.SnapConstant(p, tol.Planar, r.Corners[:]...)
	if !r.Contains(p, tol) {
		return geom.Vec{}, false
	}
	return p, true
}

func (r *Rectangle) addSurface(s SurfaceID) {
	if !slices.Contains(r.surfaces, s) {
		r.surfaces = append(r.surfaces, s)
	}
}

func (r *Rectangle) addCuboid(c CuboidID) {
	if !slices.Contains(r.cuboids, c) {
		r.cuboids = append(r.cuboids, c)
	}
}

func inBox(p, lo, hi geom.Vec, tol float64) bool {
	return p.X >= lo.X-tol && p.X <= hi.X+tol &&
		p.Y >= lo.Y-tol && p.Y <= hi.Y+tol &&
		p.Z >= lo.Z-tol && p.Z <= hi.Z+tol
}

func pairKey[T ~int](a, b T) [2]T {
	if a > b {
		a, b = b, a
	}
	return [2]T{a, b}
}

// RectangleFor returns the active rectangle bounded by the four lines,
// given in any order, creating it if needed. The lines must close an
// axis-aligned rectangle: one pair parallel and disjoint, the other pair
// perpendicular to it and joining their endpoints.
func (m *Model) RectangleFor(l0, l1, l2, l3 LineID) (*Rectangle, error) {
	id, err := m.rectangleFor([4]LineID{l0, l1, l2, l3})
	if err != nil {
		return nil, err
	}
	return m.rectangles[id], nil
}

func (m *Model) rectangleFor(in [4]LineID) (RectangleID, error) {
	lines, verts, err := m.orderRectangle(in)
	if err != nil {
		return 0, err
	}
	if id, ok := m.rectByLines[pairKey(lines[0], lines[2])]; ok {
		return id, nil
	}
	if id, ok := m.rectByLines[pairKey(lines[1], lines[3])]; ok {
		return id, nil
	}

	id := RectangleID(len(m.rectangles))
	r := &Rectangle{ID: id, Lines: lines, Vertices: verts}
	var sum geom.Vec
	for i, v := range verts {
		r.Corners[i] = m.coord(v)
		sum = sum.Add(r.Corners[i])
	}
	r.Center = sum.MulScalar(0.25)
	c := r.Corners
	r.Normal = c[1].Sub(c[0]).Cross(c[3].Sub(c[0])).Normalize()
	r.Horizontal = geom.Parallel(r.Normal, geom.V(0, 0, 1), m.tol.Vector)

	m.rectangles = append(m.rectangles, r)
	m.rectOrder = append(m.rectOrder, id)
	m.rectByLines[pairKey(lines[0], lines[2])] = id
	m.rectByLines[pairKey(lines[1], lines[3])] = id
	lo, hi := r.Bounds()
	m.index.insert(kindRectangle, int(id), lo, hi)
	m.associateLines(r)
	return id, nil
}

// orderRectangle validates four lines and orders them as a ring starting
// from the first.
func (m *Model) orderRectangle(in [4]LineID) ([4]LineID, [4]VertexID, error) {
	const op = "rectangle_for"
	var (
		lines [4]LineID
		verts [4]VertexID
		ls    [4]*Line
	)
	for i, id := range in {
		if id < 0 || int(id) >= len(m.lines) {
			return lines, verts, configErrorf(op, "unknown line %d", id)
		}
		for _, prev := range in[:i] {
			if prev == id {
				return lines, verts, configErrorf(op, "line %d given twice", id)
			}
		}
		ls[i] = m.lines[id]
		if !geom.AxisAligned(ls[i].A, ls[i].B, m.tol.Planar) {
			return lines, verts, configErrorf(op, "line %d is not axis-aligned", id)
		}
	}

	base := ls[0]
	opp := -1
	var conns []int
	for i := 1; i < 4; i++ {
		switch {
		case geom.Parallel(base.Direction(), ls[i].Direction(), m.tol.Vector) && !base.sharesVertex(ls[i]):
			if opp >= 0 {
				return lines, verts, configErrorf(op, "lines %v have no unique opposite to %d", in, base.ID)
			}
			opp = i
		case geom.Perpendicular(base.Direction(), ls[i].Direction(), m.tol.Vector):
			conns = append(conns, i)
		default:
			return lines, verts, configErrorf(op, "line %d is neither parallel nor perpendicular to %d", ls[i].ID, base.ID)
		}
	}
	if opp < 0 || len(conns) != 2 {
		return lines, verts, configErrorf(op, "lines %v do not form a rectangle", in)
	}

	a, b := base.Vertices[0], base.Vertices[1]
	var fromB, fromA *Line
	for _, i := range conns {
		switch {
		case ls[i].HasVertex(b) && fromB == nil:
			fromB = ls[i]
		case ls[i].HasVertex(a) && fromA == nil:
			fromA = ls[i]
		}
	}
	if fromB == nil || fromA == nil {
		return lines, verts, configErrorf(op, "lines %v do not share corners", in)
	}
	c, d := fromB.Other(b), fromA.Other(a)
	if c == d || !ls[opp].HasVertex(c) || !ls[opp].HasVertex(d) {
		return lines, verts, configErrorf(op, "lines %v do not close", in)
	}
	if !geom.Coplanar(m.coord(d), m.coord(a), m.coord(b), m.coord(c), m.tol.Planar) {
		return lines, verts, configErrorf(op, "lines %v are not planar", in)
	}

	lines = [4]LineID{base.ID, fromB.ID, ls[opp].ID, fromA.ID}
	verts = [4]VertexID{a, b, c, d}
	return lines, verts, nil
}

// rectangleFromCorners builds (or finds) the rectangle on ring a-b-c-d.
func (m *Model) rectangleFromCorners(a, b, c, d VertexID) (RectangleID, error) {
	ring := [4]VertexID{a, b, c, d}
	var lines [4]LineID
	for i := range ring {
		id, err := m.lineFor(ring[i], ring[(i+1)%4])
		if err != nil {
			return 0, err
		}
		lines[i] = id
	}
	return m.rectangleFor(lines)
}

// associateLines registers r with each of its lines. Calling it again is
// a no-op.
func (m *Model) associateLines(r *Rectangle) {
	for _, lid := range r.Lines {
		m.lines[lid].addRectangle(r.ID)
	}
}

func (m *Model) retireRectangle(r *Rectangle) {
	r.Deleted = true
	for _, key := range [][2]LineID{pairKey(r.Lines[0], r.Lines[2]), pairKey(r.Lines[1], r.Lines[3])} {
		if m.rectByLines[key] == r.ID {
			delete(m.rectByLines, key)
		}
	}
	m.index.remove(kindRectangle, int(r.ID))
}
