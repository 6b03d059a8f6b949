package conform

import (
	"slices"

	"github.com/chazu/conformal/pkg/geom"
	"github.com/chazu/conformal/pkg/room"
)

// CuboidID is a handle into the cuboid arena.
type CuboidID int

// Cuboid is an axis-aligned box bounded by six rectangles, stored in
// room.Facings order.
type Cuboid struct {
	ID         CuboidID
	Rectangles [6]RectangleID
	Vertices   [8]VertexID
	Min, Max   geom.Vec

	Deleted    bool
	Structural bool
	Zoned      bool

	// Children are the cuboids that replaced this one when it was split.
	Children []CuboidID

	spaces []SpaceID
}

// Volume returns the box volume.
func (c *Cuboid) Volume() float64 {
	d := c.Max.Sub(c.Min)
	return d.X * d.Y * d.Z
}

// Spaces returns the spaces this cuboid currently belongs to.
func (c *Cuboid) Spaces() []SpaceID { return slices.Clone(c.spaces) }

// Face returns the rectangle on side f.
func (c *Cuboid) Face(f room.Facing) RectangleID { return c.Rectangles[f] }

// Contains reports whether p lies in the closed box strictly inside it
// along at least one axis, that is, anywhere but on a corner.
func (c *Cuboid) Contains(p geom.Vec, tol geom.Tolerances) bool {
	if !inBox(p, c.Min, c.Max, tol.Planar) {
		return false
	}
	return len(c.cutAxes(p, tol)) > 0
}

// cutAxes returns the axes along which p is strictly inside.
func (c *Cuboid) cutAxes(p geom.Vec, tol geom.Tolerances) []int {
	var axes []int
	for i := 0; i < 3; i++ {
		v := geom.Component(p, i)
		if v > geom.Component(c.Min, i)+tol.Planar && v < geom.Component(c.Max, i)-tol.Planar {
			axes = append(axes, i)
		}
	}
	return axes
}

func (c *Cuboid) addSpace(s SpaceID) {
	if !slices.Contains(c.spaces, s) {
		c.spaces = append(c.spaces, s)
	}
}

// CuboidFor returns the active cuboid spanning lo..hi, creating it and its
// vertices, lines and rectangles if needed.
func (m *Model) CuboidFor(lo, hi geom.Vec) (*Cuboid, error) {
	for i := 0; i < 3; i++ {
		if geom.Component(hi, i)-geom.Component(lo, i) < m.tol.Planar {
			return nil, configErrorf("cuboid_for", "box %v-%v has no extent along axis %d", lo, hi, i)
		}
	}
	id, err := m.cuboidFromBox(lo, hi)
	if err != nil {
		return nil, err
	}
	return m.cuboids[id], nil
}

// cuboidFromBox builds (or finds) the cuboid spanning lo..hi together with
// its vertices, lines and rectangles.
func (m *Model) cuboidFromBox(lo, hi geom.Vec) (CuboidID, error) {
	corners := room.BoxCorners(lo, hi)
	var verts [8]VertexID
	for i, p := range corners {
		verts[i], _ = m.vertexFor(p)
	}
	var rects [6]RectangleID
	for _, f := range room.Facings {
		idx := room.FaceCorners[f]
		id, err := m.rectangleFromCorners(verts[idx[0]], verts[idx[1]], verts[idx[2]], verts[idx[3]])
		if err != nil {
			return 0, err
		}
		rects[f] = id
	}

	for _, key := range [][2]RectangleID{
		pairKey(rects[room.Top], rects[room.Bottom]),
		pairKey(rects[room.North], rects[room.South]),
		pairKey(rects[room.East], rects[room.West]),
	} {
		if id, ok := m.cuboidByFace[key]; ok {
			return id, nil
		}
	}

	id := CuboidID(len(m.cuboids))
	c := &Cuboid{
		ID:         id,
		Rectangles: rects,
		Vertices:   verts,
		Min:        corners[0],
		Max:        corners[6],
	}
	m.cuboids = append(m.cuboids, c)
	m.cuboidOrder = append(m.cuboidOrder, id)
	m.cuboidByFace[pairKey(rects[room.Top], rects[room.Bottom])] = id
	m.cuboidByFace[pairKey(rects[room.North], rects[room.South])] = id
	m.cuboidByFace[pairKey(rects[room.East], rects[room.West])] = id
	m.index.insert(kindCuboid, int(id), c.Min, c.Max)
	for _, rid := range rects {
		m.rectangles[rid].addCuboid(id)
	}
	return id, nil
}

func (m *Model) retireCuboid(c *Cuboid) {
	c.Deleted = true
	for _, key := range [][2]RectangleID{
		pairKey(c.Rectangles[room.Top], c.Rectangles[room.Bottom]),
		pairKey(c.Rectangles[room.North], c.Rectangles[room.South]),
		pairKey(c.Rectangles[room.East], c.Rectangles[room.West]),
	} {
		if m.cuboidByFace[key] == c.ID {
			delete(m.cuboidByFace, key)
		}
	}
	m.index.remove(kindCuboid, int(c.ID))
}
