package conform

import (
	"github.com/chazu/conformal/pkg/geom"
	"github.com/chazu/conformal/pkg/room"
)

// AddSpace ingests one room: its corners are registered, its edges and
// faces are built on shared lines and rectangles, and its box on a shared
// cuboid. Geometry that is not an axis-aligned box is a configuration
// error and leaves the model untouched.
func (m *Model) AddSpace(r room.Room) (*Space, error) {
	const op = "add_space"
	if m.conformed {
		return nil, configErrorf(op, "model is already conformed")
	}
	if err := room.Join(r.Validate()); err != nil {
		return nil, configErrorf(op, "%v", err)
	}
	if _, dup := m.spaceByRoom[r.ID]; dup {
		return nil, configErrorf(op, "room %d already added", r.ID)
	}
	corners := r.CornerPoints()
	if err := m.checkBox(corners); err != nil {
		return nil, err
	}

	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo, hi = geom.Min(lo, c), geom.Max(hi, c)
	}
	sp := &Space{
		ID:     SpaceID(len(m.spaces)),
		RoomID: r.ID,
		Type:   r.Type,
		Min:    lo,
		Max:    hi,
		m:      m,
	}
	m.spaces = append(m.spaces, sp)
	m.spaceByRoom[r.ID] = sp.ID

	for i, c := range corners {
		vid, _ := m.vertexFor(c)
		pt := &Point{ID: PointID(len(m.points)), Space: sp.ID, Vertex: vid, Coord: c}
		m.points = append(m.points, pt)
		sp.Points[i] = pt.ID
	}
	for i, pair := range room.EdgeCorners {
		eid, err := m.addEdge(sp, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		sp.Edges[i] = eid
	}
	for _, f := range room.Facings {
		sid, err := m.addSurface(sp, f, r.FaceType(f))
		if err != nil {
			return nil, err
		}
		sp.Surfaces[f] = sid
	}

	cid, err := m.cuboidFromBox(lo, hi)
	if err != nil {
		return nil, err
	}
	sp.cuboids = []CuboidID{cid}
	m.cuboids[cid].addSpace(sp.ID)

	for _, pid := range sp.Points {
		sp.CheckVertex(m.points[pid].Vertex)
	}

	m.log.Debug("space added", "room", r.ID, "space", sp.ID, "type", r.Type)
	m.metrics.UpdateModel(len(m.vertices), len(m.lineOrder), len(m.rectOrder), len(m.cuboidOrder), len(m.spaces))
	return sp, nil
}

// checkBox verifies that the corners are exactly the corners of a box of
// positive volume, in canonical order, before anything is registered.
func (m *Model) checkBox(c [8]geom.Vec) error {
	for _, pair := range room.EdgeCorners {
		if err := m.checkEdge(c[pair[0]], c[pair[1]]); err != nil {
			return err
		}
	}
	for _, f := range room.Facings {
		if err := m.checkFace(c, f); err != nil {
			return err
		}
	}
	lo, hi := c[0], c[0]
	for _, p := range c[1:] {
		lo, hi = geom.Min(lo, p), geom.Max(hi, p)
	}
	for i, p := range c {
		for axis := 0; axis < 3; axis++ {
			v := geom.Component(p, axis)
			if v != geom.Component(lo, axis) && v != geom.Component(hi, axis) {
				return configErrorf("add_space", "corner %d %v is not a box corner", i, p)
			}
		}
	}
	return nil
}

func (m *Model) checkEdge(a, b geom.Vec) error {
	if geom.Dist(a, b) < m.tol.Planar {
		return configErrorf("add_edge", "degenerate edge at %v", a)
	}
	if !geom.AxisAligned(a, b, m.tol.Planar) {
		return configErrorf("add_edge", "edge %v-%v is not axis-aligned", a, b)
	}
	return nil
}

func (m *Model) checkFace(c [8]geom.Vec, f room.Facing) error {
	idx := room.FaceCorners[f]
	a, b, d := c[idx[0]], c[idx[1]], c[idx[3]]
	n, ok := geom.PlaneNormal(a, b, d)
	if !ok {
		return configErrorf("add_surface", "%s face is degenerate", f)
	}
	if geom.Axis(n, m.tol.Vector) < 0 {
		return configErrorf("add_surface", "%s face is not axis-aligned", f)
	}
	if !geom.Coplanar(c[idx[2]], a, b, d, m.tol.Planar) {
		return configErrorf("add_surface", "%s face is not planar", f)
	}
	return nil
}

// addEdge builds the edge between corners i and j of sp on a shared line.
func (m *Model) addEdge(sp *Space, i, j int) (EdgeID, error) {
	pa, pb := m.points[sp.Points[i]], m.points[sp.Points[j]]
	if err := m.checkEdge(pa.Coord, pb.Coord); err != nil {
		return 0, err
	}
	lid, err := m.lineFor(pa.Vertex, pb.Vertex)
	if err != nil {
		return 0, err
	}
	e := &Edge{
		ID:     EdgeID(len(m.edges)),
		Space:  sp.ID,
		Points: [2]PointID{pa.ID, pb.ID},
		A:      pa.Coord,
		B:      pb.Coord,
		lines:  []LineID{lid},
		m:      m,
	}
	m.edges = append(m.edges, e)
	m.lines[lid].addEdge(e.ID)
	return e.ID, nil
}

// addSurface builds the face of sp looking towards f on a shared
// rectangle.
func (m *Model) addSurface(sp *Space, f room.Facing, typ string) (SurfaceID, error) {
	idx := room.FaceCorners[f]
	s := &Surface{
		ID:     SurfaceID(len(m.surfaces)),
		Space:  sp.ID,
		Facing: f,
		Type:   typ,
		m:      m,
	}
	var lines [4]LineID
	for k := 0; k < 4; k++ {
		a, b := idx[k], idx[(k+1)%4]
		eid, ok := sp.edgeBetween(a, b)
		if !ok {
			return 0, configErrorf("add_surface", "%s face has no edge %d-%d", f, a, b)
		}
		s.Edges[k] = eid
		lines[k] = m.edges[eid].lines[0]
		s.Corners[k] = m.points[sp.Points[a]].Coord
	}
	s.Min, s.Max = s.Corners[0], s.Corners[0]
	for _, c := range s.Corners[1:] {
		s.Min, s.Max = geom.Min(s.Min, c), geom.Max(s.Max, c)
	}
	if geom.Axis(s.Max.Sub(s.Min), m.tol.Planar) >= 0 {
		return 0, configErrorf("add_surface", "%s face is degenerate", f)
	}

	rid, err := m.rectangleFor(lines)
	if err != nil {
		return 0, err
	}
	s.rectangles = []RectangleID{rid}
	m.surfaces = append(m.surfaces, s)
	m.rectangles[rid].addSurface(s.ID)
	return s.ID, nil
}

// edgeBetween finds the space's edge joining corners a and b.
func (sp *Space) edgeBetween(a, b int) (EdgeID, bool) {
	for i, pair := range room.EdgeCorners {
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return sp.Edges[i], true
		}
	}
	return 0, false
}
