package conform

import (
	"github.com/chazu/conformal/pkg/geom"
)

// propagate splits every active primitive containing v: lines first,
// then rectangles, then cuboids. Splits register further vertices and so
// re-enter propagate; a primitive is retired before its replacement
// points are registered, which keeps re-entry from touching it again.
func (m *Model) propagate(v VertexID) (bool, error) {
	p := m.coord(v)
	split := false
	for {
		n := 0
		for _, key := range m.index.search(p, p) {
			var err error
			switch key.kind {
			case kindLine:
				l := m.lines[key.id]
				if l.Deleted || !l.Contains(p, m.tol) {
					continue
				}
				err = m.splitLine(l, v)
			case kindRectangle:
				r := m.rectangles[key.id]
				if r.Deleted || !r.Contains(p, m.tol) {
					continue
				}
				err = m.splitRectangle(r, v)
			case kindCuboid:
				c := m.cuboids[key.id]
				if c.Deleted || !c.Contains(p, m.tol) {
					continue
				}
				err = m.splitCuboid(c, v)
			default:
				continue
			}
			if err != nil {
				return split, err
			}
			n++
		}
		if n == 0 {
			return split, nil
		}
		split = true
	}
}

// splitLine replaces l by [v0,v] and [v,v1], moves every edge over to the
// pair and lets the edges' spaces pick up v.
func (m *Model) splitLine(l *Line, v VertexID) error {
	m.retireLine(l)

	c1, err := m.lineFor(l.Vertices[0], v)
	if err != nil {
		return err
	}
	c2, err := m.lineFor(v, l.Vertices[1])
	if err != nil {
		return err
	}
	l.Children = []LineID{c1, c2}
	for _, id := range l.Children {
		child := m.lines[id]
		child.Structural = child.Structural || l.Structural
		child.Thickness = l.Thickness
	}

	for _, eid := range l.edges {
		m.edges[eid].replaceLine(l.ID, c1, c2)
		m.lines[c1].addEdge(eid)
		m.lines[c2].addEdge(eid)
	}
	m.checkAssociatedMembers(l.edges, v)
	l.edges = nil

	m.metrics.RecordSplit(kindLine.String(), 2)
	m.log.Debug("split line", "line", l.ID, "at", m.coord(v), "children", l.Children)
	return nil
}

// checkAssociatedMembers offers v to every space reachable through edges.
// Spaces pass it on to their own edges and surfaces.
func (m *Model) checkAssociatedMembers(edges []EdgeID, vs ...VertexID) {
	seen := make(map[SpaceID]bool)
	for _, eid := range edges {
		sid := m.edges[eid].Space
		if seen[sid] {
			continue
		}
		seen[sid] = true
		for _, v := range vs {
			m.spaces[sid].CheckVertex(v)
		}
	}
}

// splitRectangle replaces r by two rectangles when v is on one of its
// lines and by a 2×2 grid when v is inside the face. New points are
// registered first, so that every neighbor sharing a cut line is split
// too, and only then are the children built on the resulting lines.
func (m *Model) splitRectangle(r *Rectangle, v VertexID) error {
	p := m.coord(v)
	m.retireRectangle(r)

	side := -1
	for i, lid := range r.Lines {
		if m.lines[lid].Contains(p, m.tol) {
			side = i
			break
		}
	}

	c := r.Vertices
	fresh := []VertexID{v}
	var rings [][4]VertexID
	if side >= 0 {
		if l := m.lines[r.Lines[side]]; !l.Deleted {
			if err := m.splitLine(l, v); err != nil {
				return err
			}
		}
		opp := m.lines[r.Lines[(side+2)%4]]
		q, _, err := m.registerVertex(geom.ClosestPoint(p, opp.A, opp.B))
		if err != nil {
			return err
		}
		fresh = append(fresh, q)
		k := side
		rings = [][4]VertexID{
			{c[k], v, q, c[(k+3)%4]},
			{v, c[(k+1)%4], c[(k+2)%4], q},
		}
	} else {
		var q [4]VertexID
		for i, lid := range r.Lines {
			l := m.lines[lid]
			id, _, err := m.registerVertex(geom.ClosestPoint(p, l.A, l.B))
			if err != nil {
				return err
			}
			q[i] = id
			fresh = append(fresh, id)
		}
		rings = [][4]VertexID{
			{c[0], q[0], v, q[3]},
			{q[0], c[1], q[1], v},
			{v, q[1], c[2], q[2]},
			{q[3], v, q[2], c[3]},
		}
	}

	children := make([]RectangleID, 0, len(rings))
	for _, ring := range rings {
		id, err := m.rectangleFromCorners(ring[0], ring[1], ring[2], ring[3])
		if err != nil {
			return err
		}
		child := m.rectangles[id]
		child.Structural = child.Structural || r.Structural
		child.Thickness = r.Thickness
		child.Loading = r.Loading
		children = append(children, id)
	}
	r.Children = children

	for _, sid := range r.surfaces {
		m.surfaces[sid].replaceRectangle(r.ID, children)
		for _, id := range children {
			m.rectangles[id].addSurface(sid)
		}
	}
	seen := make(map[SpaceID]bool)
	for _, sid := range r.surfaces {
		spid := m.surfaces[sid].Space
		if seen[spid] {
			continue
		}
		seen[spid] = true
		for _, fv := range fresh {
			m.spaces[spid].CheckVertex(fv)
		}
	}
	r.surfaces = nil

	m.metrics.RecordSplit(kindRectangle.String(), len(children))
	m.log.Debug("split rectangle", "rectangle", r.ID, "at", p, "children", children)
	return nil
}

// splitCuboid cuts c with the axis planes through v that pass strictly
// inside it, giving 2, 4 or 8 children.
func (m *Model) splitCuboid(c *Cuboid, v VertexID) error {
	p := m.coord(v)
	m.retireCuboid(c)

	var cuts [3][]float64
	for i := 0; i < 3; i++ {
		cuts[i] = []float64{geom.Component(c.Min, i), geom.Component(c.Max, i)}
	}
	for _, axis := range c.cutAxes(p, m.tol) {
		cuts[axis] = []float64{cuts[axis][0], geom.Component(p, axis), cuts[axis][1]}
	}

	var fresh []VertexID
	for _, x := range cuts[0] {
		for _, y := range cuts[1] {
			for _, z := range cuts[2] {
				id, _, err := m.registerVertex(geom.V(x, y, z))
				if err != nil {
					return err
				}
				fresh = append(fresh, id)
			}
		}
	}

	var children []CuboidID
	for xi := 0; xi+1 < len(cuts[0]); xi++ {
		for yi := 0; yi+1 < len(cuts[1]); yi++ {
			for zi := 0; zi+1 < len(cuts[2]); zi++ {
				lo := geom.V(cuts[0][xi], cuts[1][yi], cuts[2][zi])
				hi := geom.V(cuts[0][xi+1], cuts[1][yi+1], cuts[2][zi+1])
				id, err := m.cuboidFromBox(lo, hi)
				if err != nil {
					return err
				}
				child := m.cuboids[id]
				child.Structural = child.Structural || c.Structural
				children = append(children, id)
			}
		}
	}
	c.Children = children

	for _, spid := range c.spaces {
		sp := m.spaces[spid]
		sp.replaceCuboid(c.ID, children)
		for _, id := range children {
			m.cuboids[id].addSpace(spid)
		}
		for _, fv := range fresh {
			sp.CheckVertex(fv)
		}
	}
	c.spaces = nil

	m.metrics.RecordSplit(kindCuboid.String(), len(children))
	m.log.Debug("split cuboid", "cuboid", c.ID, "at", p, "children", children)
	return nil
}
