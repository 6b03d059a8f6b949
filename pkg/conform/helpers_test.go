package conform

import (
	"fmt"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/conformal/pkg/geom"
	"github.com/chazu/conformal/pkg/room"
)

const areaTol = 1e-6

// build adds the rooms to a fresh model and conforms it.
func build(t *testing.T, rooms ...room.Room) *Model {
	t.Helper()
	m := New()
	for _, r := range rooms {
		_, err := m.AddSpace(r)
		require.NoError(t, err, "room %d", r.ID)
	}
	require.NoError(t, m.MakeConformal())
	return m
}

func box(id int, x, y, z, w, d, h float64) room.Room {
	return room.Box(id, geom.V(x, y, z), w, d, h)
}

// vertexAt returns the registered vertex at p, failing if there is none.
func vertexAt(t *testing.T, m *Model, x, y, z float64) VertexID {
	t.Helper()
	v, ok := m.LookupVertex(geom.V(x, y, z))
	require.True(t, ok, "no vertex at (%v,%v,%v)", x, y, z)
	return v.ID
}

// lineAt returns the active line joining the two points.
func lineAt(t *testing.T, m *Model, a, b geom.Vec) *Line {
	t.Helper()
	va, ok := m.LookupVertex(a)
	require.True(t, ok)
	vb, ok := m.LookupVertex(b)
	require.True(t, ok)
	id, ok := m.lineByEnds[lineKey(va.ID, vb.ID)]
	require.True(t, ok, "no active line %v-%v", a, b)
	return m.lines[id]
}

// checkConformal asserts every structural property a conformed model must
// have.
func checkConformal(t *testing.T, m *Model) {
	t.Helper()
	require.NoError(t, invariantError(m))
}

func invariantError(m *Model) error {
	tol := m.Tolerances()

	// Registry: one vertex per coordinate.
	coords := make(map[geom.Vec]bool)
	for i := 0; i < m.NumVertices(); i++ {
		v := m.MustVertex(i)
		if coords[v.Coord] {
			return fmt.Errorf("duplicate vertex at %v", v.Coord)
		}
		coords[v.Coord] = true
	}

	// Active lists hold live, unique primitives.
	pairs := make(map[[2]VertexID]bool)
	for i := 0; i < m.NumLines(); i++ {
		l := m.MustLine(i)
		k := lineKey(l.Vertices[0], l.Vertices[1])
		switch {
		case l.Deleted:
			return fmt.Errorf("line %d retired but listed", l.ID)
		case pairs[k]:
			return fmt.Errorf("duplicate line %v", k)
		}
		pairs[k] = true
	}
	rings := make(map[[4]VertexID]bool)
	for i := 0; i < m.NumRectangles(); i++ {
		r := m.MustRectangle(i)
		k := r.Vertices
		slices.Sort(k[:])
		switch {
		case r.Deleted:
			return fmt.Errorf("rectangle %d retired but listed", r.ID)
		case rings[k]:
			return fmt.Errorf("duplicate rectangle %v", k)
		}
		rings[k] = true
		for _, lid := range r.Lines {
			if m.lines[lid].Deleted || !slices.Contains(m.lines[lid].rectangles, r.ID) {
				return fmt.Errorf("rectangle %d not associated with line %d", r.ID, lid)
			}
		}
	}
	for i := 0; i < m.NumCuboids(); i++ {
		if c := m.MustCuboid(i); c.Deleted {
			return fmt.Errorf("cuboid %d retired but listed", c.ID)
		}
	}

	// No vertex lies inside any active primitive.
	for i := 0; i < m.NumVertices(); i++ {
		p := m.MustVertex(i).Coord
		for j := 0; j < m.NumLines(); j++ {
			if l := m.MustLine(j); l.Contains(p, tol) {
				return fmt.Errorf("line %d contains %v", l.ID, p)
			}
		}
		for j := 0; j < m.NumRectangles(); j++ {
			if r := m.MustRectangle(j); r.Contains(p, tol) {
				return fmt.Errorf("rectangle %d contains %v", r.ID, p)
			}
		}
		for j := 0; j < m.NumCuboids(); j++ {
			if c := m.MustCuboid(j); c.Contains(p, tol) {
				return fmt.Errorf("cuboid %d contains %v", c.ID, p)
			}
		}
	}

	// Shadow nodes are tiled exactly by live primitives.
	for i := 0; i < m.NumEdges(); i++ {
		e := m.MustEdge(i)
		sum := 0.0
		for _, lid := range e.Lines() {
			l := m.lines[lid]
			if l.Deleted || !slices.Contains(l.edges, e.ID) {
				return fmt.Errorf("edge %d: bad line %d", e.ID, lid)
			}
			sum += l.Length()
		}
		if !approx(e.Length(), sum) {
			return fmt.Errorf("edge %d: length %v covered by %v", e.ID, e.Length(), sum)
		}
	}
	for i := 0; i < m.NumSurfaces(); i++ {
		s := m.MustSurface(i)
		sum := 0.0
		for _, rid := range s.Rectangles() {
			r := m.rectangles[rid]
			if r.Deleted || !slices.Contains(r.surfaces, s.ID) {
				return fmt.Errorf("surface %d: bad rectangle %d", s.ID, rid)
			}
			sum += r.Area()
		}
		if !approx(s.Area(), sum) {
			return fmt.Errorf("surface %d: area %v covered by %v", s.ID, s.Area(), sum)
		}
	}
	for i := 0; i < m.NumSpaces(); i++ {
		sp := m.MustSpace(i)
		sum := 0.0
		for _, cid := range sp.Cuboids() {
			c := m.cuboids[cid]
			if c.Deleted || !slices.Contains(c.spaces, sp.ID) {
				return fmt.Errorf("space %d: bad cuboid %d", sp.ID, cid)
			}
			sum += c.Volume()
		}
		if !approx(sp.Volume(), sum) {
			return fmt.Errorf("space %d: volume %v filled by %v", sp.ID, sp.Volume(), sum)
		}
	}
	return nil
}

func totalArea(m *Model, ids []RectangleID) float64 {
	sum := 0.0
	for _, id := range ids {
		sum += m.rectangles[id].Area()
	}
	return sum
}

func approx(a, b float64) bool { return math.Abs(a-b) < areaTol }
