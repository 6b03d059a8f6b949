package conform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/conformal/pkg/geom"
	"github.com/chazu/conformal/pkg/room"
)

func TestSingleRoom(t *testing.T) {
	m := build(t, box(1, 0, 0, 0, 1, 1, 1))

	st := m.Stats()
	assert.Equal(t, Stats{
		Vertices: 8, Lines: 12, Rectangles: 6, Cuboids: 1,
		Points: 8, Edges: 12, Surfaces: 6, Spaces: 1,
		External: 6, Conformed: true,
	}, st)
	checkConformal(t, m)

	sp := m.MustSpace(0)
	assert.Equal(t, 1, sp.RoomID)
	for _, f := range room.Facings {
		s := sp.Surface(f)
		assert.Equal(t, f, s.Facing)
		require.Len(t, s.Rectangles(), 1)
		assert.True(t, m.IsExternal(s.Rectangles()[0]))
	}
	assert.Equal(t, room.TypeFloor, sp.Surface(room.Bottom).Type)
	assert.Equal(t, room.TypeWall, sp.Surface(room.North).Type)
}

// Two unit cubes sharing the face x=1: nothing needs splitting and the
// shared face exists once.
func TestAdjacentRoomsShareFace(t *testing.T) {
	m := build(t,
		box(1, 0, 0, 0, 1, 1, 1),
		box(2, 1, 0, 0, 1, 1, 1),
	)

	assert.Equal(t, 12, m.NumVertices())
	assert.Equal(t, 20, m.NumLines())
	assert.Equal(t, 11, m.NumRectangles())
	assert.Equal(t, 2, m.NumCuboids())
	checkConformal(t, m)

	var shared []*Rectangle
	for i := 0; i < m.NumRectangles(); i++ {
		if r := m.MustRectangle(i); r.SurfaceCount() == 2 {
			shared = append(shared, r)
		}
	}
	require.Len(t, shared, 1)
	r := shared[0]
	lo, hi := r.Bounds()
	assert.Equal(t, geom.V(1, 0, 0), lo)
	assert.Equal(t, geom.V(1, 1, 1), hi)
	assert.True(t, m.IsInternal(r.ID))
	facings, err := m.FacingsOf(r.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []room.Facing{room.East, room.West}, facings)

	spaces, err := m.SpacesOf(r.ID)
	require.NoError(t, err)
	var rooms []int
	for _, sp := range spaces {
		rooms = append(rooms, sp.RoomID)
	}
	assert.ElementsMatch(t, []int{1, 2}, rooms)

	st := m.Stats()
	assert.Equal(t, 1, st.Internal)
	assert.Equal(t, 10, st.External)
	assert.Zero(t, st.Retired)
}

// A room butting half-way along a longer wall splits the wall in two.
func TestPartialOverlapSplitsWall(t *testing.T) {
	m := New()
	long, err := m.AddSpace(box(1, 0, 0, 0, 2, 1, 1))
	require.NoError(t, err)
	_, err = m.AddSpace(box(2, 1, 1, 0, 1, 1, 1))
	require.NoError(t, err)
	wall := m.rectangles[long.Surface(room.North).rectangles[0]]
	require.NoError(t, m.MakeConformal())
	checkConformal(t, m)

	require.True(t, wall.Deleted)
	require.Len(t, wall.Children, 2)
	v := vertexAt(t, m, 1, 1, 0)
	for _, id := range wall.Children {
		c := m.rectangles[id]
		assert.False(t, c.Deleted)
		assert.True(t, c.HasVertex(v))
	}
	assert.InDelta(t, 2.0, totalArea(m, wall.Children), areaTol)

	north := long.Surface(room.North)
	assert.ElementsMatch(t, wall.Children, north.Rectangles())
	assert.Contains(t, north.Vertices(), v)

	other, err := m.SpaceByRoom(2)
	require.NoError(t, err)
	south := other.Surface(room.South).Rectangles()
	require.Len(t, south, 1)
	assert.Contains(t, wall.Children, south[0])
	assert.True(t, m.IsInternal(south[0]))

	assert.Len(t, long.Cuboids(), 2)
	assert.Len(t, other.Cuboids(), 1)
}

// A line shared by three rooms meeting in a T is split once and both
// halves keep their faces.
func TestTJunctionLine(t *testing.T) {
	m := New()
	_, err := m.AddSpace(box(1, 0, 0, 0, 2, 1, 1))
	require.NoError(t, err)
	_, err = m.AddSpace(box(2, 0, 1, 0, 1, 1, 1))
	require.NoError(t, err)
	_, err = m.AddSpace(box(3, 1, 1, 0, 1, 1, 1))
	require.NoError(t, err)
	seam := lineAt(t, m, geom.V(0, 1, 0), geom.V(2, 1, 0))
	require.NoError(t, m.MakeConformal())
	checkConformal(t, m)

	require.True(t, seam.Deleted)
	require.Len(t, seam.Children, 2)
	for _, id := range seam.Children {
		rs, err := m.RectanglesOf(id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(rs), 2, "line %d", id)
		for _, r := range rs {
			assert.False(t, r.Deleted)
		}
		edges, err := m.EdgesOf(id)
		require.NoError(t, err)
		assert.NotEmpty(t, edges)
	}

	st := m.Stats()
	assert.Equal(t, 3, st.Internal)
	assert.True(t, st.Conformed)
}

// sharedCuboid returns the single active cuboid spanning lo..hi.
func sharedCuboid(t *testing.T, m *Model, lo, hi geom.Vec) *Cuboid {
	t.Helper()
	for i := 0; i < m.NumCuboids(); i++ {
		if c := m.MustCuboid(i); c.Min == lo && c.Max == hi {
			return c
		}
	}
	t.Fatalf("no active cuboid %v-%v", lo, hi)
	return nil
}

// Two cubes overlapping in one corner cut each other into eight and share
// the overlap.
func TestCrossingRooms(t *testing.T) {
	m := New()
	a, err := m.AddSpace(box(1, 0, 0, 0, 2, 2, 2))
	require.NoError(t, err)
	b, err := m.AddSpace(box(2, 1, 1, 1, 2, 2, 2))
	require.NoError(t, err)
	require.NoError(t, m.MakeConformal())
	checkConformal(t, m)

	assert.Equal(t, 15, m.NumCuboids())
	assert.Len(t, a.Cuboids(), 8)
	assert.Len(t, b.Cuboids(), 8)

	c := sharedCuboid(t, m, geom.V(1, 1, 1), geom.V(2, 2, 2))
	assert.ElementsMatch(t, []SpaceID{a.ID, b.ID}, c.Spaces())
	assert.Contains(t, a.Cuboids(), c.ID)
	assert.Contains(t, b.Cuboids(), c.ID)
	assert.Positive(t, m.Stats().Retired)
}

// Two slabs crossing in a plus share only the middle cell.
func TestPlusShapedRooms(t *testing.T) {
	m := New()
	a, err := m.AddSpace(box(1, 0, 1, 0, 3, 1, 1))
	require.NoError(t, err)
	b, err := m.AddSpace(box(2, 1, 0, 0, 1, 3, 1))
	require.NoError(t, err)
	require.NoError(t, m.MakeConformal())
	checkConformal(t, m)

	assert.Equal(t, 5, m.NumCuboids())
	assert.Len(t, a.Cuboids(), 3)
	assert.Len(t, b.Cuboids(), 3)

	c := sharedCuboid(t, m, geom.V(1, 1, 0), geom.V(2, 2, 1))
	assert.ElementsMatch(t, []SpaceID{a.ID, b.ID}, c.Spaces())
	for _, p := range []geom.Vec{
		geom.V(1, 1, 0), geom.V(2, 1, 0), geom.V(1, 2, 0), geom.V(2, 2, 0),
	} {
		_, ok := m.LookupVertex(p)
		assert.True(t, ok, "missing crossing vertex %v", p)
	}
}

// A room inside another splits the outer box into a 3x3x3 grid whose
// middle cell is the inner room.
func TestContainedRoom(t *testing.T) {
	m := New()
	outer, err := m.AddSpace(box(1, 0, 0, 0, 3, 3, 3))
	require.NoError(t, err)
	inner, err := m.AddSpace(box(2, 1, 1, 1, 1, 1, 1))
	require.NoError(t, err)
	require.NoError(t, m.MakeConformal())
	checkConformal(t, m)

	assert.Equal(t, 27, m.NumCuboids())
	assert.Len(t, outer.Cuboids(), 27)
	require.Len(t, inner.Cuboids(), 1)

	c := sharedCuboid(t, m, geom.V(1, 1, 1), geom.V(2, 2, 2))
	assert.Equal(t, inner.Cuboids()[0], c.ID)
	assert.ElementsMatch(t, []SpaceID{outer.ID, inner.ID}, c.Spaces())
	for i := 0; i < m.NumCuboids(); i++ {
		if other := m.MustCuboid(i); other.ID != c.ID {
			assert.Equal(t, []SpaceID{outer.ID}, other.Spaces())
		}
	}
}

// A room whose corners do not form a box is rejected and the model is
// left as it was.
func TestMalformedRoomRejected(t *testing.T) {
	m := New()
	_, err := m.AddSpace(box(1, 0, 0, 0, 1, 1, 1))
	require.NoError(t, err)
	before := m.Stats()

	bad := box(2, 2, 0, 0, 1, 1, 1)
	corners := bad.CornerPoints()
	corners[5] = geom.V(3.2, 0, 1)
	for _, c := range corners {
		bad.Corners = append(bad.Corners, room.Vec3{X: c.X, Y: c.Y, Z: c.Z})
	}

	_, err = m.AddSpace(bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	var cerr *ConfigurationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "add_edge", cerr.Op)
	assert.Equal(t, before, m.Stats())

	_, err = m.SpaceByRoom(2)
	assert.ErrorIs(t, err, ErrLookup)
}

func TestAddSpaceRejects(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Model)
		room  room.Room
	}{
		{
			name: "zero extent",
			room: box(1, 0, 0, 0, 0, 1, 1),
		},
		{
			name:  "duplicate id",
			setup: func(m *Model) { _, _ = m.AddSpace(box(1, 0, 0, 0, 1, 1, 1)) },
			room:  box(1, 5, 0, 0, 1, 1, 1),
		},
		{
			name: "after conformation",
			setup: func(m *Model) {
				_, _ = m.AddSpace(box(1, 0, 0, 0, 1, 1, 1))
				_ = m.MakeConformal()
			},
			room: box(2, 5, 0, 0, 1, 1, 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			if tt.setup != nil {
				tt.setup(m)
			}
			_, err := m.AddSpace(tt.room)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}
