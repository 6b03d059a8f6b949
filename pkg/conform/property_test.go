package conform

import (
	"fmt"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/chazu/conformal/pkg/geom"
	"github.com/chazu/conformal/pkg/room"
)

// roomsFromCodes lays rooms out in a row along X. Each code packs a
// room's width, depth, height and its Y and Z offsets, so neighbors touch
// over partial faces without overlapping.
func roomsFromCodes(codes []int) []room.Room {
	var rooms []room.Room
	x := 0.0
	for i, n := range codes {
		w := float64(1 + n%3)
		n /= 3
		d := float64(1 + n%3)
		n /= 3
		h := float64(1 + n%2)
		n /= 2
		y := float64(n % 3)
		n /= 3
		z := float64(n % 2)
		rooms = append(rooms, room.Box(i+1, geom.V(x, y, z), w, d, h))
		x += w
	}
	return rooms
}

// roomsFromStack stacks rooms along Z instead, each shifted in X and Y.
func roomsFromStack(codes []int) []room.Room {
	var rooms []room.Room
	z := 0.0
	for i, n := range codes {
		w := float64(1 + n%3)
		n /= 3
		d := float64(1 + n%3)
		n /= 3
		x := float64(n % 3)
		n /= 3
		y := float64(n % 2)
		rooms = append(rooms, room.Box(i+1, geom.V(x, y, z), w, d, 1))
		z++
	}
	return rooms
}

// roomsOverlapping places rooms on a unit grid with free offsets, so they
// cross, contain and duplicate each other.
func roomsOverlapping(codes []int) []room.Room {
	var rooms []room.Room
	for i, n := range codes {
		var v [6]float64
		for k := range v {
			v[k] = float64(n % 3)
			n /= 3
		}
		rooms = append(rooms, room.Box(i+1, geom.V(v[0], v[1], v[2]), 1+v[3], 1+v[4], 1+v[5]))
	}
	return rooms
}

// membershipError checks that every active cuboid belongs to exactly the
// spaces whose box encloses it.
func membershipError(m *Model) error {
	tol := m.Tolerances().Planar
	for i := 0; i < m.NumCuboids(); i++ {
		c := m.MustCuboid(i)
		var want []SpaceID
		for j := 0; j < m.NumSpaces(); j++ {
			sp := m.MustSpace(j)
			if inBox(c.Min, sp.Min, sp.Max, tol) && inBox(c.Max, sp.Min, sp.Max, tol) {
				want = append(want, sp.ID)
			}
		}
		got := c.Spaces()
		slices.Sort(got)
		if !slices.Equal(want, got) {
			return fmt.Errorf("cuboid %d %v-%v: spaces %v, want %v", c.ID, c.Min, c.Max, got, want)
		}
	}
	return nil
}

func conforms(rooms []room.Room) bool {
	m := New()
	for _, r := range rooms {
		if _, err := m.AddSpace(r); err != nil {
			return false
		}
	}
	if err := m.MakeConformal(); err != nil {
		return false
	}
	return invariantError(m) == nil
}

func TestConformalInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 25

	properties := gopter.NewProperties(parameters)

	properties.Property("rooms in a row conform", prop.ForAll(
		func(codes []int) bool {
			return conforms(roomsFromCodes(codes))
		},
		gen.SliceOfN(3, gen.IntRange(0, 107)),
	))

	properties.Property("stacked rooms conform", prop.ForAll(
		func(codes []int) bool {
			return conforms(roomsFromStack(codes))
		},
		gen.SliceOfN(3, gen.IntRange(0, 53)),
	))

	properties.Property("overlapping rooms conform and share cuboids", prop.ForAll(
		func(codes []int) bool {
			m := New()
			for _, r := range roomsOverlapping(codes) {
				if _, err := m.AddSpace(r); err != nil {
					return false
				}
			}
			if err := m.MakeConformal(); err != nil {
				return false
			}
			return invariantError(m) == nil && membershipError(m) == nil
		},
		gen.SliceOfN(3, gen.IntRange(0, 728)),
	))

	properties.TestingRun(t)
}
