// Package tessellate walks a conformed model and produces triangle meshes
// using a geometry kernel, either one per active cuboid or one per space.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/conformal/pkg/conform"
	"github.com/chazu/conformal/pkg/kernel"
)

// ErrNotConformed is returned when the model has not been through
// MakeConformal yet.
var ErrNotConformed = errors.New("tessellate: model is not conformed")

// palette assigns distinct colors to rooms.
var palette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Part is one mesh together with the rooms it belongs to.
type Part struct {
	Mesh  *kernel.Mesh `json:"mesh"`
	Rooms []int        `json:"rooms"`
	Type  string       `json:"type,omitempty"`
	Color string       `json:"color"`

	// Volume is the exact volume of the geometry the mesh approximates.
	Volume float64 `json:"volume"`
}

// Cuboids meshes every active cuboid of m. A cuboid shared by several
// overlapping rooms lists all of them; its color and type follow the
// first.
func Cuboids(m *conform.Model, k kernel.Kernel) ([]Part, error) {
	if !m.Conformed() {
		return nil, ErrNotConformed
	}

	parts := make([]Part, 0, m.NumCuboids())
	for i := 0; i < m.NumCuboids(); i++ {
		c := m.MustCuboid(i)
		mesh, err := k.ToMesh(box(k, c))
		if err != nil {
			return nil, fmt.Errorf("tessellate: cuboid %d: %w", c.ID, err)
		}
		mesh.Name = fmt.Sprintf("cuboid-%d", c.ID)

		p := Part{Mesh: mesh, Volume: c.Volume()}
		for j, sid := range c.Spaces() {
			sp := m.MustSpace(int(sid))
			p.Rooms = append(p.Rooms, sp.RoomID)
			if j == 0 {
				p.Type = sp.Type
				p.Color = palette[int(sid)%len(palette)]
			}
		}
		if p.Color == "" {
			p.Color = palette[0]
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// Spaces meshes each room as the union of the cuboids that fill it.
func Spaces(m *conform.Model, k kernel.Kernel) ([]Part, error) {
	if !m.Conformed() {
		return nil, ErrNotConformed
	}

	parts := make([]Part, 0, m.NumSpaces())
	for i := 0; i < m.NumSpaces(); i++ {
		sp := m.MustSpace(i)

		var solid kernel.Solid
		for _, cid := range sp.Cuboids() {
			c, err := m.CuboidByID(cid)
			if err != nil {
				return nil, fmt.Errorf("tessellate: room %d: %w", sp.RoomID, err)
			}
			if solid == nil {
				solid = box(k, c)
			} else {
				solid = k.Union(solid, box(k, c))
			}
		}
		if solid == nil {
			return nil, fmt.Errorf("tessellate: room %d has no cuboids", sp.RoomID)
		}

		mesh, err := k.ToMesh(solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: room %d: %w", sp.RoomID, err)
		}
		mesh.Name = fmt.Sprintf("room-%d", sp.RoomID)

		parts = append(parts, Part{
			Mesh:   mesh,
			Rooms:  []int{sp.RoomID},
			Type:   sp.Type,
			Color:  palette[i%len(palette)],
			Volume: sp.Volume(),
		})
	}
	return parts, nil
}

// box returns the kernel solid occupying c.
func box(k kernel.Kernel, c *conform.Cuboid) kernel.Solid {
	d := c.Max.Sub(c.Min)
	return k.Translate(k.Box(d.X, d.Y, d.Z), c.Min.X, c.Min.Y, c.Min.Z)
}
