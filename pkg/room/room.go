// Package room defines the per-room input record consumed by the
// conformal engine: an axis-aligned box with an integer ID, per-face
// semantic tags and an optional space type.
package room

import (
	"fmt"

	"github.com/chazu/conformal/pkg/geom"
)

// Vec3 is a coordinate as written in room documents.
type Vec3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// Vec converts to the engine's vector type.
func (v Vec3) Vec() geom.Vec {
	return geom.V(v.X, v.Y, v.Z)
}

// Facing names one of the six faces of a room box.
type Facing int

const (
	North  Facing = iota // +Y
	East                 // +X
	South                // -Y
	West                 // -X
	Top                  // +Z
	Bottom               // -Z
)

// Facings lists every facing in canonical order.
var Facings = [6]Facing{North, East, South, West, Top, Bottom}

var facingNames = [6]string{"north", "east", "south", "west", "top", "bottom"}

func (f Facing) String() string {
	if f < 0 || int(f) >= len(facingNames) {
		return fmt.Sprintf("Facing(%d)", int(f))
	}
	return facingNames[f]
}

// ParseFacing maps a facing name back to its value.
func ParseFacing(s string) (Facing, error) {
	for i, name := range facingNames {
		if name == s {
			return Facing(i), nil
		}
	}
	return 0, fmt.Errorf("unknown facing %q", s)
}

// Normal returns the outward unit normal of the face.
func (f Facing) Normal() geom.Vec {
	switch f {
	case North:
		return geom.V(0, 1, 0)
	case East:
		return geom.V(1, 0, 0)
	case South:
		return geom.V(0, -1, 0)
	case West:
		return geom.V(-1, 0, 0)
	case Top:
		return geom.V(0, 0, 1)
	default:
		return geom.V(0, 0, -1)
	}
}

// Faces carries the optional semantic tag of each face.
type Faces struct {
	North  string `yaml:"north,omitempty" json:"north,omitempty" validate:"max=64"`
	East   string `yaml:"east,omitempty" json:"east,omitempty" validate:"max=64"`
	South  string `yaml:"south,omitempty" json:"south,omitempty" validate:"max=64"`
	West   string `yaml:"west,omitempty" json:"west,omitempty" validate:"max=64"`
	Top    string `yaml:"top,omitempty" json:"top,omitempty" validate:"max=64"`
	Bottom string `yaml:"bottom,omitempty" json:"bottom,omitempty" validate:"max=64"`
}

// Tag returns the tag stored for f.
func (fs Faces) Tag(f Facing) string {
	switch f {
	case North:
		return fs.North
	case East:
		return fs.East
	case South:
		return fs.South
	case West:
		return fs.West
	case Top:
		return fs.Top
	default:
		return fs.Bottom
	}
}

// Set stores tag for f.
func (fs *Faces) Set(f Facing, tag string) {
	switch f {
	case North:
		fs.North = tag
	case East:
		fs.East = tag
	case South:
		fs.South = tag
	case West:
		fs.West = tag
	case Top:
		fs.Top = tag
	default:
		fs.Bottom = tag
	}
}

// Surface types assigned to untagged faces.
const (
	TypeWall    = "wall"
	TypeFloor   = "floor"
	TypeCeiling = "ceiling"
	TypeRoof    = "roof"
)

// Room is one input box. Width runs along X, Depth along Y and Height
// along Z from Origin. When Corners is set it overrides the box and
// must list the eight corners bottom ring first:
// (x0,y0) (x1,y0) (x1,y1) (x0,y1) at z0, then the same at z1.
type Room struct {
	ID      int     `yaml:"id" json:"id" validate:"gte=0"`
	Type    string  `yaml:"type,omitempty" json:"type,omitempty" validate:"max=64"`
	Width   float64 `yaml:"width,omitempty" json:"width,omitempty" validate:"gte=0"`
	Depth   float64 `yaml:"depth,omitempty" json:"depth,omitempty" validate:"gte=0"`
	Height  float64 `yaml:"height,omitempty" json:"height,omitempty" validate:"gte=0"`
	Origin  Vec3    `yaml:"origin" json:"origin"`
	Corners []Vec3  `yaml:"corners,omitempty" json:"corners,omitempty" validate:"omitempty,len=8"`
	Faces   Faces   `yaml:"faces,omitempty" json:"faces,omitempty"`
}

// Box returns a room spanning w×d×h from origin.
func Box(id int, origin geom.Vec, w, d, h float64) Room {
	return Room{
		ID:     id,
		Width:  w,
		Depth:  d,
		Height: h,
		Origin: Vec3{X: origin.X, Y: origin.Y, Z: origin.Z},
	}
}

// CornerPoints returns the eight corners in canonical order.
func (r Room) CornerPoints() [8]geom.Vec {
	if len(r.Corners) == 8 {
		var c [8]geom.Vec
		for i, v := range r.Corners {
			c[i] = v.Vec()
		}
		return c
	}
	lo := r.Origin.Vec()
	hi := lo.Add(geom.V(r.Width, r.Depth, r.Height))
	return BoxCorners(lo, hi)
}

// BoxCorners lists the corners of the box lo..hi in canonical order.
func BoxCorners(lo, hi geom.Vec) [8]geom.Vec {
	return [8]geom.Vec{
		geom.V(lo.X, lo.Y, lo.Z),
		geom.V(hi.X, lo.Y, lo.Z),
		geom.V(hi.X, hi.Y, lo.Z),
		geom.V(lo.X, hi.Y, lo.Z),
		geom.V(lo.X, lo.Y, hi.Z),
		geom.V(hi.X, lo.Y, hi.Z),
		geom.V(hi.X, hi.Y, hi.Z),
		geom.V(lo.X, hi.Y, hi.Z),
	}
}

// FaceCorners holds, per facing, the indices into CornerPoints of the
// face's four corners in ring order.
var FaceCorners = [6][4]int{
	North:  {2, 3, 7, 6},
	East:   {1, 2, 6, 5},
	South:  {0, 1, 5, 4},
	West:   {3, 0, 4, 7},
	Top:    {4, 5, 6, 7},
	Bottom: {0, 1, 2, 3},
}

// EdgeCorners holds the corner index pairs of the twelve box edges.
var EdgeCorners = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// FaceType returns the tag of face f, defaulting to the structural type
// implied by its orientation.
func (r Room) FaceType(f Facing) string {
	if tag := r.Faces.Tag(f); tag != "" {
		return tag
	}
	switch f {
	case Top:
		return TypeCeiling
	case Bottom:
		return TypeFloor
	default:
		return TypeWall
	}
}

// Structural reports whether a surface type carries load.
func Structural(surfaceType string) bool {
	switch surfaceType {
	case TypeWall, TypeFloor, TypeCeiling, TypeRoof:
		return true
	}
	return false
}
