// Package geom holds the tolerance-based vector predicates and the
// segment/plane intersection routines the conformal engine is built on.
// Vectors are sdfx v3.Vec values so the geometry kernel and the
// topology engine share one representation.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec is a point or direction in model space.
type Vec = v3.Vec

// Epsilon is the numeric zero used for degenerate-length guards.
const Epsilon = 1e-9

// Tolerances bundles the fixed comparison thresholds used throughout
// the engine.
type Tolerances struct {
	// Vector bounds |sin| for parallel tests and |cos| for perpendicular
	// tests.
	Vector float64 `yaml:"vector" validate:"gt=0,lt=1"`
	// Planar bounds point-to-plane distance and coordinate equality.
	Planar float64 `yaml:"planar" validate:"gt=0,lt=1"`
	// ParamMin and ParamMax form the open window a line-line
	// intersection parameter must fall in.
	ParamMin float64 `yaml:"param_min" validate:"gte=0,ltfield=ParamMax"`
	ParamMax float64 `yaml:"param_max" validate:"lte=1"`
}

// DefaultTolerances returns the stock thresholds.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Vector:   0.01,
		Planar:   0.001,
		ParamMin: 0.01,
		ParamMax: 0.99,
	}
}

// V is shorthand for building a Vec.
func V(x, y, z float64) Vec {
	return Vec{X: x, Y: y, Z: z}
}

// Component returns the i'th coordinate (0=X, 1=Y, 2=Z).
func Component(v Vec, i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithComponent returns v with coordinate i replaced by val.
func WithComponent(v Vec, i int, val float64) Vec {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	default:
		v.Z = val
	}
	return v
}

// Dist returns the Euclidean distance between a and b.
func Dist(a, b Vec) float64 {
	return b.Sub(a).Length()
}

// Near reports whether a and b are within tol of each other.
func Near(a, b Vec, tol float64) bool {
	return Dist(a, b) < tol
}

// Min returns the component-wise minimum.
func Min(a, b Vec) Vec {
	return V(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z))
}

// Max returns the component-wise maximum.
func Max(a, b Vec) Vec {
	return V(math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z))
}

// Axis returns the index of the single axis d runs along, or -1 when d
// has more than one non-zero component (or none).
func Axis(d Vec, tol float64) int {
	axis := -1
	for i := 0; i < 3; i++ {
		if math.Abs(Component(d, i)) > tol {
			if axis >= 0 {
				return -1
			}
			axis = i
		}
	}
	return axis
}

// AxisAligned reports whether the segment a-b runs along exactly one axis.
func AxisAligned(a, b Vec, tol float64) bool {
	return Axis(b.Sub(a), tol) >= 0
}
