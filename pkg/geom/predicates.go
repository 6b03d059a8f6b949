package geom

import "math"

// Parallel reports whether a and b are parallel (or anti-parallel):
// |sin θ| < tol. A zero-length vector is parallel to everything.
func Parallel(a, b Vec, tol float64) bool {
	la, lb := a.Length(), b.Length()
	if la < Epsilon || lb < Epsilon {
		return true
	}
	return a.Cross(b).Length()/(la*lb) < tol
}

// Perpendicular reports whether |cos θ| < tol. A zero-length vector is
// never perpendicular.
func Perpendicular(a, b Vec, tol float64) bool {
	la, lb := a.Length(), b.Length()
	if la < Epsilon || lb < Epsilon {
		return false
	}
	return math.Abs(a.Dot(b))/(la*lb) < tol
}

// SameDirection reports whether a and b are parallel and point the same
// way.
func SameDirection(a, b Vec, tol float64) bool {
	return Parallel(a, b, tol) && a.Dot(b) > 0
}

// Colinear reports whether p lies on the infinite line through a and b.
func Colinear(p, a, b Vec, tol float64) bool {
	return Parallel(b.Sub(a), p.Sub(a), tol)
}

// PlaneNormal returns the unit normal of the plane through a, b, c and
// false when the three points are colinear.
func PlaneNormal(a, b, c Vec) (Vec, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Length() < Epsilon {
		return Vec{}, false
	}
	return n.Normalize(), true
}

// Coplanar reports whether p lies within tol of the plane through a, b, c.
func Coplanar(p, a, b, c Vec, tol float64) bool {
	n, ok := PlaneNormal(a, b, c)
	if !ok {
		return Colinear(p, a, b, tol)
	}
	return math.Abs(p.Sub(a).Dot(n)) < tol
}

// InTriangle reports whether p, assumed coplanar with a, b, c, lies inside
// the triangle or on its boundary. tol is applied to the barycentric
// coordinates.
func InTriangle(p, a, b, c Vec, tol float64) bool {
	v0 := c.Sub(a)
	v1 := b.Sub(a)
	v2 := p.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d02 := v0.Dot(v2)
	d11 := v1.Dot(v1)
	d12 := v1.Dot(v2)

	denom := d00*d11 - d01*d01
	if math.Abs(denom) < Epsilon {
		return false
	}
	u := (d11*d02 - d01*d12) / denom
	v := (d00*d12 - d01*d02) / denom
	return u >= -tol && v >= -tol && u+v <= 1+tol
}

// QuadArea returns the area of the planar quadrilateral a-b-c-d from its
// diagonals.
func QuadArea(a, b, c, d Vec) float64 {
	return c.Sub(a).Cross(d.Sub(b)).Length() / 2
}
