package geom

import "math"

// SegmentIntersection returns the crossing point of segments a0-a1 and
// b0-b1. Colinear, parallel and skew pairs are rejected, as is any
// crossing whose parameter on either segment falls outside the open
// window (ParamMin, ParamMax). Endpoint touches are therefore never
// reported.
func SegmentIntersection(a0, a1, b0, b1 Vec, tol Tolerances) (Vec, bool) {
	da := a1.Sub(a0)
	db := b1.Sub(b0)
	if Parallel(da, db, tol.Vector) {
		return Vec{}, false
	}

	n := da.Cross(db)
	w := b0.Sub(a0)
	if w.Length() > Epsilon && !Perpendicular(w, n, tol.Vector) {
		// skew
		return Vec{}, false
	}

	nn := n.Dot(n)
	t := w.Cross(db).Dot(n) / nn
	u := w.Cross(da).Dot(n) / nn
	if t <= tol.ParamMin || t >= tol.ParamMax {
		return Vec{}, false
	}
	if u <= tol.ParamMin || u >= tol.ParamMax {
		return Vec{}, false
	}

	p := a0.Add(da.MulScalar(t))
	p = SnapConstant(p, tol.Planar, a0, a1)
	p = SnapConstant(p, tol.Planar, b0, b1)
	return p, true
}

// SegmentPlane returns the point where segment p0-p1 meets the plane
// through corner with the given normal. The segment parameter must satisfy
// 0 <= s < 1; segments parallel to the plane are rejected.
func SegmentPlane(p0, p1, corner, normal Vec, tol Tolerances) (Vec, bool) {
	d := p1.Sub(p0)
	if d.Length() < Epsilon || Perpendicular(d, normal, tol.Vector) {
		return Vec{}, false
	}
	s := corner.Sub(p0).Dot(normal) / d.Dot(normal)
	if s < 0 && s > -Epsilon {
		s = 0
	}
	if s < 0 || s >= 1 {
		return Vec{}, false
	}
	p := p0.Add(d.MulScalar(s))
	return SnapConstant(p, tol.Planar, p0, p1), true
}

// ClosestPoint returns the point on segment a-b nearest to p. For an
// axis-aligned segment the off-axis coordinates are copied from a exactly.
func ClosestPoint(p, a, b Vec) Vec {
	d := b.Sub(a)
	if axis := Axis(d, Epsilon); axis >= 0 {
		lo := math.Min(Component(a, axis), Component(b, axis))
		hi := math.Max(Component(a, axis), Component(b, axis))
		c := math.Max(lo, math.Min(hi, Component(p, axis)))
		return WithComponent(a, axis, c)
	}
	dd := d.Dot(d)
	if dd < Epsilon {
		return a
	}
	t := p.Sub(a).Dot(d) / dd
	t = math.Max(0, math.Min(1, t))
	return a.Add(d.MulScalar(t))
}

// SnapConstant copies into p every coordinate that is constant (within
// tol) across pts. Computed intersection points then compare exactly
// equal to registered coordinates on the same axis planes.
func SnapConstant(p Vec, tol float64, pts ...Vec) Vec {
	if len(pts) == 0 {
		return p
	}
	for i := 0; i < 3; i++ {
		ref := Component(pts[0], i)
		constant := true
		for _, q := range pts[1:] {
			if math.Abs(Component(q, i)-ref) >= tol {
				constant = false
				break
			}
		}
		if constant {
			p = WithComponent(p, i, ref)
		}
	}
	return p
}
