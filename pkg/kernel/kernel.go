// Package kernel defines the geometry kernel used to turn conformed
// cuboids into renderable meshes. The sdfx subpackage provides the only
// backend.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds axis-aligned box solids and meshes them.
type Kernel interface {
	// Box returns a solid spanning (0,0,0)..(x,y,z).
	Box(x, y, z float64) Solid

	Union(a, b Solid) Solid
	Translate(s Solid, x, y, z float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
