package sdfx

import (
	"math"
	"testing"
)

func TestNewDefaultsCells(t *testing.T) {
	if got := New(0).Cells(); got != DefaultMeshCells {
		t.Errorf("New(0).Cells() = %d, want %d", got, DefaultMeshCells)
	}
	if got := New(32).Cells(); got != 32 {
		t.Errorf("New(32).Cells() = %d, want 32", got)
	}
}

func TestBox(t *testing.T) {
	k := New(32)
	box := k.Box(4, 3, 2.5)
	mesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	triCount := mesh.TriangleCount()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	t.Logf("box triangle count: %d", triCount)
	// Verify vertex and index array sizes are consistent.
	if len(mesh.Vertices) != len(mesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(mesh.Vertices), len(mesh.Normals))
	}
	if len(mesh.Indices) != triCount*3 {
		t.Fatalf("indices length %d != triCount*3 %d", len(mesh.Indices), triCount*3)
	}
}

func TestBoundingBox(t *testing.T) {
	k := New(32)
	box := k.Box(4, 3, 2.5)
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{4, 3, 2.5}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	k := New(32)
	box := k.Box(10, 10, 10)
	translated := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestUnion(t *testing.T) {
	k := New(32)
	box1 := k.Box(2, 2, 2)
	box2 := k.Translate(k.Box(2, 2, 2), 2, 0, 0)
	u := k.Union(box1, box2)

	min, max := u.BoundingBox()
	if math.Abs(min[0]) > 0.01 || math.Abs(max[0]-4) > 0.01 {
		t.Errorf("union x extent = [%f, %f], want [0, 4]", min[0], max[0])
	}

	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	t.Logf("union triangle count: %d", mesh.TriangleCount())
}
