package sdfx

import (
	"context"
	"math"
	"testing"

	"github.com/chazu/facet/pkg/normals"
	"github.com/chazu/facet/pkg/polydata"
)

// newTestKernel returns a coarse kernel so the tests stay fast.
func newTestKernel() *SdfxKernel {
	return &SdfxKernel{Cells: 32}
}

func TestBox(t *testing.T) {
	k := newTestKernel()
	mesh, err := k.ToMesh(k.Box(100, 50, 25))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if mesh.PolygonCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	if err := polydata.Validate(mesh); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	// Welding shares corners: far fewer points than 3 per triangle.
	if mesh.PointCount() >= 3*mesh.PolygonCount() {
		t.Errorf("points %d not welded for %d triangles", mesh.PointCount(), mesh.PolygonCount())
	}
}

func TestDefaultCells(t *testing.T) {
	if New().Cells != DefaultMeshCells {
		t.Errorf("New().Cells = %d, want %d", New().Cells, DefaultMeshCells)
	}
}

func TestSphereIsClosedAndOutward(t *testing.T) {
	k := newTestKernel()
	mesh, err := k.ToMesh(k.Sphere(10))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}

	// Every edge of a closed welded surface is shared by exactly two triangles.
	edges := make(map[[2]int]int)
	for i := 0; i < mesh.Polys.Len(); i++ {
		c := mesh.Polys.Cell(i)
		for j := range c {
			a, b := c[j], c[(j+1)%len(c)]
			if a > b {
				a, b = b, a
			}
			edges[[2]int{a, b}]++
		}
	}
	for e, n := range edges {
		if n != 2 {
			t.Fatalf("edge %v used by %d triangles, want 2", e, n)
		}
	}

	opts := normals.DefaultOptions()
	opts.AutoOrientNormals = true
	res, err := normals.New(opts).Run(context.Background(), mesh)
	if err != nil {
		t.Fatalf("normals: %v", err)
	}
	if res.Stats.Shells != 1 {
		t.Errorf("shells = %d, want 1", res.Stats.Shells)
	}
	if res.Stats.FlippedShells != 0 {
		t.Errorf("marching cubes output should already face outward, flipped %d shells", res.Stats.FlippedShells)
	}
}

func TestCylinder(t *testing.T) {
	k := newTestKernel()
	mesh, err := k.ToMesh(k.Cylinder(50, 10, 32))
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.PolygonCount() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	t.Logf("cylinder triangle count: %d", mesh.PolygonCount())
}

func TestDifference(t *testing.T) {
	k := newTestKernel()

	box := k.Box(100, 100, 100)
	boxMesh, err := k.ToMesh(box)
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	diff := k.Difference(box, k.Cylinder(120, 20, 32))
	diffMesh, err := k.ToMesh(diff)
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	// A box with a hole has more surface than a plain box.
	if diffMesh.PolygonCount() <= boxMesh.PolygonCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.PolygonCount(), boxMesh.PolygonCount())
	}
}

func TestUnion(t *testing.T) {
	k := newTestKernel()
	u := k.Union(k.Box(50, 50, 50), k.Translate(k.Box(50, 50, 50), 30, 0, 0))
	mesh, err := k.ToMesh(u)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
}

func TestIntersection(t *testing.T) {
	k := newTestKernel()
	inter := k.Intersection(k.Box(100, 100, 100), k.Translate(k.Box(100, 100, 100), 50, 0, 0))
	min, max := inter.BoundingBox()
	if max[0]-min[0] > 100+1e-6 {
		t.Errorf("intersection X extent = %f, want <= 100", max[0]-min[0])
	}
	mesh, err := k.ToMesh(inter)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if mesh.IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
}

func TestTranslate(t *testing.T) {
	k := newTestKernel()
	translated := k.Translate(k.Box(10, 10, 10), 100, 200, 300)
	min, max := translated.BoundingBox()

	const tol = 0.5
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestBoundingBox(t *testing.T) {
	k := newTestKernel()
	min, max := k.Box(100, 50, 25).BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{-50, -25, -12.5}
	expectMax := [3]float64{50, 25, 12.5}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestRotate(t *testing.T) {
	k := newTestKernel()
	// A long box along X rotated 90 degrees around Z extends along Y instead.
	min, max := k.Rotate(k.Box(100, 10, 10), 0, 0, 90).BoundingBox()

	const tol = 1.0
	if xExtent := max[0] - min[0]; math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if yExtent := max[1] - min[1]; math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}
