package tessellate_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/chazu/facet/pkg/graph"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/polydata"
	"github.com/chazu/facet/pkg/tessellate"
)

// newKernel returns a coarse sdfx kernel for testing.
func newKernel() kernel.Kernel {
	return &sdfx.SdfxKernel{Cells: 24}
}

// exprSolid is a Solid that records the kernel calls that built it.
type exprSolid string

func (exprSolid) BoundingBox() (min, max [3]float64) { return }

// exprKernel renders solids as expressions so tests can assert on the exact
// operations the tessellator issued.
type exprKernel struct {
	meshed []string
}

func (k *exprKernel) Box(x, y, z float64) kernel.Solid {
	return exprSolid(fmt.Sprintf("box(%g,%g,%g)", x, y, z))
}
func (k *exprKernel) Sphere(r float64) kernel.Solid {
	return exprSolid(fmt.Sprintf("sphere(%g)", r))
}
func (k *exprKernel) Cylinder(h, r float64, _ int) kernel.Solid {
	return exprSolid(fmt.Sprintf("cyl(%g,%g)", h, r))
}
func (k *exprKernel) Union(a, b kernel.Solid) kernel.Solid {
	return exprSolid(fmt.Sprintf("union(%s,%s)", a, b))
}
func (k *exprKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return exprSolid(fmt.Sprintf("diff(%s,%s)", a, b))
}
func (k *exprKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return exprSolid(fmt.Sprintf("inter(%s,%s)", a, b))
}
func (k *exprKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return exprSolid(fmt.Sprintf("move(%s,%g,%g,%g)", s, x, y, z))
}
func (k *exprKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return exprSolid(fmt.Sprintf("rot(%s,%g,%g,%g)", s, x, y, z))
}
func (k *exprKernel) ToMesh(s kernel.Solid) (*polydata.Mesh, error) {
	k.meshed = append(k.meshed, string(s.(exprSolid)))
	return kernel.FromTriangles([]kernel.Triangle{{{X: 0}, {X: 1}, {Y: 1}}}, 0), nil
}

// makeBox creates a box primitive node with the given name and dimensions.
func makeBox(name string, x, y, z float64) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID(name),
		Kind: graph.NodePrimitive,
		Name: name,
		Data: graph.BoxData{Size: graph.Vec3{X: x, Y: y, Z: z}},
	}
}

// makeMove creates a transform node with a translation.
func makeMove(name string, tx, ty, tz float64, child graph.NodeID) *graph.Node {
	t := graph.Vec3{X: tx, Y: ty, Z: tz}
	return &graph.Node{
		ID:       graph.NewNodeID(name),
		Kind:     graph.NodeTransform,
		Children: []graph.NodeID{child},
		Data:     graph.TransformData{Translation: &t},
	}
}

// makeGroup creates a group node with children.
func makeGroup(name string, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID(name),
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{Description: name},
	}
}

func TestSingleBox(t *testing.T) {
	g := graph.New()
	box := makeBox("shelf", 600, 300, 18)
	g.AddNode(box)
	g.AddRoot(box.ID)

	parts, err := tessellate.Tessellate(g, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	p := parts[0]
	if p.Name != "shelf" {
		t.Errorf("expected part name %q, got %q", "shelf", p.Name)
	}
	if p.Mesh.IsEmpty() || p.Mesh.PolygonCount() == 0 {
		t.Fatal("mesh should have points and polygons")
	}
	if err := polydata.Validate(p.Mesh); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestPartWithTransform(t *testing.T) {
	g := graph.New()
	box := makeBox("shelf", 100, 50, 10)
	g.AddNode(box)
	place := makeMove("place-shelf", 200, 100, 50, box.ID)
	g.AddNode(place)
	g.AddRoot(place.ID)

	parts, err := tessellate.Tessellate(g, newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if parts[0].Name != "shelf" {
		t.Errorf("expected part name %q, got %q", "shelf", parts[0].Name)
	}

	// The box is centred at the origin, so the placed bounds are centred
	// on the translation.
	lo, hi := parts[0].Mesh.Points.Bounds()
	const tol = 10.0
	for _, c := range []struct {
		axis string
		got  float64
		want float64
	}{
		{"x", (lo.X + hi.X) / 2, 200},
		{"y", (lo.Y + hi.Y) / 2, 100},
		{"z", (lo.Z + hi.Z) / 2, 50},
	} {
		if abs(c.got-c.want) > tol {
			t.Errorf("centre %s = %.1f, expected near %.0f", c.axis, c.got, c.want)
		}
	}
}

func TestGroupFansOutParts(t *testing.T) {
	k := &exprKernel{}
	g := graph.New()

	left := makeBox("left-side", 400, 300, 18)
	right := makeBox("right-side", 400, 300, 18)
	g.AddNode(left)
	g.AddNode(right)
	placeRight := makeMove("place-right", 582, 0, 0, right.ID)
	g.AddNode(placeRight)
	anon := &graph.Node{ID: graph.NewNodeID("anon"), Kind: graph.NodePrimitive, Data: graph.SphereData{Radius: 2}}
	g.AddNode(anon)

	assembly := makeGroup("bookshelf", left.ID, placeRight.ID, anon.ID)
	g.AddNode(assembly)
	g.AddRoot(assembly.ID)

	parts, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	wantNames := []string{"left-side", "right-side", "bookshelf/2"}
	for i, want := range wantNames {
		if parts[i].Name != want {
			t.Errorf("part %d name = %q, want %q", i, parts[i].Name, want)
		}
	}
	wantExprs := []string{"box(400,300,18)", "move(box(400,300,18),582,0,0)", "sphere(2)"}
	for i, want := range wantExprs {
		if k.meshed[i] != want {
			t.Errorf("part %d solid = %q, want %q", i, k.meshed[i], want)
		}
	}
}

func TestBooleansAndTransforms(t *testing.T) {
	k := &exprKernel{}
	g := graph.New()

	plate := makeBox("plate-stock", 100, 50, 10)
	hole := &graph.Node{ID: graph.NewNodeID("hole"), Kind: graph.NodePrimitive, Data: graph.CylinderData{Height: 20, Radius: 5}}
	rot := graph.Vec3{X: 90}
	tr := graph.Vec3{X: 10}
	tilted := &graph.Node{
		ID: graph.NewNodeID("tilted"), Kind: graph.NodeTransform,
		Children: []graph.NodeID{hole.ID},
		Data:     graph.TransformData{Rotation: &rot, Translation: &tr},
	}
	dome := &graph.Node{ID: graph.NewNodeID("cap"), Kind: graph.NodePrimitive, Data: graph.SphereData{Radius: 3}}
	cut := &graph.Node{
		ID: graph.NewNodeID("cut"), Kind: graph.NodeBoolean, Name: "plate",
		Children: []graph.NodeID{plate.ID, tilted.ID, dome.ID},
		Data:     graph.BooleanData{Op: graph.OpDifference},
	}
	for _, n := range []*graph.Node{plate, hole, tilted, dome, cut} {
		g.AddNode(n)
	}
	g.AddRoot(cut.ID)

	parts, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 1 || parts[0].Name != "plate" {
		t.Fatalf("parts = %+v, want one part named plate", parts)
	}
	want := "diff(diff(box(100,50,10),move(rot(cyl(20,5),90,0,0),10,0,0)),sphere(3))"
	if k.meshed[0] != want {
		t.Errorf("solid = %q, want %q", k.meshed[0], want)
	}
}

func TestNestedGroupUnionsInsideBoolean(t *testing.T) {
	k := &exprKernel{}
	g := graph.New()

	a := makeBox("a", 1, 1, 1)
	b := makeBox("b", 2, 2, 2)
	inner := makeGroup("inner", a.ID, b.ID)
	c := makeBox("c", 3, 3, 3)
	inter := &graph.Node{
		ID: graph.NewNodeID("inter"), Kind: graph.NodeBoolean,
		Children: []graph.NodeID{c.ID, inner.ID},
		Data:     graph.BooleanData{Op: graph.OpIntersection},
	}
	for _, n := range []*graph.Node{a, b, inner, c, inter} {
		g.AddNode(n)
	}
	g.AddRoot(inter.ID)

	parts, err := tessellate.Tessellate(g, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if parts[0].Name != inter.ID.Short() {
		t.Errorf("unnamed root should use short id, got %q", parts[0].Name)
	}
	want := "inter(box(3,3,3),union(box(1,1,1),box(2,2,2)))"
	if k.meshed[0] != want {
		t.Errorf("solid = %q, want %q", k.meshed[0], want)
	}
}

func TestUnsupportedPrimitive(t *testing.T) {
	g := graph.New()
	bad := &graph.Node{ID: graph.NewNodeID("bad"), Kind: graph.NodePrimitive, Data: graph.GroupData{}}
	g.AddNode(bad)
	g.AddRoot(bad.ID)

	_, err := tessellate.Tessellate(g, &exprKernel{})
	if err == nil || !strings.Contains(err.Error(), "unsupported data type") {
		t.Fatalf("expected unsupported data error, got %v", err)
	}
}

func TestEmptyGraph(t *testing.T) {
	parts, err := tessellate.Tessellate(graph.New(), newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(parts) != 0 {
		t.Fatalf("expected 0 parts, got %d", len(parts))
	}
	if parts, err := tessellate.Tessellate(nil, newKernel()); parts != nil || err != nil {
		t.Errorf("nil graph should give nil, nil")
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
