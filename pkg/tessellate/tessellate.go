// Package tessellate walks a scene graph and produces polygon meshes
// using a geometry kernel. One mesh is produced per part: every root is a
// part, except groups, whose children each become parts.
package tessellate

import (
	"fmt"

	"github.com/chazu/facet/pkg/graph"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/polydata"
)

// Part is the tessellated mesh of one scene part.
type Part struct {
	Name string
	Mesh *polydata.Mesh
}

// tessellator holds per-call state. Solids are cached per node so shared
// subgraphs are only built once.
type tessellator struct {
	g      *graph.SceneGraph
	k      kernel.Kernel
	solids map[graph.NodeID]kernel.Solid
}

// Tessellate walks the scene graph and produces one mesh per part using the
// provided geometry kernel. The tessellator is read-only and never mutates
// the graph.
func Tessellate(g *graph.SceneGraph, k kernel.Kernel) ([]Part, error) {
	if g == nil {
		return nil, nil
	}

	t := &tessellator{g: g, k: k, solids: make(map[graph.NodeID]kernel.Solid)}
	var parts []Part
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		collected, err := t.walkPart(root, "")
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
		parts = append(parts, collected...)
	}
	return parts, nil
}

// walkPart emits the parts rooted at n. Groups fan out into one part per
// child; everything else is a single solid.
func (t *tessellator) walkPart(n *graph.Node, fallback string) ([]Part, error) {
	if n.Kind == graph.NodeGroup {
		var parts []Part
		for i, child := range t.g.Children(n) {
			collected, err := t.walkPart(child, fmt.Sprintf("%s/%d", partName(t.g, n, ""), i))
			if err != nil {
				return nil, err
			}
			parts = append(parts, collected...)
		}
		return parts, nil
	}

	solid, err := t.solid(n)
	if err != nil {
		return nil, err
	}
	mesh, err := t.k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}
	return []Part{{Name: partName(t.g, n, fallback), Mesh: mesh}}, nil
}

// solid builds the kernel solid for n.
func (t *tessellator) solid(n *graph.Node) (kernel.Solid, error) {
	if s, ok := t.solids[n.ID]; ok {
		return s, nil
	}

	var (
		s   kernel.Solid
		err error
	)
	switch n.Kind {
	case graph.NodePrimitive:
		s, err = t.handlePrimitive(n)
	case graph.NodeTransform:
		s, err = t.handleTransform(n)
	case graph.NodeBoolean:
		s, err = t.handleBoolean(n)
	case graph.NodeGroup:
		// A group nested inside a solid contributes the union of its members.
		s, err = t.combine(n, graph.OpUnion)
	default:
		err = fmt.Errorf("unknown node kind: %v", n.Kind)
	}
	if err != nil {
		return nil, err
	}
	t.solids[n.ID] = s
	return s, nil
}

// handlePrimitive creates geometry for a primitive node.
func (t *tessellator) handlePrimitive(n *graph.Node) (kernel.Solid, error) {
	switch data := n.Data.(type) {
	case graph.BoxData:
		return t.k.Box(data.Size.X, data.Size.Y, data.Size.Z), nil
	case graph.SphereData:
		return t.k.Sphere(data.Radius), nil
	case graph.CylinderData:
		return t.k.Cylinder(data.Height, data.Radius, data.Segments), nil
	default:
		return nil, fmt.Errorf("primitive node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
}

// handleTransform rotates, then translates, the single child solid.
func (t *tessellator) handleTransform(n *graph.Node) (kernel.Solid, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	children := t.g.Children(n)
	if len(children) != 1 {
		return nil, fmt.Errorf("transform node %s has %d children, want 1", n.ID.Short(), len(children))
	}
	s, err := t.solid(children[0])
	if err != nil {
		return nil, err
	}

	if rot := td.Rotation; rot != nil && !rot.IsZero() {
		s = t.k.Rotate(s, rot.X, rot.Y, rot.Z)
	}
	if tr := td.Translation; tr != nil && !tr.IsZero() {
		s = t.k.Translate(s, tr.X, tr.Y, tr.Z)
	}
	return s, nil
}

// handleBoolean folds the children left to right with the node's operation.
func (t *tessellator) handleBoolean(n *graph.Node) (kernel.Solid, error) {
	bd, ok := n.Data.(graph.BooleanData)
	if !ok {
		return nil, fmt.Errorf("boolean node %s has unexpected data type %T", n.ID.Short(), n.Data)
	}
	return t.combine(n, bd.Op)
}

func (t *tessellator) combine(n *graph.Node, op graph.BooleanOp) (kernel.Solid, error) {
	children := t.g.Children(n)
	if len(children) == 0 {
		return nil, fmt.Errorf("%s node %s has no operands", n.Kind, n.ID.Short())
	}

	acc, err := t.solid(children[0])
	if err != nil {
		return nil, err
	}
	for _, child := range children[1:] {
		s, err := t.solid(child)
		if err != nil {
			return nil, err
		}
		switch op {
		case graph.OpUnion:
			acc = t.k.Union(acc, s)
		case graph.OpDifference:
			acc = t.k.Difference(acc, s)
		case graph.OpIntersection:
			acc = t.k.Intersection(acc, s)
		default:
			return nil, fmt.Errorf("boolean node %s has unknown operation %v", n.ID.Short(), op)
		}
	}
	return acc, nil
}

// partName prefers the node's own name, then the name of the node a
// transform wraps, then fallback, then the short ID.
func partName(g *graph.SceneGraph, n *graph.Node, fallback string) string {
	for cur := n; cur != nil; {
		if cur.Name != "" {
			return cur.Name
		}
		if cur.Kind != graph.NodeTransform || len(cur.Children) != 1 {
			break
		}
		cur = g.Get(cur.Children[0])
	}
	if fallback != "" {
		return fallback
	}
	return n.ID.Short()
}
