package graph

import (
	"fmt"
	"math"
)

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// Validate runs all structural and geometric checks on the scene graph and
// returns the findings. An empty slice means the graph is valid. Validate
// never mutates the graph.
func Validate(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateArity(g)...)
	errs = append(errs, validateDimensions(g)...)
	return errs
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateDAG(g *SceneGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for id := range g.Nodes {
		if color[id] == white && visit(id) {
			// One cycle error is sufficient.
			break
		}
	}
	return errs
}

// validateReferences checks that every child reference points to a node that
// exists in g.Nodes.
func validateReferences(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that the NameIndex is injective and that every entry
// points to an existing node.
func validateNames(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateRoots checks that every root references an existing node and warns
// about nodes unreachable from any root.
func validateRoots(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	if len(g.Nodes) == 0 {
		return errs
	}

	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			name := node.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateArity checks child counts per node kind: primitives are leaves,
// transforms wrap exactly one child, booleans need at least two operands.
func validateArity(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		n := len(node.Children)
		var msg string
		switch node.Kind {
		case NodePrimitive:
			if n != 0 {
				msg = fmt.Sprintf("primitive has %d children, want none", n)
			}
		case NodeTransform:
			if n != 1 {
				msg = fmt.Sprintf("transform has %d children, want 1", n)
			}
		case NodeBoolean:
			if n < 2 {
				op := "boolean"
				if d, ok := node.Data.(BooleanData); ok {
					op = d.Op.String()
				}
				msg = fmt.Sprintf("%s has %d operands, want at least 2", op, n)
			}
		case NodeGroup:
			if n == 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  "group is empty",
					Severity: SeverityWarning,
				})
			}
		}
		if msg != "" {
			errs = append(errs, ValidationError{NodeID: node.ID, Message: msg, Severity: SeverityError})
		}
	}
	return errs
}

// validateDimensions checks that primitive sizes are finite and positive.
func validateDimensions(g *SceneGraph) []ValidationError {
	var errs []ValidationError
	bad := func(id NodeID, what string, v float64) {
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf("%s must be positive, got %g", what, v),
			Severity: SeverityError,
		})
	}
	positive := func(v float64) bool {
		return v > 0 && !math.IsInf(v, 1)
	}

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BoxData:
			for _, c := range []struct {
				axis string
				v    float64
			}{{"box x", d.Size.X}, {"box y", d.Size.Y}, {"box z", d.Size.Z}} {
				if !positive(c.v) {
					bad(node.ID, c.axis, c.v)
				}
			}
		case SphereData:
			if !positive(d.Radius) {
				bad(node.ID, "sphere radius", d.Radius)
			}
		case CylinderData:
			if !positive(d.Height) {
				bad(node.ID, "cylinder height", d.Height)
			}
			if !positive(d.Radius) {
				bad(node.ID, "cylinder radius", d.Radius)
			}
		case TransformData:
			if d.Translation == nil && d.Rotation == nil {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  "transform has neither translation nor rotation",
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
