package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/facet/pkg/graph"
	"github.com/chazu/facet/pkg/normals"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: feature-angle -> feature_angle
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(shape %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	keys       []string // keyword names in source order
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if _, seen := result.kw[name]; !seen {
				result.keys = append(result.keys, name)
			}
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toBool extracts a boolean from true/false, the keywords :on/:off or
// :yes/:no, or a number (non-zero is true).
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpInt:
		return v.Val != 0, nil
	case *zygo.SexpStr:
		name, _ := toKeywordString(v)
		switch name {
		case "true", "on", "yes":
			return true, nil
		case "false", "off", "no":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return graph.ZeroID, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRefs extracts node references from args, flattening lists and arrays.
func toNodeRefs(args []zygo.Sexp) ([]graph.NodeID, error) {
	var ids []graph.NodeID
	for i, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			nested, err := toNodeRefs(items)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			ids = append(ids, nested...)
		default:
			id, err := toNodeRef(a)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Scene construction
// ---------------------------------------------------------------------------

// scene accumulates the graph built by one evaluation. Anonymous nodes get
// IDs from a per-evaluation counter so identical sources give identical
// graphs.
type scene struct {
	g    *graph.SceneGraph
	anon int
}

// add inserts a node of the given kind with an ID derived from path.
func (sc *scene) add(path string, kind graph.NodeKind, data graph.NodeData, children ...graph.NodeID) *sexpNodeRef {
	sc.anon++
	id := graph.NewNodeID(fmt.Sprintf("%s/%d", path, sc.anon))
	sc.g.AddNode(&graph.Node{ID: id, Kind: kind, Children: children, Data: data})
	return &sexpNodeRef{id: id}
}

// name assigns a user-visible name to an existing node and makes it a root.
func (sc *scene) name(id graph.NodeID, name string) error {
	if prev := sc.g.Lookup(name); prev != nil {
		return fmt.Errorf("shape %q already defined", name)
	}
	n := sc.g.Get(id)
	if n == nil {
		return fmt.Errorf("unknown node %s", id.Short())
	}
	if n.Name != "" {
		return fmt.Errorf("expression is already the shape %q", n.Name)
	}
	n.Name = name
	sc.g.NameIndex[name] = id
	sc.g.AddRoot(id)
	return nil
}

// finish drops roots that other nodes consume, so a named shape used inside
// another shape is not emitted twice.
func (sc *scene) finish() {
	used := make(map[graph.NodeID]bool)
	for _, n := range sc.g.Nodes {
		for _, c := range n.Children {
			used[c] = true
		}
	}
	roots := sc.g.Roots[:0]
	for _, r := range sc.g.Roots {
		if !used[r] {
			roots = append(roots, r)
		}
	}
	sc.g.Roots = roots
}

// numberArg reads a number from a keyword, falling back to the positional
// argument at index pos. The bool result reports whether either was given.
func numberArg(pa kwArgs, key string, pos int) (float64, bool, error) {
	v, ok := pa.kw[key]
	if !ok {
		if pos >= len(pa.positional) {
			return 0, false, nil
		}
		v = pa.positional[pos]
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, true, fmt.Errorf("%s: %w", key, err)
	}
	return f, true, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all scene DSL builtins into a zygomys environment.
// The builtins operate on the provided scene, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sc *scene) {

	// -----------------------------------------------------------------------
	// (box :x 10 :y 20 :z 5) or (box 10 20 5)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var bd graph.BoxData
		if v, ok := pa.kw["size"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: size: %w", err)
			}
			bd.Size = vec
		} else {
			for i, axis := range []struct {
				key string
				dst *float64
			}{{"x", &bd.Size.X}, {"y", &bd.Size.Y}, {"z", &bd.Size.Z}} {
				f, _, err := numberArg(pa, axis.key, i)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("box: %w", err)
				}
				*axis.dst = f
			}
		}
		return sc.add("box", graph.NodePrimitive, bd), nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 5) or (sphere 5)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		r, ok, err := numberArg(pa, "radius", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sphere requires a radius")
		}
		return sc.add("sphere", graph.NodePrimitive, graph.SphereData{Radius: r}), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 10 :radius 3 :segments 48)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var cd graph.CylinderData
		h, _, err := numberArg(pa, "height", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		r, _, err := numberArg(pa, "radius", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		cd.Height, cd.Radius = h, r
		if v, ok := pa.kw["segments"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: segments: %w", err)
			}
			cd.Segments = int(f)
		}
		return sc.add("cylinder", graph.NodePrimitive, cd), nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: graph.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (translate shape :by (vec3 0 0 19))
	// (rotate shape :by (vec3 0 0 90))
	// -----------------------------------------------------------------------
	transform := func(fn string, set func(td *graph.TransformData, v graph.Vec3)) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly one shape", fn)
			}
			childID, err := toNodeRef(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			v, ok := pa.kw["by"]
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s requires :by (vec3 ...)", fn)
			}
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: by: %w", fn, err)
			}
			var td graph.TransformData
			set(&td, vec)
			return sc.add(fn, graph.NodeTransform, td, childID), nil
		}
	}
	env.AddFunction("translate", transform("translate", func(td *graph.TransformData, v graph.Vec3) {
		td.Translation = &v
	}))
	env.AddFunction("rotate", transform("rotate", func(td *graph.TransformData, v graph.Vec3) {
		td.Rotation = &v
	}))

	// -----------------------------------------------------------------------
	// (union a b ...) (difference a b ...) (intersection a b ...)
	// -----------------------------------------------------------------------
	for _, op := range []graph.BooleanOp{graph.OpUnion, graph.OpDifference, graph.OpIntersection} {
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			children, err := toNodeRefs(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			if len(children) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 shapes, got %d", op, len(children))
			}
			return sc.add(op.String(), graph.NodeBoolean, graph.BooleanData{Op: op}, children...), nil
		})
	}

	// -----------------------------------------------------------------------
	// (defshape "name" expr)
	// -----------------------------------------------------------------------
	env.AddFunction("defshape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defshape requires a name and a body expression")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: name: %w", err)
		}
		id, err := toNodeRef(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: body: %w", err)
		}
		if err := sc.name(id, shapeName); err != nil {
			return zygo.SexpNull, fmt.Errorf("defshape: %w", err)
		}
		return &sexpNodeRef{id: id, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (shape "name")
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name argument")
		}
		shapeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		n := sc.g.Lookup(shapeName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("shape: no shape named %q", shapeName)
		}
		return &sexpNodeRef{id: n.ID, name: shapeName}, nil
	})

	// -----------------------------------------------------------------------
	// (group "name" a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("group", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("group requires a name argument")
		}
		groupName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: name: %w", err)
		}
		children, err := toNodeRefs(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("group: %w", err)
		}
		ref := sc.add("group/"+groupName, graph.NodeGroup, graph.GroupData{Description: groupName}, children...)
		if err := sc.name(ref.id, groupName); err != nil {
			return zygo.SexpNull, fmt.Errorf("group: %w", err)
		}
		ref.name = groupName
		return ref, nil
	})

	// -----------------------------------------------------------------------
	// (normals :feature-angle 45 :splitting true :auto-orient true ...)
	// -----------------------------------------------------------------------
	env.AddFunction("normals", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("normals takes only keyword arguments")
		}
		opts := sc.g.Normals
		for _, key := range pa.keys {
			if err := setNormalsOption(&opts, key, pa.kw[key]); err != nil {
				return zygo.SexpNull, fmt.Errorf("normals: %w", err)
			}
		}
		sc.g.Normals = opts.Normalize()
		return zygo.SexpNull, nil
	})
}

// setNormalsOption applies one (normals ...) keyword to opts.
func setNormalsOption(opts *normals.Options, key string, v zygo.Sexp) error {
	var flag *bool
	switch key {
	case "feature-angle":
		f, err := toFloat64(v)
		if err != nil {
			return fmt.Errorf("feature-angle: %w", err)
		}
		opts.FeatureAngle = f
		return nil
	case "precision":
		s, err := toKeywordString(v)
		if err != nil {
			return fmt.Errorf("precision: %w", err)
		}
		p, err := normals.ParsePrecision(s)
		if err != nil {
			return err
		}
		opts.OutputPointsPrecision = p
		return nil
	case "splitting":
		flag = &opts.Splitting
	case "consistency":
		flag = &opts.Consistency
	case "flip":
		flag = &opts.FlipNormals
	case "auto-orient":
		flag = &opts.AutoOrientNormals
	case "point-normals":
		flag = &opts.ComputePointNormals
	case "cell-normals":
		flag = &opts.ComputeCellNormals
	case "non-manifold":
		flag = &opts.NonManifoldTraversal
	default:
		return fmt.Errorf("unknown option :%s", key)
	}
	b, err := toBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*flag = b
	return nil
}
