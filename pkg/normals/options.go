package normals

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/facet/pkg/polydata"
)

// DefaultFeatureAngle is the default sharp-edge threshold in degrees.
const DefaultFeatureAngle = 30.0

// OutputPrecision selects the coordinate precision of the output points.
type OutputPrecision int

const (
	SameAsInput OutputPrecision = iota // keep the input precision
	SinglePrecision                    // 32-bit coordinates
	DoublePrecision                    // 64-bit coordinates
)

func (p OutputPrecision) String() string {
	switch p {
	case SameAsInput:
		return "same"
	case SinglePrecision:
		return "single"
	case DoublePrecision:
		return "double"
	default:
		return "unknown"
	}
}

// ParsePrecision converts "same", "single" or "double" (case-insensitive)
// to an OutputPrecision.
func ParsePrecision(s string) (OutputPrecision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "same", "same-as-input", "":
		return SameAsInput, nil
	case "single", "float", "float32":
		return SinglePrecision, nil
	case "double", "float64":
		return DoublePrecision, nil
	}
	return SameAsInput, fmt.Errorf("invalid output precision %q, expected same, single or double", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p OutputPrecision) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *OutputPrecision) UnmarshalText(b []byte) error {
	v, err := ParsePrecision(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// resolve returns the concrete precision for points stored with in.
func (p OutputPrecision) resolve(in polydata.Precision) polydata.Precision {
	switch p {
	case SinglePrecision:
		return polydata.Single
	case DoublePrecision:
		return polydata.Double
	default:
		return in
	}
}

// Options configures a normals run.
type Options struct {
	// FeatureAngle is the dihedral angle in degrees above which an edge is
	// sharp and its points are split. Clamped to [0, 180].
	FeatureAngle float64 `toml:"feature_angle"`
	// Splitting enables duplication of points along sharp edges.
	Splitting bool `toml:"splitting"`
	// Consistency enables winding propagation across neighbouring polygons.
	Consistency bool `toml:"consistency"`
	// FlipNormals reverses every polygon and normal after all other passes.
	FlipNormals bool `toml:"flip_normals"`
	// AutoOrientNormals orients every closed shell outward. It implies the
	// consistency traversal.
	AutoOrientNormals bool `toml:"auto_orient_normals"`
	// ComputePointNormals attaches averaged normals to the output points.
	ComputePointNormals bool `toml:"compute_point_normals"`
	// ComputeCellNormals attaches polygon normals to the output cells.
	ComputeCellNormals bool `toml:"compute_cell_normals"`
	// NonManifoldTraversal lets propagation cross edges shared by more than
	// two polygons.
	NonManifoldTraversal bool `toml:"non_manifold_traversal"`
	// OutputPointsPrecision selects the output coordinate precision.
	OutputPointsPrecision OutputPrecision `toml:"output_points_precision"`
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		FeatureAngle:          DefaultFeatureAngle,
		Splitting:             true,
		Consistency:           true,
		ComputePointNormals:   true,
		NonManifoldTraversal:  true,
		OutputPointsPrecision: SameAsInput,
	}
}

// Normalize returns a copy with out-of-range values clamped.
func (o Options) Normalize() Options {
	switch {
	case math.IsNaN(o.FeatureAngle):
		o.FeatureAngle = DefaultFeatureAngle
	case o.FeatureAngle < 0:
		o.FeatureAngle = 0
	case o.FeatureAngle > 180:
		o.FeatureAngle = 180
	}
	if o.OutputPointsPrecision < SameAsInput || o.OutputPointsPrecision > DoublePrecision {
		o.OutputPointsPrecision = SameAsInput
	}
	return o
}

// cosFeatureAngle returns the cosine of the feature angle.
func (o Options) cosFeatureAngle() float64 {
	return math.Cos(o.FeatureAngle * math.Pi / 180)
}
