// Package normals computes polygon and point normals for polygonal meshes.
//
// A run computes a Newell normal for every polygon, optionally makes the
// polygon windings consistent by breadth-first propagation over shared
// edges, optionally orients closed shells outward, splits points along sharp
// feature edges so that creases shade correctly, optionally flips everything,
// and finally averages polygon normals into point normals. Verts and lines
// are passed through untouched.
package normals

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chazu/facet/pkg/polydata"
	"gonum.org/v1/gonum/spatial/r3"
)

// Stats summarises what a run changed.
type Stats struct {
	Polygons         int `json:"polygons"`         // polygons processed, strips included as triangles
	ReversedPolygons int `json:"reversedPolygons"` // polygons reversed by the consistency traversal
	Shells           int `json:"shells"`           // connected shells found by the traversal
	FlippedShells    int `json:"flippedShells"`    // shells reversed by auto-orientation
	SplitPoints      int `json:"splitPoints"`      // original points duplicated along sharp edges
	AddedPoints      int `json:"addedPoints"`      // new points created by splitting
}

// Result is the output of a run.
type Result struct {
	Mesh  *polydata.Mesh
	Stats Stats
}

// Filter runs the normals computation with a fixed configuration.
type Filter struct {
	Options Options
	// Logger receives per-run statistics at debug level. Nil means slog.Default().
	Logger *slog.Logger
	// Scratch, when set, is reused across runs. Runs sharing a Scratch must
	// not overlap.
	Scratch *Scratch
}

// New returns a filter with the given options.
func New(opts Options) *Filter {
	return &Filter{Options: opts}
}

// Compute runs a filter with opts over in and returns the output mesh.
func Compute(in *polydata.Mesh, opts Options) (*polydata.Mesh, error) {
	res, err := New(opts).Run(context.Background(), in)
	if err != nil {
		return nil, err
	}
	return res.Mesh, nil
}

func (f *Filter) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// Run computes normals for in. The input mesh is never modified. The output
// mesh holds converted copies of the points (extended with split points), the
// verts and lines unchanged, the polygons with their final winding and point
// ids, strips decomposed into triangles, and "Normals" arrays in point and/or
// cell data as configured.
//
// Run fails without output when in has no points, no polygons or strips,
// or references missing points, and when ctx is cancelled between passes.
func (f *Filter) Run(ctx context.Context, in *polydata.Mesh) (*Result, error) {
	if err := polydata.Validate(in); err != nil {
		return nil, fmt.Errorf("normals: %w", err)
	}
	opts := f.Options.Normalize()
	sc := f.Scratch
	if sc == nil {
		sc = NewScratch()
	}

	src := polydata.DecomposeStrips(in)
	polys := src.Polys.Clone()
	numPts := src.Points.Len()
	st := Stats{Polygons: polys.Len()}

	sc.reset(numPts, polys.Len())
	sc.buildLinks(polys)

	var normals []r3.Vec
	normals, sc.coords = polygonNormals(src.Points, polys, sc.coords)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("normals: %w", err)
	}

	if opts.Consistency || opts.AutoOrientNormals {
		st.Shells = traverse(polys, normals, opts.NonManifoldTraversal, sc, &st)
		if opts.AutoOrientNormals {
			autoOrient(src.Points, polys, normals, st.Shells, sc, &st)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}

	out := &polydata.Mesh{
		Points:    src.Points.Convert(opts.OutputPointsPrecision.resolve(src.Points.Precision())),
		Verts:     src.Verts.Clone(),
		Lines:     src.Lines.Clone(),
		Polys:     polys,
		Strips:    &polydata.CellArray{},
		PointData: src.PointData.Clone(),
		CellData:  src.CellData.Clone(),
	}
	// Input normals would be stale after reorientation or splitting.
	out.PointData.Remove(polydata.NormalsName)
	out.CellData.Remove(polydata.NormalsName)

	if opts.Splitting {
		out.Polys = polys.Clone()
		split(polys, out.Polys, normals, opts.cosFeatureAngle(), out.Points, out.PointData, sc, &st)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
	}

	if opts.FlipNormals {
		for c := 0; c < out.Polys.Len(); c++ {
			out.Polys.Reverse(c)
			normals[c] = r3.Scale(-1, normals[c])
		}
	}

	if opts.ComputeCellNormals {
		out.CellData.Set(vectorArray(polydata.NormalsName, normals))
	}
	if opts.ComputePointNormals {
		out.PointData.Set(vectorArray(polydata.NormalsName, pointNormals(out.Points.Len(), out.Polys, normals)))
	}

	f.logger().Debug("normals computed",
		"polygons", st.Polygons,
		"reversed", st.ReversedPolygons,
		"shells", st.Shells,
		"flipped_shells", st.FlippedShells,
		"split_points", st.SplitPoints,
		"added_points", st.AddedPoints,
	)
	return &Result{Mesh: out, Stats: st}, nil
}
