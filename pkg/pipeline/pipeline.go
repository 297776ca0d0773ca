// Package pipeline runs scene source through evaluation, tessellation and
// the normals engine, producing render-ready meshes.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/manifold"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/normals"
	"github.com/chazu/facet/pkg/polydata"
	"github.com/chazu/facet/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// MeshData is the JSON-serializable render mesh of one part.
type MeshData struct {
	Vertices []float32     `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32     `json:"normals"`  // one point normal per vertex
	Indices  []uint32      `json:"indices"`  // triangles
	PartName string        `json:"partName"`
	Color    string        `json:"color"`
	Stats    normals.Stats `json:"stats"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// Result is the full result of an evaluation.
type Result struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// Pipeline turns scene source into render meshes. It is safe for concurrent
// use; normals runs are serialized so they can share one scratch buffer.
type Pipeline struct {
	engine *engine.Engine
	kernel kernel.Kernel
	logger *slog.Logger

	mu      sync.Mutex
	scratch *normals.Scratch
}

// New creates a pipeline from cfg. It fails only when the configured kernel
// is unavailable in this build.
func New(cfg config.Config, logger *slog.Logger) (*Pipeline, error) {
	k, err := NewKernel(cfg.Tessellation)
	if err != nil {
		return nil, err
	}
	return NewWithKernel(engine.NewEngineWithDefaults(cfg.Normals), k, logger), nil
}

// NewWithKernel creates a pipeline from explicit parts. A nil logger means
// slog.Default().
func NewWithKernel(eng *engine.Engine, k kernel.Kernel, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		engine:  eng,
		kernel:  k,
		logger:  logger,
		scratch: normals.NewScratch(),
	}
}

// NewKernel builds the geometry kernel named by t.
func NewKernel(t config.Tessellation) (kernel.Kernel, error) {
	switch t.Kernel {
	case config.KernelSdfx, "":
		return &sdfx.SdfxKernel{Cells: t.Cells, WeldTolerance: t.WeldTolerance}, nil
	case config.KernelManifold:
		k, err := manifold.New()
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		return k, nil
	}
	return nil, fmt.Errorf("pipeline: unknown kernel %q", t.Kernel)
}

// Evaluate takes scene source and returns mesh data + errors.
func (p *Pipeline) Evaluate(source string) Result {
	return p.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate with cancellation of the normals passes.
func (p *Pipeline) EvaluateContext(ctx context.Context, source string) Result {
	result := Result{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the source into a scene graph.
	ev, err := p.engine.EvaluateResult(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		p.logger.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, w := range ev.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	if len(ev.Errors) > 0 {
		for _, e := range ev.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	g := ev.Graph

	// Step 2: Tessellate the scene graph into polygon meshes.
	parts, err := tessellate.Tessellate(g, p.kernel)
	if err != nil {
		p.logger.Error("tessellate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}

	// Step 3: Compute normals and convert to render meshes.
	p.mu.Lock()
	defer p.mu.Unlock()
	filter := &normals.Filter{Options: g.Normals, Logger: p.logger, Scratch: p.scratch}
	for i, part := range parts {
		res, err := filter.Run(ctx, part.Mesh)
		if err != nil {
			p.logger.Error("normals failed", "part", part.Name, "err", err)
			result.Errors = append(result.Errors, EvalErrorData{
				Message: fmt.Sprintf("part %q: %v", part.Name, err),
			})
			if ctx.Err() != nil {
				return result
			}
			continue
		}

		md := toMeshData(res.Mesh)
		md.PartName = part.Name
		md.Color = colorPalette[i%len(colorPalette)]
		md.Stats = res.Stats
		p.logger.Info("part ready",
			"part", part.Name,
			"points", res.Mesh.PointCount(),
			"polygons", res.Stats.Polygons,
			"reversed", res.Stats.ReversedPolygons,
			"shells", res.Stats.Shells,
			"added_points", res.Stats.AddedPoints)
		result.Meshes = append(result.Meshes, md)
	}
	return result
}

// toMeshData flattens m into render buffers. Normals are the point normals
// when present, zero vectors otherwise.
func toMeshData(m *polydata.Mesh) MeshData {
	md := MeshData{
		Vertices: m.Points.Float32s(),
		Normals:  make([]float32, m.PointCount()*3),
		Indices:  polydata.Triangulate(m),
	}
	if n := m.PointData.Normals(); n != nil {
		for i, v := range n.Values {
			md.Normals[i] = float32(v)
		}
	}
	return md
}
