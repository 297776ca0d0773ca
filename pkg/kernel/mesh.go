package kernel

import (
	"fmt"

	"github.com/chazu/facet/pkg/polydata"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a single triangle of a soup, wound counter-clockwise when
// seen from outside the solid.
type Triangle [3]r3.Vec

// FromTriangles converts a triangle soup into an indexed mesh by welding
// coincident corners. tol is the weld distance; zero or negative selects
// polydata.DefaultWeldTolerance relative to the soup's extent. Triangles
// that collapse under welding are dropped.
func FromTriangles(tris []Triangle, tol float64) *polydata.Mesh {
	pts := polydata.NewPoints(polydata.Double, len(tris)*3)
	polys := &polydata.CellArray{}
	for _, t := range tris {
		a := pts.Append(t[0])
		b := pts.Append(t[1])
		c := pts.Append(t[2])
		polys.Append(a, b, c)
	}
	soup := polydata.New(pts)
	soup.Polys = polys
	if len(tris) == 0 {
		return soup
	}
	return polydata.Weld(soup, tol)
}

// FromIndexed builds a mesh from flat single-precision vertex and triangle
// index buffers, as produced by kernels that keep shared vertices.
func FromIndexed(vertices []float32, indices []uint32) (*polydata.Mesh, error) {
	pts, err := polydata.PointsFromFloat32(vertices)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("kernel: index count %d is not a multiple of 3", len(indices))
	}
	m := polydata.New(pts)
	for i := 0; i < len(indices); i += 3 {
		m.Polys.Append(int(indices[i]), int(indices[i+1]), int(indices[i+2]))
	}
	if err := polydata.Validate(m); err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	return m, nil
}
