package polydata

import (
	"errors"
	"fmt"
)

var (
	// ErrNilMesh is returned when an operation receives no mesh.
	ErrNilMesh = errors.New("polydata: nil mesh")
	// ErrNoPoints is returned when a mesh has no points.
	ErrNoPoints = errors.New("polydata: mesh has no points")
	// ErrNoPolygons is returned when a mesh has neither polygons nor strips.
	ErrNoPolygons = errors.New("polydata: mesh has no polygons")
	// ErrIndexOutOfRange is returned when a cell references a missing point.
	ErrIndexOutOfRange = errors.New("polydata: point index out of range")
)

// Mesh is a polygonal dataset. Verts and Lines are carried along by filters
// that only operate on 2D cells. CellData holds one tuple per polygon
// followed by one tuple per strip; verts and lines carry no cell data.
type Mesh struct {
	Points    *Points
	Verts     *CellArray
	Lines     *CellArray
	Polys     *CellArray
	Strips    *CellArray
	PointData *Attributes
	CellData  *Attributes
}

// New returns a mesh over the given points with empty cell arrays.
func New(points *Points) *Mesh {
	return &Mesh{
		Points:    points,
		Verts:     &CellArray{},
		Lines:     &CellArray{},
		Polys:     &CellArray{},
		Strips:    &CellArray{},
		PointData: &Attributes{},
		CellData:  &Attributes{},
	}
}

// PointCount returns the number of points.
func (m *Mesh) PointCount() int {
	return m.Points.Len()
}

// PolygonCount returns the number of polygons (strips not included).
func (m *Mesh) PolygonCount() int {
	return m.Polys.Len()
}

// IsEmpty reports whether the mesh has no points.
func (m *Mesh) IsEmpty() bool {
	return m == nil || m.Points.Len() == 0
}

// Clone returns a deep copy with all nil members replaced by empty ones.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Verts:     m.Verts.Clone(),
		Lines:     m.Lines.Clone(),
		Polys:     m.Polys.Clone(),
		Strips:    m.Strips.Clone(),
		PointData: m.PointData.Clone(),
		CellData:  m.CellData.Clone(),
	}
	if m.Points != nil {
		out.Points = m.Points.Clone()
	} else {
		out.Points = NewPoints(Double, 0)
	}
	return out
}

// Validate checks the preconditions shared by the polygon filters: the mesh
// has points, has at least one polygon or strip, every cell references
// existing points and attribute arrays match their tuple counts.
func Validate(m *Mesh) error {
	if m == nil {
		return ErrNilMesh
	}
	n := m.Points.Len()
	if n == 0 {
		return ErrNoPoints
	}
	if m.Polys.Len() == 0 && m.Strips.Len() == 0 {
		return ErrNoPolygons
	}

	for _, c := range []struct {
		kind  string
		cells *CellArray
	}{
		{"vert", m.Verts}, {"line", m.Lines}, {"polygon", m.Polys}, {"strip", m.Strips},
	} {
		for i := 0; i < c.cells.Len(); i++ {
			for _, id := range c.cells.Cell(i) {
				if id < 0 || id >= n {
					return fmt.Errorf("%s %d references point %d of %d: %w", c.kind, i, id, n, ErrIndexOutOfRange)
				}
			}
		}
	}

	if err := m.PointData.check("point", n); err != nil {
		return err
	}
	return m.CellData.check("cell", m.Polys.Len()+m.Strips.Len())
}
