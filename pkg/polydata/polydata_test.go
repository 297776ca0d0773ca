package polydata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func square() *Mesh {
	m := New(PointsFromVecs(
		r3.Vec{X: 0, Y: 0, Z: 0},
		r3.Vec{X: 1, Y: 0, Z: 0},
		r3.Vec{X: 1, Y: 1, Z: 0},
		r3.Vec{X: 0, Y: 1, Z: 0},
	))
	m.Polys.Append(0, 1, 2, 3)
	return m
}

func TestPointsPrecision(t *testing.T) {
	p := NewPoints(Single, 2)
	p.Append(r3.Vec{X: 0.1, Y: 0.2, Z: 0.3})
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 4, p.ByteWidth())
	assert.Equal(t, Single, p.Precision())
	assert.InDelta(t, 0.1, p.At(0).X, 1e-7)

	d := p.Convert(Double)
	assert.Equal(t, 8, d.ByteWidth())
	assert.Equal(t, p.At(0), d.At(0))
	assert.Len(t, d.Float64s(), 3)
}

func TestPointsFromFlatSlices(t *testing.T) {
	_, err := PointsFromFloat64([]float64{1, 2})
	assert.Error(t, err)

	p, err := PointsFromFloat32([]float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, r3.Vec{X: 4, Y: 5, Z: 6}, p.At(1))
}

func TestPointsBounds(t *testing.T) {
	lo, hi := square().Points.Bounds()
	assert.Equal(t, r3.Vec{}, lo)
	assert.Equal(t, r3.Vec{X: 1, Y: 1}, hi)
}

func TestCellArrayReverseAndClone(t *testing.T) {
	ca := NewCellArray([]int{0, 1, 2, 3})
	cl := ca.Clone()
	ca.Reverse(0)
	assert.Equal(t, []int{3, 2, 1, 0}, ca.Cell(0))
	assert.Equal(t, []int{0, 1, 2, 3}, cl.Cell(0))
	assert.False(t, ca.Equal(cl))
	assert.Equal(t, 4, ca.MaxCellSize())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mesh func() *Mesh
		want error
	}{
		{"nil mesh", func() *Mesh { return nil }, ErrNilMesh},
		{"no points", func() *Mesh { return New(NewPoints(Double, 0)) }, ErrNoPoints},
		{"no polygons", func() *Mesh {
			m := square()
			m.Polys = &CellArray{}
			m.Lines.Append(0, 1)
			return m
		}, ErrNoPolygons},
		{"index out of range", func() *Mesh {
			m := square()
			m.Polys.Append(0, 1, 7)
			return m
		}, ErrIndexOutOfRange},
		{"valid", square, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.mesh())
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateAttributeLength(t *testing.T) {
	m := square()
	m.PointData.Set(&DataArray{Name: "t", Components: 1, Values: []float64{1, 2}})
	assert.Error(t, Validate(m))
}

func TestDecomposeStrips(t *testing.T) {
	m := New(PointsFromVecs(
		r3.Vec{X: 0, Y: 0}, r3.Vec{X: 0, Y: 1}, r3.Vec{X: 1, Y: 0},
		r3.Vec{X: 1, Y: 1}, r3.Vec{X: 2, Y: 0},
	))
	m.Polys.Append(0, 2, 1)
	m.Strips.Append(0, 1, 2, 3, 4)
	m.CellData.Set(&DataArray{Name: "id", Components: 1, Values: []float64{10, 20}})

	out := DecomposeStrips(m)
	require.Equal(t, 4, out.Polys.Len())
	assert.Equal(t, 0, out.Strips.Len())
	assert.Equal(t, []int{0, 1, 2}, out.Polys.Cell(1))
	assert.Equal(t, []int{2, 1, 3}, out.Polys.Cell(2))
	assert.Equal(t, []int{2, 3, 4}, out.Polys.Cell(3))
	assert.Equal(t, []float64{10, 20, 20, 20}, out.CellData.Get("id").Values)
}

func TestWeldTriangleSoup(t *testing.T) {
	// Two triangles of a unit square emitted with separate vertices.
	m := New(PointsFromVecs(
		r3.Vec{X: 0, Y: 0}, r3.Vec{X: 1, Y: 0}, r3.Vec{X: 1, Y: 1},
		r3.Vec{X: 0, Y: 0}, r3.Vec{X: 1, Y: 1 + 1e-9}, r3.Vec{X: 0, Y: 1},
	))
	m.Polys.Append(0, 1, 2)
	m.Polys.Append(3, 4, 5)

	out := Weld(m, 1e-6)
	assert.Equal(t, 4, out.Points.Len())
	require.Equal(t, 2, out.Polys.Len())
	assert.Equal(t, []int{0, 1, 2}, out.Polys.Cell(0))
	assert.Equal(t, []int{0, 2, 3}, out.Polys.Cell(1))
}

func TestWeldDropsCollapsedPolygons(t *testing.T) {
	m := New(PointsFromVecs(
		r3.Vec{X: 0}, r3.Vec{X: 1}, r3.Vec{X: 1}, r3.Vec{X: 0, Y: 1},
	))
	m.Polys.Append(0, 1, 2)
	m.Polys.Append(0, 1, 3)
	m.CellData.Set(&DataArray{Name: "id", Components: 1, Values: []float64{1, 2}})

	out := Weld(m, 0)
	require.Equal(t, 1, out.Polys.Len())
	assert.Equal(t, []int{0, 1, 2}, out.Polys.Cell(0))
	assert.Equal(t, []float64{2}, out.CellData.Get("id").Values)
}

func TestTriangulate(t *testing.T) {
	idx := Triangulate(square())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, idx)
}

func TestAttributesSetReplaces(t *testing.T) {
	at := NewAttributes(&DataArray{Name: NormalsName, Components: 3, Values: []float64{0, 0, 1}})
	at.Set(&DataArray{Name: NormalsName, Components: 3, Values: []float64{1, 0, 0}})
	require.Len(t, at.Arrays(), 1)
	assert.Equal(t, []float64{1, 0, 0}, at.Normals().Tuple(0))
	assert.Nil(t, at.Get("missing"))
}

func TestAttributesRemove(t *testing.T) {
	at := NewAttributes(
		&DataArray{Name: "temp", Components: 1, Values: []float64{1}},
		&DataArray{Name: NormalsName, Components: 3, Values: []float64{0, 0, 1}},
	)
	at.Remove(NormalsName)
	at.Remove("missing")
	require.Len(t, at.Arrays(), 1)
	assert.Nil(t, at.Normals())
	assert.NotNil(t, at.Get("temp"))
}
