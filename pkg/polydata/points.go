// Package polydata defines the polygonal mesh model shared by the geometry
// kernels, the normals engine and the render output: points with an explicit
// storage precision, cell connectivity lists and named attribute arrays.
package polydata

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Precision selects the storage width of point coordinates.
type Precision int

const (
	Double Precision = iota // 64-bit coordinates
	Single                  // 32-bit coordinates
)

func (p Precision) String() string {
	switch p {
	case Double:
		return "double"
	case Single:
		return "single"
	default:
		return "unknown"
	}
}

// Points is an ordered list of 3D coordinates. Exactly one of the backing
// slices is in use, depending on the precision.
type Points struct {
	prec Precision
	f32  []float32
	f64  []float64
}

// NewPoints returns an empty point list with the given precision and capacity
// for n points.
func NewPoints(prec Precision, n int) *Points {
	p := &Points{prec: prec}
	if prec == Single {
		p.f32 = make([]float32, 0, n*3)
	} else {
		p.f64 = make([]float64, 0, n*3)
	}
	return p
}

// PointsFromFloat64 wraps a flat [x0,y0,z0, x1,...] slice as double precision points.
func PointsFromFloat64(xyz []float64) (*Points, error) {
	if len(xyz)%3 != 0 {
		return nil, fmt.Errorf("polydata: coordinate count %d is not a multiple of 3", len(xyz))
	}
	return &Points{prec: Double, f64: xyz}, nil
}

// PointsFromFloat32 wraps a flat [x0,y0,z0, x1,...] slice as single precision points.
func PointsFromFloat32(xyz []float32) (*Points, error) {
	if len(xyz)%3 != 0 {
		return nil, fmt.Errorf("polydata: coordinate count %d is not a multiple of 3", len(xyz))
	}
	return &Points{prec: Single, f32: xyz}, nil
}

// PointsFromVecs builds double precision points from vectors.
func PointsFromVecs(vs ...r3.Vec) *Points {
	p := NewPoints(Double, len(vs))
	for _, v := range vs {
		p.Append(v)
	}
	return p
}

// Precision returns the storage precision.
func (p *Points) Precision() Precision {
	return p.prec
}

// ByteWidth returns the size in bytes of one stored coordinate component.
func (p *Points) ByteWidth() int {
	if p.prec == Single {
		return 4
	}
	return 8
}

// Len returns the number of points.
func (p *Points) Len() int {
	if p == nil {
		return 0
	}
	if p.prec == Single {
		return len(p.f32) / 3
	}
	return len(p.f64) / 3
}

// At returns point i.
func (p *Points) At(i int) r3.Vec {
	if p.prec == Single {
		return r3.Vec{X: float64(p.f32[i*3]), Y: float64(p.f32[i*3+1]), Z: float64(p.f32[i*3+2])}
	}
	return r3.Vec{X: p.f64[i*3], Y: p.f64[i*3+1], Z: p.f64[i*3+2]}
}

// Set overwrites point i.
func (p *Points) Set(i int, v r3.Vec) {
	if p.prec == Single {
		p.f32[i*3], p.f32[i*3+1], p.f32[i*3+2] = float32(v.X), float32(v.Y), float32(v.Z)
		return
	}
	p.f64[i*3], p.f64[i*3+1], p.f64[i*3+2] = v.X, v.Y, v.Z
}

// Append adds a point and returns its id.
func (p *Points) Append(v r3.Vec) int {
	if p.prec == Single {
		p.f32 = append(p.f32, float32(v.X), float32(v.Y), float32(v.Z))
	} else {
		p.f64 = append(p.f64, v.X, v.Y, v.Z)
	}
	return p.Len() - 1
}

// Float32s returns the coordinates as a flat float32 slice. For single
// precision points this is the backing slice itself.
func (p *Points) Float32s() []float32 {
	if p.prec == Single {
		return p.f32
	}
	out := make([]float32, len(p.f64))
	for i, v := range p.f64 {
		out[i] = float32(v)
	}
	return out
}

// Float64s returns the coordinates as a flat float64 slice. For double
// precision points this is the backing slice itself.
func (p *Points) Float64s() []float64 {
	if p.prec == Double {
		return p.f64
	}
	out := make([]float64, len(p.f32))
	for i, v := range p.f32 {
		out[i] = float64(v)
	}
	return out
}

// Convert returns a copy of the points stored with the given precision.
func (p *Points) Convert(prec Precision) *Points {
	out := NewPoints(prec, p.Len())
	for i := 0; i < p.Len(); i++ {
		out.Append(p.At(i))
	}
	return out
}

// Clone returns a deep copy with the same precision.
func (p *Points) Clone() *Points {
	return p.Convert(p.prec)
}

// Bounds returns the axis-aligned bounding box. Both corners are zero for an
// empty list.
func (p *Points) Bounds() (lo, hi r3.Vec) {
	n := p.Len()
	if n == 0 {
		return lo, hi
	}
	lo = p.At(0)
	hi = lo
	for i := 1; i < n; i++ {
		v := p.At(i)
		lo = r3.Vec{X: min(lo.X, v.X), Y: min(lo.Y, v.Y), Z: min(lo.Z, v.Z)}
		hi = r3.Vec{X: max(hi.X, v.X), Y: max(hi.Y, v.Y), Z: max(hi.Z, v.Z)}
	}
	return lo, hi
}
