package normals

import (
	"math"

	"github.com/chazu/facet/pkg/polydata"
	"gonum.org/v1/gonum/spatial/r3"
)

// unitCube returns an outward-wound cube made of six quads.
func unitCube() *polydata.Mesh {
	m := polydata.New(polydata.PointsFromVecs(
		r3.Vec{X: 0, Y: 0, Z: 0}, r3.Vec{X: 1, Y: 0, Z: 0},
		r3.Vec{X: 1, Y: 1, Z: 0}, r3.Vec{X: 0, Y: 1, Z: 0},
		r3.Vec{X: 0, Y: 0, Z: 1}, r3.Vec{X: 1, Y: 0, Z: 1},
		r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{X: 0, Y: 1, Z: 1},
	))
	m.Polys.Append(0, 3, 2, 1) // -z
	m.Polys.Append(4, 5, 6, 7) // +z
	m.Polys.Append(0, 1, 5, 4) // -y
	m.Polys.Append(3, 7, 6, 2) // +y
	m.Polys.Append(0, 4, 7, 3) // -x
	m.Polys.Append(1, 2, 6, 5) // +x
	return m
}

// uvSphere returns an outward-wound unit sphere centred at the origin with
// triangle caps and quad bands.
func uvSphere(rings, segments int) *polydata.Mesh {
	pts := polydata.NewPoints(polydata.Double, 2+(rings-1)*segments)
	north := pts.Append(r3.Vec{Z: 1})
	ring := func(i, j int) int { return 1 + (i-1)*segments + j%segments }
	for i := 1; i < rings; i++ {
		theta := math.Pi * float64(i) / float64(rings)
		for j := 0; j < segments; j++ {
			phi := 2 * math.Pi * float64(j) / float64(segments)
			pts.Append(r3.Vec{
				X: math.Sin(theta) * math.Cos(phi),
				Y: math.Sin(theta) * math.Sin(phi),
				Z: math.Cos(theta),
			})
		}
	}
	south := pts.Append(r3.Vec{Z: -1})

	m := polydata.New(pts)
	for j := 0; j < segments; j++ {
		m.Polys.Append(north, ring(1, j), ring(1, j+1))
	}
	for i := 1; i < rings-1; i++ {
		for j := 0; j < segments; j++ {
			m.Polys.Append(ring(i, j), ring(i+1, j), ring(i+1, j+1), ring(i, j+1))
		}
	}
	for j := 0; j < segments; j++ {
		m.Polys.Append(south, ring(rings-1, j+1), ring(rings-1, j))
	}
	return m
}

// reversed returns a copy of m with the given polygons reversed, or all of
// them when none are named.
func reversed(m *polydata.Mesh, cells ...int) *polydata.Mesh {
	out := m.Clone()
	if len(cells) == 0 {
		for c := 0; c < out.Polys.Len(); c++ {
			out.Polys.Reverse(c)
		}
		return out
	}
	for _, c := range cells {
		out.Polys.Reverse(c)
	}
	return out
}

// consistentlyWound reports whether every edge shared by two polygons is
// traversed in opposite directions.
func consistentlyWound(polys *polydata.CellArray) bool {
	type edge struct{ a, b int }
	directed := make(map[edge]int)
	for c := 0; c < polys.Len(); c++ {
		pts := polys.Cell(c)
		for i, a := range pts {
			directed[edge{a, pts[(i+1)%len(pts)]}]++
		}
	}
	for _, n := range directed {
		if n > 1 {
			return false
		}
	}
	return true
}

// noOptions returns options with every optional pass disabled.
func noOptions() Options {
	return Options{FeatureAngle: DefaultFeatureAngle, ComputePointNormals: true}
}

func vec(t []float64) r3.Vec {
	return r3.Vec{X: t[0], Y: t[1], Z: t[2]}
}
