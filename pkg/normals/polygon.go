package normals

import (
	"github.com/chazu/facet/pkg/polydata"
	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateRatio bounds |Newell sum| relative to the sum of squared edge
// lengths; below it the polygon is treated as having no normal.
const degenerateRatio = 1e-10

// PolygonNormal returns the unit normal of the polygon ring pts using
// Newell's method. The result is the zero vector for fewer than three points
// or when the points are coincident or collinear.
func PolygonNormal(pts []r3.Vec) r3.Vec {
	if len(pts) < 3 {
		return r3.Vec{}
	}
	var n r3.Vec
	var perim2 float64
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
		perim2 += r3.Norm2(r3.Sub(b, a))
	}
	l := r3.Norm(n)
	if perim2 == 0 || l <= degenerateRatio*perim2 {
		return r3.Vec{}
	}
	return r3.Scale(1/l, n)
}

// ComputePolygonNormals returns the unit normal of every polygon in polys,
// in polygon order.
func ComputePolygonNormals(points *polydata.Points, polys *polydata.CellArray) []r3.Vec {
	normals, _ := polygonNormals(points, polys, nil)
	return normals
}

// polygonNormals computes the normal of every polygon. buf is reused as
// coordinate scratch.
func polygonNormals(points *polydata.Points, polys *polydata.CellArray, buf []r3.Vec) ([]r3.Vec, []r3.Vec) {
	normals := make([]r3.Vec, polys.Len())
	for i := range normals {
		buf = gather(points, polys.Cell(i), buf)
		normals[i] = PolygonNormal(buf)
	}
	return normals, buf
}

// gather loads the coordinates of ids into buf.
func gather(points *polydata.Points, ids []int, buf []r3.Vec) []r3.Vec {
	buf = buf[:0]
	for _, id := range ids {
		buf = append(buf, points.At(id))
	}
	return buf
}
