package normals

import (
	"github.com/chazu/facet/pkg/polydata"
	"gonum.org/v1/gonum/spatial/r3"
)

// pointNormals averages, with equal weight, the normals of the polygons using
// each point and renormalises the result. Points without polygons, or whose
// incident normals cancel, get the zero vector.
func pointNormals(numPts int, polys *polydata.CellArray, normals []r3.Vec) []r3.Vec {
	sums := make([]r3.Vec, numPts)
	last := make([]int, numPts)
	for c := 0; c < polys.Len(); c++ {
		for _, id := range polys.Cell(c) {
			// A polygon listing a point twice contributes once.
			if last[id] == c+1 {
				continue
			}
			last[id] = c + 1
			sums[id] = r3.Add(sums[id], normals[c])
		}
	}
	for i, s := range sums {
		l := r3.Norm(s)
		if l < degenerateRatio {
			sums[i] = r3.Vec{}
			continue
		}
		sums[i] = r3.Scale(1/l, s)
	}
	return sums
}

// vectorArray packs vectors into a named 3-component data array.
func vectorArray(name string, vs []r3.Vec) *polydata.DataArray {
	a := polydata.NewDataArray(name, 3, len(vs))
	for _, v := range vs {
		a.AppendTuple(v.X, v.Y, v.Z)
	}
	return a
}
