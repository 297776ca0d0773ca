package normals

import (
	"math"

	"github.com/chazu/facet/pkg/polydata"
	"gonum.org/v1/gonum/spatial/r3"
)

// flatVolumeRatio bounds |signed volume| relative to the cube of the shell's
// bounding box diagonal; below it the shell is treated as open or flat.
const flatVolumeRatio = 1e-9

// autoOrient flips every consistently wound shell whose normals point
// inward. The enclosed signed volume decides for closed shells. Open or flat
// shells fall back to the extreme point: the polygon at the shell's largest-x
// point whose normal is most aligned with x must face +x.
func autoOrient(points *polydata.Points, polys *polydata.CellArray, normals []r3.Vec, numShells int, sc *Scratch, st *Stats) {
	members := make([][]int, numShells)
	for c := 0; c < polys.Len(); c++ {
		members[sc.shell[c]] = append(members[sc.shell[c]], c)
	}

	for _, cells := range members {
		if len(cells) == 0 {
			continue
		}
		if !pointsOutward(points, polys, normals, cells, sc) {
			for _, c := range cells {
				polys.Reverse(c)
				normals[c] = r3.Scale(-1, normals[c])
			}
			st.FlippedShells++
		}
	}
}

// pointsOutward reports whether the shell made of cells faces outward.
func pointsOutward(points *polydata.Points, polys *polydata.CellArray, normals []r3.Vec, cells []int, sc *Scratch) bool {
	var centroid r3.Vec
	var count float64
	lo := r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	extreme, extremeX := -1, math.Inf(-1)
	for _, c := range cells {
		for _, id := range polys.Cell(c) {
			v := points.At(id)
			centroid = r3.Add(centroid, v)
			count++
			lo = r3.Vec{X: min(lo.X, v.X), Y: min(lo.Y, v.Y), Z: min(lo.Z, v.Z)}
			hi = r3.Vec{X: max(hi.X, v.X), Y: max(hi.Y, v.Y), Z: max(hi.Z, v.Z)}
			if v.X > extremeX || (v.X == extremeX && id < extreme) {
				extreme, extremeX = id, v.X
			}
		}
	}
	if count == 0 {
		// Only empty polygons: nothing to orient.
		return true
	}
	centroid = r3.Scale(1/count, centroid)

	var volume float64
	for _, c := range cells {
		pts := polys.Cell(c)
		if len(pts) < 3 {
			continue
		}
		a := r3.Sub(points.At(pts[0]), centroid)
		for j := 1; j+1 < len(pts); j++ {
			b := r3.Sub(points.At(pts[j]), centroid)
			d := r3.Sub(points.At(pts[j+1]), centroid)
			volume += r3.Dot(a, r3.Cross(b, d))
		}
	}
	volume /= 6

	diag := r3.Norm(r3.Sub(hi, lo))
	if math.Abs(volume) > flatVolumeRatio*diag*diag*diag {
		return volume > 0
	}

	// Extreme point fallback, restricted to this shell's polygons.
	shell := sc.shell[cells[0]]
	best, bestX := -1, -1.0
	for _, c := range sc.links[extreme] {
		if sc.shell[c] != shell {
			continue
		}
		if ax := math.Abs(normals[c].X); ax > bestX {
			best, bestX = c, ax
		}
	}
	return best < 0 || normals[best].X >= 0
}
