package normals

import (
	"github.com/chazu/facet/pkg/polydata"
	"gonum.org/v1/gonum/spatial/r3"
)

// split duplicates points that sit on sharp edges. For every original point
// the incident polygons are partitioned into smooth groups: groups are seeded
// in ascending polygon order and grown breadth-first across the polygon edges
// meeting at the point, crossing an edge only when it is shared by exactly two
// polygons whose normals satisfy dot >= cosAngle. The first group keeps the
// point; every further group gets a copy of the point (coordinates and point
// data) and its polygons in out are rewritten to use the copy.
//
// Adjacency is always evaluated on orig, the connectivity before any split,
// so the grouping at one point does not depend on splits made at another.
func split(orig, out *polydata.CellArray, normals []r3.Vec, cosAngle float64,
	points *polydata.Points, pd *polydata.Attributes, sc *Scratch, st *Stats) {

	numPts := points.Len()
	for p := 0; p < numPts; p++ {
		incident := sc.links[p]
		if len(incident) < 2 {
			continue
		}
		stamp := p + 1
		groups := 0
		for _, seed := range incident {
			if sc.stamp[seed] == stamp {
				continue
			}
			sc.stamp[seed] = stamp
			groups++

			target := p
			if groups > 1 {
				target = points.Append(points.At(p))
				pd.AppendTupleFrom(pd, p)
				st.AddedPoints++
			}

			queue := append(sc.queue[:0], seed)
			for head := 0; head < len(queue); head++ {
				c := queue[head]
				if target != p {
					replace(out.Cell(c), p, target)
				}
				pts := orig.Cell(c)
				n := len(pts)
				for i, id := range pts {
					if id != p {
						continue
					}
					for _, r := range [2]int{pts[(i+n-1)%n], pts[(i+1)%n]} {
						if r == p {
							continue
						}
						nbrs := sc.edgeNeighbors(orig, c, p, r)
						if len(nbrs) != 1 {
							continue
						}
						q := nbrs[0]
						if sc.stamp[q] == stamp || r3.Dot(normals[c], normals[q]) < cosAngle {
							continue
						}
						sc.stamp[q] = stamp
						queue = append(queue, q)
					}
				}
			}
			sc.queue = queue
		}
		if groups > 1 {
			st.SplitPoints++
		}
	}
}

// replace rewrites every occurrence of from in pts to to.
func replace(pts []int, from, to int) {
	for i, id := range pts {
		if id == from {
			pts[i] = to
		}
	}
}
