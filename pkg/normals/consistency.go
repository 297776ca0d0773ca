package normals

import (
	"github.com/chazu/facet/pkg/polydata"
	"gonum.org/v1/gonum/spatial/r3"
)

// traverse makes polygon windings consistent by breadth-first propagation
// over shared edges. Each connected shell is seeded with its lowest-numbered
// polygon, whose winding is kept. A polygon discovered across edge (a, b) of
// an oriented polygon traversing a->b is reversed when it also traverses
// a->b. Edges shared by more than two polygons are crossed only when
// nonManifold is set. Reversed polygons get their normal negated. Shell ids
// are recorded in sc.shell; the number of shells is returned.
func traverse(polys *polydata.CellArray, normals []r3.Vec, nonManifold bool, sc *Scratch, st *Stats) int {
	shells := 0
	for seed := 0; seed < polys.Len(); seed++ {
		if sc.state[seed] != unvisited {
			continue
		}
		shell := shells
		shells++

		sc.state[seed] = queued
		sc.shell[seed] = shell
		queue := append(sc.queue[:0], seed)

		for head := 0; head < len(queue); head++ {
			p := queue[head]
			sc.state[p] = oriented
			pts := polys.Cell(p)
			for i, a := range pts {
				b := pts[(i+1)%len(pts)]
				if a == b {
					continue
				}
				nbrs := sc.edgeNeighbors(polys, p, a, b)
				if len(nbrs) != 1 && !nonManifold {
					continue
				}
				for _, q := range nbrs {
					if sc.state[q] != unvisited {
						continue
					}
					if hasDirectedEdge(polys.Cell(q), a, b) {
						polys.Reverse(q)
						normals[q] = r3.Scale(-1, normals[q])
						st.ReversedPolygons++
					}
					sc.state[q] = queued
					sc.shell[q] = shell
					queue = append(queue, q)
				}
			}
		}
		sc.queue = queue
	}
	return shells
}
