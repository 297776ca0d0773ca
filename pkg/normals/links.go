package normals

import (
	"github.com/chazu/facet/pkg/polydata"
	"gonum.org/v1/gonum/spatial/r3"
)

// cellState tracks a polygon through the wave propagation.
type cellState uint8

const (
	unvisited cellState = iota
	queued              // winding fixed, neighbours not yet expanded
	oriented            // neighbours expanded
)

// Scratch holds the transient buffers of a run: point-to-polygon links,
// traversal state, the wave front queue and neighbour lists. A Scratch may be
// kept by the caller and passed to successive runs to avoid reallocation; it
// must not be shared by concurrent runs.
type Scratch struct {
	links  [][]int
	state  []cellState
	shell  []int
	stamp  []int
	queue  []int
	nbrs   []int
	coords []r3.Vec
}

// NewScratch returns an empty scratch context.
func NewScratch() *Scratch {
	return &Scratch{}
}

// reset sizes the buffers for a mesh and clears all state.
func (sc *Scratch) reset(numPts, numPolys int) {
	if cap(sc.links) < numPts {
		sc.links = make([][]int, numPts)
	} else {
		sc.links = sc.links[:numPts]
		for i := range sc.links {
			sc.links[i] = sc.links[i][:0]
		}
	}
	sc.state = resize(sc.state, numPolys)
	sc.shell = resize(sc.shell, numPolys)
	sc.stamp = resize(sc.stamp, numPolys)
	sc.queue = sc.queue[:0]
	sc.nbrs = sc.nbrs[:0]
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	s = s[:n]
	clear(s)
	return s
}

// buildLinks records, for every point, the polygons using it in ascending
// polygon order. A polygon listing a point twice is recorded once.
func (sc *Scratch) buildLinks(polys *polydata.CellArray) {
	for c := 0; c < polys.Len(); c++ {
		for _, id := range polys.Cell(c) {
			l := sc.links[id]
			if len(l) > 0 && l[len(l)-1] == c {
				continue
			}
			sc.links[id] = append(l, c)
		}
	}
}

// edgeNeighbors returns the polygons other than cell that contain the
// undirected edge (a, b) as consecutive points, in ascending order. The
// result aliases the scratch neighbour buffer.
func (sc *Scratch) edgeNeighbors(polys *polydata.CellArray, cell, a, b int) []int {
	sc.nbrs = sc.nbrs[:0]
	for _, c := range sc.links[a] {
		if c != cell && hasEdge(polys.Cell(c), a, b) {
			sc.nbrs = append(sc.nbrs, c)
		}
	}
	return sc.nbrs
}

// hasEdge reports whether pts contains a and b as consecutive points in
// either direction.
func hasEdge(pts []int, a, b int) bool {
	return hasDirectedEdge(pts, a, b) || hasDirectedEdge(pts, b, a)
}

// hasDirectedEdge reports whether pts traverses a immediately followed by b.
func hasDirectedEdge(pts []int, a, b int) bool {
	n := len(pts)
	for i, id := range pts {
		if id == a && pts[(i+1)%n] == b {
			return true
		}
	}
	return false
}
