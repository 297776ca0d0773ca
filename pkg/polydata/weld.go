package polydata

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultWeldTolerance is the weld distance relative to the bounding box
// diagonal used when Weld is called with a non-positive tolerance.
const DefaultWeldTolerance = 1e-6

// gridKey addresses one cell of the weld grid.
type gridKey struct {
	x, y, z int64
}

// welder merges points that lie within tol of an already accepted point.
// Points are bucketed in a uniform grid with cell size tol so that only the
// 27 surrounding cells need to be searched.
type welder struct {
	tol   float64
	cell  float64
	grid  map[gridKey][]int
	out   *Points
	remap []int
}

func newWelder(tol float64, prec Precision, n int) *welder {
	return &welder{
		tol:   tol,
		cell:  tol,
		grid:  make(map[gridKey][]int),
		out:   NewPoints(prec, n),
		remap: make([]int, n),
	}
}

func (w *welder) key(v r3.Vec) gridKey {
	return gridKey{
		x: int64(math.Floor(v.X / w.cell)),
		y: int64(math.Floor(v.Y / w.cell)),
		z: int64(math.Floor(v.Z / w.cell)),
	}
}

// add returns the id of a point within tol of v, inserting v when none exists.
func (w *welder) add(v r3.Vec) (id int, inserted bool) {
	k := w.key(v)
	tol2 := w.tol * w.tol
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, cand := range w.grid[gridKey{k.x + dx, k.y + dy, k.z + dz}] {
					if r3.Norm2(r3.Sub(w.out.At(cand), v)) <= tol2 {
						return cand, false
					}
				}
			}
		}
	}
	id = w.out.Append(v)
	w.grid[k] = append(w.grid[k], id)
	return id, true
}

// Weld merges coincident points of m and returns a new mesh. Points closer
// than tol are merged into the first one encountered; a non-positive tol
// selects DefaultWeldTolerance times the bounding box diagonal. Polygons are
// rewritten with consecutive duplicate ids removed and dropped when fewer than
// three distinct points remain, together with their cell data. The point data
// of a merged point is taken from its first occurrence.
func Weld(m *Mesh, tol float64) *Mesh {
	m = DecomposeStrips(m)
	n := m.Points.Len()
	if tol <= 0 {
		lo, hi := m.Points.Bounds()
		tol = DefaultWeldTolerance * r3.Norm(r3.Sub(hi, lo))
		if tol == 0 {
			tol = DefaultWeldTolerance
		}
	}

	w := newWelder(tol, m.Points.Precision(), n)
	pd := m.PointData.CopyStructure(n)
	for i := 0; i < n; i++ {
		id, inserted := w.add(m.Points.At(i))
		w.remap[i] = id
		if inserted {
			pd.AppendTupleFrom(m.PointData, i)
		}
	}

	out := &Mesh{
		Points:    w.out,
		Verts:     remapCells(m.Verts, w.remap, 1),
		Lines:     remapCells(m.Lines, w.remap, 2),
		Polys:     &CellArray{},
		Strips:    &CellArray{},
		PointData: pd,
		CellData:  m.CellData.CopyStructure(m.Polys.Len()),
	}
	for i := 0; i < m.Polys.Len(); i++ {
		ids := collapse(m.Polys.Cell(i), w.remap)
		if distinct(ids) < 3 {
			continue
		}
		out.Polys.Append(ids...)
		out.CellData.AppendTupleFrom(m.CellData, i)
	}
	return out
}

// remapCells rewrites cells through remap, dropping those left with fewer
// than minSize points.
func remapCells(ca *CellArray, remap []int, minSize int) *CellArray {
	out := &CellArray{}
	for i := 0; i < ca.Len(); i++ {
		ids := collapse(ca.Cell(i), remap)
		if len(ids) >= minSize {
			out.Append(ids...)
		}
	}
	return out
}

// collapse maps ids through remap and removes consecutive duplicates,
// including the wrap-around pair.
func collapse(cell []int, remap []int) []int {
	ids := make([]int, 0, len(cell))
	for _, id := range cell {
		r := remap[id]
		if len(ids) > 0 && ids[len(ids)-1] == r {
			continue
		}
		ids = append(ids, r)
	}
	for len(ids) > 1 && ids[0] == ids[len(ids)-1] {
		ids = ids[:len(ids)-1]
	}
	return ids
}

// distinct counts the distinct ids in a cell.
func distinct(ids []int) int {
	n := 0
	for i, id := range ids {
		seen := false
		for _, prev := range ids[:i] {
			if prev == id {
				seen = true
				break
			}
		}
		if !seen {
			n++
		}
	}
	return n
}
