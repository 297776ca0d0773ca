package polydata

// CellArray is an ordered list of cells. Each cell is an ordered list of
// point ids; for polygons the order is the winding.
type CellArray struct {
	cells [][]int
}

// NewCellArray builds a cell array from point id lists. The lists are copied.
func NewCellArray(cells ...[]int) *CellArray {
	ca := &CellArray{cells: make([][]int, 0, len(cells))}
	for _, c := range cells {
		ca.Append(c...)
	}
	return ca
}

// Len returns the number of cells. A nil array is empty.
func (ca *CellArray) Len() int {
	if ca == nil {
		return 0
	}
	return len(ca.cells)
}

// Cell returns the point ids of cell i. The returned slice aliases the array.
func (ca *CellArray) Cell(i int) []int {
	return ca.cells[i]
}

// Append adds a cell with a copy of ids and returns its index.
func (ca *CellArray) Append(ids ...int) int {
	c := make([]int, len(ids))
	copy(c, ids)
	ca.cells = append(ca.cells, c)
	return len(ca.cells) - 1
}

// Reverse reverses the point order of cell i in place.
func (ca *CellArray) Reverse(i int) {
	c := ca.cells[i]
	for l, r := 0, len(c)-1; l < r; l, r = l+1, r-1 {
		c[l], c[r] = c[r], c[l]
	}
}

// Clone returns a deep copy. Cloning a nil array yields an empty array.
func (ca *CellArray) Clone() *CellArray {
	out := &CellArray{}
	if ca == nil {
		return out
	}
	out.cells = make([][]int, 0, len(ca.cells))
	for _, c := range ca.cells {
		out.Append(c...)
	}
	return out
}

// Equal reports whether both arrays hold identical cells.
func (ca *CellArray) Equal(other *CellArray) bool {
	if ca.Len() != other.Len() {
		return false
	}
	for i := 0; i < ca.Len(); i++ {
		a, b := ca.cells[i], other.cells[i]
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if a[j] != b[j] {
				return false
			}
		}
	}
	return true
}

// MaxCellSize returns the largest number of points in any cell.
func (ca *CellArray) MaxCellSize() int {
	n := 0
	for i := 0; i < ca.Len(); i++ {
		n = max(n, len(ca.cells[i]))
	}
	return n
}
