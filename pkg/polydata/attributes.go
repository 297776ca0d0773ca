package polydata

import "fmt"

// NormalsName is the array name under which normal vectors are stored.
const NormalsName = "Normals"

// DataArray is a named array of fixed-width tuples.
type DataArray struct {
	Name       string
	Components int
	Values     []float64
}

// NewDataArray returns an empty array with capacity for n tuples.
func NewDataArray(name string, components, n int) *DataArray {
	return &DataArray{
		Name:       name,
		Components: components,
		Values:     make([]float64, 0, n*components),
	}
}

// Len returns the number of tuples.
func (a *DataArray) Len() int {
	if a.Components == 0 {
		return 0
	}
	return len(a.Values) / a.Components
}

// Tuple returns tuple i. The returned slice aliases the array.
func (a *DataArray) Tuple(i int) []float64 {
	return a.Values[i*a.Components : (i+1)*a.Components]
}

// AppendTuple adds one tuple.
func (a *DataArray) AppendTuple(t ...float64) {
	a.Values = append(a.Values, t...)
}

// Clone returns a deep copy.
func (a *DataArray) Clone() *DataArray {
	v := make([]float64, len(a.Values))
	copy(v, a.Values)
	return &DataArray{Name: a.Name, Components: a.Components, Values: v}
}

// Attributes is an ordered collection of data arrays that all hold one tuple
// per point (point data) or per 2D cell (cell data).
type Attributes struct {
	arrays []*DataArray
}

// NewAttributes returns an attribute set holding the given arrays.
func NewAttributes(arrays ...*DataArray) *Attributes {
	return &Attributes{arrays: arrays}
}

// Arrays returns the arrays in insertion order.
func (at *Attributes) Arrays() []*DataArray {
	if at == nil {
		return nil
	}
	return at.arrays
}

// Get returns the array with the given name, or nil.
func (at *Attributes) Get(name string) *DataArray {
	if at == nil {
		return nil
	}
	for _, a := range at.arrays {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Set adds the array, replacing any existing array of the same name.
func (at *Attributes) Set(a *DataArray) {
	for i, existing := range at.arrays {
		if existing.Name == a.Name {
			at.arrays[i] = a
			return
		}
	}
	at.arrays = append(at.arrays, a)
}

// Remove deletes the array with the given name, if present.
func (at *Attributes) Remove(name string) {
	for i, a := range at.arrays {
		if a.Name == name {
			at.arrays = append(at.arrays[:i], at.arrays[i+1:]...)
			return
		}
	}
}

// Normals returns the "Normals" array, or nil.
func (at *Attributes) Normals() *DataArray {
	return at.Get(NormalsName)
}

// check verifies that every array holds exactly n tuples.
func (at *Attributes) check(kind string, n int) error {
	for _, a := range at.Arrays() {
		if a.Components <= 0 {
			return fmt.Errorf("polydata: %s array %q has %d components", kind, a.Name, a.Components)
		}
		if len(a.Values) != n*a.Components {
			return fmt.Errorf("polydata: %s array %q has %d values, want %d",
				kind, a.Name, len(a.Values), n*a.Components)
		}
	}
	return nil
}

// CopyStructure returns an attribute set with the same array names and
// widths but no tuples, sized for n tuples.
func (at *Attributes) CopyStructure(n int) *Attributes {
	out := &Attributes{}
	for _, a := range at.Arrays() {
		out.arrays = append(out.arrays, NewDataArray(a.Name, a.Components, n))
	}
	return out
}

// AppendTupleFrom appends tuple i of every array in src to the matching array
// in at. Both sets must share structure (see CopyStructure).
func (at *Attributes) AppendTupleFrom(src *Attributes, i int) {
	for k, a := range src.Arrays() {
		at.arrays[k].AppendTuple(a.Tuple(i)...)
	}
}

// Clone returns a deep copy. Cloning nil yields an empty set.
func (at *Attributes) Clone() *Attributes {
	out := &Attributes{}
	for _, a := range at.Arrays() {
		out.arrays = append(out.arrays, a.Clone())
	}
	return out
}
