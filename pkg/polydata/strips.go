package polydata

// DecomposeStrips returns a mesh in which every triangle strip has been
// replaced by independent triangles appended after the existing polygons.
// Odd triangles of a strip are emitted with their first two points swapped so
// that all triangles share the strip's winding. The cell data tuple of each
// strip is repeated for every triangle it produces. Points, verts, lines and
// point data are shared with m, not copied.
func DecomposeStrips(m *Mesh) *Mesh {
	if m.Strips.Len() == 0 {
		return m
	}

	numPolys := m.Polys.Len()
	polys := m.Polys.Clone()
	cd := m.CellData.CopyStructure(numPolys + m.Strips.Len())
	for i := 0; i < numPolys; i++ {
		cd.AppendTupleFrom(m.CellData, i)
	}

	for s := 0; s < m.Strips.Len(); s++ {
		pts := m.Strips.Cell(s)
		for i := 0; i+2 < len(pts); i++ {
			if i%2 == 0 {
				polys.Append(pts[i], pts[i+1], pts[i+2])
			} else {
				polys.Append(pts[i+1], pts[i], pts[i+2])
			}
			cd.AppendTupleFrom(m.CellData, numPolys+s)
		}
	}

	return &Mesh{
		Points:    m.Points,
		Verts:     m.Verts,
		Lines:     m.Lines,
		Polys:     polys,
		Strips:    &CellArray{},
		PointData: m.PointData,
		CellData:  cd,
	}
}
