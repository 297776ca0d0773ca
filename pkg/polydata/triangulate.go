package polydata

// Triangulate fan-triangulates every polygon (and strip) of m into a flat
// index buffer with three entries per triangle, as consumed by renderers.
// Polygons with fewer than three points are skipped.
func Triangulate(m *Mesh) []uint32 {
	m = DecomposeStrips(m)
	indices := make([]uint32, 0, m.Polys.Len()*3)
	for i := 0; i < m.Polys.Len(); i++ {
		pts := m.Polys.Cell(i)
		for j := 1; j+1 < len(pts); j++ {
			indices = append(indices, uint32(pts[0]), uint32(pts[j]), uint32(pts[j+1]))
		}
	}
	return indices
}
