package kernel

import "math"

// ComputeNormals generates per-vertex normals by averaging the face normals
// of all triangles incident on each vertex. Face normals are area weighted
// (the cross product is not normalized before accumulation). Vertices with
// no incident triangles, or only degenerate ones, get a zero normal.
func ComputeNormals(m *Mesh) []float64 {
	normals := make([]float64, len(m.Vertices))

	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		a, b, c := m.Vertex(int(tri[0])), m.Vertex(int(tri[1])), m.Vertex(int(tri[2]))

		// Edge vectors.
		e1x, e1y, e1z := b[0]-a[0], b[1]-a[1], b[2]-a[2]
		e2x, e2y, e2z := c[0]-a[0], c[1]-a[1], c[2]-a[2]

		// Cross product (unnormalized face normal).
		nx := e1y*e2z - e1z*e2y
		ny := e1z*e2x - e1x*e2z
		nz := e1x*e2y - e1y*e2x

		for _, idx := range tri {
			normals[idx*3+0] += nx
			normals[idx*3+1] += ny
			normals[idx*3+2] += nz
		}
	}

	for i := 0; i < len(normals)/3; i++ {
		nx, ny, nz := normals[i*3], normals[i*3+1], normals[i*3+2]
		length := math.Sqrt(nx*nx + ny*ny + nz*nz)
		if length > 1e-12 {
			normals[i*3+0] = nx / length
			normals[i*3+1] = ny / length
			normals[i*3+2] = nz / length
		}
	}

	return normals
}

// WithNormals returns m with Normals populated, computing them if absent.
// The receiver is not modified when normals need computing; a shallow copy
// carrying the new normals is returned instead.
func WithNormals(m *Mesh) *Mesh {
	if len(m.Normals) == len(m.Vertices) && len(m.Normals) > 0 {
		return m
	}
	c := *m
	c.Normals = ComputeNormals(m)
	return &c
}
