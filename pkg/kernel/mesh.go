package kernel

import "fmt"

// Mesh is an indexed triangle mesh.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals (optional) has 3 floats per vertex, indices has 3 uint32s per
// triangle.
type Mesh struct {
	Vertices []float64 `json:"vertices"`          // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float64 `json:"normals,omitempty"` // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`           // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"`          // name given to the part on export
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Vertex returns the i-th vertex position.
func (m *Mesh) Vertex(i int) [3]float64 {
	return [3]float64{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
}

// Triangle returns the vertex indices of the i-th triangle.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(x, y, z float64) uint32 {
	m.Vertices = append(m.Vertices, x, y, z)
	return uint32(m.VertexCount() - 1)
}

// AddTriangle appends a triangle referencing existing vertices.
func (m *Mesh) AddTriangle(a, b, c uint32) {
	m.Indices = append(m.Indices, a, b, c)
}

// Validate checks the flat-array layout and that every face index refers
// to an existing vertex.
func (m *Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("mesh: vertex array length %d is not a multiple of 3", len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("mesh: index array length %d is not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Vertices) {
		return fmt.Errorf("mesh: normals length %d != vertices length %d", len(m.Normals), len(m.Vertices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh: triangle %d references vertex %d, mesh has %d vertices", i/3, idx, n)
		}
	}
	return nil
}

// Append merges other into m, rebasing other's indices past m's vertices.
// Normals are kept only when both meshes carry them.
func (m *Mesh) Append(other *Mesh) {
	if other == nil {
		return
	}
	keepNormals := len(other.Normals) > 0 && len(other.Normals) == len(other.Vertices) &&
		(m.VertexCount() == 0 || len(m.Normals) == len(m.Vertices))
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, idx+base)
	}
	if keepNormals {
		m.Normals = append(m.Normals, other.Normals...)
	} else {
		m.Normals = nil
	}
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{PartName: m.PartName}
	c.Vertices = append([]float64(nil), m.Vertices...)
	c.Indices = append([]uint32(nil), m.Indices...)
	if len(m.Normals) > 0 {
		c.Normals = append([]float64(nil), m.Normals...)
	}
	return c
}

// Bounds returns the axis-aligned bounding box of the vertices.
// An empty mesh returns zero vectors.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if m.VertexCount() == 0 {
		return min, max
	}
	min = m.Vertex(0)
	max = min
	for i := 1; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		for k := 0; k < 3; k++ {
			if v[k] < min[k] {
				min[k] = v[k]
			}
			if v[k] > max[k] {
				max[k] = v[k]
			}
		}
	}
	return min, max
}
