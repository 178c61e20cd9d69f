package meshio

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/scene"
)

// loadSTL reads an ASCII or binary STL file.
func loadSTL(path string) (*kernel.Mesh, error) {
	triangles, err := render.LoadSTL(path)
	if err != nil {
		return nil, err
	}
	return FromTriangles(triangles), nil
}

// FromTriangles converts sdfx triangle soup into an indexed mesh. STL and
// marching-cubes output store unshared corners, so coincident corners are
// welded into shared vertices.
func FromTriangles(triangles []*sdf.Triangle3) *kernel.Mesh {
	w := newWelder()
	for _, tri := range triangles {
		var corners [3][3]float64
		for j, v := range tri {
			corners[j] = [3]float64{v.X, v.Y, v.Z}
		}
		w.triangle(corners[0], corners[1], corners[2])
	}
	return w.mesh
}

// ToTriangles converts a mesh into sdfx triangles.
func ToTriangles(m *kernel.Mesh) []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		var st sdf.Triangle3
		for j, idx := range tri {
			p := m.Vertex(int(idx))
			st[j] = v3.Vec{X: p[0], Y: p[1], Z: p[2]}
		}
		out = append(out, &st)
	}
	return out
}

// saveSTL writes all parts into one binary STL. STL has no notion of
// objects or colors, so only geometry survives.
func saveSTL(s *scene.Scene, path string) error {
	var triangles []*sdf.Triangle3
	for _, p := range s.Parts {
		triangles = append(triangles, ToTriangles(p.Part)...)
	}
	return render.SaveSTL(path, triangles)
}
