package meshio

import (
	"os"

	"github.com/unixpickle/model3d/model3d"

	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/scene"
)

// loadOFF reads an Object File Format mesh.
func loadOFF(path string) (*kernel.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	triangles, err := model3d.ReadOFF(f)
	if err != nil {
		return nil, err
	}
	w := newWelder()
	for _, tri := range triangles {
		var corners [3][3]float64
		for j, c := range tri {
			corners[j] = [3]float64{c.X, c.Y, c.Z}
		}
		w.triangle(corners[0], corners[1], corners[2])
	}
	return w.mesh, nil
}

// savePLY writes all parts into one PLY file with per-vertex colors.
// PLY vertices are keyed by position, so where two parts share a corner
// the later part's color wins.
func savePLY(s *scene.Scene, path string) error {
	var triangles []*model3d.Triangle
	colors := make(map[model3d.Coord3D][3]uint8)
	for _, p := range s.Parts {
		for t := 0; t < p.Part.TriangleCount(); t++ {
			var tri model3d.Triangle
			for j, idx := range p.Part.Triangle(t) {
				v := p.Part.Vertex(int(idx))
				tri[j] = model3d.XYZ(v[0], v[1], v[2])
				colors[tri[j]] = p.Color
			}
			triangles = append(triangles, &tri)
		}
	}
	data := model3d.EncodePLY(triangles, func(c model3d.Coord3D) [3]uint8 {
		return colors[c]
	})
	return os.WriteFile(path, data, 0o644)
}
