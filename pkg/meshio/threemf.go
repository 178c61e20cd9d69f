package meshio

import (
	"fmt"

	"github.com/hpinc/go3mf"

	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/scene"
)

// maxComponentDepth bounds component nesting so reference cycles fail.
const maxComponentDepth = 32

// load3MF merges every build item of the root model into one mesh, with
// item and component transforms applied. A model without build items
// falls back to merging its mesh objects untransformed.
func load3MF(path string) (*kernel.Mesh, error) {
	r, err := go3mf.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var model go3mf.Model
	if err := r.Decode(&model); err != nil {
		return nil, err
	}

	objects := make(map[uint32]*go3mf.Object, len(model.Resources.Objects))
	for _, obj := range model.Resources.Objects {
		objects[obj.ID] = obj
	}

	m := &kernel.Mesh{}
	if len(model.Build.Items) == 0 {
		for _, obj := range model.Resources.Objects {
			if obj.Mesh != nil {
				m.Append(meshOf(obj.Mesh, nil))
			}
		}
		return m, nil
	}
	for _, item := range model.Build.Items {
		if err := appendObject(m, objects, item.ObjectID, []go3mf.Matrix{item.Transform}, 0); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// appendObject adds object id to m. transforms are applied innermost first.
func appendObject(m *kernel.Mesh, objects map[uint32]*go3mf.Object, id uint32, transforms []go3mf.Matrix, depth int) error {
	if depth > maxComponentDepth {
		return fmt.Errorf("3mf: components nested deeper than %d", maxComponentDepth)
	}
	obj, ok := objects[id]
	if !ok {
		return fmt.Errorf("3mf: object %d not found", id)
	}
	if obj.Mesh != nil {
		m.Append(meshOf(obj.Mesh, transforms))
	}
	if obj.Components != nil {
		for _, c := range obj.Components.Component {
			inner := append([]go3mf.Matrix{c.Transform}, transforms...)
			if err := appendObject(m, objects, c.ObjectID, inner, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func meshOf(src *go3mf.Mesh, transforms []go3mf.Matrix) *kernel.Mesh {
	part := &kernel.Mesh{}
	for _, v := range src.Vertices.Vertex {
		p := [3]float64{float64(v.X()), float64(v.Y()), float64(v.Z())}
		for _, t := range transforms {
			p = transformPoint(t, p)
		}
		part.AddVertex(p[0], p[1], p[2])
	}
	for _, t := range src.Triangles.Triangle {
		part.AddTriangle(t.V1, t.V2, t.V3)
	}
	return part
}

// transformPoint applies a 3MF affine transform stored row-major, with the
// translation in elements 12-14. The zero matrix means no transform.
func transformPoint(t go3mf.Matrix, p [3]float64) [3]float64 {
	if t == (go3mf.Matrix{}) {
		return p
	}
	var out [3]float64
	for k := 0; k < 3; k++ {
		out[k] = p[0]*float64(t[k]) + p[1]*float64(t[4+k]) + p[2]*float64(t[8+k]) + float64(t[12+k])
	}
	return out
}

// identity3MF is the identity transform.
var identity3MF = go3mf.Matrix{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// partsMaterialID is the resource ID of the base material group holding
// one entry per part color. Object IDs start right after it.
const partsMaterialID = 1

// build3MF converts a scene into a 3MF model: one base material per part
// color, one mesh object per part and one build item per object.
func build3MF(s *scene.Scene) *go3mf.Model {
	model := new(go3mf.Model)
	if s.Len() == 0 {
		return model
	}

	materials := &go3mf.BaseMaterials{ID: partsMaterialID}
	for _, p := range s.Parts {
		materials.Materials = append(materials.Materials, go3mf.Base{
			Name:  p.Name,
			Color: p.Color.RGBA(),
		})
	}
	model.Resources.Assets = append(model.Resources.Assets, materials)

	for i, p := range s.Parts {
		pindex := uint32(i)
		mesh := new(go3mf.Mesh)
		for v := 0; v < p.Part.VertexCount(); v++ {
			c := p.Part.Vertex(v)
			mesh.Vertices.Vertex = append(mesh.Vertices.Vertex,
				go3mf.Point3D{float32(c[0]), float32(c[1]), float32(c[2])})
		}
		for t := 0; t < p.Part.TriangleCount(); t++ {
			tri := p.Part.Triangle(t)
			mesh.Triangles.Triangle = append(mesh.Triangles.Triangle, go3mf.Triangle{
				V1: tri[0], V2: tri[1], V3: tri[2],
				PID: partsMaterialID, P1: pindex, P2: pindex, P3: pindex,
			})
		}

		id := uint32(partsMaterialID + 1 + i)
		model.Resources.Objects = append(model.Resources.Objects, &go3mf.Object{
			ID:     id,
			Name:   p.Name,
			PID:    partsMaterialID,
			PIndex: pindex,
			Mesh:   mesh,
		})
		model.Build.Items = append(model.Build.Items, &go3mf.Item{ObjectID: id, Transform: identity3MF})
	}
	return model
}

func save3MF(s *scene.Scene, path string) error {
	w, err := go3mf.CreateWriter(path)
	if err != nil {
		return err
	}
	if err := w.Encode(build3MF(s)); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
