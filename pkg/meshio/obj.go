package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/scene"
)

func loadOBJ(path string) (*kernel.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadOBJ(f)
}

// ReadOBJ reads a Wavefront OBJ stream into one mesh, merging all objects.
func ReadOBJ(r io.Reader) (*kernel.Mesh, error) {
	parts, err := ReadOBJParts(r)
	if err != nil {
		return nil, err
	}
	m := &kernel.Mesh{}
	for _, p := range parts {
		m.Append(p)
	}
	return m, nil
}

// ReadOBJParts reads a Wavefront OBJ stream and returns one mesh per "o"
// object, in file order. Faces before the first "o" form an unnamed part.
// Only vertex positions and faces are read; polygons are fan-triangulated
// and negative (relative) indices are resolved. Objects without faces are
// dropped. Each part is re-indexed to reference only its own vertices.
func ReadOBJParts(r io.Reader) ([]*kernel.Mesh, error) {
	var (
		positions [][3]float64
		parts     []*kernel.Mesh
		cur       *kernel.Mesh
		local     map[int]uint32
	)
	startPart := func(name string) {
		if cur != nil && cur.TriangleCount() > 0 {
			parts = append(parts, cur)
		}
		cur = &kernel.Mesh{PartName: name}
		local = make(map[int]uint32)
	}
	startPart("")

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: vertex needs 3 coordinates", line)
			}
			var p [3]float64
			for k := 0; k < 3; k++ {
				v, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, fmt.Errorf("obj: line %d: %w", line, err)
				}
				p[k] = v
			}
			positions = append(positions, p)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("obj: line %d: face needs at least 3 vertices", line)
			}
			idx := make([]uint32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				global, err := objIndex(tok, len(positions))
				if err != nil {
					return nil, fmt.Errorf("obj: line %d: %w", line, err)
				}
				li, ok := local[global]
				if !ok {
					p := positions[global]
					li = cur.AddVertex(p[0], p[1], p[2])
					local[global] = li
				}
				idx = append(idx, li)
			}
			for k := 1; k+1 < len(idx); k++ {
				cur.AddTriangle(idx[0], idx[k], idx[k+1])
			}
		case "o":
			startPart(strings.Join(fields[1:], " "))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("obj: %w", err)
	}
	startPart("")
	return parts, nil
}

// objIndex resolves one face token ("7", "7/1", "7//3", "-1") against the
// number of vertices read so far and returns a zero-based index.
func objIndex(tok string, count int) (int, error) {
	if slash := strings.IndexByte(tok, '/'); slash >= 0 {
		tok = tok[:slash]
	}
	i, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", tok)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, fmt.Errorf("face index 0 is not valid")
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("face index %s out of range (%d vertices)", tok, count)
	}
	return i, nil
}

// WriteOBJMesh writes m as a single-object OBJ stream.
func WriteOBJMesh(w io.Writer, m *kernel.Mesh) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for i := 0; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		buf = append(buf[:0], 'v')
		buf = appendFloats(buf, v[:]...)
		buf = append(buf, '\n')
		bw.Write(buf)
	}
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		fmt.Fprintf(bw, "f %d %d %d\n", tri[0]+1, tri[1]+1, tri[2]+1)
	}
	return bw.Flush()
}

// writeOBJScene writes every part as its own "o" object with per-vertex
// colors (the common "v x y z r g b" extension) and vertex normals.
func writeOBJScene(w io.Writer, s *scene.Scene) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d convex parts\n", s.Len())
	var (
		buf  []byte
		base uint32 = 1
	)
	for _, p := range s.Parts {
		m := kernel.WithNormals(p.Part)
		rgb := [3]float64{
			float64(p.Color[0]) / 255,
			float64(p.Color[1]) / 255,
			float64(p.Color[2]) / 255,
		}
		fmt.Fprintf(bw, "o %s\n", p.Name)
		for i := 0; i < m.VertexCount(); i++ {
			v := m.Vertex(i)
			buf = append(buf[:0], 'v')
			buf = appendFloats(buf, v[:]...)
			buf = appendFloats(buf, rgb[:]...)
			buf = append(buf, '\n')
			bw.Write(buf)
		}
		for i := 0; i < m.VertexCount(); i++ {
			buf = append(buf[:0], 'v', 'n')
			buf = appendFloats(buf, m.Normals[i*3:i*3+3]...)
			buf = append(buf, '\n')
			bw.Write(buf)
		}
		for t := 0; t < m.TriangleCount(); t++ {
			tri := m.Triangle(t)
			a, b, c := tri[0]+base, tri[1]+base, tri[2]+base
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		}
		base += uint32(m.VertexCount())
	}
	return bw.Flush()
}

func saveOBJ(s *scene.Scene, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeOBJScene(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func appendFloats(buf []byte, vs ...float64) []byte {
	for _, v := range vs {
		buf = append(buf, ' ')
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	return buf
}
