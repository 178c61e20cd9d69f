package meshio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/convexify/pkg/kernel"
)

// coacdOutput mimics the grouped OBJ the CoACD executable writes: a global
// vertex list with one "o" block per convex hull.
const coacdOutput = `# generated
o convex_0
v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
f 1 3 2
f 1 2 4
f 1 4 3
f 2 3 4
o convex_1
v 2 0 0
v 3 0 0
v 2 1 0
f 5 7 6
`

func TestReadOBJPartsGroups(t *testing.T) {
	parts, err := ReadOBJParts(strings.NewReader(coacdOutput))
	require.NoError(t, err)
	require.Len(t, parts, 2)

	require.Equal(t, "convex_0", parts[0].PartName)
	require.Equal(t, 4, parts[0].VertexCount())
	require.Equal(t, 4, parts[0].TriangleCount())

	// The second part is re-indexed onto its own three vertices.
	require.Equal(t, "convex_1", parts[1].PartName)
	require.Equal(t, 3, parts[1].VertexCount())
	require.Equal(t, [3]uint32{0, 1, 2}, parts[1].Triangle(0))
	require.Equal(t, [3]float64{2, 0, 0}, parts[1].Vertex(0))
	for _, p := range parts {
		require.NoError(t, p.Validate())
	}
}

func TestReadOBJMergesObjects(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(coacdOutput))
	require.NoError(t, err)
	require.Equal(t, 7, m.VertexCount())
	require.Equal(t, 5, m.TriangleCount())
	require.NoError(t, m.Validate())
}

func TestReadOBJFaceForms(t *testing.T) {
	src := `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1/1 2/1/1 3/1/1 4/1/1
f -4//1 -2//1 -1//1
`
	m, err := ReadOBJ(strings.NewReader(src))
	require.NoError(t, err)
	// Quad is fanned into two triangles, plus one triangle with relative indices.
	require.Equal(t, 3, m.TriangleCount())
	require.Equal(t, 4, m.VertexCount())
	require.Equal(t, [3]uint32{0, 2, 3}, m.Triangle(1))
	require.Equal(t, [3]uint32{0, 2, 3}, m.Triangle(2))
}

func TestReadOBJErrors(t *testing.T) {
	tests := map[string]string{
		"short vertex":  "v 1 2\n",
		"bad float":     "v 1 2 x\n",
		"short face":    "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"zero index":    "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"out of range":  "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n",
		"garbage index": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf a b c\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadOBJParts(strings.NewReader(src))
			require.Error(t, err)
		})
	}
}

func TestReadOBJEmpty(t *testing.T) {
	parts, err := ReadOBJParts(strings.NewReader("# nothing here\n"))
	require.NoError(t, err)
	require.Empty(t, parts)
}

func TestWriteOBJMesh(t *testing.T) {
	m := &kernel.Mesh{
		Vertices: []float64{0, 0, 0, 1.5, 0, 0, 0, 1, 0},
		Indices:  []uint32{0, 1, 2},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteOBJMesh(&buf, m))
	require.Equal(t, "v 0 0 0\nv 1.5 0 0\nv 0 1 0\nf 1 2 3\n", buf.String())

	back, err := ReadOBJ(&buf)
	require.NoError(t, err)
	require.Equal(t, m.Vertices, back.Vertices)
	require.Equal(t, m.Indices, back.Indices)
}
