package scene

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chazu/convexify/pkg/kernel"
)

func tetra(name string) *kernel.Mesh {
	return &kernel.Mesh{
		Vertices: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1},
		Indices:  []uint32{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
		PartName: name,
	}
}

func parts(n int) []*kernel.Mesh {
	out := make([]*kernel.Mesh, n)
	for i := range out {
		out[i] = tetra("")
	}
	return out
}

func TestAssemblePreservesCountAndOrder(t *testing.T) {
	in := parts(5)
	s := Assemble(in)

	require.Equal(t, 5, s.Len())
	for i, p := range s.Parts {
		require.Same(t, in[i], p.Part, "part %d out of order", i)
		require.Equal(t, PartName(i), p.Name)
	}
	require.Equal(t, 20, s.TriangleCount())
}

func TestAssembleColorsAreReproducible(t *testing.T) {
	a := Assemble(parts(8))
	b := Assemble(parts(8))
	for i := range a.Parts {
		require.Equal(t, a.Parts[i].Color, b.Parts[i].Color, "part %d", i)
	}
	// Colors follow the palette stream exactly.
	pal := Palette(8)
	for i, p := range a.Parts {
		require.Equal(t, pal[i], p.Color)
	}
}

func TestAssemblePrefixStable(t *testing.T) {
	// Coloring N parts and then N+k parts shares the first N colors.
	short := Assemble(parts(3))
	long := Assemble(parts(6))
	for i := range short.Parts {
		require.Equal(t, short.Parts[i].Color, long.Parts[i].Color)
	}
}

func TestAssembleEmpty(t *testing.T) {
	s := Assemble(nil)
	require.NotNil(t, s)
	require.Equal(t, 0, s.Len())
	require.Equal(t, 0, s.TriangleCount())
}

func TestAssembleDoesNotTouchGeometry(t *testing.T) {
	in := tetra("wing")
	before := in.Clone()
	s := Assemble([]*kernel.Mesh{in})

	require.Equal(t, before.Vertices, in.Vertices)
	require.Equal(t, before.Indices, in.Indices)
	require.Equal(t, "wing", s.Parts[0].Name)
	require.Equal(t, "wing", in.PartName)
}

func TestColorStreamDraws(t *testing.T) {
	cs := NewColorStream()
	seen := map[Color]bool{}
	for i := 0; i < 64; i++ {
		seen[cs.Next()] = true
	}
	// Independent draws; collisions are allowed but a stuck stream is not.
	require.Greater(t, len(seen), 1)
}

func TestColorFormatting(t *testing.T) {
	c := Color{0x12, 0xab, 0xff}
	require.Equal(t, "#12abff", c.Hex())
	rgba := c.RGBA()
	require.Equal(t, uint8(0x12), rgba.R)
	require.Equal(t, uint8(0xab), rgba.G)
	require.Equal(t, uint8(0xff), rgba.B)
	require.Equal(t, uint8(0xff), rgba.A)
}
