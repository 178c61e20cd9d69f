// Package scene assembles decomposition results into a colored multi-part
// scene. Each convex part receives a color drawn from a fixed-seed random
// stream, so the same number of parts always yields the same colors
// regardless of the seed given to the decomposition backend.
package scene

import (
	"fmt"
	"image/color"
	"math/rand"

	"github.com/samber/lo"

	"github.com/chazu/convexify/pkg/kernel"
)

// ColorSeed seeds the color stream. It is deliberately separate from the
// decomposition seed.
const ColorSeed = 0

// Color is an 8-bit RGB triple.
type Color [3]uint8

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// RGBA returns the color as an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
}

// ColoredPart is one convex part together with its display color.
type ColoredPart struct {
	Name  string
	Part  *kernel.Mesh
	Color Color
}

// Scene is the insertion-ordered collection of colored parts produced by a
// single run.
type Scene struct {
	Parts []ColoredPart
}

// Len returns the number of parts.
func (s *Scene) Len() int {
	return len(s.Parts)
}

// TriangleCount returns the total triangle count across all parts.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, p := range s.Parts {
		n += p.Part.TriangleCount()
	}
	return n
}

// ColorStream draws part colors from a seeded pseudo-random source.
type ColorStream struct {
	rng *rand.Rand
}

// NewColorStream returns a stream reset to ColorSeed.
func NewColorStream() *ColorStream {
	return &ColorStream{rng: rand.New(rand.NewSource(ColorSeed))}
}

// Next draws three uniform values in [0,1), scales each by 255 and
// truncates to a byte.
func (cs *ColorStream) Next() Color {
	var c Color
	for i := range c {
		c[i] = uint8(cs.rng.Float64() * 255)
	}
	return c
}

// Palette returns the first n colors of a fresh stream.
func Palette(n int) []Color {
	cs := NewColorStream()
	out := make([]Color, n)
	for i := range out {
		out[i] = cs.Next()
	}
	return out
}

// PartName returns the export name of the i-th part.
func PartName(i int) string {
	return fmt.Sprintf("convex_%d", i)
}

// Assemble colors every part in order and collects them into a scene.
// The color stream is reset on every call. Part geometry is shared, not
// copied, and never modified. A part that already carries a PartName keeps
// it; others are named convex_<i>.
func Assemble(parts []*kernel.Mesh) *Scene {
	cs := NewColorStream()
	colored := lo.Map(parts, func(p *kernel.Mesh, i int) ColoredPart {
		name := p.PartName
		if name == "" {
			name = PartName(i)
		}
		return ColoredPart{Name: name, Part: p, Color: cs.Next()}
	})
	return &Scene{Parts: colored}
}
