// Package passthrough implements kernel.Decomposer by returning the input
// mesh unchanged as a single part. It is meant for input that is already
// convex and for dry runs of the rest of the pipeline.
package passthrough

import (
	"github.com/chazu/convexify/pkg/config"
	"github.com/chazu/convexify/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Decomposer = (*Decomposer)(nil)

// Name is the backend name used on the command line.
const Name = "passthrough"

// Decomposer returns its input as one convex part.
type Decomposer struct{}

// New returns a new passthrough Decomposer.
func New() *Decomposer {
	return &Decomposer{}
}

// Decompose validates m and returns a copy of it as the only part.
// An empty mesh yields zero parts.
func (d *Decomposer) Decompose(m *kernel.Mesh, _ config.DecompositionConfig) ([]*kernel.ConvexPart, error) {
	if m == nil || m.IsEmpty() {
		return nil, nil
	}
	if err := m.Validate(); err != nil {
		return nil, &kernel.DecompositionError{Backend: Name, Err: err}
	}
	part := m.Clone()
	part.Normals = nil
	return []*kernel.Mesh{part}, nil
}
