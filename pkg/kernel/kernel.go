// Package kernel defines the mesh model and the abstract decomposition
// backend interface. Implementations (coacd, passthrough) split a mesh into
// convex parts behind this interface. The abstraction allows swapping
// backends without changing the rest of the system.
package kernel

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/chazu/convexify/pkg/config"
)

// ConvexPart is one convex piece emitted by a Decomposer.
type ConvexPart = Mesh

// Decomposer splits a mesh into convex parts.
//
// Decompose is called at most once per run. It blocks until the whole
// decomposition is available; there is no partial or streaming result.
// The returned parts are in the backend's emission order. The input mesh
// must not be modified.
type Decomposer interface {
	Decompose(m *Mesh, cfg config.DecompositionConfig) ([]*ConvexPart, error)
}

// LevelSetter is implemented by backends whose own logging verbosity can
// be configured. It is called once, before Decompose.
type LevelSetter interface {
	SetLogLevel(level slog.Level)
}

// ErrDecomposition marks a failure inside a decomposition backend.
var ErrDecomposition = errors.New("decomposition failed")

// DecompositionError wraps a backend failure with the backend name.
type DecompositionError struct {
	Backend string
	Err     error
}

func (e *DecompositionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

// Is lets errors.Is match ErrDecomposition.
func (e *DecompositionError) Is(target error) bool { return target == ErrDecomposition }

// Unwrap returns the underlying cause.
func (e *DecompositionError) Unwrap() error { return e.Err }
