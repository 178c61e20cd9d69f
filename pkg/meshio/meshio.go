// Package meshio loads meshes from and saves scenes to files. The format is
// chosen from the file extension through an explicit registry; each entry
// adapts one codec library to the kernel.Mesh / scene.Scene model.
package meshio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/scene"
)

var (
	// ErrNotFound is returned when the input path is missing or is not a
	// regular file.
	ErrNotFound = errors.New("not a file")
	// ErrFormat marks a file that cannot be read or written in the
	// requested format.
	ErrFormat = errors.New("format error")
)

// FormatError reports an unsupported extension or unparsable content.
type FormatError struct {
	Path   string
	Format string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("meshio: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("meshio: %s (%s): %v", e.Path, e.Format, e.Err)
}

// Is lets errors.Is match ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// Unwrap returns the underlying codec error.
func (e *FormatError) Unwrap() error { return e.Err }

type loadFunc func(path string) (*kernel.Mesh, error)

type saveFunc func(s *scene.Scene, path string) error

// loaders maps a lower-case extension (no dot) to its reader.
var loaders = map[string]loadFunc{
	"stl": loadSTL,
	"obj": loadOBJ,
	"off": loadOFF,
	"3mf": load3MF,
}

// savers maps a lower-case extension (no dot) to its writer.
var savers = map[string]saveFunc{
	"3mf": save3MF,
	"obj": saveOBJ,
	"ply": savePLY,
	"stl": saveSTL,
}

// InputFormats lists the extensions Load understands.
func InputFormats() []string {
	keys := lo.Keys(loaders)
	sort.Strings(keys)
	return keys
}

// OutputFormats lists the extensions Save understands.
func OutputFormats() []string {
	keys := lo.Keys(savers)
	sort.Strings(keys)
	return keys
}

// FormatOf returns the lower-case extension of path without its dot.
func FormatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// CheckInput reports ErrNotFound unless path names an existing regular file.
// It does not open the file.
func CheckInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s is %w", path, ErrNotFound)
		}
		return fmt.Errorf("meshio: stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is %w", path, ErrNotFound)
	}
	return nil
}

// Load reads path into a single mesh. Files holding several objects are
// merged into one mesh.
func Load(path string) (*kernel.Mesh, error) {
	if err := CheckInput(path); err != nil {
		return nil, err
	}
	format := FormatOf(path)
	load, ok := loaders[format]
	if !ok {
		return nil, &FormatError{Path: path, Format: format,
			Err: fmt.Errorf("unsupported input format (supported: %s)", strings.Join(InputFormats(), ", "))}
	}
	m, err := load(path)
	if err != nil {
		var ferr *FormatError
		if errors.As(err, &ferr) {
			return nil, err
		}
		return nil, &FormatError{Path: path, Format: format, Err: err}
	}
	if err := m.Validate(); err != nil {
		return nil, &FormatError{Path: path, Format: format, Err: err}
	}
	return m, nil
}

// Save writes the scene to path in the format implied by its extension.
// The file is written to a temporary sibling first and renamed into place,
// so a failed export leaves no partial output behind. A replaced file keeps
// its permissions; a new one gets newFileMode.
func Save(s *scene.Scene, path string) error {
	format := FormatOf(path)
	save, ok := savers[format]
	if !ok {
		return &FormatError{Path: path, Format: format,
			Err: fmt.Errorf("unsupported output format (supported: %s)", strings.Join(OutputFormats(), ", "))}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".convexify-*."+format)
	if err != nil {
		return fmt.Errorf("meshio: write %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("meshio: write %s: %w", path, err)
	}

	if err := save(s, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("meshio: write %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, outputMode(path)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("meshio: write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("meshio: write %s: %w", path, err)
	}
	return nil
}

// newFileMode is the permission of a newly exported file.
const newFileMode fs.FileMode = 0o644

// outputMode returns the permission bits the export at path should carry.
func outputMode(path string) fs.FileMode {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return newFileMode
}

// welder builds an indexed mesh from triangle soup, merging corners with
// identical coordinates into one vertex.
type welder struct {
	mesh  *kernel.Mesh
	index map[[3]float64]uint32
}

func newWelder() *welder {
	return &welder{mesh: &kernel.Mesh{}, index: make(map[[3]float64]uint32)}
}

func (w *welder) vertex(x, y, z float64) uint32 {
	key := [3]float64{x, y, z}
	if idx, ok := w.index[key]; ok {
		return idx
	}
	idx := w.mesh.AddVertex(x, y, z)
	w.index[key] = idx
	return idx
}

func (w *welder) triangle(a, b, c [3]float64) {
	w.mesh.AddTriangle(
		w.vertex(a[0], a[1], a[2]),
		w.vertex(b[0], b[1], b[2]),
		w.vertex(c[0], c[1], c[2]),
	)
}
