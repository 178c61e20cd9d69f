// Package pipeline runs one decomposition end to end: resolve the options,
// check and load the input mesh, decompose it once, color the parts and
// export the scene. Stages run strictly in sequence and any failure ends
// the run; nothing is retried and no partial output is written.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/convexify/pkg/config"
	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/meshio"
	"github.com/chazu/convexify/pkg/scene"
)

// Stage names one step of a run.
type Stage string

const (
	StageResolve   Stage = "resolve"
	StageLoad      Stage = "load"
	StageDecompose Stage = "decompose"
	StageAssemble  Stage = "assemble"
	StageExport    Stage = "export"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageResolve, StageLoad, StageDecompose, StageAssemble, StageExport}

// Collaborators are the pluggable boundaries of a run. The zero value is
// not usable; start from DefaultCollaborators.
type Collaborators struct {
	// CheckInput reports whether the input path names an existing file.
	// It runs before any load attempt.
	CheckInput func(path string) error
	// Load reads the input path into one mesh.
	Load func(path string) (*kernel.Mesh, error)
	// Decomposer splits the mesh into convex parts.
	Decomposer kernel.Decomposer
	// Save writes the assembled scene to the output path.
	Save func(s *scene.Scene, path string) error
}

// DefaultCollaborators wires the file-based mesh I/O around d.
func DefaultCollaborators(d kernel.Decomposer) Collaborators {
	return Collaborators{
		CheckInput: meshio.CheckInput,
		Load:       meshio.Load,
		Decomposer: d,
		Save:       meshio.Save,
	}
}

// Report summarizes a run.
type Report struct {
	RunID          string
	Config         config.DecompositionConfig
	Warnings       []string
	InputVertices  int
	InputTriangles int
	Parts          int
	Triangles      int
	Durations      map[Stage]time.Duration
}

// Pipeline executes runs against a fixed set of collaborators.
type Pipeline struct {
	c       Collaborators
	logger  *slog.Logger
	onStage func(Stage)
}

// New returns a Pipeline. A nil logger uses slog.Default.
func New(c Collaborators, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{c: c, logger: logger}
}

// OnStage registers fn to be called after each stage completes
// successfully.
func (p *Pipeline) OnStage(fn func(Stage)) {
	p.onStage = fn
}

func (p *Pipeline) finish(r *Report, st Stage, start time.Time) {
	r.Durations[st] = time.Since(start)
	if p.onStage != nil {
		p.onStage(st)
	}
}

// Run performs one complete run. The returned report is non-nil even on
// failure and holds whatever was known when the run stopped.
func (p *Pipeline) Run(opts config.Options) (*Report, error) {
	r := &Report{
		RunID:     uuid.NewString(),
		Durations: make(map[Stage]time.Duration, len(Stages)),
	}
	log := p.logger.With("run", r.RunID)

	start := time.Now()
	cfg, warnings, err := config.Resolve(opts)
	if err != nil {
		return r, err
	}
	r.Config = cfg
	r.Warnings = warnings
	for _, w := range warnings {
		log.Warn(w)
	}
	log.Debug("resolved configuration", "config", cfg.String())
	p.finish(r, StageResolve, start)

	start = time.Now()
	if err := p.c.CheckInput(opts.Input); err != nil {
		return r, err
	}
	mesh, err := p.c.Load(opts.Input)
	if err != nil {
		return r, fmt.Errorf("pipeline: load: %w", err)
	}
	r.InputVertices = mesh.VertexCount()
	r.InputTriangles = mesh.TriangleCount()
	low, high := mesh.Bounds()
	log.Info("loaded mesh", "path", opts.Input, "vertices", r.InputVertices, "triangles", r.InputTriangles,
		"min", low, "max", high)
	p.finish(r, StageLoad, start)

	start = time.Now()
	if cfg.Quiet {
		if ls, ok := p.c.Decomposer.(kernel.LevelSetter); ok {
			ls.SetLogLevel(slog.LevelError)
		}
	}
	parts, err := p.c.Decomposer.Decompose(mesh, cfg)
	if err != nil {
		return r, fmt.Errorf("pipeline: decompose: %w", err)
	}
	log.Info("decomposed mesh", "parts", len(parts), "elapsed", time.Since(start).Round(time.Millisecond))
	p.finish(r, StageDecompose, start)

	start = time.Now()
	s := scene.Assemble(parts)
	r.Parts = s.Len()
	r.Triangles = s.TriangleCount()
	for _, part := range s.Parts {
		log.Debug("part", "name", part.Name, "color", part.Color.Hex(), "triangles", part.Part.TriangleCount())
	}
	p.finish(r, StageAssemble, start)

	start = time.Now()
	if err := p.c.Save(s, opts.Output); err != nil {
		return r, fmt.Errorf("pipeline: export: %w", err)
	}
	log.Info("exported scene", "path", opts.Output, "parts", r.Parts, "triangles", r.Triangles)
	p.finish(r, StageExport, start)

	return r, nil
}
