// Package coacd implements kernel.Decomposer by running the CoACD
// approximate convex decomposition executable
// (https://github.com/SarahWeiii/CoACD).
//
// The input mesh is handed over as an OBJ file in a private temporary
// directory; CoACD writes its hulls back as one OBJ object per part.
// CoACD's console output is forwarded to the logger line by line: stdout
// at info level, stderr at warn level.
package coacd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chazu/convexify/pkg/config"
	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/meshio"
)

// Compile-time interface checks.
var _ kernel.Decomposer = (*Decomposer)(nil)
var _ kernel.LevelSetter = (*Decomposer)(nil)

// Name is the backend name used on the command line and in errors.
const Name = "coacd"

// DefaultBinary is looked up on PATH when no explicit binary is given.
const DefaultBinary = "coacd"

// stderrTail bounds how much of CoACD's stderr is quoted in errors.
const stderrTail = 2048

// Decomposer runs the CoACD executable once per Decompose call.
type Decomposer struct {
	binary string
	logger *slog.Logger
	level  slog.LevelVar
}

// New returns a Decomposer running binary (DefaultBinary if empty) and
// forwarding its output to logger (slog.Default if nil). Forwarded output
// starts at info level.
func New(binary string, logger *slog.Logger) *Decomposer {
	if binary == "" {
		binary = DefaultBinary
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &Decomposer{binary: binary, logger: logger.With("backend", Name)}
	d.level.Set(slog.LevelInfo)
	return d
}

// SetLogLevel sets the minimum level of forwarded CoACD output.
func (d *Decomposer) SetLogLevel(level slog.Level) {
	d.level.Set(level)
}

// LogLevel returns the current minimum level of forwarded output.
func (d *Decomposer) LogLevel() slog.Level {
	return d.level.Level()
}

func (d *Decomposer) log(level slog.Level, msg string) {
	if level < d.level.Level() {
		return
	}
	d.logger.Log(context.Background(), level, msg)
}

// Args returns the CoACD command line for one run.
func Args(input, output string, cfg config.DecompositionConfig) []string {
	args := []string{
		"-i", input,
		"-o", output,
		"-t", strconv.FormatFloat(cfg.Threshold, 'g', -1, 64),
		"-pm", string(cfg.PreprocessMode),
		"-r", strconv.Itoa(cfg.Resolution),
		"-c", strconv.Itoa(cfg.EffectiveMaxConvexHull()),
		"-mi", strconv.Itoa(cfg.MCTSIterations),
		"-md", strconv.Itoa(cfg.MCTSMaxDepth),
		"-mn", strconv.Itoa(cfg.MCTSNodes),
		"-pr", strconv.Itoa(cfg.PrepResolution),
		"--seed", strconv.Itoa(cfg.Seed),
	}
	if !cfg.Merge {
		args = append(args, "-nm")
	}
	if cfg.PCA {
		args = append(args, "--pca")
	}
	return args
}

// Decompose writes m to a temporary OBJ, runs CoACD on it and reads the
// resulting parts. Any failure is returned as a *kernel.DecompositionError.
func (d *Decomposer) Decompose(m *kernel.Mesh, cfg config.DecompositionConfig) ([]*kernel.ConvexPart, error) {
	parts, err := d.decompose(m, cfg)
	if err != nil {
		return nil, &kernel.DecompositionError{Backend: Name, Err: err}
	}
	return parts, nil
}

func (d *Decomposer) decompose(m *kernel.Mesh, cfg config.DecompositionConfig) ([]*kernel.Mesh, error) {
	bin, err := exec.LookPath(d.binary)
	if err != nil {
		return nil, fmt.Errorf("executable %q not found: %w", d.binary, err)
	}

	dir, err := os.MkdirTemp("", "convexify-coacd-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.obj")
	output := filepath.Join(dir, "output.obj")
	if err := writeInput(input, m); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	args := Args(input, output, cfg)
	d.log(slog.LevelDebug, "running "+bin+" "+strings.Join(args, " "))

	var tail bytes.Buffer
	stdout := newLineWriter(func(line string) { d.log(slog.LevelInfo, line) })
	stderr := newLineWriter(func(line string) {
		d.log(slog.LevelWarn, line)
		tail.WriteString(line)
		tail.WriteByte('\n')
		if tail.Len() > stderrTail {
			tail.Next(tail.Len() - stderrTail)
		}
	})

	cmd := exec.Command(bin, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	runErr := cmd.Run()
	stdout.Flush()
	stderr.Flush()

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			msg := strings.TrimSpace(tail.String())
			if msg == "" {
				return nil, fmt.Errorf("exited with status %d", exitErr.ExitCode())
			}
			return nil, fmt.Errorf("exited with status %d: %s", exitErr.ExitCode(), msg)
		}
		return nil, runErr
	}

	return readOutput(output)
}

func writeInput(path string, m *kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := meshio.WriteOBJMesh(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readOutput(path string) ([]*kernel.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	defer f.Close()

	parts, err := meshio.ReadOBJParts(f)
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	for i, p := range parts {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("result part %d: %w", i, err)
		}
	}
	return parts, nil
}
