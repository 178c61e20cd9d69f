package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/convexify/pkg/config"
	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/meshio"
)

// TestMissingInputExitsBeforeLoad checks the diagnostic and exit status for
// an input path that does not exist. No output may be created.
func TestMissingInputExitsBeforeLoad(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "nope.obj")
	out := filepath.Join(dir, "parts.obj")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-i", in, "-o", out, "--backend", "passthrough"}, &stdout, &stderr)
	if code != exitFailure {
		t.Fatalf("exit %d, want %d", code, exitFailure)
	}
	if got := strings.TrimSpace(stderr.String()); got != in+" is not a file" {
		t.Errorf("stderr = %q", got)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output should not exist, stat err = %v", err)
	}
}

func TestDirectoryInputIsNotAFile(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	code := run([]string{"-i", dir, "-o", filepath.Join(dir, "x.obj"), "--backend", "passthrough"}, &stdout, &stderr)
	if code != exitFailure {
		t.Fatalf("exit %d, want %d", code, exitFailure)
	}
}

func TestExitCodes(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "tetra.obj", tetraOBJ)
	broken := writeFile(t, dir, "broken.obj", "v 0 0\n")
	out := filepath.Join(dir, "parts.obj")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"-h"}, exitOK},
		{"unknown flag", []string{"--bogus"}, exitUsage},
		{"positional", []string{"-i", in, "-o", out, "extra"}, exitUsage},
		{"missing output", []string{"-i", in, "--backend", "passthrough"}, exitUsage},
		{"missing input flag", []string{"-o", out, "--backend", "passthrough"}, exitUsage},
		{"malformed threshold", []string{"-i", in, "-o", out, "-t", "abc"}, exitUsage},
		{"non-finite threshold", []string{"-i", in, "-o", out, "-t", "NaN", "--backend", "passthrough"}, exitUsage},
		{"zero threshold", []string{"-i", in, "-o", out, "-t", "0", "--backend", "passthrough"}, exitOK},
		{"bad mode", []string{"-i", in, "-o", out, "-pm", "sometimes", "--backend", "passthrough"}, exitUsage},
		{"bad hull cap", []string{"-i", in, "-o", out, "-c", "0", "--backend", "passthrough"}, exitUsage},
		{"unknown backend", []string{"-i", in, "-o", out, "--backend", "vhacd"}, exitUsage},
		{"missing preset", []string{"-i", in, "-o", out, "--config", filepath.Join(dir, "none.yaml")}, exitUsage},
		{"unsupported output", []string{"-i", in, "-o", filepath.Join(dir, "parts.glb"), "--backend", "passthrough"}, exitFormat},
		{"malformed input", []string{"-i", broken, "-o", out, "--backend", "passthrough"}, exitFormat},
		{"missing backend binary", []string{"-i", in, "-o", out, "--coacd-bin", filepath.Join(dir, "no-coacd")}, exitDecomposition},
		{"out of range threshold", []string{"-i", in, "-o", out, "-t", "2", "--backend", "passthrough"}, exitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(tt.args, &stdout, &stderr); got != tt.want {
				t.Errorf("exit %d, want %d; stderr:\n%s", got, tt.want, stderr.String())
			}
		})
	}
}

func TestExitCodeClassification(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{fmt.Errorf("x is %w", meshio.ErrNotFound), exitFailure},
		{fmt.Errorf("%w: -o is required", config.ErrUsage), exitUsage},
		{&config.ConfigError{Option: "resolution", Value: 0, Reason: "bad"}, exitUsage},
		{fmt.Errorf("pipeline: load: %w", &meshio.FormatError{Path: "a.obj", Format: "obj", Err: errors.New("bad")}), exitFormat},
		{fmt.Errorf("pipeline: decompose: %w", &kernel.DecompositionError{Backend: "coacd", Err: errors.New("boom")}), exitDecomposition},
		{errors.New("disk full"), exitFailure},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
