package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/meshio"
)

const tetraOBJ = `v 0 0 0
v 1 0 0
v 0 1 0
v 0 0 1
f 1 3 2
f 1 2 4
f 1 4 3
f 2 3 4
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readParts(t *testing.T, path string) []*kernel.Mesh {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	parts, err := meshio.ReadOBJParts(f)
	if err != nil {
		t.Fatal(err)
	}
	return parts
}

// TestE2ESingleConvexPart runs the whole CLI on a tetrahedron. It is
// already convex, so exactly one geometry is exported.
func TestE2ESingleConvexPart(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "tetra.obj", tetraOBJ)
	out := filepath.Join(dir, "parts.obj")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-i", in, "-o", out, "--backend", "passthrough"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr.String())
	}

	parts := readParts(t, out)
	if len(parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(parts))
	}
	if parts[0].PartName != "convex_0" {
		t.Errorf("part name = %q, want convex_0", parts[0].PartName)
	}
	if parts[0].TriangleCount() != 4 {
		t.Errorf("expected 4 triangles, got %d", parts[0].TriangleCount())
	}
	if !strings.Contains(stdout.String(), "wrote 1 parts") {
		t.Errorf("unexpected summary: %q", stdout.String())
	}
}

func TestE2E3MFOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "tetra.obj", tetraOBJ)
	out := filepath.Join(dir, "parts.3mf")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--input", in, "--output", out, "--backend", "passthrough", "--quiet"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr.String())
	}
	if stdout.Len() != 0 {
		t.Errorf("quiet run printed %q", stdout.String())
	}

	m, err := meshio.Load(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if m.TriangleCount() != 4 {
		t.Errorf("expected 4 triangles, got %d", m.TriangleCount())
	}
}

// TestE2EEmptyInput exports an empty scene when the backend finds no parts.
func TestE2EEmptyInput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "empty.obj", "# nothing\n")
	out := filepath.Join(dir, "parts.obj")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-i", in, "-o", out, "--backend", "passthrough"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr.String())
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("empty scene not written: %v", err)
	}
	if parts := readParts(t, out); len(parts) != 0 {
		t.Errorf("expected no parts, got %d", len(parts))
	}
}

func TestE2EPreset(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "tetra.obj", tetraOBJ)
	out := filepath.Join(dir, "parts.obj")

	// The preset's resolution is invalid, so applying it must fail the run.
	bad := writeFile(t, dir, "bad.yaml", "resolution: 0\n")
	var stdout, stderr bytes.Buffer
	code := run([]string{"-i", in, "-o", out, "--backend", "passthrough", "--config", bad}, &stdout, &stderr)
	if code != exitUsage {
		t.Fatalf("exit %d, want %d; stderr:\n%s", code, exitUsage, stderr.String())
	}

	// An explicit flag overrides the preset value.
	stderr.Reset()
	code = run([]string{"-i", in, "-o", out, "--backend", "passthrough", "--config", bad, "-r", "500"}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("exit %d, stderr:\n%s", code, stderr.String())
	}
}

func TestAppBackends(t *testing.T) {
	app := NewApp(&bytes.Buffer{}, "")
	got := strings.Join(app.Backends(), ",")
	if got != "coacd,passthrough" {
		t.Errorf("backends = %q", got)
	}
	if _, err := app.Decomposer("vhacd"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
