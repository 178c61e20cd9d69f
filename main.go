// Command convexify splits a mesh into approximately convex parts and
// writes them as one colored multi-part scene.
//
//	convexify -i model.obj -o parts.3mf -t 0.08 --seed 3
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chazu/convexify/pkg/config"
	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/meshio"
)

// Exit codes.
const (
	exitOK            = 0
	exitFailure       = 1
	exitUsage         = 2
	exitFormat        = 3
	exitDecomposition = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("convexify", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := config.DefaultOptions()
	var (
		presetPath string
		backend    string
		coacdBin   string
	)

	// aliases maps each short flag name to its long form so explicitly set
	// flags can be reported under one name.
	aliases := map[string]string{}
	str := func(p *string, short, long, value, usage string) {
		if short != "" {
			fs.StringVar(p, short, value, usage)
			aliases[short] = long
		}
		fs.StringVar(p, long, value, usage)
	}
	num := func(p *int, short, long string, value int, usage string) {
		if short != "" {
			fs.IntVar(p, short, value, usage)
			aliases[short] = long
		}
		fs.IntVar(p, long, value, usage)
	}
	boolean := func(p *bool, short, long string, value bool, usage string) {
		if short != "" {
			fs.BoolVar(p, short, value, usage)
			aliases[short] = long
		}
		fs.BoolVar(p, long, value, usage)
	}

	str(&opts.Input, "i", "input", "", "input mesh file ("+strings.Join(meshio.InputFormats(), ", ")+")")
	str(&opts.Output, "o", "output", "", "output scene file ("+strings.Join(meshio.OutputFormats(), ", ")+")")
	boolean(&opts.Quiet, "", "quiet", opts.Quiet, "only log errors from the decomposition backend")
	fs.Float64Var(&opts.Threshold, "t", opts.Threshold, "concavity threshold, usually in [0.01, 1]")
	fs.Float64Var(&opts.Threshold, "threshold", opts.Threshold, "concavity threshold, usually in [0.01, 1]")
	aliases["t"] = "threshold"
	str(&opts.PreprocessMode, "pm", "preprocess-mode", opts.PreprocessMode, "manifold preprocessing: auto, on or off")
	num(&opts.Resolution, "r", "resolution", opts.Resolution, "sampling resolution for the Hausdorff distance")
	boolean(&opts.NoMerge, "nm", "no-merge", opts.NoMerge, "disable merging of parts")
	num(&opts.MaxConvexHull, "c", "max-convex-hull", opts.MaxConvexHull, "maximum number of parts when merging, -1 for no limit")
	num(&opts.MCTSIterations, "mi", "mcts_iteration", opts.MCTSIterations, "search iterations")
	num(&opts.MCTSMaxDepth, "md", "mcts-max-depth", opts.MCTSMaxDepth, "search depth")
	num(&opts.MCTSNodes, "mn", "mcts-node", opts.MCTSNodes, "search child nodes")
	num(&opts.PrepResolution, "pr", "prep-resolution", opts.PrepResolution, "manifold preprocessing resolution")
	boolean(&opts.PCA, "", "pca", opts.PCA, "align the input to its principal axes first")
	num(&opts.Seed, "", "seed", opts.Seed, "decomposition random seed")
	str(&presetPath, "", "config", "", "YAML preset with tuning values; explicit flags win")
	str(&backend, "", "backend", defaultBackend, "decomposition backend: coacd or passthrough")
	str(&coacdBin, "", "coacd-bin", "", "CoACD executable (default: coacd on PATH)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "convexify: unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return exitUsage
	}

	if presetPath != "" {
		preset, err := config.LoadPreset(presetPath)
		if err != nil {
			if !errors.Is(err, config.ErrUsage) {
				err = fmt.Errorf("%w: %v", config.ErrUsage, err)
			}
			return report(stderr, err)
		}
		explicit := map[string]bool{}
		fs.Visit(func(f *flag.Flag) {
			name := f.Name
			if long, ok := aliases[name]; ok {
				name = long
			}
			explicit[name] = true
		})
		opts = preset.Overlay(opts, func(name string) bool { return explicit[name] })
	}

	app := NewApp(stderr, coacdBin)
	r, err := app.Run(backend, opts)
	if err != nil {
		return report(stderr, err)
	}
	if !opts.Quiet {
		fmt.Fprintf(stdout, "wrote %d parts (%d triangles) to %s\n", r.Parts, r.Triangles, opts.Output)
	}
	return exitOK
}

// report prints err and maps it to an exit code.
func report(stderr io.Writer, err error) int {
	code := exitCode(err)
	if code == exitFailure && errors.Is(err, meshio.ErrNotFound) {
		fmt.Fprintln(stderr, err)
		return code
	}
	fmt.Fprintf(stderr, "convexify: %v\n", err)
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, meshio.ErrNotFound):
		return exitFailure
	case errors.Is(err, config.ErrUsage), errors.Is(err, config.ErrConfig):
		return exitUsage
	case errors.Is(err, meshio.ErrFormat):
		return exitFormat
	case errors.Is(err, kernel.ErrDecomposition):
		return exitDecomposition
	default:
		return exitFailure
	}
}
