package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/chazu/convexify/pkg/config"
	"github.com/chazu/convexify/pkg/kernel"
	"github.com/chazu/convexify/pkg/kernel/coacd"
	"github.com/chazu/convexify/pkg/kernel/passthrough"
	"github.com/chazu/convexify/pkg/pipeline"
)

// defaultBackend is used when --backend is not given.
const defaultBackend = coacd.Name

// App owns the process-wide pieces of a run: the logger, the registered
// decomposition backends and the optional progress display.
type App struct {
	logger   *slog.Logger
	level    *slog.LevelVar
	stderr   io.Writer
	backends map[string]kernel.Decomposer
	progress bool
}

// NewApp creates an App logging to stderr. coacdBin is the CoACD
// executable name or path; empty selects coacd.DefaultBinary.
func NewApp(stderr io.Writer, coacdBin string) *App {
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return &App{
		logger: logger,
		level:  level,
		stderr: stderr,
		backends: map[string]kernel.Decomposer{
			coacd.Name:       coacd.New(coacdBin, logger),
			passthrough.Name: passthrough.New(),
		},
		progress: isTerminal(stderr),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Backends returns the registered backend names, sorted.
func (a *App) Backends() []string {
	names := lo.Keys(a.backends)
	sort.Strings(names)
	return names
}

// Decomposer looks up a backend by name.
func (a *App) Decomposer(name string) (kernel.Decomposer, error) {
	d, ok := a.backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend %q (want one of %s)",
			config.ErrUsage, name, strings.Join(a.Backends(), ", "))
	}
	return d, nil
}

// Run performs one decomposition run with the named backend.
func (a *App) Run(backend string, opts config.Options) (*pipeline.Report, error) {
	d, err := a.Decomposer(backend)
	if err != nil {
		return nil, err
	}
	if opts.Quiet {
		a.level.Set(slog.LevelWarn)
	}

	p := pipeline.New(pipeline.DefaultCollaborators(d), a.logger)
	if a.progress && !opts.Quiet {
		bar := progressbar.NewOptions(len(pipeline.Stages),
			progressbar.OptionSetWriter(a.stderr),
			progressbar.OptionSetDescription("convexify"),
			progressbar.OptionClearOnFinish(),
		)
		p.OnStage(func(s pipeline.Stage) {
			bar.Describe(string(s))
			_ = bar.Add(1)
		})
		defer func() { _ = bar.Finish() }()
	}
	return p.Run(opts)
}
