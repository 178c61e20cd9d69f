package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUsage marks a missing or malformed command-line value.
	ErrUsage = errors.New("usage error")
	// ErrConfig marks a tuning value outside its hard domain.
	ErrConfig = errors.New("configuration error")
)

// ConfigError describes a single rejected option.
type ConfigError struct {
	Option string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: invalid --%s %v: %s", e.Option, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrConfig.
func (e *ConfigError) Unwrap() error { return ErrConfig }

// Options is the raw, flat option surface as it arrives from the command
// line (or a preset). Field names follow the long flag names.
type Options struct {
	Input          string
	Output         string
	Quiet          bool
	Threshold      float64
	PreprocessMode string
	Resolution     int
	NoMerge        bool
	MaxConvexHull  int
	MCTSIterations int
	MCTSMaxDepth   int
	MCTSNodes      int
	PrepResolution int
	PCA            bool
	Seed           int
}

// DefaultOptions returns an Options populated with the documented defaults.
func DefaultOptions() Options {
	d := Defaults()
	return Options{
		Quiet:          d.Quiet,
		Threshold:      d.Threshold,
		PreprocessMode: string(d.PreprocessMode),
		Resolution:     d.Resolution,
		NoMerge:        !d.Merge,
		MaxConvexHull:  d.MaxConvexHull,
		MCTSIterations: d.MCTSIterations,
		MCTSMaxDepth:   d.MCTSMaxDepth,
		MCTSNodes:      d.MCTSNodes,
		PrepResolution: d.PrepResolution,
		PCA:            d.PCA,
		Seed:           d.Seed,
	}
}

// Resolve validates raw options and produces the decomposition config.
//
// Hard failures:
//   - missing input or output path (ErrUsage)
//   - unknown preprocess mode, non-positive counts, a hull cap that is
//     neither -1 nor positive, a non-finite threshold (*ConfigError)
//
// Soft conditions are returned as warnings: a threshold outside
// [MinThreshold, MaxThreshold], including zero and negative values, and a
// hull cap combined with --no-merge.
func Resolve(o Options) (DecompositionConfig, []string, error) {
	var warnings []string

	if strings.TrimSpace(o.Input) == "" {
		return DecompositionConfig{}, nil, fmt.Errorf("%w: -i/--input is required", ErrUsage)
	}
	if strings.TrimSpace(o.Output) == "" {
		return DecompositionConfig{}, nil, fmt.Errorf("%w: -o/--output is required", ErrUsage)
	}

	if math.IsNaN(o.Threshold) || math.IsInf(o.Threshold, 0) {
		return DecompositionConfig{}, nil, &ConfigError{"threshold", o.Threshold, "must be a finite number"}
	}
	if o.Threshold < MinThreshold || o.Threshold > MaxThreshold {
		warnings = append(warnings, fmt.Sprintf(
			"threshold %g is outside the documented range [%g, %g]", o.Threshold, MinThreshold, MaxThreshold))
	}

	mode, err := ParsePreprocessMode(o.PreprocessMode)
	if err != nil {
		return DecompositionConfig{}, nil, &ConfigError{"preprocess-mode", o.PreprocessMode, err.Error()}
	}

	positive := []struct {
		name  string
		value int
	}{
		{"resolution", o.Resolution},
		{"mcts_iteration", o.MCTSIterations},
		{"mcts-max-depth", o.MCTSMaxDepth},
		{"mcts-node", o.MCTSNodes},
		{"prep-resolution", o.PrepResolution},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return DecompositionConfig{}, nil, &ConfigError{p.name, p.value, "must be a positive integer"}
		}
	}

	if o.MaxConvexHull != NoHullLimit && o.MaxConvexHull <= 0 {
		return DecompositionConfig{}, nil, &ConfigError{"max-convex-hull", o.MaxConvexHull, "must be -1 (no limit) or a positive integer"}
	}
	cfg := DecompositionConfig{
		Threshold:      o.Threshold,
		PreprocessMode: mode,
		Resolution:     o.Resolution,
		Merge:          !o.NoMerge,
		MaxConvexHull:  o.MaxConvexHull,
		MCTSIterations: o.MCTSIterations,
		MCTSMaxDepth:   o.MCTSMaxDepth,
		MCTSNodes:      o.MCTSNodes,
		PrepResolution: o.PrepResolution,
		PCA:            o.PCA,
		Seed:           o.Seed,
		Quiet:          o.Quiet,
	}
	if cfg.MaxConvexHull != NoHullLimit && !cfg.HullCapped() {
		warnings = append(warnings, fmt.Sprintf(
			"max-convex-hull %d has no effect with --no-merge", cfg.MaxConvexHull))
	}
	return cfg, warnings, nil
}
