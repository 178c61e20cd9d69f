// Package config resolves the flat tuning surface of the command line into
// an immutable DecompositionConfig. It owns the documented defaults, the
// validation rules for every knob and the optional YAML preset layer.
package config

import (
	"fmt"
	"strings"
)

// PreprocessMode selects how the decomposition backend remeshes its input.
type PreprocessMode string

const (
	PreprocessAuto PreprocessMode = "auto" // remesh only when the input is not manifold
	PreprocessOn   PreprocessMode = "on"   // always remesh
	PreprocessOff  PreprocessMode = "off"  // never remesh; manifold input only
)

// ParsePreprocessMode maps a user string onto a PreprocessMode.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParsePreprocessMode(s string) (PreprocessMode, error) {
	switch PreprocessMode(strings.ToLower(strings.TrimSpace(s))) {
	case PreprocessAuto:
		return PreprocessAuto, nil
	case PreprocessOn:
		return PreprocessOn, nil
	case PreprocessOff:
		return PreprocessOff, nil
	default:
		return "", fmt.Errorf("unknown preprocess mode %q (want auto, on or off)", s)
	}
}

// Documented threshold range. Values outside it are accepted with a warning.
const (
	MinThreshold = 0.01 // most fine-grained
	MaxThreshold = 1.0  // most coarse
)

// NoHullLimit is the MaxConvexHull value meaning "no cap".
const NoHullLimit = -1

// DecompositionConfig is the resolved set of tuning parameters handed to a
// decomposition backend. It is produced once by Resolve and passed by value
// so no stage can alter the copy another stage holds.
type DecompositionConfig struct {
	Threshold      float64        `json:"threshold"`
	PreprocessMode PreprocessMode `json:"preprocessMode"`
	Resolution     int            `json:"resolution"`
	Merge          bool           `json:"merge"`
	MaxConvexHull  int            `json:"maxConvexHull"`
	MCTSIterations int            `json:"mctsIterations"`
	MCTSMaxDepth   int            `json:"mctsMaxDepth"`
	MCTSNodes      int            `json:"mctsNodes"`
	PrepResolution int            `json:"prepResolution"`
	PCA            bool           `json:"pca"`
	Seed           int            `json:"seed"`
	Quiet          bool           `json:"quiet"`
}

// Defaults returns the documented default configuration.
func Defaults() DecompositionConfig {
	return DecompositionConfig{
		Threshold:      0.05,
		PreprocessMode: PreprocessAuto,
		Resolution:     2000,
		Merge:          true,
		MaxConvexHull:  NoHullLimit,
		MCTSIterations: 150,
		MCTSMaxDepth:   3,
		MCTSNodes:      20,
		PrepResolution: 50,
		PCA:            false,
		Seed:           0,
		Quiet:          false,
	}
}

// EffectiveMaxConvexHull returns the hull cap the backend should honor.
// The cap only applies while merging, so NoHullLimit is returned whenever
// merge is disabled.
func (c DecompositionConfig) EffectiveMaxConvexHull() int {
	if !c.Merge || c.MaxConvexHull <= 0 {
		return NoHullLimit
	}
	return c.MaxConvexHull
}

// HullCapped reports whether the result part count is capped.
func (c DecompositionConfig) HullCapped() bool {
	return c.EffectiveMaxConvexHull() != NoHullLimit
}

// String renders the config as a compact key=value list for logs.
func (c DecompositionConfig) String() string {
	return fmt.Sprintf(
		"threshold=%g preprocess=%s resolution=%d merge=%t max_hull=%d mcts_iter=%d mcts_depth=%d mcts_node=%d prep_res=%d pca=%t seed=%d",
		c.Threshold, c.PreprocessMode, c.Resolution, c.Merge, c.EffectiveMaxConvexHull(),
		c.MCTSIterations, c.MCTSMaxDepth, c.MCTSNodes, c.PrepResolution, c.PCA, c.Seed,
	)
}
