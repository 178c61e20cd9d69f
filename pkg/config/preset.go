package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a YAML document of tuning values. Keys match the long flag
// names; absent keys leave the corresponding option untouched.
//
//	threshold: 0.1
//	preprocess-mode: "off"
//	mcts_iteration: 300
type Preset struct {
	Quiet          *bool    `yaml:"quiet"`
	Threshold      *float64 `yaml:"threshold"`
	PreprocessMode *string  `yaml:"preprocess-mode"`
	Resolution     *int     `yaml:"resolution"`
	NoMerge        *bool    `yaml:"no-merge"`
	MaxConvexHull  *int     `yaml:"max-convex-hull"`
	MCTSIterations *int     `yaml:"mcts_iteration"`
	MCTSMaxDepth   *int     `yaml:"mcts-max-depth"`
	MCTSNodes      *int     `yaml:"mcts-node"`
	PrepResolution *int     `yaml:"prep-resolution"`
	PCA            *bool    `yaml:"pca"`
	Seed           *int     `yaml:"seed"`
}

// LoadPreset reads and strictly decodes a preset file.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("config: read preset: %w", err)
	}
	return ParsePreset(data)
}

// ParsePreset strictly decodes a preset document. Unknown keys are rejected
// so a typo cannot silently fall back to a default. An empty document is a
// valid, empty preset.
func ParsePreset(data []byte) (Preset, error) {
	var p Preset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Preset{}, fmt.Errorf("%w: preset: %v", ErrUsage, err)
	}
	return p, nil
}

// Overlay copies every value present in the preset onto o, except for the
// options the explicit predicate reports as set on the command line.
// Precedence is therefore defaults < preset < explicit flags.
func (p Preset) Overlay(o Options, explicit func(name string) bool) Options {
	if explicit == nil {
		explicit = func(string) bool { return false }
	}
	setBool := func(name string, dst *bool, v *bool) {
		if v != nil && !explicit(name) {
			*dst = *v
		}
	}
	setInt := func(name string, dst *int, v *int) {
		if v != nil && !explicit(name) {
			*dst = *v
		}
	}

	setBool("quiet", &o.Quiet, p.Quiet)
	if p.Threshold != nil && !explicit("threshold") {
		o.Threshold = *p.Threshold
	}
	if p.PreprocessMode != nil && !explicit("preprocess-mode") {
		o.PreprocessMode = *p.PreprocessMode
	}
	setInt("resolution", &o.Resolution, p.Resolution)
	setBool("no-merge", &o.NoMerge, p.NoMerge)
	setInt("max-convex-hull", &o.MaxConvexHull, p.MaxConvexHull)
	setInt("mcts_iteration", &o.MCTSIterations, p.MCTSIterations)
	setInt("mcts-max-depth", &o.MCTSMaxDepth, p.MCTSMaxDepth)
	setInt("mcts-node", &o.MCTSNodes, p.MCTSNodes)
	setInt("prep-resolution", &o.PrepResolution, p.PrepResolution)
	setBool("pca", &o.PCA, p.PCA)
	setInt("seed", &o.Seed, p.Seed)
	return o
}
