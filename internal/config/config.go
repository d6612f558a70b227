package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/tiltsim/internal/cycle"
	"github.com/san-kum/tiltsim/internal/grid"
)

const (
	DefaultTransform = "spin"
	DefaultDetector  = "floyd"
	DefaultTarget    = 1_000_000_000
	DefaultMaxSteps  = cycle.DefaultMaxSteps
)

type Config struct {
	Transform   string `yaml:"transform"`
	Detector    string `yaml:"detector"`
	Target      int    `yaml:"target"`
	Accelerated bool   `yaml:"accelerated"`
	Fallback    bool   `yaml:"fallback"`
	MaxSteps    int    `yaml:"max_steps"`
	// Input is a path to a grid file; Grid holds the grid inline. Grid wins
	// when both are set.
	Input string `yaml:"input,omitempty"`
	Grid  string `yaml:"grid,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Transform:   DefaultTransform,
		Detector:    DefaultDetector,
		Target:      DefaultTarget,
		Accelerated: true,
		MaxSteps:    DefaultMaxSteps,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base: keys present in the file
// replace base's values, the rest are kept. A file naming one grid source
// (input or grid) replaces both.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, err
	}

	cfg := *base
	_, hasInput := keys["input"]
	_, hasGrid := keys["grid"]
	if hasInput || hasGrid {
		cfg.Input, cfg.Grid = "", ""
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Target < 0 {
		return fmt.Errorf("target must be non-negative, got %d", c.Target)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("max_steps must be positive, got %d", c.MaxSteps)
	}
	return nil
}

// Source parses the starting grid from Grid or, failing that, Input.
func (c *Config) Source() (grid.Grid, error) {
	if c.Grid != "" {
		return grid.Parse(c.Grid)
	}
	if c.Input == "" {
		return grid.Grid{}, fmt.Errorf("config has neither grid nor input")
	}
	data, err := os.ReadFile(c.Input)
	if err != nil {
		return grid.Grid{}, err
	}
	return grid.Parse(string(data))
}
