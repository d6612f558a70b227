package automation

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/tiltsim/internal/config"
	"github.com/san-kum/tiltsim/internal/cycle"
	"github.com/san-kum/tiltsim/internal/experiment"
	"github.com/san-kum/tiltsim/internal/grid"
	"github.com/san-kum/tiltsim/internal/sim"
	"github.com/san-kum/tiltsim/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single step in a scenario. Unset fields fall back to the
// preset, then to the defaults.
type ScenarioStep struct {
	Preset      string `yaml:"preset"`
	Transform   string `yaml:"transform"`
	Detector    string `yaml:"detector"`
	Target      *int   `yaml:"target"`
	Accelerated *bool  `yaml:"accelerated"`
	Fallback    *bool  `yaml:"fallback"`
	MaxSteps    int    `yaml:"max_steps"`
	Input       string `yaml:"input"`
	Grid        string `yaml:"grid"`
	SaveAs      string `yaml:"save_as"`
}

// Config resolves the step against its preset and the defaults.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}

	if s.Transform != "" {
		cfg.Transform = s.Transform
	}
	if s.Detector != "" {
		cfg.Detector = s.Detector
	}
	if s.Target != nil {
		cfg.Target = *s.Target
	}
	if s.Accelerated != nil {
		cfg.Accelerated = *s.Accelerated
	}
	if s.Fallback != nil {
		cfg.Fallback = *s.Fallback
	}
	if s.MaxSteps != 0 {
		cfg.MaxSteps = s.MaxSteps
	}
	if s.Grid != "" || s.Input != "" {
		cfg.Grid, cfg.Input = s.Grid, s.Input
	}
	return cfg, cfg.Validate()
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// StepResult pairs a scenario step's result with its saved run, if any.
type StepResult struct {
	Result *sim.Result
	RunID  string
}

// RunScenario executes all steps in a scenario. Steps with save_as are saved
// to st when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, st *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		logrus.Infof("running step %d/%d: %s x%d", i+1, len(scenario.Steps), cfg.Transform, cfg.Target)

		start, err := cfg.Source()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg, start)
		if err := exp.Setup(registry, registry.DefaultMetrics()); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Result: result}
		if step.SaveAs != "" && st != nil {
			sr.RunID, err = st.Save(storage.RunInfo{
				Name:      step.SaveAs,
				Transform: cfg.Transform,
				Detector:  cfg.Detector,
				Target:    cfg.Target,
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Rows      int
	Cols      int
	Movable   float64 // chance a cell starts movable
	Fixed     float64 // chance a cell starts fixed
	NumTrials int
	Transform string
	Detector  string
	MaxSteps  int
	Seed      int64
}

// MonteCarloResult holds the loop found for one random grid.
type MonteCarloResult struct {
	TrialID      int
	Start        grid.Grid
	Found        bool
	PreCycleLen  int
	CycleLen     int
	Applications int
}

// RandomGrid fills a rows x cols grid cell by cell: movable with chance
// movable, otherwise fixed with chance fixed, otherwise empty.
func RandomGrid(rng *rand.Rand, rows, cols int, movable, fixed float64) grid.Grid {
	cells := make([]grid.Cell, rows*cols)
	for i := range cells {
		switch p := rng.Float64(); {
		case p < movable:
			cells[i] = grid.Movable
		case p < movable+fixed:
			cells[i] = grid.Fixed
		}
	}
	return grid.New(rows, cols, cells)
}

// RunMonteCarlo detects the loop of NumTrials random grids. A grid whose loop
// is not found within MaxSteps is reported with Found false.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	if cfg.Rows < 0 || cfg.Cols < 0 {
		return nil, fmt.Errorf("grid size must be non-negative, got %dx%d", cfg.Rows, cfg.Cols)
	}
	if cfg.Movable < 0 || cfg.Fixed < 0 || cfg.Movable+cfg.Fixed > 1 {
		return nil, fmt.Errorf("densities must be non-negative and sum to at most 1")
	}

	transform, err := registry.GetTransform(cfg.Transform)
	if err != nil {
		return nil, err
	}
	detector, err := registry.GetDetector(cfg.Detector, cfg.MaxSteps)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		start := RandomGrid(rng, cfg.Rows, cfg.Cols, cfg.Movable, cfg.Fixed)
		res := MonteCarloResult{TrialID: trial, Start: start}

		rec, err := detector.Detect(start, transform)
		switch {
		case err == nil:
			res.Found = true
			res.PreCycleLen, res.CycleLen, res.Applications = rec.PreCycleLen, rec.CycleLen, rec.Applications
		case errors.Is(err, cycle.ErrNoCycle):
			logrus.Debugf("trial %d: %v", trial, err)
		default:
			return results, err
		}

		results = append(results, res)

		if (trial+1)%10 == 0 {
			logrus.Infof("monte carlo: %d/%d trials complete", trial+1, cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts trials with and without a loop, and how often each
// period occurred.
func MonteCarloStats(results []MonteCarloResult) (found int, missing int, periods map[int]int) {
	periods = make(map[int]int)
	for _, r := range results {
		if r.Found {
			found++
			periods[r.CycleLen]++
		} else {
			missing++
		}
	}
	return
}
