package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/tiltsim/internal/config"
	"github.com/san-kum/tiltsim/internal/grid"
	"github.com/san-kum/tiltsim/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	start     grid.Grid
	simulator *sim.Simulator
}

func New(cfg *config.Config, start grid.Grid) *Experiment {
	return &Experiment{cfg: cfg, start: start}
}

// Setup resolves the configured transform and detector and attaches metrics.
func (e *Experiment) Setup(r *Registry, metrics []sim.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	transform, err := r.GetTransform(e.cfg.Transform)
	if err != nil {
		return err
	}
	detector, err := r.GetDetector(e.cfg.Detector, e.cfg.MaxSteps)
	if err != nil {
		return err
	}

	e.simulator = sim.New(transform, detector)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	logrus.Debugf("experiment: %s x%d (%dx%d grid, accelerated=%v, detector=%s)",
		e.cfg.Transform, e.cfg.Target, e.start.Rows(), e.start.Cols(), e.cfg.Accelerated, e.cfg.Detector)

	return e.simulator.Run(ctx, e.start, e.SimConfig())
}

// SimConfig converts the file-level configuration into simulator settings.
func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Target:      e.cfg.Target,
		Accelerated: e.cfg.Accelerated,
		Fallback:    e.cfg.Fallback,
	}
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
