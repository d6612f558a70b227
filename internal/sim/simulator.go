package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/tiltsim/internal/cycle"
	"github.com/san-kum/tiltsim/internal/grid"
	"github.com/san-kum/tiltsim/internal/tilt"
)

type Simulator struct {
	transform tilt.Transform
	detector  cycle.Detector[grid.Grid]
	metrics   []Metric
	observers []Observer
}

// New returns a Simulator stepping with transform. A nil detector selects
// Floyd with the default step budget.
func New(transform tilt.Transform, detector cycle.Detector[grid.Grid]) *Simulator {
	if detector == nil {
		detector = cycle.NewFloyd[grid.Grid](0)
	}
	return &Simulator{
		transform: transform,
		detector:  detector,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, x0 grid.Grid, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	if !cfg.Accelerated {
		return s.runDirect(ctx, x0, cfg)
	}

	result, err := s.runAccelerated(x0, cfg)
	if err == nil {
		return result, nil
	}
	if !cfg.Fallback || !errors.Is(err, cycle.ErrNoCycle) {
		return nil, err
	}

	logrus.Warnf("%v; falling back to direct simulation of %d steps", err, cfg.Target)
	for _, m := range s.metrics {
		m.Reset()
	}
	result, err = s.runDirect(ctx, x0, cfg)
	if result != nil {
		result.FellBack = true
	}
	return result, err
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Target < 0 {
		return fmt.Errorf("target must be non-negative, got %d", cfg.Target)
	}
	if s.transform == nil {
		return fmt.Errorf("simulator has no transform")
	}
	return nil
}

func (s *Simulator) observe(g grid.Grid, step int) {
	for _, m := range s.metrics {
		m.Observe(g)
	}
	for _, obs := range s.observers {
		obs.OnStep(g, step)
	}
}

func (s *Simulator) collectMetrics(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) runDirect(ctx context.Context, x0 grid.Grid, cfg Config) (*Result, error) {
	result := &Result{Metrics: make(map[string]float64)}
	tr := newTrace(cfg.TraceCap, cfg.Target)

	g := x0
	s.observe(g, 0)
	tr.add(g.Load())

	for i := 1; i <= cfg.Target; i++ {
		select {
		case <-ctx.Done():
			result.Final = g
			result.LoadsFrom, result.Loads = tr.result()
			return result, ctx.Err()
		default:
		}

		g = s.transform(g)
		result.Applications++
		s.observe(g, i)
		tr.add(g.Load())
	}

	result.Final = g
	result.LoadsFrom, result.Loads = tr.result()
	s.collectMetrics(result)

	logrus.Infof("direct: %d steps, final load %d", result.Applications, g.Load())
	return result, nil
}

func (s *Simulator) runAccelerated(x0 grid.Grid, cfg Config) (*Result, error) {
	it := cycle.NewIterator[grid.Grid](s.transform, s.detector)
	out, err := it.RunAccelerated(x0, cfg.Target)
	if err != nil {
		return nil, err
	}

	rec := out.Record
	logrus.Debugf("%s: pre-cycle %d, period %d after %d applications",
		s.detector.Name(), rec.PreCycleLen, rec.CycleLen, rec.Applications)

	result := &Result{
		Record:       &rec,
		Applications: out.Applications,
		Metrics:      make(map[string]float64),
	}

	// Every state reached on the way to Target appears among steps
	// 0..PreCycleLen+CycleLen-1; observe those that do not lie past Target.
	last := min(cfg.Target, rec.PreCycleLen+rec.CycleLen-1)
	tr := newTrace(cfg.TraceCap, last)

	g := x0
	s.observe(g, 0)
	tr.add(g.Load())
	for i := 1; i <= last; i++ {
		g = s.transform(g)
		result.Applications++
		s.observe(g, i)
		tr.add(g.Load())
	}

	result.Final = out.Final
	if cfg.Target > last {
		s.observe(out.Final, cfg.Target)
	}
	result.LoadsFrom, result.Loads = tr.result()
	s.collectMetrics(result)

	logrus.Infof("accelerated: target %d reached with %d applications, final load %d",
		cfg.Target, result.Applications, out.Final.Load())
	return result, nil
}
