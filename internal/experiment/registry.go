package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/tiltsim/internal/cycle"
	"github.com/san-kum/tiltsim/internal/grid"
	"github.com/san-kum/tiltsim/internal/metrics"
	"github.com/san-kum/tiltsim/internal/sim"
	"github.com/san-kum/tiltsim/internal/tilt"
)

type Registry struct {
	transforms map[string]tilt.Transform
	detectors  map[string]func(maxSteps int) cycle.Detector[grid.Grid]
}

func NewRegistry() *Registry {
	r := &Registry{
		transforms: make(map[string]tilt.Transform),
		detectors:  make(map[string]func(int) cycle.Detector[grid.Grid]),
	}

	r.transforms["spin"] = tilt.Spin
	for _, dir := range tilt.SpinOrder {
		r.transforms[dir.String()] = tilt.ForDirection(dir)
	}

	r.detectors["floyd"] = func(n int) cycle.Detector[grid.Grid] { return cycle.NewFloyd[grid.Grid](n) }
	r.detectors["brent"] = func(n int) cycle.Detector[grid.Grid] { return cycle.NewBrent[grid.Grid](n) }
	r.detectors["memo"] = func(n int) cycle.Detector[grid.Grid] { return cycle.NewMemo[grid.Grid](n) }

	return r
}

func (r *Registry) GetTransform(name string) (tilt.Transform, error) {
	f, ok := r.transforms[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform: %s", name)
	}
	return f, nil
}

func (r *Registry) GetDetector(name string, maxSteps int) (cycle.Detector[grid.Grid], error) {
	fn, ok := r.detectors[name]
	if !ok {
		return nil, fmt.Errorf("unknown detector: %s", name)
	}
	return fn(maxSteps), nil
}

func (r *Registry) ListTransforms() []string {
	return sortedKeys(r.transforms)
}

func (r *Registry) ListDetectors() []string {
	return sortedKeys(r.detectors)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewLoad(),
		metrics.NewPeakLoad(),
		metrics.NewMovableCount(),
		metrics.NewFixedCount(),
	}
}
