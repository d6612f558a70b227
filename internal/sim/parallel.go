package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/tiltsim/internal/grid"
)

// Ensemble runs independent simulations concurrently. Each run gets its own
// Simulator and metrics, so results match running them one at a time.
type Ensemble struct {
	base       *Simulator
	newMetrics func() []Metric
	limit      int
}

// NewEnsemble clones base's transform and detector for every run. newMetrics
// may be nil.
func NewEnsemble(base *Simulator, newMetrics func() []Metric) *Ensemble {
	return &Ensemble{base: base, newMetrics: newMetrics, limit: runtime.NumCPU()}
}

// SetLimit caps the number of runs in flight. n <= 0 means no limit.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// Run simulates every start grid with cfg. Results are in input order. The
// first failure cancels the runs that have not finished.
func (e *Ensemble) Run(ctx context.Context, starts []grid.Grid, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(starts))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, x0 := range starts {
		i, x0 := i, x0
		g.Go(func() error {
			s := New(e.base.transform, e.base.detector)
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, x0, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
