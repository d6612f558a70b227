package metrics

import "github.com/san-kum/tiltsim/internal/grid"

// Load reports the load of the last observed grid.
type Load struct {
	name    string
	last    int
	samples int
}

func NewLoad() *Load {
	return &Load{name: "load"}
}

func (l *Load) Name() string { return l.name }

func (l *Load) Observe(g grid.Grid) {
	l.last = g.Load()
	l.samples++
}

func (l *Load) Value() float64 {
	return float64(l.last)
}

func (l *Load) Reset() {
	l.last = 0
	l.samples = 0
}

// PeakLoad reports the highest load seen across observations.
type PeakLoad struct {
	name    string
	peak    int
	samples int
}

func NewPeakLoad() *PeakLoad {
	return &PeakLoad{name: "peak_load"}
}

func (p *PeakLoad) Name() string { return p.name }

func (p *PeakLoad) Observe(g grid.Grid) {
	if l := g.Load(); p.samples == 0 || l > p.peak {
		p.peak = l
	}
	p.samples++
}

func (p *PeakLoad) Value() float64 {
	return float64(p.peak)
}

func (p *PeakLoad) Reset() {
	p.peak = 0
	p.samples = 0
}
