package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/tiltsim/internal/grid"
	"github.com/san-kum/tiltsim/internal/tilt"
)

const (
	historyCapacity = 600
	maxTracked      = 100_000

	defaultInterval = 200 * time.Millisecond
	minInterval     = 10 * time.Millisecond
	maxInterval     = 2 * time.Second
)

type TickMsg time.Time

type visit struct {
	step int
	g    grid.Grid
}

// Model holds the grid being animated and what has been learned about its
// trajectory so far.
type Model struct {
	transform tilt.Transform
	name      string
	initial   grid.Grid
	current   grid.Grid
	step      int
	running   bool
	interval  time.Duration
	loads     []float64
	seen      map[uint64][]visit
	preCycle  int
	period    int
	looped    bool
	showHelp  bool
}

// NewModel starts an animation of transform applied to start.
func NewModel(name string, start grid.Grid, transform tilt.Transform) Model {
	m := Model{
		transform: transform,
		name:      name,
		initial:   start,
		running:   true,
		interval:  defaultInterval,
	}
	m.reset()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			m.advance()
		case "r":
			m.reset()
		case "+", "=":
			m.interval = max(m.interval/2, minInterval)
		case "-", "_":
			m.interval = min(m.interval*2, maxInterval)
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			nextTheme()
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance() {
	m.current = m.transform(m.current)
	m.step++
	m.record()
}

// record remembers the current grid until the first repeat is seen.
func (m *Model) record() {
	m.loads = append(m.loads, float64(m.current.Load()))
	if len(m.loads) > historyCapacity {
		m.loads = m.loads[1:]
	}

	if m.looped {
		return
	}
	fp := m.current.Fingerprint()
	for _, v := range m.seen[fp] {
		if v.g.Equal(m.current) {
			m.preCycle, m.period, m.looped = v.step, m.step-v.step, true
			m.seen = nil
			return
		}
	}
	if m.step < maxTracked {
		m.seen[fp] = append(m.seen[fp], visit{step: m.step, g: m.current})
	}
}

func (m *Model) reset() {
	m.current = m.initial
	m.step = 0
	m.loads = make([]float64, 0, historyCapacity)
	m.seen = make(map[uint64][]visit)
	m.preCycle, m.period, m.looped = 0, 0, false
	m.record()
}

// Current returns the grid on screen.
func (m Model) Current() grid.Grid { return m.current }

// Step returns how many transforms have been applied since the last reset.
func (m Model) Step() int { return m.step }

// Loop reports the pre-cycle length and period once a grid has repeated.
func (m Model) Loop() (preCycle, period int, ok bool) {
	return m.preCycle, m.period, m.looped
}

// View renders the TUI interface.
func (m Model) View() string {
	gridView := gridStyle.Render(RenderGrid(m.current))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(statusStyle(m.running).Render(status) + "\n\n")

	if len(m.loads) > 1 {
		chart := asciigraph.Plot(m.loads, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Load"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d", m.step)) + "\n")
	s.WriteString(labelStyle.Render("Load") + valueStyle.Render(fmt.Sprintf("%d", m.current.Load())) + "\n")
	s.WriteString(labelStyle.Render("Movable") + valueStyle.Render(fmt.Sprintf("%d", m.current.Count(grid.Movable))) + "\n")
	s.WriteString(labelStyle.Render("Hash") + valueStyle.Render(fmt.Sprintf("%016x", m.current.Fingerprint())) + "\n")
	s.WriteString(labelStyle.Render("Interval") + valueStyle.Render(m.interval.String()) + "\n")

	s.WriteString("\nLOOP\n")
	if m.looped {
		s.WriteString(labelStyle.Render("Pre-cycle") + valueStyle.Render(fmt.Sprintf("%d", m.preCycle)) + "\n")
		s.WriteString(labelStyle.Render("Period") + valueStyle.Render(fmt.Sprintf("%d", m.period)) + "\n")
	} else {
		s.WriteString(labelStyle.Render("  (searching)") + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause N:Step R:Reset\n+/-:Speed T:Theme Q:Quit"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, gridView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  N        - Single step              ║
║  R        - Reset to starting grid   ║
║  +/-      - Faster/slower            ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
