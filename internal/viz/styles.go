package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/tiltsim/internal/grid"
)

var (
	gridStyle   = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

func cellStyle(c grid.Cell) lipgloss.Style {
	switch c {
	case grid.Movable:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Movable).Bold(true)
	case grid.Fixed:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Fixed)
	default:
		return lipgloss.NewStyle().Foreground(CurrentTheme.Empty)
	}
}

func statusStyle(running bool) lipgloss.Style {
	if running {
		return lipgloss.NewStyle().Foreground(CurrentTheme.Success).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(CurrentTheme.Warning).Bold(true)
}

// RenderGrid draws g with one colored glyph per cell.
func RenderGrid(g grid.Grid) string {
	styles := map[grid.Cell]lipgloss.Style{
		grid.Empty:   cellStyle(grid.Empty),
		grid.Movable: cellStyle(grid.Movable),
		grid.Fixed:   cellStyle(grid.Fixed),
	}

	var b strings.Builder
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			cell := g.At(grid.Coord{Row: r, Col: c})
			b.WriteString(styles[cell].Render(string(cell.Glyph())))
		}
		if r < g.Rows()-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
