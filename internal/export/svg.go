package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/tiltsim/internal/grid"
)

// GridToSVG draws g with one square of side scale per cell. Movable cells
// are circles and fixed cells are filled squares.
func GridToSVG(g grid.Grid, scale float64) string {
	width := float64(g.Cols()) * scale
	height := float64(g.Rows()) * scale

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	var rocks, walls strings.Builder
	radius := scale * 0.4
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			x, y := float64(c)*scale, float64(r)*scale
			switch g.At(grid.Coord{Row: r, Col: c}) {
			case grid.Movable:
				rocks.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, x+scale/2, y+scale/2, radius))
			case grid.Fixed:
				walls.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f"/>
`, x, y, scale, scale))
			}
		}
	}

	sb.WriteString(`<g fill="#00cccc">
`)
	sb.WriteString(walls.String())
	sb.WriteString(`</g>
<g fill="#ff00ff">
`)
	sb.WriteString(rocks.String())
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TraceToSVG plots loads against step number as a single path.
func TraceToSVG(loads []int, width, height int, strokeColor string) string {
	if len(loads) < 2 {
		return ""
	}

	minY, maxY := loads[0], loads[0]
	for _, l := range loads {
		minY = min(minY, l)
		maxY = max(maxY, l)
	}

	lo, hi := float64(minY), float64(maxY)
	rangeY := hi - lo
	if rangeY == 0 {
		rangeY = 1
	}
	lo -= rangeY * 0.1
	hi += rangeY * 0.1
	rangeY = hi - lo
	rangeX := float64(len(loads) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, l := range loads {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (float64(l)-lo)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
