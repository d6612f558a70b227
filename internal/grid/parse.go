package grid

import (
	"strings"
)

// Parse reads a grid from text, one row per line. Whitespace around each
// line is ignored, as are blank lines before the first row and after the last.
func Parse(text string) (Grid, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	lines = lines[start:end]

	if len(lines) == 0 {
		return Grid{}, nil
	}

	cols := len([]rune(lines[0]))
	cells := make([]Cell, 0, len(lines)*cols)
	for i, line := range lines {
		runes := []rune(line)
		if len(runes) != cols {
			return Grid{}, &ParseError{Line: start + i + 1, Wrapped: ErrRaggedRow}
		}
		for j, r := range runes {
			c, ok := CellFromGlyph(r)
			if !ok {
				return Grid{}, &ParseError{Line: start + i + 1, Col: j + 1, Glyph: r, Wrapped: ErrUnknownGlyph}
			}
			cells = append(cells, c)
		}
	}

	return build(len(lines), cols, cells), nil
}

// MustParse is like Parse but panics on malformed input. Intended for
// built-in fixtures.
func MustParse(text string) Grid {
	g, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return g
}
