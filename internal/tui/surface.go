package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/corearena/internal/player"
	"github.com/san-kum/corearena/internal/render"
)

type styleKey struct {
	bg, fg player.RGB
}

// Grid is a render.Surface that prints cells as styled terminal lines. One
// surface unit is one character cell.
type Grid struct {
	geo    render.Geometry
	lines  []string
	styles map[styleKey]lipgloss.Style
	blank  string
}

func NewGrid(geo render.Geometry) *Grid {
	g := &Grid{
		geo:    geo,
		styles: make(map[styleKey]lipgloss.Style),
		blank:  strings.Repeat(" ", geo.Width()),
	}
	g.lines = make([]string, geo.Height())
	for i := range g.lines {
		g.lines[i] = g.blank
	}
	return g
}

func (g *Grid) Geometry() render.Geometry { return g.geo }

// Lines is the last painted frame, one string per terminal row.
func (g *Grid) Lines() []string { return g.lines }

func (g *Grid) Paint(cells []render.VisualCell) {
	// ages fade through many shades over a match; keep only this frame's
	clear(g.styles)

	geo := g.geo
	margin := strings.Repeat(" ", geo.Margin)
	gap := strings.Repeat(" ", geo.SpacingX)
	empty := strings.Repeat(" ", geo.CellW)

	y := 0
	for i := 0; i < geo.Margin; i++ {
		g.lines[y] = g.blank
		y++
	}

	var b strings.Builder
	for row := 0; row < geo.Rows; row++ {
		for line := 0; line < geo.CellH; line++ {
			b.Reset()
			b.WriteString(margin)
			for col := 0; col < geo.Columns; col++ {
				if col > 0 {
					b.WriteString(gap)
				}
				c := cells[row*geo.Columns+col]
				text := empty
				if t := c.Text(); t != "" && line == geo.CellH/2 {
					text = fit(t, geo.CellW)
				}
				fg := player.RGB(0)
				if c.Glyph != nil {
					fg = c.Glyph.Color
				}
				b.WriteString(g.style(c.Composite(), fg).Render(text))
			}
			b.WriteString(margin)
			g.lines[y] = b.String()
			y++
		}
		if row < geo.Rows-1 {
			for i := 0; i < geo.SpacingY; i++ {
				g.lines[y] = g.blank
				y++
			}
		}
	}

	for ; y < len(g.lines); y++ {
		g.lines[y] = g.blank
	}
}

func (g *Grid) style(bg, fg player.RGB) lipgloss.Style {
	k := styleKey{bg, fg}
	s, ok := g.styles[k]
	if !ok {
		s = lipgloss.NewStyle().
			Background(lipgloss.Color(bg.Hex())).
			Foreground(lipgloss.Color(fg.Hex()))
		g.styles[k] = s
	}
	return s
}

// fit centers s in a field of width w, cutting it when too long.
func fit(s string, w int) string {
	if len(s) >= w {
		return s[:w]
	}
	pad := w - len(s)
	return strings.Repeat(" ", pad/2) + s + strings.Repeat(" ", pad-pad/2)
}
