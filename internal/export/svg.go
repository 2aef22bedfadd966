// Package export writes arena snapshots and match charts as SVG.
package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/corearena/internal/render"
)

const background = "#0a0a0a"

// MemoryMap is a render.Surface that keeps the last painted frame as an SVG
// document, one rectangle per cell.
type MemoryMap struct {
	geo render.Geometry
	svg string
}

func NewMemoryMap(geo render.Geometry) *MemoryMap {
	return &MemoryMap{geo: geo}
}

func (m *MemoryMap) Paint(cells []render.VisualCell) {
	g := m.geo
	w, h := g.Width(), g.Height()

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<g font-family="monospace" font-size="%d" text-anchor="middle" dominant-baseline="central">
`, w, h, w, h, background, max(g.CellH-4, 1))

	for i, c := range cells {
		x, y := g.CellOrigin(i)
		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>
`, x, y, g.CellW, g.CellH, c.Composite().Hex())
		if t := c.Text(); t != "" {
			fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="%s">%s</text>
`, float64(x)+float64(g.CellW)/2, float64(y)+float64(g.CellH)/2, c.Glyph.Color.Hex(), t)
		}
	}

	sb.WriteString("</g>\n</svg>")
	m.svg = sb.String()
}

// String is the last painted frame, or empty before the first paint.
func (m *MemoryMap) String() string { return m.svg }

// HistoryToSVG draws a process count history as a line chart.
func HistoryToSVG(history []int, width, height int, strokeColor string) string {
	if len(history) < 2 {
		return ""
	}

	maxY := 1
	for _, n := range history {
		maxY = max(maxY, n)
	}
	// leave a tenth of the height above the highest sample
	top := float64(maxY) * 1.1
	stepX := float64(width) / float64(len(history)-1)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor)

	for i, n := range history {
		x := float64(i) * stepX
		y := float64(height) - float64(n)/top*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
