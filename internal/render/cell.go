package render

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/corearena/internal/player"
)

const (
	// MaxCellAge is the age at which the fade overlay saturates.
	MaxCellAge = 1024

	NeutralTint    player.RGB = 0x404040
	ProcessTint    player.RGB = 0xffffff
	AgeTint        player.RGB = 0xcccccc
	SelectionTint  player.RGB = 0xff0000
	SelectionAlpha            = 0.4
)

// VisualCell is what a surface draws for one address: a tinted background,
// an optional hex glyph and three translucent overlays on top.
type VisualCell struct {
	Tint      player.RGB
	Owner     int32
	Glyph     *Glyph
	ShowGlyph bool
	// ProcessAlpha grows with the number of processes whose pc is here.
	ProcessAlpha float64
	// AgeAlpha grows with the time since the cell was last written.
	AgeAlpha float64
	Selected bool
}

func processAlpha(pcCount uint32) float64 {
	if pcCount == 0 {
		return 0
	}
	return min(0.5+float64(pcCount-1)*0.05, 1)
}

func ageAlpha(owner int32, age uint16) float64 {
	if owner == 0 {
		return 0
	}
	return 0.3 * float64(min(age, MaxCellAge)) / MaxCellAge
}

// Composite flattens the tint and the overlays into one color, in the order
// a surface stacks them.
func (c VisualCell) Composite() player.RGB {
	col := toColorful(c.Tint)
	col = col.BlendRgb(toColorful(ProcessTint), c.ProcessAlpha)
	col = col.BlendRgb(toColorful(AgeTint), c.AgeAlpha)
	if c.Selected {
		col = col.BlendRgb(toColorful(SelectionTint), SelectionAlpha)
	}
	return fromColorful(col)
}

// Text is the glyph to print, or empty when values are hidden.
func (c VisualCell) Text() string {
	if !c.ShowGlyph || c.Glyph == nil {
		return ""
	}
	return c.Glyph.Text
}

func toColorful(c player.RGB) colorful.Color {
	return colorful.Color{
		R: float64(c.R()) / 255,
		G: float64(c.G()) / 255,
		B: float64(c.B()) / 255,
	}
}

func fromColorful(c colorful.Color) player.RGB {
	r, g, b := c.Clamped().RGB255()
	return player.RGB(r)<<16 | player.RGB(g)<<8 | player.RGB(b)
}
