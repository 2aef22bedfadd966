package render

import (
	"fmt"

	"github.com/san-kum/corearena/internal/player"
)

// Variant picks the text color of a glyph.
type Variant uint8

const (
	// DarkText is printed on light tints.
	DarkText Variant = iota
	// LightText is printed on dark tints.
	LightText
)

const (
	darkTextColor  player.RGB = 0x000000
	lightTextColor player.RGB = 0xaaaaaa
)

// Glyph is the two digit upper case hex rendering of a byte.
type Glyph struct {
	Value   uint8
	Text    string
	Variant Variant
	Color   player.RGB
}

// GlyphAtlas holds every byte value in both variants. Glyphs are built once
// and shared by all cells.
type GlyphAtlas struct {
	glyphs [2][256]Glyph
}

func NewGlyphAtlas() *GlyphAtlas {
	a := &GlyphAtlas{}
	for v := range 256 {
		text := fmt.Sprintf("%02X", v)
		a.glyphs[DarkText][v] = Glyph{Value: uint8(v), Text: text, Variant: DarkText, Color: darkTextColor}
		a.glyphs[LightText][v] = Glyph{Value: uint8(v), Text: text, Variant: LightText, Color: lightTextColor}
	}
	return a
}

func (a *GlyphAtlas) Glyph(value uint8, variant Variant) *Glyph {
	return &a.glyphs[variant][value]
}

// Len is the number of glyphs in the atlas.
func (a *GlyphAtlas) Len() int { return 2 * 256 }

// variantFor picks the glyph variant readable on tint: dark text on tints
// brighter than mid grey.
func variantFor(tint player.RGB) Variant {
	if int(tint.R())+int(tint.G())+int(tint.B()) > 3*128 {
		return DarkText
	}
	return LightText
}
