package player

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a 24-bit 0xRRGGBB color.
type RGB uint32

// Palette is the set of colors handed out to new players, in order.
var Palette = []RGB{0x81a1c1, 0xb48ead, 0xa3be8c, 0xbf616a}

// FallbackColor is used once every palette color is taken.
const FallbackColor RGB = 0xff0000

func (c RGB) R() uint8 { return uint8(c >> 16) }
func (c RGB) G() uint8 { return uint8(c >> 8) }
func (c RGB) B() uint8 { return uint8(c) }

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}

// ParseRGB accepts #rrggbb, rrggbb or 0xrrggbb.
func ParseRGB(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB(v), nil
}

// ColorTable maps engine owner ids to player colors.
type ColorTable map[int32]RGB

// Color reports the color of owner, if a player with that id exists.
func (t ColorTable) Color(owner int32) (RGB, bool) {
	c, ok := t[owner]
	return c, ok
}
