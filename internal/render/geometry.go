package render

import (
	"fmt"

	"github.com/san-kum/corearena/internal/engine"
)

// Geometry lays cells out on a grid. Units are whatever the surface uses:
// pixels for windows, character cells for terminals.
type Geometry struct {
	CellW    int `yaml:"cell_w"`
	CellH    int `yaml:"cell_h"`
	SpacingX int `yaml:"spacing_x"`
	SpacingY int `yaml:"spacing_y"`
	Margin   int `yaml:"margin"`
	Columns  int `yaml:"columns"`
	Rows     int `yaml:"rows"`
}

var (
	PixelGeometry = Geometry{
		CellW: 18, CellH: 15,
		SpacingX: 2, SpacingY: 2,
		Margin:  3,
		Columns: 64, Rows: 64,
	}

	// TerminalGeometry prints two hex digits per cell with one blank column
	// between cells.
	TerminalGeometry = Geometry{
		CellW: 2, CellH: 1,
		SpacingX: 1, SpacingY: 0,
		Margin:  1,
		Columns: 64, Rows: 64,
	}
)

func (g Geometry) Validate() error {
	if g.CellW <= 0 || g.CellH <= 0 {
		return fmt.Errorf("%w: cell size %dx%d", ErrGeometry, g.CellW, g.CellH)
	}
	if g.SpacingX < 0 || g.SpacingY < 0 || g.Margin < 0 {
		return fmt.Errorf("%w: negative spacing or margin", ErrGeometry)
	}
	if g.Columns*g.Rows != engine.MemSize || g.Columns <= 0 {
		return fmt.Errorf("%w: %dx%d grid for %d cells", ErrGeometry, g.Columns, g.Rows, engine.MemSize)
	}
	return nil
}

func (g Geometry) Cells() int { return g.Columns * g.Rows }

func (g Geometry) pitchX() int { return g.CellW + g.SpacingX }
func (g Geometry) pitchY() int { return g.CellH + g.SpacingY }

// Width is the surface width needed to show every cell.
func (g Geometry) Width() int {
	return g.pitchX()*g.Columns + 2*g.Margin - g.SpacingX
}

func (g Geometry) Height() int {
	return g.pitchY()*g.Rows + 2*g.Margin - g.SpacingY
}

// CellOrigin returns the top left corner of cell i.
func (g Geometry) CellOrigin(i int) (x, y int) {
	col, row := i%g.Columns, i/g.Columns
	return g.Margin + col*g.pitchX(), g.Margin + row*g.pitchY()
}

// CellAt maps a surface point to the cell under it. Points in the margin or
// in the spacing between cells hit nothing.
func (g Geometry) CellAt(x, y int) (int, bool) {
	x -= g.Margin
	y -= g.Margin
	if x < 0 || y < 0 {
		return 0, false
	}
	col, row := x/g.pitchX(), y/g.pitchY()
	if col >= g.Columns || row >= g.Rows {
		return 0, false
	}
	if x%g.pitchX() >= g.CellW || y%g.pitchY() >= g.CellH {
		return 0, false
	}
	return row*g.Columns + col, true
}
