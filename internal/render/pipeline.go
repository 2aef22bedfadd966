package render

import (
	"fmt"
	"maps"

	"github.com/san-kum/corearena/internal/engine"
	"github.com/san-kum/corearena/internal/player"
)

// MemorySource exposes the linear memory of an engine and where its cell
// arrays live. Every engine.Engine is one.
type MemorySource interface {
	Memory() engine.MemoryLayout
	LinearMemory() []byte
}

// ColorLookup resolves an owner id to a player color. player.ColorTable is
// one.
type ColorLookup interface {
	Color(owner int32) (player.RGB, bool)
}

// Context is what an update reads.
type Context struct {
	Memory     MemorySource
	Colors     ColorLookup
	ShowValues bool
}

type Pipeline struct {
	geo        Geometry
	surface    Surface
	atlas      *GlyphAtlas
	cells      []VisualCell
	selections Selections
	coverage   map[int32]int
}

// New prepares a pipeline drawing on surface. The glyph atlas is built here,
// and handed to the surface once if it wants to rasterize it.
func New(geo Geometry, surface Surface) (*Pipeline, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		geo:      geo,
		surface:  surface,
		atlas:    NewGlyphAtlas(),
		cells:    make([]VisualCell, geo.Cells()),
		coverage: make(map[int32]int),
	}
	if prep, ok := surface.(Preparer); ok {
		if err := prep.Prepare(geo, p.atlas); err != nil {
			return nil, fmt.Errorf("prepare surface: %w", err)
		}
	}
	return p, nil
}

func (p *Pipeline) Geometry() Geometry      { return p.geo }
func (p *Pipeline) Atlas() *GlyphAtlas      { return p.atlas }
func (p *Pipeline) Selections() *Selections { return &p.selections }
func (p *Pipeline) Cell(i int) VisualCell   { return p.cells[i] }
func (p *Pipeline) Coverage() map[int32]int { return maps.Clone(p.coverage) }

// Update rebuilds every cell from ctx.Memory and paints the surface once.
// The memory views are derived again on every call, so an engine swap
// between two updates is always picked up.
func (p *Pipeline) Update(ctx Context) error {
	mem, err := engine.NewMemoryView(ctx.Memory.LinearMemory(), ctx.Memory.Memory(), len(p.cells))
	if err != nil {
		return fmt.Errorf("memory view: %w", err)
	}

	clear(p.coverage)
	for i := range p.cells {
		value, age, owner, pcs := mem.Cell(i)

		tint := NeutralTint
		if owner != engine.NoOwner && ctx.Colors != nil {
			if c, ok := ctx.Colors.Color(owner); ok {
				tint = c
			}
		}
		if owner != engine.NoOwner {
			p.coverage[owner]++
		}

		p.cells[i] = VisualCell{
			Tint:         tint,
			Owner:        owner,
			Glyph:        p.atlas.Glyph(value, variantFor(tint)),
			ShowGlyph:    ctx.ShowValues,
			ProcessAlpha: processAlpha(pcs),
			AgeAlpha:     ageAlpha(owner, age),
		}
	}

	for _, sel := range p.selections.items {
		for _, addr := range sel.Covers(len(p.cells)) {
			p.cells[addr].Selected = true
		}
	}

	p.surface.Paint(p.cells)
	return nil
}

// Click selects the cell under (x, y). With a modifier held the cell is
// toggled in the selection set instead. It returns the cell hit.
func (p *Pipeline) Click(x, y int, mods Modifiers, eng Inspector) (int, bool) {
	idx, ok := p.geo.CellAt(x, y)
	if !ok {
		return 0, false
	}
	if mods.Any() {
		p.selections.Toggle(idx, eng)
	} else {
		p.selections.Select(idx, eng)
	}
	return idx, true
}
