package render

import (
	"errors"
	"testing"

	"github.com/san-kum/corearena/internal/engine"
	"github.com/san-kum/corearena/internal/engine/enginetest"
	"github.com/san-kum/corearena/internal/player"
)

type recordingSurface struct {
	paints   int
	prepared int
	last     []VisualCell
}

func (s *recordingSurface) Paint(cells []VisualCell) {
	s.paints++
	s.last = append(s.last[:0], cells...)
}

func (s *recordingSurface) Prepare(geo Geometry, atlas *GlyphAtlas) error {
	s.prepared++
	return nil
}

func newPipeline(t *testing.T) (*Pipeline, *recordingSurface) {
	t.Helper()
	surface := &recordingSurface{}
	p, err := New(PixelGeometry, surface)
	if err != nil {
		t.Fatal(err)
	}
	return p, surface
}

const playerA int32 = 1

var colors = player.ColorTable{playerA: 0x81a1c1}

func TestUpdate_ProjectsCell(t *testing.T) {
	p, surface := newPipeline(t)
	eng := enginetest.New()
	eng.SetCell(10, 0xff, 512, playerA, 2)

	if err := p.Update(Context{Memory: eng, Colors: colors, ShowValues: true}); err != nil {
		t.Fatal(err)
	}

	cell := p.Cell(10)
	if cell.Tint != 0x81a1c1 {
		t.Errorf("expected tint #81a1c1, got %s", cell.Tint.Hex())
	}
	if cell.Text() != "FF" {
		t.Errorf("expected glyph FF, got %q", cell.Text())
	}
	if cell.ProcessAlpha <= 0 || cell.ProcessAlpha >= 1 {
		t.Errorf("expected process alpha strictly between 0 and 1, got %f", cell.ProcessAlpha)
	}
	if !approx(cell.ProcessAlpha, 0.55) || !approx(cell.AgeAlpha, 0.15) {
		t.Errorf("expected alphas 0.55/0.15, got %f/%f", cell.ProcessAlpha, cell.AgeAlpha)
	}
	if cell.Glyph.Variant != DarkText {
		t.Error("expected dark text on a light tint")
	}
	if surface.paints != 1 || len(surface.last) != engine.MemSize {
		t.Errorf("expected one paint of %d cells, got %d of %d", engine.MemSize, surface.paints, len(surface.last))
	}
	if got := p.Coverage(); got[playerA] != 1 || len(got) != 1 {
		t.Errorf("expected coverage {1: 1}, got %v", got)
	}
}

func TestUpdate_NeutralTint(t *testing.T) {
	p, _ := newPipeline(t)
	eng := enginetest.New()
	eng.SetCell(0, 0x01, 900, 9, 0)
	eng.SetCell(1, 0x02, 900, engine.NoOwner, 0)

	if err := p.Update(Context{Memory: eng, Colors: colors}); err != nil {
		t.Fatal(err)
	}

	unknown, unowned := p.Cell(0), p.Cell(1)
	if unknown.Tint != NeutralTint || unowned.Tint != NeutralTint {
		t.Errorf("expected neutral tints, got %s and %s", unknown.Tint.Hex(), unowned.Tint.Hex())
	}
	if unowned.AgeAlpha != 0 || unknown.AgeAlpha == 0 {
		t.Errorf("expected age fade only on owned cells, got %f and %f", unknown.AgeAlpha, unowned.AgeAlpha)
	}
	if unknown.Text() != "" {
		t.Error("expected values hidden")
	}
	if unknown.Glyph.Variant != LightText {
		t.Error("expected light text on the neutral tint")
	}
}

func TestUpdate_SelectionWraps(t *testing.T) {
	p, _ := newPipeline(t)
	eng := enginetest.New()
	eng.Decoded[4090] = engine.Decoded{Size: 10, Text: "long"}

	p.Selections().Select(4090, eng)
	if err := p.Update(Context{Memory: eng, Colors: colors}); err != nil {
		t.Fatal(err)
	}

	want := map[int]bool{}
	for _, a := range []int{4090, 4091, 4092, 4093, 4094, 4095, 0, 1, 2, 3} {
		want[a] = true
	}
	for i := 0; i < engine.MemSize; i++ {
		if got := p.Cell(i).Selected; got != want[i] {
			t.Errorf("cell %d: expected selected=%v, got %v", i, want[i], got)
		}
	}

	p.Selections().Clear()
	if err := p.Update(Context{Memory: eng, Colors: colors}); err != nil {
		t.Fatal(err)
	}
	for a := range want {
		if p.Cell(a).Selected {
			t.Fatalf("cell %d still highlighted after clear", a)
		}
	}
}

func TestUpdate_RederivesViews(t *testing.T) {
	p, surface := newPipeline(t)
	first := enginetest.New()
	first.SetCell(5, 0xaa, 0, playerA, 0)
	second := enginetest.New()
	second.SetCell(5, 0xbb, 0, playerA, 0)

	for _, eng := range []*enginetest.Engine{first, second} {
		if err := p.Update(Context{Memory: eng, Colors: colors, ShowValues: true}); err != nil {
			t.Fatal(err)
		}
	}
	if got := p.Cell(5).Text(); got != "BB" {
		t.Errorf("expected the second engine's value BB, got %s", got)
	}
	if surface.paints != 2 {
		t.Errorf("expected 2 paints, got %d", surface.paints)
	}
}

type badMemory struct{}

func (badMemory) Memory() engine.MemoryLayout {
	return engine.MemoryLayout{ValuesPtr: 0, AgesPtr: 1, OwnersPtr: 0, PCCountPtr: 0}
}
func (badMemory) LinearMemory() []byte { return make([]byte, 64) }

func TestUpdate_BadLayout(t *testing.T) {
	p, surface := newPipeline(t)
	err := p.Update(Context{Memory: badMemory{}})
	if !errors.Is(err, engine.ErrMemoryLayout) {
		t.Errorf("expected ErrMemoryLayout, got %v", err)
	}
	if surface.paints != 0 {
		t.Error("expected no paint on error")
	}
}

func TestNew(t *testing.T) {
	_, surface := newPipeline(t)
	if surface.prepared != 1 {
		t.Errorf("expected surface prepared once, got %d", surface.prepared)
	}

	bad := PixelGeometry
	bad.Columns = 10
	if _, err := New(bad, surface); !errors.Is(err, ErrGeometry) {
		t.Errorf("expected ErrGeometry, got %v", err)
	}
}

func TestClick(t *testing.T) {
	p, _ := newPipeline(t)
	eng := enginetest.New()
	ctrl := Modifiers{Ctrl: true}

	if idx, ok := p.Click(3+20*2, 3+17, Modifiers{}, eng); !ok || idx != 66 {
		t.Fatalf("expected cell 66, got %d %v", idx, ok)
	}
	p.Click(3, 3, ctrl, eng)
	p.Click(3+20, 3, Modifiers{Shift: true}, eng)
	if sel := p.Selections(); sel.Len() != 3 || !sel.Contains(0) || !sel.Contains(1) {
		t.Errorf("expected modifier clicks to add, got %+v", sel.All())
	}

	p.Click(3, 3, Modifiers{Alt: true}, eng)
	if p.Selections().Contains(0) {
		t.Error("expected a second modifier click to remove the cell")
	}

	p.Click(3+20*5, 3, Modifiers{}, eng)
	if sel := p.Selections().All(); len(sel) != 1 || sel[0].Cell != 5 {
		t.Errorf("expected plain click to replace the selection, got %+v", sel)
	}

	if _, ok := p.Click(3+18, 3, ctrl, eng); ok {
		t.Error("expected a click between cells to miss")
	}
	if p.Selections().Len() != 1 {
		t.Error("expected a missed click to leave the selection alone")
	}
}

func TestSelections_Refresh(t *testing.T) {
	eng := enginetest.New()
	var s Selections
	s.Select(7, eng)
	if got := s.All()[0]; got.Instruction != "nop" || got.Length != 1 {
		t.Fatalf("unexpected selection %+v", got)
	}

	eng.Decoded[7] = engine.Decoded{Size: 0, Text: "live"}
	eng.Procs[7] = []engine.ProcessInfo{{PID: 4, Owner: playerA, PC: 7}}
	s.Refresh(eng)

	got := s.All()[0]
	if got.Instruction != "live" || got.Length != 1 || len(got.Processes) != 1 {
		t.Errorf("expected refreshed selection with length at least 1, got %+v", got)
	}
	if s.Discard(8) || !s.Discard(7) || s.Len() != 0 {
		t.Error("unexpected discard behavior")
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
