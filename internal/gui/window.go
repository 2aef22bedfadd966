//go:build ebiten

package gui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/san-kum/corearena/internal/arena"
	"github.com/san-kum/corearena/internal/player"
	"github.com/san-kum/corearena/internal/render"
)

var background = color.RGBA{R: 10, G: 10, B: 10, A: 255}

// Window is a render.Surface drawn by ebiten. Glyphs are rasterized once,
// when the pipeline prepares the surface, and tinted per cell at draw time.
type Window struct {
	geo    render.Geometry
	arena  *arena.Arena
	cells  []render.VisualCell
	glyphs [2][256]*ebiten.Image
	pixel  *ebiten.Image
}

func NewWindow(geo render.Geometry) (*Window, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	w := &Window{
		geo:   geo,
		cells: make([]render.VisualCell, geo.Cells()),
		pixel: ebiten.NewImage(1, 1),
	}
	w.pixel.Fill(color.White)
	return w, nil
}

// Prepare draws every glyph of the atlas into its own texture.
func (w *Window) Prepare(geo render.Geometry, atlas *render.GlyphAtlas) error {
	face := basicfont.Face7x13
	for _, variant := range []render.Variant{render.DarkText, render.LightText} {
		for v := range 256 {
			g := atlas.Glyph(uint8(v), variant)
			img := ebiten.NewImage(geo.CellW, geo.CellH)
			bounds := text.BoundString(face, g.Text)
			x := (geo.CellW - bounds.Dx()) / 2
			y := (geo.CellH-face.Height)/2 + face.Ascent
			text.Draw(img, g.Text, face, x, y, rgba(g.Color))
			w.glyphs[variant][v] = img
		}
	}
	return nil
}

func (w *Window) Paint(cells []render.VisualCell) {
	copy(w.cells, cells)
}

// Run opens the window and blocks until it is closed.
func (w *Window) Run(a *arena.Arena) error {
	w.arena = a
	ebiten.SetWindowSize(w.geo.Width()+hudWidth, w.geo.Height())
	ebiten.SetWindowTitle("corearena")
	return ebiten.RunGame(w)
}

func (w *Window) Update() error {
	a := w.arena
	ctrl := a.Controller

	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		ctrl.Pause()
		return ebiten.Termination
	}

	var err error
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		ctrl.TogglePlay()
	case inpututil.IsKeyJustPressed(ebiten.KeyN), inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		err = ctrl.Step()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		err = ctrl.Stop()
	case inpututil.IsKeyJustPressed(ebiten.KeyF), inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		ctrl.NextSpeed()
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		a.ToggleValues()
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		a.ClearSelection()
	}
	if err != nil {
		return fmt.Errorf("arena: %w", err)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		a.Click(x, y, render.Modifiers{
			Ctrl:  ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta),
			Shift: ebiten.IsKeyPressed(ebiten.KeyShift),
			Alt:   ebiten.IsKeyPressed(ebiten.KeyAlt),
		})
	}

	a.Queue.RunDue()
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	for i, c := range w.cells {
		x, y := w.geo.CellOrigin(i)

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(float64(w.geo.CellW), float64(w.geo.CellH))
		op.GeoM.Translate(float64(x), float64(y))
		op.ColorScale.ScaleWithColor(rgba(c.Composite()))
		screen.DrawImage(w.pixel, op)

		if c.ShowGlyph && c.Glyph != nil {
			op := &ebiten.DrawImageOptions{}
			op.GeoM.Translate(float64(x), float64(y))
			screen.DrawImage(w.glyphs[c.Glyph.Variant][c.Glyph.Value], op)
		}
	}

	ebitenutil.DebugPrintAt(screen, w.hud(), w.geo.Width()+8, 8)
}

func (w *Window) hud() string {
	a := w.arena
	ctrl := a.Controller
	var b strings.Builder

	status := "paused"
	if ctrl.Playing() {
		status = "playing"
	}
	fmt.Fprintf(&b, "%s  x%d\ncycle %d\nprocesses %d\n\n", status, ctrl.Speed(), ctrl.Cycles(), ctrl.ProcessCount())

	cells := w.geo.Cells()
	for _, c := range a.Contenders() {
		fmt.Fprintf(&b, "%d %s %.1f%% p%d\n", c.Player.ID, c.Player.Name(),
			100*float64(c.Coverage)/float64(cells), c.Info.ProcessCount)
		if c.Player.Err != nil {
			fmt.Fprintf(&b, "  %v\n", c.Player.Err)
		}
	}

	if r := ctrl.Result(); r != nil {
		fmt.Fprintf(&b, "\nwinners %v (last live %d)\n", r.Winners, r.LastLive)
	}
	if err := a.Err(); err != nil {
		fmt.Fprintf(&b, "\n%v\n", err)
	}

	for _, s := range a.Pipeline.Selections().All() {
		fmt.Fprintf(&b, "\n%04x %s\n", s.Cell, s.Instruction)
		for _, p := range s.Processes {
			fmt.Fprintf(&b, "  pid %d owner %d live %d\n", p.PID, p.Owner, p.LastLiveCycle)
		}
	}

	b.WriteString("\nspace play  n step  s stop\nf speed  v values  esc clear  q quit")
	return b.String()
}

func (w *Window) Layout(int, int) (int, int) {
	return w.geo.Width() + hudWidth, w.geo.Height()
}

func rgba(c player.RGB) color.RGBA {
	return color.RGBA{R: c.R(), G: c.G(), B: c.B(), A: 255}
}
