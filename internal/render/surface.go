package render

// Surface shows the cells of a pipeline. Paint is the only time a surface
// draws; it must not keep cells after returning.
type Surface interface {
	Paint(cells []VisualCell)
}

// Preparer is implemented by surfaces that rasterize the glyph atlas ahead
// of the first paint.
type Preparer interface {
	Prepare(geo Geometry, atlas *GlyphAtlas) error
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(cells []VisualCell)

func (f SurfaceFunc) Paint(cells []VisualCell) { f(cells) }

// Modifiers are the keys held during a click.
type Modifiers struct {
	Ctrl  bool
	Shift bool
	Alt   bool
}

func (m Modifiers) Any() bool { return m.Ctrl || m.Shift || m.Alt }
