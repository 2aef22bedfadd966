//go:build !ebiten

package gui

import (
	"github.com/san-kum/corearena/internal/arena"
	"github.com/san-kum/corearena/internal/render"
)

// Window is a placeholder that satisfies the API of the ebiten build.
type Window struct{}

// NewWindow fails; rebuild with -tags ebiten for a window.
func NewWindow(render.Geometry) (*Window, error) {
	return nil, ErrUnavailable
}

func (w *Window) Paint([]render.VisualCell) {}

func (w *Window) Run(*arena.Arena) error { return ErrUnavailable }
