//go:build !ebiten

package gui

import (
	"errors"
	"testing"

	"github.com/san-kum/corearena/internal/render"
)

func TestNewWindow_Unavailable(t *testing.T) {
	if _, err := NewWindow(render.PixelGeometry); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
