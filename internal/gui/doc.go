// Package gui shows an arena in a desktop window. The window needs the
// ebiten build tag; without it NewWindow reports ErrUnavailable.
package gui

import "errors"

var ErrUnavailable = errors.New("gui: built without the ebiten tag")

// hudWidth is the width in pixels of the status panel right of the grid.
const hudWidth = 320
