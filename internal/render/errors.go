package render

import "errors"

// ErrGeometry indicates a geometry whose grid does not cover the memory
// exactly once.
var ErrGeometry = errors.New("render: invalid geometry")
