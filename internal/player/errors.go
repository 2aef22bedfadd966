package player

import "errors"

var (
	// ErrInvalidID indicates an id that is zero or already taken.
	ErrInvalidID = errors.New("player: invalid id")

	// ErrUnknownBuiltin indicates a built-in champion name that does not exist.
	ErrUnknownBuiltin = errors.New("player: unknown built-in champion")
)
