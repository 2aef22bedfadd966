package sim

import "errors"

var (
	// ErrCycleOutOfRange indicates a SetCycle target before the first cycle
	// of a fresh engine.
	ErrCycleOutOfRange = errors.New("sim: cycle out of range")

	// ErrInvalidOption indicates a non-positive rate or speed.
	ErrInvalidOption = errors.New("sim: invalid option")
)
