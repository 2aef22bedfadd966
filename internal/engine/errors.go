package engine

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrMemoryLayout indicates memory offsets that fall outside the linear
	// buffer or are not aligned for their word size.
	ErrMemoryLayout = errors.New("engine: invalid memory layout")

	// ErrTooManyPlayers indicates a builder received more champions than the
	// arena can host.
	ErrTooManyPlayers = errors.New("engine: too many players")

	// ErrInvalidChampion indicates a champion image that cannot be loaded.
	ErrInvalidChampion = errors.New("engine: invalid champion image")
)

// Region locates a compile error in the champion source. Rows and columns
// are zero based; ToCol is exclusive.
type Region struct {
	FromRow int `json:"from_row"`
	FromCol int `json:"from_col"`
	ToRow   int `json:"to_row"`
	ToCol   int `json:"to_col"`
}

// CompileError is returned by a Compiler when the source cannot be turned
// into a champion.
type CompileError struct {
	Reason string
	Region *Region
	Err    error
}

func (e *CompileError) Error() string {
	if e.Region != nil {
		return fmt.Sprintf("%d:%d: %s", e.Region.FromRow+1, e.Region.FromCol+1, e.Reason)
	}
	return e.Reason
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
