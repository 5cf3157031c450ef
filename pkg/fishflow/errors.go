package fishflow

import "errors"

var (
	// ErrInvalidConfiguration is returned when a run can't be set up: a bad
	// grid, window or scale, a crop smaller than the grid, or an unknown
	// alignment strategy.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch is returned by Step when a frame doesn't have
	// the same extent as the background.
	ErrDimensionMismatch = errors.New("dimension mismatch")
)
