package planner

import "errors"

var (
	// ErrNoValues is returned when the value source yields no grid.
	ErrNoValues = errors.New("planner: no value grid")

	// ErrNoProvider is returned when the planner has no contour provider.
	ErrNoProvider = errors.New("planner: no contour provider")

	// ErrBadAmplitude is returned for NaN, infinite or out of range
	// amplitudes.
	ErrBadAmplitude = errors.New("planner: amplitude must be finite and at most 1e307 in magnitude")

	// ErrBadOptions is returned for out of range options.
	ErrBadOptions = errors.New("planner: invalid options")
)
