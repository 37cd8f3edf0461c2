package grid

import "errors"

var (
	// ErrBadShape is returned when a grid dimension is not positive or the
	// backing slice does not match rows*cols.
	ErrBadShape = errors.New("grid: invalid shape")

	// ErrShapeMismatch is returned when two grids combined elementwise do not
	// share the same shape.
	ErrShapeMismatch = errors.New("grid: shape mismatch")

	// ErrBadBounds is returned when sampling bounds are empty or not finite.
	ErrBadBounds = errors.New("grid: invalid bounds")
)
