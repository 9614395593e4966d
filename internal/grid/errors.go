package grid

import (
	"errors"
	"fmt"
)

// ErrEmptyShape is returned for an extent vector of length zero.
var ErrEmptyShape = errors.New("grid: shape has no axes")

// ExtentError reports a non-positive extent.
type ExtentError struct {
	Axis   int
	Extent int
}

func (e *ExtentError) Error() string {
	return fmt.Sprintf("grid: extent %d on axis %d must be positive", e.Extent, e.Axis)
}

// SizeError reports an extent vector whose cell count overflows int.
type SizeError struct {
	Extents []int
	cause   error
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("grid: size of shape %v overflows: %v", e.Extents, e.cause)
}

func (e *SizeError) Unwrap() error { return e.cause }
