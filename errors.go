package comat

import (
	"errors"
	"fmt"

	"github.com/hupe1980/comat/internal/conv"
	"github.com/hupe1980/comat/internal/grid"
)

var (
	// ErrInvalidShape is returned for a non-positive extent, a rank mismatch
	// between primary and secondary grids, or a buffer whose length does not
	// match its declared shape.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrInvalidOffset is returned when an offset vector does not match the grid rank.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrInvalidLevels is returned when a level count is not positive.
	ErrInvalidLevels = errors.New("invalid levels")

	// ErrLabelOutOfRange is returned under OutOfRangeFail when a validated
	// pair carries a label outside its level range.
	ErrLabelOutOfRange = errors.New("label out of range")
)

// ExtentError reports a non-positive extent or an empty extent vector.
//
// It matches ErrInvalidShape via errors.Is. The original underlying error
// (if any) can be accessed via errors.Unwrap.
type ExtentError struct {
	Grid   string
	Axis   int
	Extent int
	cause  error
}

func (e *ExtentError) Error() string {
	if e.Axis < 0 {
		return fmt.Sprintf("invalid shape: %s grid has no axes", e.Grid)
	}
	return fmt.Sprintf("invalid shape: %s extent %d on axis %d", e.Grid, e.Extent, e.Axis)
}

func (e *ExtentError) Is(target error) bool { return target == ErrInvalidShape }

func (e *ExtentError) Unwrap() error { return e.cause }

// RankMismatchError indicates primary and secondary grids of different rank.
type RankMismatchError struct {
	Primary   int
	Secondary int
}

func (e *RankMismatchError) Error() string {
	return fmt.Sprintf("invalid shape: rank mismatch: primary %d, secondary %d", e.Primary, e.Secondary)
}

func (e *RankMismatchError) Is(target error) bool { return target == ErrInvalidShape }

// BufferSizeError indicates a labels, mask or output buffer whose length does
// not match its declared shape.
type BufferSizeError struct {
	Buffer   string
	Expected int
	Actual   int
	cause    error
}

func (e *BufferSizeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid shape: %s size: %v", e.Buffer, e.cause)
	}
	return fmt.Sprintf("invalid shape: %s length: expected %d, got %d", e.Buffer, e.Expected, e.Actual)
}

func (e *BufferSizeError) Is(target error) bool { return target == ErrInvalidShape }

func (e *BufferSizeError) Unwrap() error { return e.cause }

// OffsetError indicates an offset vector whose length differs from the grid rank.
// Index is the position of the offending vector in a multi-offset call, 0 otherwise.
type OffsetError struct {
	Index    int
	Expected int
	Actual   int
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("invalid offset %d: expected %d components, got %d", e.Index, e.Expected, e.Actual)
}

func (e *OffsetError) Is(target error) bool { return target == ErrInvalidOffset }

// LevelsError indicates a non-positive level count.
type LevelsError struct {
	Grid   string
	Levels int
}

func (e *LevelsError) Error() string {
	return fmt.Sprintf("invalid levels: %s grid declares %d", e.Grid, e.Levels)
}

func (e *LevelsError) Is(target error) bool { return target == ErrInvalidLevels }

// LabelRangeError reports the first out-of-range pair seen under OutOfRangeFail.
// Coord is the centre coordinate and Index its flat offset in the primary
// buffers; Center and Neighbor are the labels read.
type LabelRangeError struct {
	Coord    []int
	Index    int
	Center   int64
	Neighbor int64
	Levels1  int
	Levels2  int
}

func (e *LabelRangeError) Error() string {
	return fmt.Sprintf("label out of range at %v: pair (%d, %d) outside [0,%d)x[0,%d)",
		e.Coord, e.Center, e.Neighbor, e.Levels1, e.Levels2)
}

func (e *LabelRangeError) Is(target error) bool { return target == ErrLabelOutOfRange }

// translateShapeError maps grid construction errors to the public taxonomy.
func translateShapeError(which string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, grid.ErrEmptyShape) {
		return &ExtentError{Grid: which, Axis: -1, cause: err}
	}
	var ee *grid.ExtentError
	if errors.As(err, &ee) {
		return &ExtentError{Grid: which, Axis: ee.Axis, Extent: ee.Extent, cause: err}
	}
	var se *grid.SizeError
	if errors.As(err, &se) {
		return &BufferSizeError{Buffer: which + " grid", cause: err}
	}
	if errors.Is(err, conv.ErrOverflow) {
		return &BufferSizeError{Buffer: which + " grid", cause: err}
	}

	return err
}
