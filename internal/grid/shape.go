package grid

import (
	"fmt"
	"slices"

	"github.com/hupe1980/comat/internal/conv"
)

// Shape is an immutable extent vector with its row-major strides.
type Shape struct {
	extents []int
	strides []int
	size    int
}

// New validates extents and derives strides. The extents slice is copied.
func New(extents []int) (Shape, error) {
	if len(extents) == 0 {
		return Shape{}, ErrEmptyShape
	}
	for axis, e := range extents {
		if e <= 0 {
			return Shape{}, &ExtentError{Axis: axis, Extent: e}
		}
	}

	size, err := conv.Product(extents)
	if err != nil {
		return Shape{}, &SizeError{Extents: slices.Clone(extents), cause: err}
	}

	s := Shape{
		extents: slices.Clone(extents),
		strides: make([]int, len(extents)),
		size:    size,
	}
	stride := 1
	for axis := len(extents) - 1; axis >= 0; axis-- {
		s.strides[axis] = stride
		stride *= extents[axis]
	}
	return s, nil
}

// Rank returns the number of axes.
func (s Shape) Rank() int { return len(s.extents) }

// Size returns the number of cells.
func (s Shape) Size() int { return s.size }

// Extents returns a copy of the extent vector.
func (s Shape) Extents() []int { return slices.Clone(s.extents) }

func (s Shape) String() string { return fmt.Sprintf("%v", s.extents) }

// Index returns the flat offset of coords. coords must be in bounds.
func (s Shape) Index(coords []int) int {
	idx := 0
	for axis, c := range coords {
		idx += c * s.strides[axis]
	}
	return idx
}

// Unravel writes the coordinates of flat index idx into dst and returns it.
// dst is grown if it is shorter than the rank.
func (s Shape) Unravel(idx int, dst []int) []int {
	if cap(dst) < len(s.extents) {
		dst = make([]int, len(s.extents))
	}
	dst = dst[:len(s.extents)]
	for axis := len(s.extents) - 1; axis >= 0; axis-- {
		e := s.extents[axis]
		dst[axis] = idx % e
		idx /= e
	}
	return dst
}

// Next advances coords to the following cell in lexicographic order.
// It returns false once coords wraps past the last cell.
func (s Shape) Next(coords []int) bool {
	for axis := len(s.extents) - 1; axis >= 0; axis-- {
		coords[axis]++
		if coords[axis] < s.extents[axis] {
			return true
		}
		coords[axis] = 0
	}
	return false
}

// Displace resolves the flat index of coords+offset in s. ok is false when the
// displaced coordinate falls outside s on any axis.
func (s Shape) Displace(coords, offset []int) (idx int, ok bool) {
	for axis, c := range coords {
		n := c + offset[axis]
		if n < 0 || n >= s.extents[axis] {
			return 0, false
		}
		idx += n * s.strides[axis]
	}
	return idx, true
}
