package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow is returned when a checked operation does not fit in its result type.
var ErrOverflow = errors.New("integer overflow")

// IntToUint32 converts int to uint32 safely.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uint32 (negative)", ErrOverflow, v)
	}
	// On 64-bit systems, int can exceed uint32 max; on 32-bit, this is always false
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uint32 (too large)", ErrOverflow, v)
	}
	return uint32(v), nil
}

// MulInt returns a*b for non-negative operands, or ErrOverflow if the
// product exceeds math.MaxInt.
func MulInt(a, b int) (int, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: negative operand %d*%d", ErrOverflow, a, b)
	}
	if a != 0 && b > math.MaxInt/a {
		return 0, fmt.Errorf("%w: %d*%d exceeds max int", ErrOverflow, a, b)
	}
	return a * b, nil
}

// Product multiplies all values with MulInt. The product of no values is 1.
func Product(values []int) (int, error) {
	p := 1
	for _, v := range values {
		var err error
		if p, err = MulInt(p, v); err != nil {
			return 0, err
		}
	}
	return p, nil
}
