package comat

import (
	"fmt"
	"math"
)

// OffsetFromAngles converts a distance and direction into an integer offset,
// rounding each component half up.
//
// With one angle theta the result is the 2-D offset
// (cos(theta)*distance, sin(theta)*distance). With two angles, theta is
// measured from the last axis and phi within the plane of the first two,
// giving the 3-D offset
// (sin(theta)cos(phi)*distance, sin(theta)sin(phi)*distance, cos(theta)*distance).
// Angles are in radians.
func OffsetFromAngles(distance float64, angles ...float64) ([]int, error) {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance < 0 {
		return nil, fmt.Errorf("%w: distance %v", ErrInvalidOffset, distance)
	}
	for _, a := range angles {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return nil, fmt.Errorf("%w: angle %v", ErrInvalidOffset, a)
		}
	}

	switch len(angles) {
	case 1:
		theta := angles[0]
		return []int{
			roundHalfUp(math.Cos(theta) * distance),
			roundHalfUp(math.Sin(theta) * distance),
		}, nil
	case 2:
		theta, phi := angles[0], angles[1]
		return []int{
			roundHalfUp(math.Sin(theta) * math.Cos(phi) * distance),
			roundHalfUp(math.Sin(theta) * math.Sin(phi) * distance),
			roundHalfUp(math.Cos(theta) * distance),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d angles, want 1 (2-D) or 2 (3-D)", ErrInvalidOffset, len(angles))
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
