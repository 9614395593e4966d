package testutil

// Reference computes a co-occurrence histogram by visiting every coordinate
// with nested recursion and explicit per-axis index arithmetic. It shares no
// code with the production traversal and serves as ground truth in tests.
//
// The result is levels1*levels2 counts indexed [i*levels2+j].
func Reference(labels1 []int32, mask1 []uint8, shape1 []int,
	labels2 []int32, mask2 []uint8, shape2 []int,
	offset []int, levels1, levels2 int,
) []uint64 {
	out := make([]uint64, levels1*levels2)
	coords := make([]int, len(shape1))

	flat := func(c, shape []int) int {
		idx := 0
		for axis := range shape {
			idx = idx*shape[axis] + c[axis]
		}
		return idx
	}

	var walk func(axis int)
	walk = func(axis int) {
		if axis < len(shape1) {
			for c := 0; c < shape1[axis]; c++ {
				coords[axis] = c
				walk(axis + 1)
			}
			return
		}

		center := flat(coords, shape1)
		if mask1[center] != 1 {
			return
		}
		neighbor := make([]int, len(coords))
		for a := range coords {
			neighbor[a] = coords[a] + offset[a]
			if neighbor[a] < 0 || neighbor[a] >= shape2[a] {
				return
			}
		}
		n := flat(neighbor, shape2)
		if mask2[n] != 1 {
			return
		}
		i, j := int(labels1[center]), int(labels2[n])
		if i < 0 || i >= levels1 || j < 0 || j >= levels2 {
			return
		}
		out[i*levels2+j]++
	}
	walk(0)
	return out
}
