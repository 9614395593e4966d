package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Labels returns n labels drawn uniformly from [0, levels).
// Locks only once per call.
func (r *RNG) Labels(n, levels int) []int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(r.rand.Intn(levels))
	}
	return out
}

// Mask returns n mask values where each cell is 1 with probability density
// and 0 otherwise.
func (r *RNG) Mask(n int, density float64) []uint8 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]uint8, n)
	for i := range out {
		if r.rand.Float64() < density {
			out[i] = 1
		}
	}
	return out
}

// BlockLabels returns a piecewise-constant label grid: the grid is tiled by
// hypercubes of edge block and every tile gets one random label. This gives
// textures with strong short-range co-occurrence.
func (r *RNG) BlockLabels(shape []int, levels, block int) []int32 {
	size := 1
	for _, e := range shape {
		size *= e
	}

	tiles := make(map[int]int32)
	out := make([]int32, size)
	coords := make([]int, len(shape))

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range out {
		key := 0
		for axis, c := range coords {
			key = key*(shape[axis]/block+1) + c/block
		}
		l, ok := tiles[key]
		if !ok {
			l = int32(r.rand.Intn(levels))
			tiles[key] = l
		}
		out[i] = l
		advance(coords, shape)
	}
	return out
}

// Ones returns a mask of n eligible cells.
func Ones(n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

func advance(coords, shape []int) {
	for axis := len(shape) - 1; axis >= 0; axis-- {
		coords[axis]++
		if coords[axis] < shape[axis] {
			return
		}
		coords[axis] = 0
	}
}
