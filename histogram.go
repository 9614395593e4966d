package comat

import (
	"fmt"

	"github.com/hupe1980/comat/internal/conv"
)

// Histogram owns a zeroed levels1×levels2 count buffer suitable as the out
// argument of the Compute functions.
type Histogram struct {
	Levels1 int
	Levels2 int
	Counts  []uint64
}

// NewHistogram allocates a zeroed histogram.
func NewHistogram(levels1, levels2 int) (*Histogram, error) {
	if levels1 <= 0 {
		return nil, &LevelsError{Grid: "primary", Levels: levels1}
	}
	if levels2 <= 0 {
		return nil, &LevelsError{Grid: "secondary", Levels: levels2}
	}
	n, err := conv.MulInt(levels1, levels2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShape, err)
	}
	return &Histogram{
		Levels1: levels1,
		Levels2: levels2,
		Counts:  make([]uint64, n),
	}, nil
}

// At returns the number of times label j was observed at the offset from label i.
func (h *Histogram) At(i, j int) uint64 {
	return h.Counts[i*h.Levels2+j]
}

// Row returns the counts for centre label i. The slice aliases Counts.
func (h *Histogram) Row(i int) []uint64 {
	return h.Counts[i*h.Levels2 : (i+1)*h.Levels2]
}

// Total returns the sum of all counts.
func (h *Histogram) Total() uint64 {
	var n uint64
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// Reset zeroes every count.
func (h *Histogram) Reset() {
	clear(h.Counts)
}
