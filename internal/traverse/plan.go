package traverse

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/comat/internal/accum"
	"github.com/hupe1980/comat/internal/grid"
)

// DefaultCheckInterval is the number of cells walked between context checks.
const DefaultCheckInterval = 4096

// Label is the set of integer types a grid may hold.
type Label interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int | ~uint8 | ~uint16 | ~uint32
}

// Side is one grid taking part in a walk.
type Side[T Label] struct {
	Labels []T
	Mask   []uint8
	Shape  grid.Shape
}

// DropFunc is called for a pair rejected by the accumulator. center is only
// valid for the duration of the call. A non-nil error aborts the walk.
type DropFunc func(center []int, i, j int64) error

// Plan describes one offset walk of Center against Neighbor.
type Plan[T Label] struct {
	Center   Side[T]
	Neighbor Side[T]
	Offset   []int

	// Eligible, if set, lists the eligible centre positions; the walk then
	// visits only those instead of scanning Center.Mask.
	Eligible *roaring.Bitmap

	// NeighborBits, if set, replaces Neighbor.Mask for eligibility tests.
	NeighborBits *bitset.BitSet

	// CheckInterval is the number of centres between ctx checks.
	// Zero means DefaultCheckInterval.
	CheckInterval int

	OnDrop DropFunc
}

// Stats summarises what a walk did with the centres it saw.
type Stats struct {
	Eligible       uint64 // centres whose mask was eligible
	Outside        uint64 // neighbours outside the neighbour grid
	NeighborMasked uint64 // neighbours with an ineligible mask
	Dropped        uint64 // pairs with a label outside its level range
	Counted        uint64 // pairs added to the histogram
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Eligible += o.Eligible
	s.Outside += o.Outside
	s.NeighborMasked += o.NeighborMasked
	s.Dropped += o.Dropped
	s.Counted += o.Counted
}

// Run walks span of the centre grid and accumulates validated pairs into h.
// h must be shaped levels(centre)×levels(neighbour).
func (p *Plan[T]) Run(ctx context.Context, span Span, h *accum.Histogram) (Stats, error) {
	if span.Empty() {
		return Stats{}, nil
	}
	if p.Eligible != nil {
		return p.runSparse(ctx, span, h)
	}
	return p.runDense(ctx, span, h)
}

func (p *Plan[T]) runDense(ctx context.Context, span Span, h *accum.Histogram) (Stats, error) {
	var st Stats

	shape := p.Center.Shape
	mask := p.Center.Mask
	coords := shape.Unravel(span.Lo, nil)
	every := p.checkInterval()
	left := 0

	for idx := span.Lo; idx < span.Hi; idx++ {
		if left == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
			left = every
		}
		left--

		if mask[idx] == grid.Eligible {
			if err := p.visit(idx, coords, h, &st); err != nil {
				return st, err
			}
		}
		shape.Next(coords)
	}
	return st, nil
}

func (p *Plan[T]) runSparse(ctx context.Context, span Span, h *accum.Histogram) (Stats, error) {
	var st Stats

	shape := p.Center.Shape
	coords := make([]int, shape.Rank())
	every := p.checkInterval()
	left := 0

	it := p.Eligible.Iterator()
	it.AdvanceIfNeeded(uint32(span.Lo))
	for it.HasNext() {
		idx := int(it.Next())
		if idx >= span.Hi {
			break
		}
		if left == 0 {
			if err := ctx.Err(); err != nil {
				return st, err
			}
			left = every
		}
		left--

		coords = shape.Unravel(idx, coords)
		if err := p.visit(idx, coords, h, &st); err != nil {
			return st, err
		}
	}
	return st, nil
}

// visit handles one centre whose mask is already known to be eligible.
func (p *Plan[T]) visit(idx int, coords []int, h *accum.Histogram, st *Stats) error {
	st.Eligible++

	nidx, ok := p.Neighbor.Shape.Displace(coords, p.Offset)
	if !ok {
		st.Outside++
		return nil
	}
	if !p.neighborEligible(nidx) {
		st.NeighborMasked++
		return nil
	}

	i := int64(p.Center.Labels[idx])
	j := int64(p.Neighbor.Labels[nidx])
	if h.Add(i, j) {
		st.Counted++
		return nil
	}

	st.Dropped++
	if p.OnDrop != nil {
		return p.OnDrop(coords, i, j)
	}
	return nil
}

func (p *Plan[T]) neighborEligible(nidx int) bool {
	if p.NeighborBits != nil {
		return p.NeighborBits.Test(uint(nidx))
	}
	return p.Neighbor.Mask[nidx] == grid.Eligible
}

func (p *Plan[T]) checkInterval() int {
	if p.CheckInterval > 0 {
		return p.CheckInterval
	}
	return DefaultCheckInterval
}
