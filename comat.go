package comat

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/comat/internal/accum"
	"github.com/hupe1980/comat/internal/conv"
	"github.com/hupe1980/comat/internal/grid"
	"github.com/hupe1980/comat/internal/traverse"
)

// Label is the set of integer types a label grid may hold.
type Label = traverse.Label

// Grid is a caller-owned label buffer with its mask, shape and level count.
// Both buffers are flat and row-major (last axis fastest) and are only read.
type Grid[T Label] struct {
	// Labels holds one label per cell; len(Labels) == product(Shape).
	Labels []T
	// Mask marks cells with 1 as eligible; any other value excludes the cell.
	Mask []uint8
	// Shape is the extent vector, one positive extent per axis.
	Shape []int
	// Levels bounds valid labels to [0, Levels).
	Levels int
}

// Stats summarises one computation.
type Stats struct {
	Eligible       uint64 // centres whose primary mask was eligible, summed over offsets
	Outside        uint64 // neighbours outside the secondary grid
	NeighborMasked uint64 // neighbours with an ineligible secondary mask
	Dropped        uint64 // pairs with a label outside its level range
	Counted        uint64 // increments applied to the histogram
}

// Compute accumulates the self co-occurrence histogram of g at offset into
// out, which must hold g.Levels*g.Levels counts indexed out[i*g.Levels+j].
//
// out is only added to, never cleared, so repeated calls accumulate. It is
// left untouched if the call fails.
func Compute[T Label](ctx context.Context, g Grid[T], offset []int, out []uint64, opts ...Option) error {
	return run(ctx, g, g, true, [][]int{offset}, out, opts)
}

// ComputePair accumulates the co-occurrence histogram of primary labels
// against secondary labels displaced by offset. Neighbours are bounds-checked
// and masked against the secondary grid. out must hold
// primary.Levels*secondary.Levels counts indexed out[i*secondary.Levels+j].
func ComputePair[T Label](ctx context.Context, primary, secondary Grid[T], offset []int, out []uint64, opts ...Option) error {
	return run(ctx, primary, secondary, false, [][]int{offset}, out, opts)
}

// ComputeMulti sums the self co-occurrence histograms of g over every offset.
// All offsets are validated before any cell is visited.
func ComputeMulti[T Label](ctx context.Context, g Grid[T], offsets [][]int, out []uint64, opts ...Option) error {
	return run(ctx, g, g, true, offsets, out, opts)
}

// ComputePairMulti sums the two-grid co-occurrence histograms over every offset.
func ComputePairMulti[T Label](ctx context.Context, primary, secondary Grid[T], offsets [][]int, out []uint64, opts ...Option) error {
	return run(ctx, primary, secondary, false, offsets, out, opts)
}

func run[T Label](ctx context.Context, primary, secondary Grid[T], self bool, offsets [][]int, out []uint64, opts []Option) (err error) {
	o := buildOptions(opts)
	logger := o.logger

	var stats Stats
	start := time.Now()
	defer func() {
		d := time.Since(start)
		o.metricsCollector.RecordCompute(stats, d, err)
		logger.LogCompute(ctx, len(offsets), stats, d, err)
	}()

	j, err := newJob(primary, secondary, self, offsets, out)
	if err != nil {
		return err
	}
	logger = logger.WithShape(j.center.Shape.Extents()).WithLevels(j.levels1, j.levels2)

	if err = o.controller.Fits(accum.Bytes(j.levels1, j.levels2)); err != nil {
		return err
	}

	stats, err = j.execute(ctx, o, logger)
	return err
}

// job is a validated computation.
type job[T Label] struct {
	center   traverse.Side[T]
	neighbor traverse.Side[T]
	levels1  int
	levels2  int
	offsets  [][]int
	out      []uint64
}

func newJob[T Label](primary, secondary Grid[T], self bool, offsets [][]int, out []uint64) (*job[T], error) {
	if primary.Levels <= 0 {
		return nil, &LevelsError{Grid: "primary", Levels: primary.Levels}
	}
	if !self && secondary.Levels <= 0 {
		return nil, &LevelsError{Grid: "secondary", Levels: secondary.Levels}
	}

	center, err := newSide("primary", primary)
	if err != nil {
		return nil, err
	}
	neighbor := center
	if !self {
		if neighbor, err = newSide("secondary", secondary); err != nil {
			return nil, err
		}
		if center.Shape.Rank() != neighbor.Shape.Rank() {
			return nil, &RankMismatchError{Primary: center.Shape.Rank(), Secondary: neighbor.Shape.Rank()}
		}
	}

	if len(offsets) == 0 {
		return nil, fmt.Errorf("%w: no offsets", ErrInvalidOffset)
	}
	rank := center.Shape.Rank()
	cloned := make([][]int, len(offsets))
	for k, off := range offsets {
		if len(off) != rank {
			return nil, &OffsetError{Index: k, Expected: rank, Actual: len(off)}
		}
		cloned[k] = slices.Clone(off)
	}

	levels2 := secondary.Levels
	if self {
		levels2 = primary.Levels
	}
	cells, err := conv.MulInt(primary.Levels, levels2)
	if err != nil {
		return nil, &BufferSizeError{Buffer: "output", cause: err}
	}
	if len(out) != cells {
		return nil, &BufferSizeError{Buffer: "output", Expected: cells, Actual: len(out)}
	}

	return &job[T]{
		center:   center,
		neighbor: neighbor,
		levels1:  primary.Levels,
		levels2:  levels2,
		offsets:  cloned,
		out:      out,
	}, nil
}

func newSide[T Label](which string, g Grid[T]) (traverse.Side[T], error) {
	shape, err := grid.New(g.Shape)
	if err != nil {
		return traverse.Side[T]{}, translateShapeError(which, err)
	}
	if len(g.Labels) != shape.Size() {
		return traverse.Side[T]{}, &BufferSizeError{Buffer: which + " labels", Expected: shape.Size(), Actual: len(g.Labels)}
	}
	if len(g.Mask) != shape.Size() {
		return traverse.Side[T]{}, &BufferSizeError{Buffer: which + " mask", Expected: shape.Size(), Actual: len(g.Mask)}
	}
	return traverse.Side[T]{Labels: g.Labels, Mask: g.Mask, Shape: shape}, nil
}

// execute walks every offset over the centre grid. Each worker owns one span
// of the flat index space and a pooled scratch histogram; scratch tables are
// merged into out only after all workers succeeded.
func (j *job[T]) execute(ctx context.Context, o options, logger *Logger) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	plan := traverse.Plan[T]{
		Center:        j.center,
		Neighbor:      j.neighbor,
		CheckInterval: o.checkInterval,
		OnDrop:        j.dropFunc(ctx, o.outOfRange, logger),
	}
	if o.sparseDensity > 0 {
		j.index(&plan, o.sparseDensity, logger)
	}

	spans := traverse.Split(j.center.Shape.Size(), o.workers)
	scratch := make([]*accum.Histogram, len(spans))
	perWorker := make([]traverse.Stats, len(spans))
	defer func() {
		for _, h := range scratch {
			accum.Put(h)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for w, span := range spans {
		w, span := w, span
		g.Go(func() error {
			release, err := o.controller.Reserve(gctx, accum.Bytes(j.levels1, j.levels2))
			if err != nil {
				return err
			}
			defer release()

			h := accum.Get(j.levels1, j.levels2)
			scratch[w] = h
			for _, off := range j.offsets {
				p := plan
				p.Offset = off
				st, err := p.Run(gctx, span, h)
				perWorker[w].Add(st)
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	err := g.Wait()

	var total traverse.Stats
	for _, st := range perWorker {
		total.Add(st)
	}
	if err != nil {
		return Stats(total), err
	}

	for _, h := range scratch {
		h.MergeInto(j.out)
	}
	return Stats(total), nil
}

// index switches plan to the bitmap-driven walk when the primary mask is
// sparse enough.
func (j *job[T]) index(plan *traverse.Plan[T], maxDensity float64, logger *Logger) {
	rb, err := grid.Index(j.center.Mask)
	if err != nil {
		logger.Debug("sparse mask index unavailable", "error", err)
		return
	}
	density := grid.Density(rb, j.center.Shape.Size())
	if density > maxDensity {
		return
	}
	logger.Debug("using sparse traversal",
		"density", density,
		"eligible", rb.GetCardinality(),
		"neighbor_shape", j.neighbor.Shape.String(),
	)
	plan.Eligible = rb
	plan.NeighborBits = grid.Pack(j.neighbor.Mask)
}

func (j *job[T]) dropFunc(ctx context.Context, policy OutOfRangePolicy, logger *Logger) traverse.DropFunc {
	switch policy {
	case OutOfRangeWarn:
		sometimes := &rate.Sometimes{First: 10, Interval: time.Second}
		return func(coord []int, i, n int64) error {
			sometimes.Do(func() {
				logger.LogDroppedLabel(ctx, coord, i, n)
			})
			return nil
		}
	case OutOfRangeFail:
		return func(coord []int, i, n int64) error {
			return &LabelRangeError{
				Coord:    slices.Clone(coord),
				Index:    j.center.Shape.Index(coord),
				Center:   i,
				Neighbor: n,
				Levels1:  j.levels1,
				Levels2:  j.levels2,
			}
		}
	default:
		return nil
	}
}
