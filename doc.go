// Package comat computes spatial co-occurrence histograms (generalized
// gray-level co-occurrence matrices) over integer label grids of any rank.
//
// For every cell of a primary grid whose mask is 1, the cell displaced by a
// fixed offset is looked up; if it lies inside the (secondary) grid and its
// mask is 1 too, the count at (centre label, neighbour label) is incremented.
// Labels outside [0, Levels) never contribute.
//
// # Quick Start
//
//	g := comat.Grid[int32]{
//	    Labels: []int32{0, 1, 2, 1, 2, 0, 2, 0, 1},
//	    Mask:   []uint8{1, 1, 1, 1, 1, 1, 1, 1, 1},
//	    Shape:  []int{3, 3},
//	    Levels: 3,
//	}
//	h, _ := comat.NewHistogram(3, 3)
//	err := comat.Compute(ctx, g, []int{0, 1}, h.Counts)
//	// h.At(0, 1) == 2, h.At(1, 2) == 2, h.At(2, 0) == 2
//
// # Two Grids
//
// ComputePair sources the neighbour from a second grid with its own mask,
// shape and level count, e.g. the same region at a later timepoint:
//
//	err := comat.ComputePair(ctx, before, after, []int{0, 0}, out)
//
// The grids must share their rank; their extents may differ. Neighbours are
// always bounds-checked and masked against the secondary grid.
//
// # Accumulation
//
// The output buffer belongs to the caller, who allocates and zeroes it. The
// Compute functions only add to it, so histograms over several offsets or grid
// pairs can be summed by repeated calls, or in one call with ComputeMulti and
// ComputePairMulti. A call that fails leaves the buffer untouched.
//
// # Parallelism
//
// WithWorkers splits the traversal into contiguous spans of the flat index
// space. Each worker fills a private histogram; the results are summed into
// the output after every worker has finished. Grids and masks are only read,
// so concurrent calls may share them freely.
//
// # Out-of-range labels
//
// By default a pair whose label falls outside its level range is dropped
// silently. WithOutOfRangePolicy selects a rate-limited warning or a hard
// failure instead; every dropped pair is counted in Stats either way.
package comat
