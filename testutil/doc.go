// Package testutil provides testing utilities for comat.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random label grids and masks, and a
// straightforward reference implementation used as ground truth.
//
// # Random Grids
//
//	rng := testutil.NewRNG(seed)
//	labels := rng.Labels(64*64, 8)     // uniform labels in [0, 8)
//	mask := rng.Mask(64*64, 0.75)      // ~75% of cells eligible
//	blocks := rng.BlockLabels([]int{64, 64}, 8, 4)
//
// # Ground Truth
//
//	want := testutil.Reference(labels, mask, shape, labels, mask, shape, offset, 8, 8)
package testutil
