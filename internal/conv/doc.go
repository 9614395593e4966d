// Package conv provides checked integer arithmetic and conversions.
//
// Grid sizes are products of caller-supplied extents and histogram sizes are
// products of level counts; both are computed here so that an overflowing
// shape is reported instead of wrapping into a small, valid-looking length.
//
// Sparse mask indexes address cells with uint32 positions, so flat indexes are
// narrowed through IntToUint32 before they reach a bitmap.
package conv
