// Package grid maps N-dimensional coordinates to flat row-major offsets.
//
// A Shape owns an extent vector and the strides derived from it once, so the
// traversal never recomputes multiplicative index expressions per rank. The
// last axis varies fastest.
//
// Masks are plain []uint8 buffers where 1 marks an eligible cell. For sparse
// traversal they can be packed into a roaring bitmap of eligible positions
// (iterated in ascending, i.e. lexicographic, order) or a dense bitset used for
// O(1) eligibility tests.
package grid
