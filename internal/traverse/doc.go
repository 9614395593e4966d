// Package traverse implements the mask-gated co-occurrence walk.
//
// A Plan pairs a centre grid with a neighbour grid (the same grid for self
// co-occurrence) and a fixed offset. Run walks a contiguous span of the centre
// grid's flat index space in lexicographic order and, for each centre:
//
//  1. skips it unless the centre mask is eligible,
//  2. displaces its coordinate by the offset and skips it if the result
//     leaves the neighbour grid,
//  3. skips it unless the neighbour mask is eligible,
//  4. hands the (centre label, neighbour label) pair to the accumulator, which
//     drops pairs outside the declared level ranges.
//
// The same procedure serves every rank; nothing is specialised per dimension.
// Spans produced by Split can be walked concurrently into private histograms
// and merged afterwards.
package traverse
