// Package accum provides the bounded co-occurrence accumulator and a pool of
// scratch histograms used for partition-then-merge accumulation.
package accum

// Histogram is a rows×cols count table stored row-major.
type Histogram struct {
	rows   int
	cols   int
	counts []uint64
}

// New allocates a zeroed rows×cols histogram.
func New(rows, cols int) *Histogram {
	return &Histogram{
		rows:   rows,
		cols:   cols,
		counts: make([]uint64, rows*cols),
	}
}

// Add increments cell (i, j). Pairs outside [0,rows)×[0,cols) are rejected
// and Add returns false without touching the table.
func (h *Histogram) Add(i, j int64) bool {
	if i < 0 || i >= int64(h.rows) || j < 0 || j >= int64(h.cols) {
		return false
	}
	h.counts[int(i)*h.cols+int(j)]++
	return true
}

// MergeInto adds every cell of h to dst element-wise. dst must have
// rows*cols elements.
func (h *Histogram) MergeInto(dst []uint64) {
	dst = dst[:len(h.counts)]
	for k, c := range h.counts {
		dst[k] += c
	}
}

// Reset zeroes the table, keeping its shape.
func (h *Histogram) Reset() {
	clear(h.counts)
}

// reshape resizes h to rows×cols, reusing the buffer when it is large enough.
func (h *Histogram) reshape(rows, cols int) {
	n := rows * cols
	if cap(h.counts) < n {
		h.counts = make([]uint64, n)
	} else {
		h.counts = h.counts[:n]
		h.Reset()
	}
	h.rows, h.cols = rows, cols
}
