package accum

import "sync"

// MaxPooledCells bounds the size of histograms kept in the pool.
// Larger scratch tables are dropped on Put and left to the GC.
const MaxPooledCells = 1 << 20

var histogramPool = sync.Pool{
	New: func() any {
		return New(0, 0)
	},
}

// Get retrieves a zeroed rows×cols scratch histogram from the pool.
func Get(rows, cols int) *Histogram {
	h := histogramPool.Get().(*Histogram)
	h.reshape(rows, cols)
	return h
}

// Put returns h to the pool for reuse.
func Put(h *Histogram) {
	if h == nil || cap(h.counts) > MaxPooledCells {
		return
	}
	histogramPool.Put(h)
}

// Bytes returns the scratch memory a rows×cols histogram occupies.
func Bytes(rows, cols int) int64 {
	return int64(rows) * int64(cols) * 8
}
