package grid

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/comat/internal/conv"
)

// Eligible is the value that marks a mask cell as participating.
const Eligible uint8 = 1

// Index builds a bitmap of every flat position whose mask value is Eligible.
// It fails when the mask is too large to be addressed with uint32 positions.
func Index(mask []uint8) (*roaring.Bitmap, error) {
	if len(mask) > 0 {
		if _, err := conv.IntToUint32(len(mask) - 1); err != nil {
			return nil, err
		}
	}

	rb := roaring.New()
	for i, m := range mask {
		if m == Eligible {
			rb.Add(uint32(i))
		}
	}
	rb.RunOptimize()
	return rb, nil
}

// Pack converts mask into a bitset with bit i set iff mask[i] is Eligible.
func Pack(mask []uint8) *bitset.BitSet {
	bs := bitset.New(uint(len(mask)))
	for i, m := range mask {
		if m == Eligible {
			bs.Set(uint(i))
		}
	}
	return bs
}

// Density returns the fraction of cells set in rb out of size.
func Density(rb *roaring.Bitmap, size int) float64 {
	if size <= 0 {
		return 0
	}
	return float64(rb.GetCardinality()) / float64(size)
}
