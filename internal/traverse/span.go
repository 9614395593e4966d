package traverse

// Span is a half-open range [Lo, Hi) of flat centre indexes.
type Span struct {
	Lo, Hi int
}

// Empty reports whether the span holds no cells.
func (s Span) Empty() bool { return s.Hi <= s.Lo }

// Split partitions [0, size) into at most parts contiguous spans whose lengths
// differ by at most one. Concatenated in order they cover the range exactly once.
func Split(size, parts int) []Span {
	if size <= 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > size {
		parts = size
	}

	spans := make([]Span, parts)
	base, rem := size/parts, size%parts
	lo := 0
	for k := range spans {
		n := base
		if k < rem {
			n++
		}
		spans[k] = Span{Lo: lo, Hi: lo + n}
		lo += n
	}
	return spans
}
