// Package interval models a contiguous run of bit positions: either a
// demand (the caller wants Length contiguous bits somewhere within
// [Begin, End]) or a concrete placement (a block that already sits at
// an exact [Begin, End] of size Length).
package interval

// Interval is a demand or a placement, depending on context: a demand
// has Length <= End-Begin+1 and a wider search window; a placement has
// Length == End-Begin+1 exactly.
type Interval struct {
	Begin, End int
	Length     int
}

// New builds a demand interval: Length contiguous bits must be found
// somewhere within [begin, end].
func New(begin, end, length int) Interval {
	return Interval{Begin: begin, End: end, Length: length}
}

// FromFixedRange builds a placement spanning exactly [begin, end].
func FromFixedRange(begin, end int) Interval {
	return Interval{Begin: begin, End: end, Length: end - begin + 1}
}

// FixedLengthAtStart builds a placement of the given length starting
// at begin.
func FixedLengthAtStart(begin, length int) Interval {
	return Interval{Begin: begin, End: begin + length - 1, Length: length}
}

// FixedLengthFromEnd builds a placement of the given length ending at
// end.
func FixedLengthFromEnd(end, length int) Interval {
	return Interval{Begin: end - length + 1, End: end, Length: length}
}
