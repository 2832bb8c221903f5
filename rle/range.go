package rle

import "fmt"

// Range is the span of ids [Start,End).
type Range struct {
	Start int
	End   int
}

// R is shorthand for Range{start, end}.
func R(start, end int) Range {
	return Range{Start: start, End: end}
}

// Len returns the number of ids covered.
func (r Range) Len() int {
	return r.End - r.Start
}

// Truncate splits the range into [Start,Start+at) and [Start+at,End).
func (r Range) Truncate(at int) (Range, Range) {
	mid := r.Start + at
	return Range{r.Start, mid}, Range{mid, r.End}
}

// CanAppend reports whether next continues r without a gap.
func (r Range) CanAppend(next Range) bool {
	return r.End == next.Start
}

// Append returns the union of r and a continuing range.
func (r Range) Append(next Range) Range {
	return Range{r.Start, next.End}
}

// At returns the id at offset.
func (r Range) At(offset int) int {
	return r.Start + offset
}

// Contains reports whether id lies in r.
func (r Range) Contains(id int) bool {
	return id >= r.Start && id < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
