package rle

import "fmt"

// Run is a span of ids which is either visible or deleted.
type Run struct {
	Start   int
	Length  int
	Deleted bool
}

// Len returns the number of ids covered, including deleted ones.
func (r Run) Len() int {
	return r.Length
}

// End returns the first id after the run.
func (r Run) End() int {
	return r.Start + r.Length
}

// Truncate splits the run at offset at.
func (r Run) Truncate(at int) (Run, Run) {
	return Run{r.Start, at, r.Deleted}, Run{r.Start + at, r.Length - at, r.Deleted}
}

// CanAppend reports whether next continues r with the same state.
func (r Run) CanAppend(next Run) bool {
	return r.End() == next.Start && r.Deleted == next.Deleted
}

// Append returns the concatenation of r and a continuing run.
func (r Run) Append(next Run) Run {
	return Run{r.Start, r.Length + next.Length, r.Deleted}
}

// ContentLen returns the number of visible ids.
func (r Run) ContentLen() int {
	if r.Deleted {
		return 0
	}
	return r.Length
}

// ContentLenAt returns the number of visible ids in [0,offset).
func (r Run) ContentLenAt(offset int) int {
	if r.Deleted {
		return 0
	}
	return offset
}

// At returns the id at offset.
func (r Run) At(offset int) int {
	return r.Start + offset
}

// Range returns the ids covered as a Range.
func (r Run) Range() Range {
	return Range{r.Start, r.End()}
}

// Delete marks the run deleted. It is meant to be used as a mutation
// function for a tree cursor and reports whether the run was visible before.
func (r *Run) Delete() bool {
	was := !r.Deleted
	r.Deleted = true
	return was
}

func (r Run) String() string {
	if r.Deleted {
		return fmt.Sprintf("~[%d,%d)", r.Start, r.End())
	}
	return fmt.Sprintf("[%d,%d)", r.Start, r.End())
}
