package rle

import (
	"fmt"
	"math"

	"github.com/Leeeon233/egwalker-paper/varint"
)

// AppendRuns appends the encoding of runs to dst.
func AppendRuns(dst []byte, runs []Run) []byte {
	dst = varint.AppendUint(dst, uint(len(runs)))
	prev := 0
	for _, r := range runs {
		dst = varint.AppendI64(dst, int64(r.Start-prev))
		dst = varint.AppendU64(dst, varint.MixBit64(uint64(r.Length), r.Deleted))
		prev = r.End()
	}
	return dst
}

// DecodeRuns decodes a run list written by AppendRuns and returns the number
// of bytes consumed. Corrupt input yields an error wrapping ErrCorrupt and the
// underlying varint error, if any.
func DecodeRuns(buf []byte) ([]Run, int, error) {
	r := varint.NewReader(buf)
	n, err := r.Uint()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: run count: %w", ErrCorrupt, err)
	}
	// Every run takes at least two bytes.
	if n > uint(r.Remaining()/2) {
		return nil, 0, fmt.Errorf("%w: %d runs announced in %d bytes", ErrCorrupt, n, r.Remaining())
	}
	runs := make([]Run, 0, n)
	prev := 0
	for i := range int(n) {
		delta, err := r.I64()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: run %d start: %w", ErrCorrupt, i, err)
		}
		length, deleted, err := r.Flagged()
		if err != nil {
			return nil, 0, fmt.Errorf("%w: run %d length: %w", ErrCorrupt, i, err)
		}
		if length == 0 {
			return nil, 0, fmt.Errorf("%w: run %d is empty", ErrCorrupt, i)
		}
		start, ok := addInt(prev, delta)
		if !ok || length > math.MaxInt64 {
			return nil, 0, fmt.Errorf("%w: run %d out of integer range", ErrCorrupt, i)
		}
		end, ok := addInt(start, int64(length))
		if !ok {
			return nil, 0, fmt.Errorf("%w: run %d out of integer range", ErrCorrupt, i)
		}
		runs = append(runs, Run{Start: start, Length: int(length), Deleted: deleted})
		prev = end
	}
	return runs, r.Offset(), nil
}

// addInt returns a+b if the sum is representable as an int.
func addInt(a int, b int64) (int, bool) {
	s := int64(a) + b
	if (b > 0 && s < int64(a)) || (b < 0 && s > int64(a)) || s != int64(int(s)) {
		return 0, false
	}
	return int(s), true
}

// AppendRanges appends the encoding of ranges to dst, using the run
// encoding with the deleted flag cleared.
func AppendRanges(dst []byte, ranges []Range) []byte {
	runs := make([]Run, len(ranges))
	for i, rg := range ranges {
		runs[i] = Run{Start: rg.Start, Length: rg.Len()}
	}
	return AppendRuns(dst, runs)
}

// DecodeRanges decodes a range list written by AppendRanges.
func DecodeRanges(buf []byte) ([]Range, int, error) {
	runs, n, err := DecodeRuns(buf)
	if err != nil {
		return nil, 0, err
	}
	ranges := make([]Range, len(runs))
	for i, r := range runs {
		if r.Deleted {
			return nil, 0, fmt.Errorf("%w: range %d carries a deleted flag", ErrCorrupt, i)
		}
		ranges[i] = r.Range()
	}
	return ranges, n, nil
}
