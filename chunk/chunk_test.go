package chunk

import (
	"errors"
	"strings"
	"testing"
)

func TestConstructionErrors(t *testing.T) {
	tooLong := strings.Repeat("ä", MaxBase/2+1)
	for _, tc := range []struct {
		name string
		in   string
		want error
	}{
		{"invalid", "ok\xff", ErrInvalidUTF8},
		{"truncated rune", "😀"[:3], ErrInvalidUTF8},
		{"too long", tooLong, ErrChunkTooLarge},
		{"fits", strings.Repeat("ä", MaxBase/2), nil},
	} {
		if _, err := New(tc.in); !errors.Is(err, tc.want) {
			t.Errorf("%s: New returned %v, want %v", tc.name, err, tc.want)
		}
		if _, err := NewBytes([]byte(tc.in)); !errors.Is(err, tc.want) {
			t.Errorf("%s: NewBytes returned %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestBitmapsMarkRunesAndNewlines(t *testing.T) {
	c := MustNew("a\n😀b")
	// runes start at bytes 0, 1, 2 and 6
	if c.Chars() != bit(0)|bit(1)|bit(2)|bit(6) {
		t.Fatalf("unexpected rune bitmap %b", c.Chars())
	}
	if c.Newlines() != bit(1) {
		t.Fatalf("unexpected newline bitmap %b", c.Newlines())
	}
	if c.IsEmpty() || !(Chunk{}).IsEmpty() {
		t.Fatalf("emptiness misreported")
	}
}

func TestChunkDoesNotAlias(t *testing.T) {
	src := []byte("ab😀\n")
	c, err := NewBytes(src)
	if err != nil {
		t.Fatal(err)
	}
	src[0] = 'X'
	c.Bytes()[1] = 'Y'
	if c.String() != "ab😀\n" {
		t.Fatalf("chunk aliases caller memory: %q", c.String())
	}
}

func TestByteAndCharCoordinates(t *testing.T) {
	c := MustNew("ab😀cd")
	offsets := []int{0, 1, 2, 6, 7, 8}
	for char, off := range offsets {
		if got := c.ByteOffset(char); got != off {
			t.Errorf("ByteOffset(%d) = %d, want %d", char, got, off)
		}
		if got := c.CharIndex(off); got != char {
			t.Errorf("CharIndex(%d) = %d, want %d", off, got, char)
		}
		if got := c.OffsetLenAt(char); got != off {
			t.Errorf("OffsetLenAt(%d) = %d, want %d", char, got, off)
		}
	}
	for i, r := range []rune("ab😀cd") {
		if c.At(i) != r {
			t.Errorf("At(%d) = %q, want %q", i, c.At(i), r)
		}
	}
	if c.OffsetLen() != 8 || c.Len() != 5 {
		t.Fatalf("expected 5 characters in 8 bytes, have %d in %d", c.Len(), c.OffsetLen())
	}
}

func TestSlicingRespectsRuneBoundaries(t *testing.T) {
	c := MustNew("ab😀cd")
	mid, err := c.Slice(2, 6)
	if err != nil || mid.String() != "😀" {
		t.Fatalf("slice [2,6) = %q (%v)", mid.String(), err)
	}
	if _, err := c.Slice(2, 5); !errors.Is(err, ErrNotCharBoundary) {
		t.Fatalf("slicing inside a rune must fail, got %v", err)
	}
	if _, err := c.Slice(4, 2); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("reversed slice must fail, got %v", err)
	}
	if _, _, err := c.SplitAt(9); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("split past the end must fail, got %v", err)
	}
}

func TestTruncateAppendRoundTrip(t *testing.T) {
	c := MustNew("x😀y\nzä")
	for at := 0; at <= c.Len(); at++ {
		head, tail := c.Truncate(at)
		if head.Len() != at || tail.Len() != c.Len()-at {
			t.Fatalf("truncate at %d gives %d + %d characters", at, head.Len(), tail.Len())
		}
		if !head.CanAppend(tail) {
			t.Fatalf("truncate at %d: halves refuse to re-join", at)
		}
		joined := head.Append(tail)
		if joined != c {
			t.Fatalf("truncate at %d: re-joined %q differs from %q", at, joined.String(), c.String())
		}
	}
}

func TestAppendStopsAtCapacity(t *testing.T) {
	half := MustNew(strings.Repeat("ab", MaxBase/4))
	full := half.Append(half)
	if full.ByteLen() != MaxBase || full.CanAppend(MustNew("c")) {
		t.Fatalf("full chunk still accepts text")
	}
	if !full.CanAppend(Chunk{}) {
		t.Fatalf("empty chunk must always fit")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected overflowing Append to panic")
		}
	}()
	full.Append(MustNew("c"))
}
