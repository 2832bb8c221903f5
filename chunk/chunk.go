package chunk

import (
	"math/bits"
	"unicode/utf8"
)

// Bitmap indexes byte-local properties inside a chunk.
//
// Bit i corresponds to byte offset i in chunk-local coordinates.
type Bitmap = uint64

const (
	// MaxBase is the maximum chunk payload length in bytes.
	MaxBase = 64
	// MinBase is the fill target for chunks cut from larger texts.
	MinBase = MaxBase / 2
)

// Chunk stores text and bitmap indexes for fast local coordinate math.
//
// The chunk is immutable by convention: editing operations return a new Chunk.
// The zero value is the empty chunk.
type Chunk struct {
	chars    Bitmap
	newlines Bitmap
	text     [MaxBase]byte
	n        uint8
}

// New creates a chunk from UTF-8 text.
//
// Returns an error if the text is not valid UTF-8 or exceeds MaxBase bytes.
func New(text string) (Chunk, error) {
	if !utf8.ValidString(text) {
		return Chunk{}, ErrInvalidUTF8
	}
	if len(text) > MaxBase {
		return Chunk{}, ErrChunkTooLarge
	}
	var c Chunk
	copy(c.text[:], text)
	c.n = uint8(len(text))
	c.index()
	return c, nil
}

// NewBytes creates a chunk from UTF-8 bytes.
//
// Returns an error if the bytes are not valid UTF-8 or exceed MaxBase bytes.
// Callers splitting raw input must cut only at UTF-8 rune boundaries.
func NewBytes(text []byte) (Chunk, error) {
	if !utf8.Valid(text) {
		return Chunk{}, ErrInvalidUTF8
	}
	if len(text) > MaxBase {
		return Chunk{}, ErrChunkTooLarge
	}
	var c Chunk
	copy(c.text[:], text)
	c.n = uint8(len(text))
	c.index()
	return c, nil
}

// MustNew is like New but panics on error. Intended for tests and literals.
func MustNew(text string) Chunk {
	c, err := New(text)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Chunk) index() {
	c.chars, c.newlines = 0, 0
	text := c.text[:c.n]
	for i := 0; i < len(text); {
		c.chars |= bit(i)
		_, n := utf8.DecodeRune(text[i:])
		i += n
	}
	for i, b := range text {
		if b == '\n' {
			c.newlines |= bit(i)
		}
	}
}

// Len returns the number of characters.
func (c Chunk) Len() int {
	return bits.OnesCount64(c.chars)
}

// ByteLen returns the text length in bytes.
func (c Chunk) ByteLen() int {
	return int(c.n)
}

// IsEmpty reports whether the chunk has no bytes.
func (c Chunk) IsEmpty() bool {
	return c.n == 0
}

// String returns the chunk text.
func (c Chunk) String() string {
	return string(c.text[:c.n])
}

// Bytes returns a copied byte slice of the chunk text.
func (c Chunk) Bytes() []byte {
	return append([]byte(nil), c.text[:c.n]...)
}

// Chars returns the UTF-8 character-start bitmap.
func (c Chunk) Chars() Bitmap {
	return c.chars
}

// Newlines returns the newline bitmap.
func (c Chunk) Newlines() Bitmap {
	return c.newlines
}

// IsCharBoundary reports whether offset is a UTF-8 boundary inside this chunk.
func (c Chunk) IsCharBoundary(offset int) bool {
	if offset == c.ByteLen() {
		return true
	}
	if offset < 0 || offset > c.ByteLen() {
		return false
	}
	return c.chars&bit(offset) != 0
}

// ByteOffset returns the byte offset of the character with index char.
// Indexes at or beyond Len() map to ByteLen().
func (c Chunk) ByteOffset(char int) int {
	if char <= 0 {
		return 0
	}
	m := c.chars
	for ; char > 0 && m != 0; char-- {
		m &= m - 1
	}
	if m == 0 {
		return c.ByteLen()
	}
	return bits.TrailingZeros64(m)
}

// CharIndex returns the number of characters starting before byte offset.
func (c Chunk) CharIndex(offset int) int {
	return bits.OnesCount64(c.chars & prefixMask(offset))
}

// Slice returns the chunk for [start,end) in chunk-local byte offsets.
func (c Chunk) Slice(start, end int) (Chunk, error) {
	if start < 0 || end < start || end > c.ByteLen() {
		return Chunk{}, ErrIndexOutOfBounds
	}
	if !c.IsCharBoundary(start) || !c.IsCharBoundary(end) {
		return Chunk{}, ErrNotCharBoundary
	}
	var out Chunk
	m := rangeMask(start, end)
	out.chars = (c.chars & m) >> uint(start)
	out.newlines = (c.newlines & m) >> uint(start)
	copy(out.text[:], c.text[start:end])
	out.n = uint8(end - start)
	return out, nil
}

// SplitAt splits a chunk at byte offset mid.
func (c Chunk) SplitAt(mid int) (Chunk, Chunk, error) {
	left, err := c.Slice(0, mid)
	if err != nil {
		return Chunk{}, Chunk{}, err
	}
	right, err := c.Slice(mid, c.ByteLen())
	if err != nil {
		return Chunk{}, Chunk{}, err
	}
	return left, right, nil
}

// --- Entry contract ----------------------------------------------------------

// Truncate splits the chunk before the character with index at.
func (c Chunk) Truncate(at int) (Chunk, Chunk) {
	left, right, err := c.SplitAt(c.ByteOffset(at))
	if err != nil {
		panic(err) // character offsets are always boundaries
	}
	return left, right
}

// CanAppend reports whether next fits into the chunk.
func (c Chunk) CanAppend(next Chunk) bool {
	return c.ByteLen()+next.ByteLen() <= MaxBase
}

// Append returns the concatenation of c and next. The caller must make sure
// that CanAppend holds.
func (c Chunk) Append(next Chunk) Chunk {
	base := c.ByteLen()
	total := base + next.ByteLen()
	if total > MaxBase {
		panic(ErrChunkTooLarge)
	}
	out := c
	out.chars |= next.chars << uint(base)
	out.newlines |= next.newlines << uint(base)
	copy(out.text[base:total], next.text[:next.n])
	out.n = uint8(total)
	return out
}

// OffsetLen returns the length in bytes.
func (c Chunk) OffsetLen() int {
	return c.ByteLen()
}

// OffsetLenAt returns the byte length of the first offset characters.
func (c Chunk) OffsetLenAt(offset int) int {
	return c.ByteOffset(offset)
}

// At returns the character with index offset.
func (c Chunk) At(offset int) rune {
	b := c.ByteOffset(offset)
	if b >= c.ByteLen() {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRune(c.text[b:c.n])
	return r
}

// --- Bitmap helpers --------------------------------------------------------

func bit(offset int) Bitmap {
	if offset < 0 || offset >= MaxBase {
		return 0
	}
	return Bitmap(1) << uint(offset)
}

func prefixMask(offset int) Bitmap {
	switch {
	case offset <= 0:
		return 0
	case offset >= MaxBase:
		return ^Bitmap(0)
	default:
		return (Bitmap(1) << uint(offset)) - 1
	}
}

func rangeMask(start, end int) Bitmap {
	return prefixMask(end) &^ prefixMask(start)
}
