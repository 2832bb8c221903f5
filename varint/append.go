package varint

import "fmt"

// AppendU32 appends the encoding of v to dst.
func AppendU32(dst []byte, v uint32) []byte {
	buf, n := EncodeU32(v)
	return append(dst, buf[:n]...)
}

// AppendU64 appends the encoding of v to dst.
func AppendU64(dst []byte, v uint64) []byte {
	buf, n := EncodeU64(v)
	return append(dst, buf[:n]...)
}

// AppendUint appends the encoding of a platform-sized value to dst.
func AppendUint(dst []byte, v uint) []byte {
	return AppendU64(dst, uint64(v))
}

// AppendI64 appends the zigzag encoding of v to dst.
func AppendI64(dst []byte, v int64) []byte {
	return AppendU64(dst, ZigzagEncode64(v))
}

// Reader decodes a sequence of varints from a byte slice.
//
// Errors are wrapped with the offset at which decoding failed and still
// satisfy errors.Is against ErrUnexpectedEOF and ErrInvalidVarInt.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a Reader over buf. The slice is not copied.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Done reports whether all input has been consumed.
func (r *Reader) Done() bool {
	return r.pos >= len(r.buf)
}

// U32 reads the next 32-bit value.
func (r *Reader) U32() (uint32, error) {
	v, n, err := DecodeU32(r.buf[r.pos:])
	if err != nil {
		return 0, fmt.Errorf("%w: at offset %d", err, r.pos)
	}
	r.pos += n
	return v, nil
}

// U64 reads the next 64-bit value.
func (r *Reader) U64() (uint64, error) {
	v, n, err := DecodeU64(r.buf[r.pos:])
	if err != nil {
		return 0, fmt.Errorf("%w: at offset %d", err, r.pos)
	}
	r.pos += n
	return v, nil
}

// Uint reads the next platform-sized value.
func (r *Reader) Uint() (uint, error) {
	v, n, err := DecodeUint(r.buf[r.pos:])
	if err != nil {
		return 0, fmt.Errorf("%w: at offset %d", err, r.pos)
	}
	r.pos += n
	return v, nil
}

// I64 reads the next zigzag-encoded signed value.
func (r *Reader) I64() (int64, error) {
	v, err := r.U64()
	if err != nil {
		return 0, err
	}
	return ZigzagDecode64(v), nil
}

// Flagged reads the next value written with MixBit64 and splits off its flag.
func (r *Reader) Flagged() (uint64, bool, error) {
	v, err := r.U64()
	if err != nil {
		return 0, false, err
	}
	v, flag := StripBit64(v)
	return v, flag, nil
}
