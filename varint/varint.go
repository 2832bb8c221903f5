package varint

import (
	"encoding/binary"
	"math"
)

// MaxLen32 and MaxLen64 are the maximum encoded sizes in bytes.
const (
	MaxLen32 = 5
	MaxLen64 = 9
)

// Band offsets: encN is the first value which needs more than N bytes.
const (
	enc1 uint64 = 1 << 7
	enc2        = 1<<14 + enc1
	enc3        = 1<<21 + enc2
	enc4        = 1<<28 + enc3
	enc5        = 1<<35 + enc4
	enc6        = 1<<42 + enc5
	enc7        = 1<<49 + enc6
	enc8        = 1<<56 + enc7
)

var bandOffset = [...]uint64{0, 0, enc1, enc2, enc3, enc4, enc5, enc6, enc7, enc8}

// EncodeU32 encodes v and returns the buffer together with the number of bytes used.
func EncodeU32(v uint32) ([MaxLen32]byte, int) {
	var out [MaxLen32]byte
	buf, n := EncodeU64(uint64(v))
	assert(n <= MaxLen32, "varint: 32-bit value encoded to more than 5 bytes")
	copy(out[:], buf[:n])
	return out, n
}

// EncodeU64 encodes v and returns the buffer together with the number of bytes used.
func EncodeU64(v uint64) ([MaxLen64]byte, int) {
	var buf [MaxLen64]byte
	switch {
	case v < enc1:
		buf[0] = byte(v)
		return buf, 1
	case v < enc2:
		v -= enc1
		buf[0] = 0x80 | byte(v>>8)
		buf[1] = byte(v)
		return buf, 2
	case v < enc3:
		v -= enc2
		buf[0] = 0xC0 | byte(v>>16)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v)
		return buf, 3
	case v < enc4:
		v -= enc3
		binary.BigEndian.PutUint32(buf[0:4], uint32(v))
		buf[0] |= 0xE0
		return buf, 4
	case v < enc5:
		v -= enc4
		buf[0] = 0xF0 | byte(v>>32)
		binary.BigEndian.PutUint32(buf[1:5], uint32(v))
		return buf, 5
	case v < enc6:
		v -= enc5
		buf[0] = 0xF8 | byte(v>>40)
		putUint40(buf[1:6], v)
		return buf, 6
	case v < enc7:
		v -= enc6
		buf[0] = 0xFC | byte(v>>48)
		putUint48(buf[1:7], v)
		return buf, 7
	case v < enc8:
		v -= enc7
		binary.BigEndian.PutUint64(buf[0:8], v)
		buf[0] = 0xFE
		return buf, 8
	default:
		v -= enc8
		buf[0] = 0xFF
		binary.BigEndian.PutUint64(buf[1:9], v)
		return buf, 9
	}
}

// EncodedLen returns the number of bytes EncodeU64 will use for v.
func EncodedLen(v uint64) int {
	for n := 1; n < MaxLen64; n++ {
		if v < bandOffset[n+1] {
			return n
		}
	}
	return MaxLen64
}

// DecodeU64 decodes a 64-bit value from the front of buf.
// It returns the value and the number of bytes consumed.
func DecodeU64(buf []byte) (uint64, int, error) {
	if len(buf) == 0 {
		return 0, 0, ErrUnexpectedEOF
	}
	b0 := buf[0]
	n := prefixLen(b0)
	if len(buf) < n {
		return 0, 0, ErrUnexpectedEOF
	}
	if n == 1 {
		return uint64(b0), 1, nil
	}
	if n == MaxLen64 {
		payload := binary.BigEndian.Uint64(buf[1:9])
		if payload > math.MaxUint64-enc8 {
			return 0, 0, ErrInvalidVarInt
		}
		return payload + enc8, n, nil
	}
	// Bits of the first byte below its length prefix belong to the payload.
	val := uint64(b0 & (0xFF >> n))
	for _, b := range buf[1:n] {
		val = val<<8 | uint64(b)
	}
	return val + bandOffset[n], n, nil
}

// DecodeU32 decodes a 32-bit value from the front of buf.
//
// The 5-byte band must start with exactly 0xF0; other first bytes announcing 5
// or more bytes are rejected with ErrInvalidVarInt, as are 5-byte payloads which
// overflow 32 bits once the band offset is added.
func DecodeU32(buf []byte) (uint32, int, error) {
	if len(buf) == 0 {
		return 0, 0, ErrUnexpectedEOF
	}
	b0 := buf[0]
	if b0 < 0xF0 {
		v, n, err := DecodeU64(buf)
		if err != nil {
			return 0, 0, err
		}
		return uint32(v), n, nil
	}
	if len(buf) < MaxLen32 {
		return 0, 0, ErrUnexpectedEOF
	}
	if b0 != 0xF0 {
		return 0, 0, ErrInvalidVarInt
	}
	v := uint64(binary.BigEndian.Uint32(buf[1:5])) + enc4
	if v > math.MaxUint32 {
		return 0, 0, ErrInvalidVarInt
	}
	return uint32(v), MaxLen32, nil
}

// DecodeUint decodes a platform-sized unsigned value from the front of buf.
func DecodeUint(buf []byte) (uint, int, error) {
	if math.MaxUint == math.MaxUint32 {
		v, n, err := DecodeU32(buf)
		return uint(v), n, err
	}
	v, n, err := DecodeU64(buf)
	return uint(v), n, err
}

// prefixLen returns the total encoded length announced by a first byte.
func prefixLen(b0 byte) int {
	n := 1
	for mask := byte(0x80); mask != 0 && b0&mask != 0; mask >>= 1 {
		n++
	}
	return n
}

func putUint40(b []byte, v uint64) {
	_ = b[4]
	b[0] = byte(v >> 32)
	b[1] = byte(v >> 24)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 8)
	b[4] = byte(v)
}

func putUint48(b []byte, v uint64) {
	_ = b[5]
	b[0] = byte(v >> 40)
	putUint40(b[1:], v)
}
