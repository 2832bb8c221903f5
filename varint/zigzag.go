package varint

import "math"

// ZigzagEncode32 maps a signed value onto an unsigned one so that values of
// small magnitude stay small: 0, -1, 1, -2 map to 0, 1, 2, 3.
func ZigzagEncode32(v int32) uint32 {
	return uint32(v<<1) ^ uint32(v>>31)
}

// ZigzagEncode64 is the 64-bit version of ZigzagEncode32.
func ZigzagEncode64(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// ZigzagDecode32 reverses ZigzagEncode32.
func ZigzagDecode32(v uint32) int32 {
	return int32(v>>1) ^ -int32(v&1)
}

// ZigzagDecode64 reverses ZigzagEncode64.
func ZigzagDecode64(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// MixBit32 packs flag into the low bit of v. v must leave its top bit free.
func MixBit32(v uint32, flag bool) uint32 {
	assert(v < math.MaxUint32/2, "varint: MixBit32 value too large")
	v <<= 1
	if flag {
		v |= 1
	}
	return v
}

// MixBit64 packs flag into the low bit of v. v must leave its top bit free.
func MixBit64(v uint64, flag bool) uint64 {
	assert(v < math.MaxUint64/2, "varint: MixBit64 value too large")
	v <<= 1
	if flag {
		v |= 1
	}
	return v
}

// StripBit32 reverses MixBit32.
func StripBit32(v uint32) (uint32, bool) {
	return v >> 1, v&1 == 1
}

// StripBit64 reverses MixBit64.
func StripBit64(v uint64) (uint64, bool) {
	return v >> 1, v&1 == 1
}
