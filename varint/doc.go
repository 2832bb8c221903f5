/*
Package varint implements a canonical prefix-varint integer codec together with
zigzag and flag-bit helpers.

The number of leading one-bits in the first byte announces the encoded length:

	0xxxxxxx                          1 byte,  7 payload bits
	10xxxxxx xxxxxxxx                 2 bytes, 14 payload bits
	110xxxxx + 2 bytes                3 bytes, 21 payload bits
	1110xxxx + 3 bytes                4 bytes, 28 payload bits
	11110xxx + 4 bytes                5 bytes, 35 payload bits
	111110xx + 5 bytes                6 bytes, 42 payload bits
	1111110x + 6 bytes                7 bytes, 49 payload bits
	11111110 + 7 bytes                8 bytes, 56 payload bits
	11111111 + 8 bytes                9 bytes, 64 payload bits

Payload bytes are big-endian. Every band is offset by the capacity of all
smaller bands, which makes the encoding bijective: each integer has exactly one
valid byte sequence, and no byte sequence is a redundant spelling of a value
representable in fewer bytes.

The 32-bit codec uses the same bands, topping out at 5 bytes whose first byte
must be exactly 0xF0.

Decoding never panics on malformed input. It reports ErrUnexpectedEOF for
truncated buffers and ErrInvalidVarInt for sequences which do not denote a value
of the requested width.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package varint

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
