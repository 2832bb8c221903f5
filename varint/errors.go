package varint

import "errors"

var (
	// ErrUnexpectedEOF signals a buffer shorter than its first byte demands.
	ErrUnexpectedEOF = errors.New("varint: unexpected end of input")
	// ErrInvalidVarInt signals a structurally malformed or out-of-range encoding.
	ErrInvalidVarInt = errors.New("varint: invalid varint")
)
