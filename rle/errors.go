package rle

import "errors"

var (
	// ErrCorrupt signals an encoded run list which cannot be decoded.
	ErrCorrupt = errors.New("rle: corrupt run list")
)
