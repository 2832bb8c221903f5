/*
Package textfile loads UTF-8 text files into run trees of text chunks.

A background goroutine reads the file in fragments and broadcasts them to
subscribers. Fragments and chunks are cut at grapheme cluster boundaries
(UAX #29), so a loaded text never splits a user-perceived character between
chunks unless the cluster is longer than a chunk.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package textfile

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'egwalker'
func tracer() tracing.Trace {
	return tracing.Select("egwalker")
}
