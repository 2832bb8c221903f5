/*
Package chunk implements short runs of UTF-8 text as tree entries.

A Chunk holds up to MaxBase bytes together with bitmaps of character starts
and newlines, which makes local coordinate math a matter of bit counting.
Chunks are counted in characters (Unicode scalar values); bytes are available
as an alternate offset numbering, so a tree of chunks can be navigated by
character position as well as by byte position.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package chunk
