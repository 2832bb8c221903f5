/*
Package btree provides an augmented run-length B+ tree.

The tree stores an ordered sequence of entries, each covering a contiguous span
of logical units. Adjacent entries which can be concatenated losslessly are
merged eagerly, so a long run of edits collapses into few entries. Inner nodes
cache an aggregate value per child, which answers positional queries under
several numbering schemes in O(log n):

  - the raw position, the sum of entry lengths (always available),
  - a content position, counting only visible units (ContentLength entries),
  - an offset position, an alternate numbering such as bytes (OffsetLength entries).

How aggregates are formed is injected through a Metrics strategy; the tree has
no knowledge of what an entry means.

Cursors are the only way to look at or change tree contents. A Cursor is a
read-only locator; a MutCursor additionally inserts, deletes and replaces at its
location. Every mutation bumps the tree version, and a cursor derived before a
mutation it did not perform panics when used. Re-deriving cursors from a
position is the normal pattern.

Nodes live in arenas and reference each other by index. Leaf identity (LeafID)
is stable while a leaf exists, so callers may keep an external item-to-leaf
index. Entries which arrive in a leaf during a mutation are reported exactly once
through a Notify callback after the tree has reached a consistent state again.

_________________________________________________________________________

# BSD 3-Clause License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the LICENSE file for details.
*/
package btree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'egwalker'
func tracer() tracing.Trace {
	return tracing.Select("egwalker")
}

func assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}
