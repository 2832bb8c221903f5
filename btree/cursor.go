package btree

import (
	"cmp"
	"fmt"
	"slices"
)

// Cursor is a read-only location in a tree: an entry and an offset into it.
//
// A cursor is tied to the tree version it was derived under. Using it after
// the tree has been mutated through another cursor panics.
type Cursor[E Entry[E], V comparable] struct {
	tree    *Tree[E, V]
	rc      rawCursor
	version uint64
	done    bool
}

func (t *Tree[E, V]) cursor(rc rawCursor) Cursor[E, V] {
	return Cursor[E, V]{tree: t, rc: rc, version: t.version}
}

// CursorAtStart returns a cursor at the start of the first entry.
func (t *Tree[E, V]) CursorAtStart() *Cursor[E, V] {
	c := t.cursor(rawCursor{leaf: t.firstLeaf()})
	return &c
}

// CursorAtEnd returns a cursor at the end of the last entry.
func (t *Tree[E, V]) CursorAtEnd() *Cursor[E, V] {
	c := t.cursor(t.endRaw())
	return &c
}

func (t *Tree[E, V]) endRaw() rawCursor {
	id := t.lastLeaf()
	entries := t.leaves[id].entries
	if len(entries) == 0 {
		return rawCursor{leaf: id}
	}
	last := len(entries) - 1
	return rawCursor{leaf: id, idx: last, offset: entries[last].Len()}
}

// CursorAtQuery descends to target, numbering positions by aggToNum for
// aggregates and entryToNum for single entries.
//
// Units of the numbering are assumed to map one-to-one onto entry offsets
// inside entries with entryToNum(e) > 0. If target lies between two entries,
// stickEnd selects the end of the preceding entry, otherwise the start of the
// following one.
func (t *Tree[E, V]) CursorAtQuery(
	target int, stickEnd bool,
	aggToNum func(V) int,
	entryToNum func(E) int,
) (*Cursor[E, V], error) {
	rc, err := t.seek(target, stickEnd, measure[E, V]{agg: aggToNum, num: entryToNum})
	if err != nil {
		return nil, err
	}
	c := t.cursor(rc)
	return &c, nil
}

// CursorAtPos returns a cursor at raw position pos.
func (t *Tree[E, V]) CursorAtPos(pos int, stickEnd bool) (*Cursor[E, V], error) {
	rc, err := t.seek(pos, stickEnd, t.rawMeasure())
	if err != nil {
		return nil, err
	}
	c := t.cursor(rc)
	return &c, nil
}

// CursorAtContent returns a cursor at content position pos.
func (t *Tree[E, V]) CursorAtContent(pos int, stickEnd bool) (*Cursor[E, V], error) {
	m, err := t.contentMeasure()
	if err != nil {
		return nil, err
	}
	rc, err := t.seek(pos, stickEnd, m)
	if err != nil {
		return nil, err
	}
	c := t.cursor(rc)
	return &c, nil
}

// CursorAtOffset returns a cursor at offset position pos.
func (t *Tree[E, V]) CursorAtOffset(pos int, stickEnd bool) (*Cursor[E, V], error) {
	m, err := t.offsetMeasure()
	if err != nil {
		return nil, err
	}
	rc, err := t.seek(pos, stickEnd, m)
	if err != nil {
		return nil, err
	}
	c := t.cursor(rc)
	return &c, nil
}

// CursorInLeaf scans the entries of a leaf. find reports whether an entry
// contains the item looked for, and at which offset. This is the counterpart
// of Notify: callers maintaining an item-to-leaf index locate items with it.
func (t *Tree[E, V]) CursorInLeaf(leaf LeafID, find func(e E) (offset int, ok bool)) (*Cursor[E, V], error) {
	rc, err := t.scanLeaf(leaf, find)
	if err != nil {
		return nil, err
	}
	c := t.cursor(rc)
	return &c, nil
}

func (t *Tree[E, V]) scanLeaf(leaf LeafID, find func(e E) (int, bool)) (rawCursor, error) {
	id := int(leaf)
	if id < 0 || id >= len(t.leaves) || t.leaves[id].free {
		return rawCursor{}, fmt.Errorf("%w: no leaf %d", ErrIndexOutOfBounds, id)
	}
	for idx, e := range t.leaves[id].entries {
		if offset, ok := find(e); ok {
			assert(offset >= 0 && offset <= e.Len(), "btree: leaf scan offset out of range")
			return rawCursor{leaf: id, idx: idx, offset: offset}, nil
		}
	}
	return rawCursor{}, fmt.Errorf("%w: in leaf %d", ErrNotFound, id)
}

func (c *Cursor[E, V]) check() {
	if c.version != c.tree.version {
		panic("btree: stale cursor")
	}
}

// Tree returns the tree the cursor belongs to.
func (c *Cursor[E, V]) Tree() *Tree[E, V] {
	return c.tree
}

// Pos returns the raw position of the cursor.
func (c *Cursor[E, V]) Pos() int {
	c.check()
	return c.tree.countPos(c.rc, c.tree.rawMeasure())
}

// CountPosRaw returns the cursor position along a caller-defined numbering.
// entryToNumAt(e, offset) must return the count of the prefix [0,offset) of e.
func (c *Cursor[E, V]) CountPosRaw(
	aggToNum func(V) int,
	entryToNum func(E) int,
	entryToNumAt func(E, int) int,
) int {
	c.check()
	return c.tree.countPos(c.rc, measure[E, V]{agg: aggToNum, num: entryToNum, at: entryToNumAt})
}

// CountContentPos returns the content position of the cursor.
func (c *Cursor[E, V]) CountContentPos() (int, error) {
	c.check()
	m, err := c.tree.contentMeasure()
	if err != nil {
		return 0, err
	}
	return c.tree.countPos(c.rc, m), nil
}

// CountOffsetPos returns the offset position of the cursor.
func (c *Cursor[E, V]) CountOffsetPos() (int, error) {
	c.check()
	m, err := c.tree.offsetMeasure()
	if err != nil {
		return 0, err
	}
	return c.tree.countPos(c.rc, m), nil
}

// Entry returns the entry under the cursor. It returns false for an empty tree.
func (c *Cursor[E, V]) Entry() (E, bool) {
	c.check()
	entries := c.tree.leaves[c.rc.leaf].entries
	if c.rc.idx >= len(entries) {
		var zero E
		return zero, false
	}
	return entries[c.rc.idx], true
}

// Offset returns the offset of the cursor within its entry.
func (c *Cursor[E, V]) Offset() int {
	c.check()
	return c.rc.offset
}

// Leaf returns the leaf the cursor points into.
func (c *Cursor[E, V]) Leaf() LeafID {
	c.check()
	return LeafID(c.rc.leaf)
}

// NextEntry moves the cursor to the start of the following entry. It returns
// false, leaving the cursor unchanged, if there is none.
func (c *Cursor[E, V]) NextEntry() bool {
	c.check()
	return c.tree.nextEntry(&c.rc)
}

func (t *Tree[E, V]) nextEntry(rc *rawCursor) bool {
	if rc.idx+1 < len(t.leaves[rc.leaf].entries) {
		rc.idx++
		rc.offset = 0
		return true
	}
	// Leaves other than the root are never empty.
	if next := t.nextLeaf(rc.leaf); next != noParent {
		*rc = rawCursor{leaf: next}
		return true
	}
	return false
}

// Next returns the entry under the cursor and advances to the following
// entry. Iteration is single-pass and yields whole entries, regardless of the
// offset the cursor started at.
func (c *Cursor[E, V]) Next() (E, bool) {
	c.check()
	e, ok := c.Entry()
	if c.done || !ok {
		var zero E
		c.done = true
		return zero, false
	}
	if !c.tree.nextEntry(&c.rc) {
		c.done = true
	}
	return e, true
}

// Compare orders two cursors of the same tree by sequence position.
//
// A cursor at the end of the last entry of a leaf compares less than a cursor
// at the start of the first entry of the next leaf, although both denote the
// same position. Comparing cursors of different trees panics.
func (c *Cursor[E, V]) Compare(other *Cursor[E, V]) int {
	if c.tree != other.tree {
		panic("btree: comparing cursors of different trees")
	}
	c.check()
	other.check()
	if c.rc.leaf == other.rc.leaf {
		if r := cmp.Compare(c.rc.idx, other.rc.idx); r != 0 {
			return r
		}
		return cmp.Compare(c.rc.offset, other.rc.offset)
	}
	a, b := c.tree.slotPath(c.rc.leaf), c.tree.slotPath(other.rc.leaf)
	assert(len(a) == len(b), "btree: leaves at different depths")
	for i := range a {
		if r := cmp.Compare(a[i], b[i]); r != 0 {
			return r
		}
	}
	panic("btree: distinct leaves with identical paths")
}

// slotPath returns the child slots from the root down to leaf id.
func (t *Tree[E, V]) slotPath(id int) []int {
	path := make([]int, 0, t.height)
	child, up := id, t.leaves[id].parent
	for up != noParent {
		path = append(path, t.slotOf(up, child))
		child, up = up, t.inners[up].parent
	}
	slices.Reverse(path)
	return path
}

// GetItem extracts the item at the cursor from a Searchable entry. A cursor
// at the end of an entry reads the first item of the following entry.
func GetItem[T any, E Entry[E], V comparable](c *Cursor[E, V]) (T, error) {
	var zero T
	c.check()
	rc := c.rc
	entries := c.tree.leaves[rc.leaf].entries
	if rc.idx < len(entries) && rc.offset == entries[rc.idx].Len() {
		if !c.tree.nextEntry(&rc) {
			return zero, fmt.Errorf("%w: no item at end of tree", ErrIndexOutOfBounds)
		}
		entries = c.tree.leaves[rc.leaf].entries
	}
	if rc.idx >= len(entries) {
		return zero, fmt.Errorf("%w: tree is empty", ErrIndexOutOfBounds)
	}
	s, ok := any(entries[rc.idx]).(Searchable[T])
	if !ok {
		return zero, ErrNotSearchable
	}
	return s.At(rc.offset), nil
}
