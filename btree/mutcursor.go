package btree

import "fmt"

// MutCursor is a cursor which may change the tree at its location.
//
// After each mutation the cursor is re-derived and stays valid; every other
// cursor of the tree becomes stale.
type MutCursor[E Entry[E], V comparable] struct {
	Cursor[E, V]
}

func (t *Tree[E, V]) mutCursor(rc rawCursor) *MutCursor[E, V] {
	return &MutCursor[E, V]{Cursor: t.cursor(rc)}
}

// MutCursorAtStart returns a mutable cursor at the start of the first entry.
func (t *Tree[E, V]) MutCursorAtStart() *MutCursor[E, V] {
	return t.mutCursor(rawCursor{leaf: t.firstLeaf()})
}

// MutCursorAtEnd returns a mutable cursor at the end of the last entry.
func (t *Tree[E, V]) MutCursorAtEnd() *MutCursor[E, V] {
	return t.mutCursor(t.endRaw())
}

// MutCursorAtQuery is the mutable variant of CursorAtQuery.
func (t *Tree[E, V]) MutCursorAtQuery(
	target int, stickEnd bool,
	aggToNum func(V) int,
	entryToNum func(E) int,
) (*MutCursor[E, V], error) {
	rc, err := t.seek(target, stickEnd, measure[E, V]{agg: aggToNum, num: entryToNum})
	if err != nil {
		return nil, err
	}
	return t.mutCursor(rc), nil
}

// MutCursorAtPos returns a mutable cursor at raw position pos.
func (t *Tree[E, V]) MutCursorAtPos(pos int, stickEnd bool) (*MutCursor[E, V], error) {
	rc, err := t.seek(pos, stickEnd, t.rawMeasure())
	if err != nil {
		return nil, err
	}
	return t.mutCursor(rc), nil
}

// MutCursorAtContent returns a mutable cursor at content position pos.
func (t *Tree[E, V]) MutCursorAtContent(pos int, stickEnd bool) (*MutCursor[E, V], error) {
	m, err := t.contentMeasure()
	if err != nil {
		return nil, err
	}
	rc, err := t.seek(pos, stickEnd, m)
	if err != nil {
		return nil, err
	}
	return t.mutCursor(rc), nil
}

// MutCursorAtOffset returns a mutable cursor at offset position pos.
func (t *Tree[E, V]) MutCursorAtOffset(pos int, stickEnd bool) (*MutCursor[E, V], error) {
	m, err := t.offsetMeasure()
	if err != nil {
		return nil, err
	}
	rc, err := t.seek(pos, stickEnd, m)
	if err != nil {
		return nil, err
	}
	return t.mutCursor(rc), nil
}

// MutCursorInLeaf is the mutable variant of CursorInLeaf.
func (t *Tree[E, V]) MutCursorInLeaf(leaf LeafID, find func(e E) (offset int, ok bool)) (*MutCursor[E, V], error) {
	rc, err := t.scanLeaf(leaf, find)
	if err != nil {
		return nil, err
	}
	return t.mutCursor(rc), nil
}

// commit reports arrivals, bumps the tree version and re-derives the cursor
// at raw position pos.
func (c *MutCursor[E, V]) commit(notify Notify[E], pos int, stickEnd bool) {
	t := c.tree
	t.flushArrivals(notify)
	t.version++
	c.version = t.version
	c.done = false
	rc, err := t.seek(pos, stickEnd, t.rawMeasure())
	assert(err == nil, "btree: cursor position lost during mutation")
	c.rc = rc
}

func (c *MutCursor[E, V]) atEntryEnd() bool {
	entries := c.tree.leaves[c.rc.leaf].entries
	return c.rc.idx < len(entries) && c.rc.offset > 0 && c.rc.offset == entries[c.rc.idx].Len()
}

// Insert inserts e at the cursor and moves the cursor behind it.
func (c *MutCursor[E, V]) Insert(e E) {
	c.InsertNotify(e, nil)
}

// InsertNotify inserts e at the cursor and moves the cursor behind it.
// notify is called for e and for every entry relocated to another leaf.
func (c *MutCursor[E, V]) InsertNotify(e E, notify Notify[E]) {
	c.check()
	pos := c.Pos()
	c.tree.insertRaw(c.rc, e)
	c.commit(notify, pos+e.Len(), true)
}

// Delete removes n units following the cursor. The cursor keeps its position.
func (c *MutCursor[E, V]) Delete(n int) error {
	return c.DeleteNotify(n, nil)
}

// DeleteNotify removes n units following the cursor, reporting entries
// relocated to other leaves. Nothing is removed if fewer than n units follow.
func (c *MutCursor[E, V]) DeleteNotify(n int, notify Notify[E]) error {
	c.check()
	pos := c.Pos()
	stickEnd := c.atEntryEnd()
	if err := c.tree.deleteRaw(pos, n); err != nil {
		return err
	}
	c.commit(notify, pos, stickEnd)
	return nil
}

// ReplaceRange overwrites e.Len() units following the cursor with e and moves
// the cursor behind it.
func (c *MutCursor[E, V]) ReplaceRange(e E) error {
	return c.ReplaceRangeNotify(e, nil)
}

// ReplaceRangeNotify overwrites e.Len() units following the cursor with e,
// reporting e and every relocated entry.
func (c *MutCursor[E, V]) ReplaceRangeNotify(e E, notify Notify[E]) error {
	c.check()
	t := c.tree
	n := e.Len()
	assert(n > 0, "btree: replacing with empty entry")
	pos := c.Pos()
	if total := t.Len(); pos+n > total {
		return fmt.Errorf("%w: cannot replace [%d,%d) of %d", ErrIndexOutOfBounds, pos, pos+n, total)
	}
	rc := c.rc
	if c.atEntryEnd() {
		t.nextEntry(&rc)
	}
	if cur := t.leaves[rc.leaf].entries[rc.idx]; rc.offset+n <= cur.Len() {
		// Replacement inside a single entry keeps the entry count small.
		items, at := splitAround(cur, rc.offset, n, e)
		t.replaceRaw(rc, 1<<at, items...)
		c.commit(notify, pos+n, true)
		return nil
	}
	if err := t.deleteRaw(pos, n); err != nil {
		return err
	}
	at, err := t.seek(pos, true, t.rawMeasure())
	assert(err == nil, "btree: replace position lost")
	t.insertRaw(at, e)
	c.commit(notify, pos+n, true)
	return nil
}

// splitAround returns the pieces of cur with [offset,offset+n) replaced by e,
// and the index of e among them.
func splitAround[E Entry[E]](cur E, offset, n int, e E) ([]E, int) {
	items := make([]E, 0, 3)
	rest := cur
	if offset > 0 {
		var head E
		head, rest = cur.Truncate(offset)
		items = append(items, head)
	}
	at := len(items)
	items = append(items, e)
	if n < rest.Len() {
		_, tail := rest.Truncate(n)
		items = append(items, tail)
	}
	return items, at
}

// ReplaceEntry replaces the whole entry under the cursor with up to three
// items, ignoring the cursor offset. The cursor moves to the start of the
// first item. Passing more than three items panics.
func (c *MutCursor[E, V]) ReplaceEntry(items []E) {
	c.ReplaceEntryNotify(items, nil)
}

// ReplaceEntryNotify is ReplaceEntry reporting the new items and every
// relocated entry.
func (c *MutCursor[E, V]) ReplaceEntryNotify(items []E, notify Notify[E]) {
	c.check()
	assert(len(items) <= 3, "btree: ReplaceEntry takes at most 3 items")
	_, ok := c.Entry()
	assert(ok, "btree: ReplaceEntry on empty tree")
	start := c.Pos() - c.rc.offset
	c.tree.replaceRaw(c.rc, lowMask(len(items)), items...)
	c.commit(notify, start, false)
}

// ReplaceEntrySimple overwrites the entry under the cursor with e, which must
// have the same length. The cursor keeps its position. Entries relocated by
// merging are not reported; callers tracking leaves use ReplaceEntryNotify.
func (c *MutCursor[E, V]) ReplaceEntrySimple(e E) {
	c.check()
	cur, ok := c.Entry()
	assert(ok && cur.Len() == e.Len(), "btree: ReplaceEntrySimple changes entry length")
	pos, stickEnd := c.Pos(), c.atEntryEnd()
	c.tree.replaceRaw(c.rc, 0, e)
	c.commit(nil, pos, stickEnd)
}

// MutateSingleEntryNotify applies fn to at most replaceMax units of the entry
// under the cursor, starting at the cursor offset. fn must not change the
// length of the entry it is given. The cursor moves behind the mutated units.
// It returns the number of units mutated and the result of fn.
func MutateSingleEntryNotify[R any, E Entry[E], V comparable](
	c *MutCursor[E, V],
	replaceMax int,
	notify Notify[E],
	fn func(e *E) R,
) (int, R) {
	c.check()
	t := c.tree
	assert(replaceMax > 0, "btree: MutateSingleEntryNotify needs replaceMax > 0")
	rc := c.rc
	if c.atEntryEnd() {
		assert(t.nextEntry(&rc), "btree: MutateSingleEntryNotify at end of tree")
	}
	entries := t.leaves[rc.leaf].entries
	assert(rc.idx < len(entries), "btree: MutateSingleEntryNotify on empty tree")
	pos := c.Pos()
	cur := entries[rc.idx]
	n := min(replaceMax, cur.Len()-rc.offset)
	items := make([]E, 0, 3)
	mid := cur
	if rc.offset > 0 {
		var head E
		head, mid = cur.Truncate(rc.offset)
		items = append(items, head)
	}
	var tail E
	hasTail := n < mid.Len()
	if hasTail {
		mid, tail = mid.Truncate(n)
	}
	r := fn(&mid)
	assert(mid.Len() == n, "btree: mutation changed entry length")
	items = append(items, mid)
	if hasTail {
		items = append(items, tail)
	}
	t.replaceRaw(rc, 0, items...)
	c.commit(notify, pos+n, true)
	return n, r
}

// --- Tree-level editing ------------------------------------------------------

// Push appends e at the end of the tree.
func (t *Tree[E, V]) Push(e E) {
	t.PushNotify(e, nil)
}

// PushNotify appends e at the end of the tree, reporting arrivals.
func (t *Tree[E, V]) PushNotify(e E, notify Notify[E]) {
	t.MutCursorAtEnd().InsertNotify(e, notify)
}

// InsertAt inserts e at raw position pos.
func (t *Tree[E, V]) InsertAt(pos int, e E) error {
	return t.InsertAtNotify(pos, e, nil)
}

// InsertAtNotify inserts e at raw position pos, reporting arrivals.
func (t *Tree[E, V]) InsertAtNotify(pos int, e E, notify Notify[E]) error {
	c, err := t.MutCursorAtPos(pos, true)
	if err != nil {
		return err
	}
	c.InsertNotify(e, notify)
	return nil
}

// DeleteAt removes n units starting at raw position pos.
func (t *Tree[E, V]) DeleteAt(pos, n int) error {
	return t.DeleteAtNotify(pos, n, nil)
}

// DeleteAtNotify removes n units starting at raw position pos, reporting relocations.
func (t *Tree[E, V]) DeleteAtNotify(pos, n int, notify Notify[E]) error {
	c, err := t.MutCursorAtPos(pos, false)
	if err != nil {
		return err
	}
	return c.DeleteNotify(n, notify)
}

// ReplaceRangeAt overwrites e.Len() units at raw position pos with e.
func (t *Tree[E, V]) ReplaceRangeAt(pos int, e E) error {
	return t.ReplaceRangeAtNotify(pos, e, nil)
}

// ReplaceRangeAtNotify overwrites e.Len() units at raw position pos with e,
// reporting arrivals.
func (t *Tree[E, V]) ReplaceRangeAtNotify(pos int, e E, notify Notify[E]) error {
	c, err := t.MutCursorAtPos(pos, false)
	if err != nil {
		return err
	}
	return c.ReplaceRangeNotify(e, notify)
}
