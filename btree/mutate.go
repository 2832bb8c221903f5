package btree

import "fmt"

// insertRaw inserts e at raw location rc. Arrival flags are left pending.
func (t *Tree[E, V]) insertRaw(rc rawCursor, e E) {
	assert(e.Len() > 0, "btree: inserting empty entry")
	leaf := t.leaves[rc.leaf]
	var at int
	switch {
	case len(leaf.entries) == 0 || rc.offset == 0:
		at = rc.idx
		t.splice(rc.leaf, at, 0, e)
	case rc.offset == leaf.entries[rc.idx].Len():
		at = rc.idx + 1
		t.splice(rc.leaf, at, 0, e)
	default:
		moved := leaf.arrived&(1<<rc.idx) != 0
		head, tail := leaf.entries[rc.idx].Truncate(rc.offset)
		leaf.entries[rc.idx] = head
		at = rc.idx + 1
		t.splice(rc.leaf, at, 0, e, tail)
		if moved {
			t.markArrived(rc.leaf, at+1) // tail moved along with head
		}
	}
	t.markArrived(rc.leaf, at)
	// Truncated halves may have become mergeable with their outer neighbours.
	t.mergeSeams(rc.leaf, rc.idx, at+2)
	t.fixLeaf(rc.leaf)
}

// deleteRaw removes n units starting at raw position pos.
func (t *Tree[E, V]) deleteRaw(pos, n int) error {
	if total := t.Len(); pos < 0 || n < 0 || pos+n > total {
		return fmt.Errorf("%w: cannot delete [%d,%d) of %d", ErrIndexOutOfBounds, pos, pos+n, total)
	}
	m := t.rawMeasure()
	for n > 0 {
		rc, err := t.seek(pos, false, m)
		if err != nil {
			return err
		}
		n = t.deleteInLeaf(rc, n)
	}
	return nil
}

// deleteInLeaf removes up to n units from rc to the end of its leaf and
// returns the number of units left to delete.
func (t *Tree[E, V]) deleteInLeaf(rc rawCursor, n int) int {
	id := rc.leaf
	leaf := t.leaves[id]
	i := rc.idx
	if rc.offset > 0 && rc.offset == leaf.entries[i].Len() {
		i++
	} else if rc.offset > 0 {
		e := leaf.entries[i]
		if rc.offset+n < e.Len() {
			moved := leaf.arrived&(1<<i) != 0
			head, rest := e.Truncate(rc.offset)
			_, tail := rest.Truncate(n)
			leaf.entries[i] = head
			t.splice(id, i+1, 0, tail)
			if moved {
				t.markArrived(id, i+1)
			}
			t.mergeSeams(id, i, i+2)
			t.fixLeaf(id)
			return 0
		}
		head, _ := e.Truncate(rc.offset)
		n -= e.Len() - rc.offset
		leaf.entries[i] = head
		i++
	}
	j := i
	for j < len(leaf.entries) && n >= leaf.entries[j].Len() {
		n -= leaf.entries[j].Len()
		j++
	}
	t.splice(id, i, j-i)
	if n > 0 && i < len(leaf.entries) {
		_, tail := leaf.entries[i].Truncate(n)
		leaf.entries[i] = tail
		n = 0
	}
	t.mergeSeams(id, rc.idx, i+1)
	t.fixLeaf(id)
	return n
}

// replaceRaw replaces the entry at rc with items. Items whose bit is set in
// mark are flagged as arrivals.
func (t *Tree[E, V]) replaceRaw(rc rawCursor, mark uint64, items ...E) {
	leaf := t.leaves[rc.leaf]
	assert(rc.idx < len(leaf.entries), "btree: replacing entry of empty leaf")
	for _, e := range items {
		assert(e.Len() > 0, "btree: replacing with empty entry")
	}
	if leaf.arrived&(1<<rc.idx) != 0 {
		mark = lowMask(len(items)) // all pieces of a moved entry moved
	}
	t.splice(rc.leaf, rc.idx, 1, items...)
	for i := range items {
		if mark&(1<<i) != 0 {
			t.markArrived(rc.leaf, rc.idx+i)
		}
	}
	t.mergeSeams(rc.leaf, rc.idx, rc.idx+len(items))
	t.fixLeaf(rc.leaf)
}
