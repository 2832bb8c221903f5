package btree

import "iter"

// ForEach walks entries in sequence order.
//
// Iteration stops early if fn returns false.
func (t *Tree[E, V]) ForEach(fn func(e E) bool) {
	if fn == nil {
		return
	}
	for id := t.firstLeaf(); id != noParent; id = t.nextLeaf(id) {
		for _, e := range t.leaves[id].entries {
			if !fn(e) {
				return
			}
		}
	}
}

// All returns an iterator over all entries in sequence order.
func (t *Tree[E, V]) All() iter.Seq[E] {
	return func(yield func(E) bool) {
		t.ForEach(yield)
	}
}

// Leaves returns an iterator over leaf ids and their entries in sequence order.
// The entry slices must not be modified.
func (t *Tree[E, V]) Leaves() iter.Seq2[LeafID, []E] {
	return func(yield func(LeafID, []E) bool) {
		for id := t.firstLeaf(); id != noParent; id = t.nextLeaf(id) {
			if !yield(LeafID(id), t.leaves[id].entries) {
				return
			}
		}
	}
}

// Entries returns an iterator over the entries from the cursor onwards,
// consuming the cursor.
func (c *Cursor[E, V]) Entries() iter.Seq[E] {
	return func(yield func(E) bool) {
		for {
			e, ok := c.Next()
			if !ok || !yield(e) {
				return
			}
		}
	}
}
