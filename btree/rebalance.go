package btree

// insertAt inserts values into a slice at idx.
func insertAt[T any](src []T, idx int, values ...T) []T {
	assert(idx >= 0 && idx <= len(src), "insertAt index out of range")
	var zero T
	for range values {
		src = append(src, zero)
	}
	copy(src[idx+len(values):], src[idx:])
	copy(src[idx:], values)
	return src
}

// removeRange removes the half-open interval [from,to) from a slice.
func removeRange[T any](src []T, from, to int) []T {
	assert(from >= 0 && from <= to && to <= len(src), "removeRange bounds invalid")
	n := copy(src[from:], src[to:])
	clear(src[from+n:])
	return src[:from+n]
}

func (t *Tree[E, V]) setParent(child int, leaf bool, parent int) {
	if leaf {
		t.leaves[child].parent = parent
	} else {
		t.inners[child].parent = parent
	}
}

// fixLeaf restores capacity invariants after the contents of leaf id changed
// and refreshes aggregates up to the root.
func (t *Tree[E, V]) fixLeaf(id int) {
	t.refreshLeaf(id)
	leaf := t.leaves[id]
	switch {
	case len(leaf.entries) > t.cfg.LeafCap:
		t.splitLeaf(id)
	case leaf.parent != noParent && len(leaf.entries) < t.minLeafEntries():
		t.rebalanceLeaf(id)
	}
}

// splitLeaf moves the upper half of an overflowing leaf into a new right sibling.
func (t *Tree[E, V]) splitLeaf(id int) {
	leaf := t.leaves[id]
	mid := len(leaf.entries) / 2
	rid := t.allocLeaf(leaf.parent)
	right := t.leaves[rid]
	right.entries = append(right.entries, leaf.entries[mid:]...)
	clear(leaf.entries[mid:])
	leaf.entries = leaf.entries[:mid]
	leaf.arrived &= lowMask(mid)
	for i := range right.entries {
		t.markArrived(rid, i)
	}
	tracer().Debugf("btree: split leaf %d, %d entries moved to leaf %d", id, len(right.entries), rid)
	t.insertSibling(id, rid, true)
}

// insertSibling links node sib right after node id, growing the tree at the
// root if necessary.
func (t *Tree[E, V]) insertSibling(id, sib int, leaf bool) {
	var up int
	if leaf {
		up = t.leaves[id].parent
	} else {
		up = t.inners[id].parent
	}
	if up == noParent {
		root := t.allocInner(noParent, leaf)
		inner := t.inners[root]
		inner.children = append(inner.children, id, sib)
		inner.aggs = append(inner.aggs, t.cfg.Metrics.Zero(), t.cfg.Metrics.Zero())
		t.setParent(id, leaf, root)
		t.setParent(sib, leaf, root)
		t.root = root
		t.height++
		inner.aggs[0] = t.childAgg(root, 0)
		inner.aggs[1] = t.childAgg(root, 1)
		tracer().Debugf("btree: root grows to height %d", t.height)
		return
	}
	inner := t.inners[up]
	slot := t.slotOf(up, id)
	inner.children = insertAt(inner.children, slot+1, sib)
	inner.aggs = insertAt(inner.aggs, slot+1, t.cfg.Metrics.Zero())
	t.setParent(sib, leaf, up)
	inner.aggs[slot] = t.childAgg(up, slot)
	inner.aggs[slot+1] = t.childAgg(up, slot+1)
	t.propagate(up)
	if len(inner.children) > t.cfg.InnerCap {
		t.splitInner(up)
	}
}

func (t *Tree[E, V]) splitInner(id int) {
	inner := t.inners[id]
	mid := len(inner.children) / 2
	rid := t.allocInner(inner.parent, inner.leafChildren)
	right := t.inners[rid]
	right.children = append(right.children, inner.children[mid:]...)
	right.aggs = append(right.aggs, inner.aggs[mid:]...)
	inner.children = removeRange(inner.children, mid, len(inner.children))
	inner.aggs = removeRange(inner.aggs, mid, len(inner.aggs))
	for _, c := range right.children {
		t.setParent(c, right.leafChildren, rid)
	}
	tracer().Debugf("btree: split inner node %d into %d", id, rid)
	t.insertSibling(id, rid, false)
}

// applyRebalancePolicy centralizes sibling operation order after shrinking:
// borrow-left, borrow-right, merge-left, merge-right.
func (t *Tree[E, V]) applyRebalancePolicy(
	parent, slot int,
	borrowLeft func() bool,
	borrowRight func() bool,
	mergeLeft func() bool,
	mergeRight func() bool,
) bool {
	assert(parent != noParent, "applyRebalancePolicy called without parent")
	n := len(t.inners[parent].children)
	assert(slot >= 0 && slot < n, "applyRebalancePolicy slot out of range")
	hasLeft := slot > 0
	hasRight := slot+1 < n
	if hasLeft && borrowLeft() {
		return true
	}
	if hasRight && borrowRight() {
		return true
	}
	if hasLeft && mergeLeft() {
		return true
	}
	if hasRight && mergeRight() {
		return true
	}
	return false
}

// rebalanceLeaf handles an underfull non-root leaf.
func (t *Tree[E, V]) rebalanceLeaf(id int) {
	up := t.leaves[id].parent
	parent := t.inners[up]
	slot := t.slotOf(up, id)
	if len(t.leaves[id].entries) == 0 {
		tracer().Debugf("btree: removing empty leaf %d", id)
		t.removeChild(up, slot)
		t.freeLeaf(id)
		t.fixInner(up)
		return
	}
	minEntries := t.minLeafEntries()
	underflow := func() bool { return len(t.leaves[id].entries) < minEntries }
	ok := t.applyRebalancePolicy(up, slot,
		func() bool {
			lid := parent.children[slot-1]
			left := t.leaves[lid]
			for underflow() && len(left.entries) > minEntries {
				last := len(left.entries) - 1
				e := left.entries[last]
				t.splice(lid, last, 1)
				t.splice(id, 0, 0, e)
				t.markArrived(id, 0)
				t.mergeSeams(id, 1, 1)
			}
			parent.aggs[slot-1] = t.leafAgg(lid)
			parent.aggs[slot] = t.leafAgg(id)
			return !underflow()
		},
		func() bool {
			rid := parent.children[slot+1]
			right := t.leaves[rid]
			for underflow() && len(right.entries) > minEntries {
				e := right.entries[0]
				t.splice(rid, 0, 1)
				n := len(t.leaves[id].entries)
				t.splice(id, n, 0, e)
				t.markArrived(id, n)
				t.mergeSeams(id, n, n)
			}
			parent.aggs[slot+1] = t.leafAgg(rid)
			parent.aggs[slot] = t.leafAgg(id)
			return !underflow()
		},
		func() bool {
			t.mergeLeaves(up, slot-1)
			return true
		},
		func() bool {
			t.mergeLeaves(up, slot)
			return true
		},
	)
	assert(ok, "btree: leaf rebalance failed")
	t.propagate(up)
	t.fixInner(up)
}

// mergeLeaves moves all entries of the leaf at slot+1 into the leaf at slot
// and removes the emptied leaf.
func (t *Tree[E, V]) mergeLeaves(up, slot int) {
	parent := t.inners[up]
	lid, rid := parent.children[slot], parent.children[slot+1]
	left, right := t.leaves[lid], t.leaves[rid]
	assert(len(left.entries)+len(right.entries) <= t.cfg.LeafCap+1, "btree: leaf merge overflows")
	seam := len(left.entries)
	t.splice(lid, seam, 0, right.entries...)
	for i := range right.entries {
		t.markArrived(lid, seam+i)
	}
	right.arrived = 0
	t.mergeSeams(lid, seam, seam)
	tracer().Debugf("btree: merged leaf %d into leaf %d", rid, lid)
	t.removeChild(up, slot+1)
	t.freeLeaf(rid)
	parent.aggs[slot] = t.leafAgg(lid)
}

func (t *Tree[E, V]) removeChild(up, slot int) {
	inner := t.inners[up]
	inner.children = removeRange(inner.children, slot, slot+1)
	inner.aggs = removeRange(inner.aggs, slot, slot+1)
}

// fixInner restores capacity invariants of inner node id and its ancestors
// after children were added or removed.
func (t *Tree[E, V]) fixInner(id int) {
	inner := t.inners[id]
	switch {
	case len(inner.children) > t.cfg.InnerCap:
		t.splitInner(id)
	case inner.parent == noParent:
		t.collapseRoot()
	case len(inner.children) < t.minChildren():
		t.rebalanceInner(id)
	default:
		t.propagate(id)
	}
}

// collapseRoot shrinks the tree while the root has a single child.
func (t *Tree[E, V]) collapseRoot() {
	for t.height > 1 && len(t.inners[t.root].children) == 1 {
		old := t.inners[t.root]
		child := old.children[0]
		t.setParent(child, old.leafChildren, noParent)
		t.freeInner(t.root)
		t.root = child
		t.height--
		tracer().Debugf("btree: root collapses to height %d", t.height)
	}
}

// rebalanceInner handles an underfull non-root inner node.
func (t *Tree[E, V]) rebalanceInner(id int) {
	up := t.inners[id].parent
	parent := t.inners[up]
	slot := t.slotOf(up, id)
	child := t.inners[id]
	minChildren := t.minChildren()
	ok := t.applyRebalancePolicy(up, slot,
		func() bool {
			lid := parent.children[slot-1]
			left := t.inners[lid]
			if len(left.children) <= minChildren {
				return false
			}
			last := len(left.children) - 1
			c, v := left.children[last], left.aggs[last]
			left.children = removeRange(left.children, last, last+1)
			left.aggs = removeRange(left.aggs, last, last+1)
			child.children = insertAt(child.children, 0, c)
			child.aggs = insertAt(child.aggs, 0, v)
			t.setParent(c, child.leafChildren, id)
			parent.aggs[slot-1] = t.innerAgg(lid)
			parent.aggs[slot] = t.innerAgg(id)
			return true
		},
		func() bool {
			rid := parent.children[slot+1]
			right := t.inners[rid]
			if len(right.children) <= minChildren {
				return false
			}
			c, v := right.children[0], right.aggs[0]
			right.children = removeRange(right.children, 0, 1)
			right.aggs = removeRange(right.aggs, 0, 1)
			child.children = append(child.children, c)
			child.aggs = append(child.aggs, v)
			t.setParent(c, child.leafChildren, id)
			parent.aggs[slot+1] = t.innerAgg(rid)
			parent.aggs[slot] = t.innerAgg(id)
			return true
		},
		func() bool {
			t.mergeInners(up, slot-1)
			return true
		},
		func() bool {
			t.mergeInners(up, slot)
			return true
		},
	)
	assert(ok, "btree: inner rebalance failed")
	t.fixInner(up)
}

// mergeInners moves all children of the inner node at slot+1 into the node at slot.
func (t *Tree[E, V]) mergeInners(up, slot int) {
	parent := t.inners[up]
	lid, rid := parent.children[slot], parent.children[slot+1]
	left, right := t.inners[lid], t.inners[rid]
	for _, c := range right.children {
		t.setParent(c, left.leafChildren, lid)
	}
	left.children = append(left.children, right.children...)
	left.aggs = append(left.aggs, right.aggs...)
	tracer().Debugf("btree: merged inner node %d into %d", rid, lid)
	t.removeChild(up, slot+1)
	t.freeInner(rid)
	parent.aggs[slot] = t.innerAgg(lid)
}
