package btree

import "math/bits"

const noParent = -1

// leafNode holds an ordered run of entries.
type leafNode[E any] struct {
	entries []E
	parent  int // inner node id, noParent for the root
	// arrived flags entries which moved into this leaf during the current
	// mutation; bit i corresponds to entries[i].
	arrived uint64
	free    bool
}

// innerNode holds child ids and their cached aggregates.
type innerNode[V any] struct {
	children []int
	aggs     []V
	parent   int
	// leafChildren is set if children are leaf ids.
	leafChildren bool
	free         bool
}

// --- Arrival bitmaps ---------------------------------------------------------

func lowMask(n int) uint64 {
	return uint64(1)<<n - 1
}

// insertBits opens a gap of k zero bits at position at.
func insertBits(m uint64, at, k int) uint64 {
	return m&lowMask(at) | (m>>at)<<(at+k)
}

// removeBits removes bits [from,to), shifting higher bits down.
func removeBits(m uint64, from, to int) uint64 {
	return m&lowMask(from) | (m>>to)<<from
}

// --- Arena -------------------------------------------------------------------

func (t *Tree[E, V]) allocLeaf(parent int) int {
	if n := len(t.freeLeaves); n > 0 {
		id := t.freeLeaves[n-1]
		t.freeLeaves = t.freeLeaves[:n-1]
		leaf := t.leaves[id]
		leaf.free = false
		leaf.parent = parent
		return id
	}
	t.leaves = append(t.leaves, &leafNode[E]{
		entries: make([]E, 0, t.cfg.LeafCap+3),
		parent:  parent,
	})
	return len(t.leaves) - 1
}

func (t *Tree[E, V]) freeLeaf(id int) {
	leaf := t.leaves[id]
	assert(!leaf.free, "btree: double free of leaf")
	assert(leaf.arrived == 0, "btree: freeing leaf with pending arrivals")
	clear(leaf.entries)
	leaf.entries = leaf.entries[:0]
	leaf.parent = noParent
	leaf.free = true
	t.freeLeaves = append(t.freeLeaves, id)
}

func (t *Tree[E, V]) allocInner(parent int, leafChildren bool) int {
	if n := len(t.freeInners); n > 0 {
		id := t.freeInners[n-1]
		t.freeInners = t.freeInners[:n-1]
		inner := t.inners[id]
		inner.free = false
		inner.parent = parent
		inner.leafChildren = leafChildren
		return id
	}
	t.inners = append(t.inners, &innerNode[V]{
		children:     make([]int, 0, t.cfg.InnerCap+1),
		aggs:         make([]V, 0, t.cfg.InnerCap+1),
		parent:       parent,
		leafChildren: leafChildren,
	})
	return len(t.inners) - 1
}

func (t *Tree[E, V]) freeInner(id int) {
	inner := t.inners[id]
	assert(!inner.free, "btree: double free of inner node")
	inner.children = inner.children[:0]
	clear(inner.aggs)
	inner.aggs = inner.aggs[:0]
	inner.parent = noParent
	inner.free = true
	t.freeInners = append(t.freeInners, id)
}

// --- Leaf editing --------------------------------------------------------------

// splice replaces entries[at:at+del] with items, keeping arrival flags aligned.
func (t *Tree[E, V]) splice(id int, at, del int, items ...E) {
	leaf := t.leaves[id]
	assert(at >= 0 && at+del <= len(leaf.entries), "btree: splice out of range")
	leaf.arrived = insertBits(removeBits(leaf.arrived, at, at+del), at, len(items))
	n := len(leaf.entries)
	tail := len(items) - del
	if tail > 0 {
		var zero E
		for range tail {
			leaf.entries = append(leaf.entries, zero)
		}
		copy(leaf.entries[at+len(items):], leaf.entries[at+del:n])
	} else if tail < 0 {
		copy(leaf.entries[at+len(items):], leaf.entries[at+del:])
		clear(leaf.entries[n+tail:])
		leaf.entries = leaf.entries[:n+tail]
	}
	copy(leaf.entries[at:], items)
	assert(len(leaf.entries) <= 64, "btree: leaf exceeds arrival bitmap")
}

// markArrived flags entries[i] of leaf id for notification.
func (t *Tree[E, V]) markArrived(id int, i int) {
	leaf := t.leaves[id]
	if leaf.arrived == 0 {
		t.pending = append(t.pending, id)
	}
	leaf.arrived |= 1 << i
}

// mergeSeams merges mergeable neighbours at seams lo..hi, where seam i lies
// between entries[i-1] and entries[i]. It returns the number of merges.
func (t *Tree[E, V]) mergeSeams(id int, lo, hi int) int {
	leaf := t.leaves[id]
	merged := 0
	if lo < 1 {
		lo = 1
	}
	for i := lo; i <= hi && i < len(leaf.entries); {
		prev, cur := leaf.entries[i-1], leaf.entries[i]
		if !prev.CanAppend(cur) {
			i++
			continue
		}
		arrived := leaf.arrived&(1<<(i-1)|1<<i) != 0
		t.splice(id, i-1, 2, prev.Append(cur))
		if arrived {
			t.markArrived(id, i-1)
		}
		merged++
		hi--
	}
	return merged
}

// flushArrivals reports every flagged entry once and clears all flags.
func (t *Tree[E, V]) flushArrivals(notify Notify[E]) {
	for _, id := range t.pending {
		leaf := t.leaves[id]
		if leaf.free || leaf.arrived == 0 {
			continue
		}
		m := leaf.arrived
		leaf.arrived = 0
		if notify == nil {
			continue
		}
		for m != 0 {
			i := bits.TrailingZeros64(m)
			m &= m - 1
			notify(leaf.entries[i], LeafID(id))
		}
	}
	t.pending = t.pending[:0]
}
