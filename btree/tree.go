package btree

import (
	"fmt"
	"sort"
)

// Tree is a run-length B+ tree with cached aggregates.
//
// E is the entry type, V the aggregate type produced by the tree's Metrics.
// A Tree is not safe for concurrent use.
type Tree[E Entry[E], V comparable] struct {
	cfg        Config[E, V]
	leaves     []*leafNode[E]
	inners     []*innerNode[V]
	freeLeaves []int
	freeInners []int
	root       int // leaf id if height == 1, inner id otherwise
	height     int // 1 means a leaf root
	version    uint64
	pending    []int // leaves with arrival flags
}

// New creates an empty tree with validated configuration.
func New[E Entry[E], V comparable](cfg Config[E, V]) (*Tree[E, V], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	t := &Tree[E, V]{cfg: cfg.normalized(), height: 1}
	t.root = t.allocLeaf(noParent)
	return t, nil
}

// Config returns a copy of the effective tree configuration.
func (t *Tree[E, V]) Config() Config[E, V] {
	return t.cfg
}

// IsEmpty reports whether the tree holds no entries.
func (t *Tree[E, V]) IsEmpty() bool {
	return t.height == 1 && len(t.leaves[t.root].entries) == 0
}

// Len returns the total raw length of all entries.
func (t *Tree[E, V]) Len() int {
	return t.cfg.Metrics.Raw(t.Summary())
}

// ContentLen returns the total content length, if the tree's metrics support it.
func (t *Tree[E, V]) ContentLen() (int, error) {
	m, err := t.contentMeasure()
	if err != nil {
		return 0, err
	}
	return m.agg(t.Summary()), nil
}

// OffsetLen returns the total offset length, if the tree's metrics support it.
func (t *Tree[E, V]) OffsetLen() (int, error) {
	m, err := t.offsetMeasure()
	if err != nil {
		return 0, err
	}
	return m.agg(t.Summary()), nil
}

// Count returns the number of stored entries.
func (t *Tree[E, V]) Count() int {
	n := 0
	for id := t.firstLeaf(); id != noParent; id = t.nextLeaf(id) {
		n += len(t.leaves[id].entries)
	}
	return n
}

// Height returns the number of tree levels; a tree with a leaf root has height 1.
func (t *Tree[E, V]) Height() int {
	return t.height
}

// Summary returns the aggregate over all entries.
func (t *Tree[E, V]) Summary() V {
	if t.height == 1 {
		return t.leafAgg(t.root)
	}
	return t.innerAgg(t.root)
}

// Version returns a counter which increases with every mutation.
func (t *Tree[E, V]) Version() uint64 {
	return t.version
}

// --- Aggregates ----------------------------------------------------------------

func (t *Tree[E, V]) leafAgg(id int) V {
	m := t.cfg.Metrics
	acc := m.Zero()
	for _, e := range t.leaves[id].entries {
		acc = m.Add(acc, m.Of(e))
	}
	return acc
}

func (t *Tree[E, V]) innerAgg(id int) V {
	m := t.cfg.Metrics
	acc := m.Zero()
	for _, v := range t.inners[id].aggs {
		acc = m.Add(acc, v)
	}
	return acc
}

func (t *Tree[E, V]) childAgg(parent, slot int) V {
	inner := t.inners[parent]
	if inner.leafChildren {
		return t.leafAgg(inner.children[slot])
	}
	return t.innerAgg(inner.children[slot])
}

func (t *Tree[E, V]) slotOf(parent, child int) int {
	for i, c := range t.inners[parent].children {
		if c == child {
			return i
		}
	}
	panic(fmt.Sprintf("btree: node %d is not a child of %d", child, parent))
}

// propagate recomputes the aggregate of inner node id in its parent, up to the root.
func (t *Tree[E, V]) propagate(id int) {
	for id != noParent {
		up := t.inners[id].parent
		if up == noParent {
			return
		}
		t.inners[up].aggs[t.slotOf(up, id)] = t.innerAgg(id)
		id = up
	}
}

// refreshLeaf recomputes the aggregates on the path from a leaf to the root.
func (t *Tree[E, V]) refreshLeaf(id int) {
	up := t.leaves[id].parent
	if up == noParent {
		return
	}
	t.inners[up].aggs[t.slotOf(up, id)] = t.leafAgg(id)
	t.propagate(up)
}

// --- Navigation ----------------------------------------------------------------

func (t *Tree[E, V]) firstLeaf() int {
	id := t.root
	for h := t.height; h > 1; h-- {
		id = t.inners[id].children[0]
	}
	return id
}

func (t *Tree[E, V]) lastLeaf() int {
	id := t.root
	for h := t.height; h > 1; h-- {
		ch := t.inners[id].children
		id = ch[len(ch)-1]
	}
	return id
}

// nextLeaf returns the leaf following leaf id in sequence order, or noParent.
func (t *Tree[E, V]) nextLeaf(id int) int {
	return t.siblingLeaf(id, +1)
}

// prevLeaf returns the leaf preceding leaf id in sequence order, or noParent.
func (t *Tree[E, V]) prevLeaf(id int) int {
	return t.siblingLeaf(id, -1)
}

func (t *Tree[E, V]) siblingLeaf(id int, dir int) int {
	child := id
	up := t.leaves[id].parent
	depth := 0
	for up != noParent {
		slot := t.slotOf(up, child) + dir
		if ch := t.inners[up].children; slot >= 0 && slot < len(ch) {
			n := ch[slot]
			for ; depth > 0; depth-- {
				ch = t.inners[n].children
				if dir > 0 {
					n = ch[0]
				} else {
					n = ch[len(ch)-1]
				}
			}
			return n
		}
		child = up
		up = t.inners[up].parent
		depth++
	}
	return noParent
}

// --- Seeking -------------------------------------------------------------------

// rawCursor is an unchecked location: an entry within a leaf and an offset
// within that entry. For a non-empty leaf 0 <= idx < len(entries) and
// 0 <= offset <= entries[idx].Len(); an empty root leaf has idx == offset == 0.
type rawCursor struct {
	leaf   int
	idx    int
	offset int
}

// seek descends to target along measure m.
//
// If target lies exactly between two entries, stickEnd selects the end of the
// preceding entry, otherwise the start of the following one. A target at the
// very end always yields the end of the last entry.
func (t *Tree[E, V]) seek(target int, stickEnd bool, m measure[E, V]) (rawCursor, error) {
	total := m.agg(t.Summary())
	if target < 0 || target > total {
		return rawCursor{}, fmt.Errorf("%w: position %d not in [0,%d]", ErrIndexOutOfBounds, target, total)
	}
	id := t.root
	for h := t.height; h > 1; h-- {
		inner := t.inners[id]
		last := len(inner.children) - 1
		for slot, v := range inner.aggs {
			n := m.agg(v)
			if target < n || (stickEnd && target == n) || slot == last {
				id = inner.children[slot]
				break
			}
			target -= n
		}
	}
	entries := t.leaves[id].entries
	if len(entries) == 0 {
		return rawCursor{leaf: id}, nil
	}
	for idx, e := range entries {
		n := m.num(e)
		if target < n || (stickEnd && target == n) {
			return rawCursor{leaf: id, idx: idx, offset: unitOffset(e, target, m)}, nil
		}
		target -= n
	}
	assert(target == 0, "btree: aggregates out of sync with leaf contents")
	last := len(entries) - 1
	return rawCursor{leaf: id, idx: last, offset: entries[last].Len()}, nil
}

// unitOffset converts a measure count local to e into an offset into e.
func unitOffset[E Entry[E], V any](e E, local int, m measure[E, V]) int {
	if local <= 0 {
		return 0
	}
	if m.at == nil {
		return local
	}
	return sort.Search(e.Len(), func(o int) bool {
		return m.at(e, o) >= local
	})
}

// countPos sums measure m over everything before raw location rc.
func (t *Tree[E, V]) countPos(rc rawCursor, m measure[E, V]) int {
	leaf := t.leaves[rc.leaf]
	pos := 0
	for _, e := range leaf.entries[:rc.idx] {
		pos += m.num(e)
	}
	if rc.idx < len(leaf.entries) && rc.offset > 0 {
		pos += m.at(leaf.entries[rc.idx], rc.offset)
	}
	child, up := rc.leaf, leaf.parent
	for up != noParent {
		inner := t.inners[up]
		for slot, c := range inner.children {
			if c == child {
				break
			}
			pos += m.agg(inner.aggs[slot])
		}
		child, up = up, inner.parent
	}
	return pos
}
