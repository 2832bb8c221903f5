package btree

import "fmt"

// Check validates structural tree invariants.
//
// It verifies uniform leaf depth, parent links, node occupancy, cached
// aggregates and that no two neighbouring entries in a leaf could be merged.
// Intended for tests.
func (t *Tree[E, V]) Check() error {
	if t == nil {
		return fmt.Errorf("%w: nil tree", ErrInvalidConfig)
	}
	if t.height < 1 {
		return fmt.Errorf("%w: tree height %d", ErrInvalidConfig, t.height)
	}
	if len(t.pending) != 0 {
		return fmt.Errorf("%w: %d leaves with unreported arrivals", ErrInvalidConfig, len(t.pending))
	}
	if t.height == 1 {
		_, err := t.checkLeaf(t.root, noParent)
		return err
	}
	if n := len(t.inners[t.root].children); n < 2 {
		return fmt.Errorf("%w: inner root has %d children", ErrInvalidConfig, n)
	}
	_, err := t.checkInner(t.root, noParent, t.height)
	return err
}

func (t *Tree[E, V]) checkLeaf(id, parent int) (V, error) {
	var zero V
	if id < 0 || id >= len(t.leaves) || t.leaves[id].free {
		return zero, fmt.Errorf("%w: dangling leaf id %d", ErrInvalidConfig, id)
	}
	leaf := t.leaves[id]
	if leaf.parent != parent {
		return zero, fmt.Errorf("%w: leaf %d has parent %d, expected %d", ErrInvalidConfig, id, leaf.parent, parent)
	}
	if leaf.arrived != 0 {
		return zero, fmt.Errorf("%w: leaf %d has unreported arrivals", ErrInvalidConfig, id)
	}
	n := len(leaf.entries)
	if n > t.cfg.LeafCap {
		return zero, fmt.Errorf("%w: leaf %d holds %d entries, capacity %d", ErrInvalidConfig, id, n, t.cfg.LeafCap)
	}
	if parent != noParent && n < t.minLeafEntries() {
		return zero, fmt.Errorf("%w: leaf %d holds %d entries, minimum %d", ErrInvalidConfig, id, n, t.minLeafEntries())
	}
	for i, e := range leaf.entries {
		if e.Len() <= 0 {
			return zero, fmt.Errorf("%w: leaf %d entry %d is empty", ErrInvalidConfig, id, i)
		}
		if i > 0 && leaf.entries[i-1].CanAppend(e) {
			return zero, fmt.Errorf("%w: leaf %d entries %d and %d are mergeable", ErrInvalidConfig, id, i-1, i)
		}
	}
	return t.leafAgg(id), nil
}

func (t *Tree[E, V]) checkInner(id, parent, height int) (V, error) {
	var zero V
	if id < 0 || id >= len(t.inners) || t.inners[id].free {
		return zero, fmt.Errorf("%w: dangling inner id %d", ErrInvalidConfig, id)
	}
	inner := t.inners[id]
	if inner.parent != parent {
		return zero, fmt.Errorf("%w: inner %d has parent %d, expected %d", ErrInvalidConfig, id, inner.parent, parent)
	}
	if inner.leafChildren != (height == 2) {
		return zero, fmt.Errorf("%w: inner %d at height %d has wrong child kind", ErrInvalidConfig, id, height)
	}
	n := len(inner.children)
	if n != len(inner.aggs) {
		return zero, fmt.Errorf("%w: inner %d has %d children but %d aggregates", ErrInvalidConfig, id, n, len(inner.aggs))
	}
	if n > t.cfg.InnerCap {
		return zero, fmt.Errorf("%w: inner %d has %d children, capacity %d", ErrInvalidConfig, id, n, t.cfg.InnerCap)
	}
	if parent != noParent && n < t.minChildren() {
		return zero, fmt.Errorf("%w: inner %d has %d children, minimum %d", ErrInvalidConfig, id, n, t.minChildren())
	}
	m := t.cfg.Metrics
	acc := m.Zero()
	for slot, c := range inner.children {
		var v V
		var err error
		if inner.leafChildren {
			v, err = t.checkLeaf(c, id)
		} else {
			v, err = t.checkInner(c, id, height-1)
		}
		if err != nil {
			return zero, err
		}
		if v != inner.aggs[slot] {
			return zero, fmt.Errorf("%w: inner %d caches %v for child %d, actual %v",
				ErrInvalidConfig, id, inner.aggs[slot], c, v)
		}
		acc = m.Add(acc, v)
	}
	return acc, nil
}
