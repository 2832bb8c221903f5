package btree

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/Leeeon233/egwalker-paper/rle"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func newRangeTree(t *testing.T, leafCap, innerCap int) *Tree[rle.Range, int] {
	t.Helper()
	tree, err := New(Config[rle.Range, int]{
		Metrics:  RawMetrics[rle.Range]{},
		LeafCap:  leafCap,
		InnerCap: innerCap,
	})
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}
	return tree
}

func newRunTree(t *testing.T, leafCap, innerCap int) *Tree[rle.Run, ContentPos] {
	t.Helper()
	tree, err := New(Config[rle.Run, ContentPos]{
		Metrics:  ContentMetrics[rle.Run]{},
		LeafCap:  leafCap,
		InnerCap: innerCap,
	})
	if err != nil {
		t.Fatalf("unexpected config error: %v", err)
	}
	return tree
}

func entriesOf[E Entry[E], V comparable](tree *Tree[E, V]) []E {
	return slices.Collect(tree.All())
}

// flatten expands ranges into the sequence of ids they cover.
func flatten(tree *Tree[rle.Range, int]) []int {
	var ids []int
	for e := range tree.All() {
		for id := e.Start; id < e.End; id++ {
			ids = append(ids, id)
		}
	}
	return ids
}

func mustCheck[E Entry[E], V comparable](t *testing.T, tree *Tree[E, V]) {
	t.Helper()
	if err := tree.Check(); err != nil {
		t.Fatalf("invariant check failed: %v", err)
	}
}

func expectPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected %s to panic", name)
		}
	}()
	fn()
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "egwalker")
	defer teardown()
	//
	cases := []Config[rle.Range, int]{
		{},
		{Metrics: RawMetrics[rle.Range]{}, LeafCap: MinCap - 1},
		{Metrics: RawMetrics[rle.Range]{}, LeafCap: MaxLeafCap + 1},
		{Metrics: RawMetrics[rle.Range]{}, InnerCap: 2},
	}
	for i, cfg := range cases {
		if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	tree := newRangeTree(t, 0, 0)
	cfg := tree.Config()
	if cfg.LeafCap != DefaultLeafCap || cfg.InnerCap != DefaultInnerCap {
		t.Fatalf("expected default capacities, got %d/%d", cfg.LeafCap, cfg.InnerCap)
	}
}

func TestEmptyTree(t *testing.T) {
	gtrace.CoreTracer = gotestingadapter.New(t)
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	tree := newRangeTree(t, 4, 4)
	if !tree.IsEmpty() || tree.Len() != 0 || tree.Count() != 0 || tree.Height() != 1 {
		t.Fatalf("new tree is not empty: len=%d count=%d height=%d", tree.Len(), tree.Count(), tree.Height())
	}
	if _, ok := tree.CursorAtStart().Next(); ok {
		t.Fatalf("start cursor of empty tree yields an entry")
	}
	if _, ok := tree.CursorAtEnd().Entry(); ok {
		t.Fatalf("end cursor of empty tree has an entry")
	}
	if pos := tree.CursorAtEnd().Pos(); pos != 0 {
		t.Fatalf("end cursor of empty tree at %d", pos)
	}
	if err := tree.DeleteAt(0, 0); err != nil {
		t.Fatalf("deleting nothing from empty tree: %v", err)
	}
	if err := tree.DeleteAt(0, 1); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected out of bounds deleting from empty tree, got %v", err)
	}
	if _, err := tree.CursorAtPos(1, false); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected out of bounds seeking past end, got %v", err)
	}
	if _, err := GetItem[int](tree.CursorAtStart()); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected out of bounds reading item of empty tree, got %v", err)
	}
	c := tree.MutCursorAtStart()
	c.Insert(rle.R(0, 10))
	if got := entriesOf(tree); !slices.Equal(got, []rle.Range{rle.R(0, 10)}) {
		t.Fatalf("insert into empty tree gives %v", got)
	}
	if c.Pos() != 10 {
		t.Fatalf("cursor should be behind inserted entry, is at %d", c.Pos())
	}
	mustCheck(t, tree)
}

func TestPushMergesRuns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "egwalker")
	defer teardown()
	//
	tree := newRangeTree(t, 0, 0)
	tree.Push(rle.R(0, 15))
	tree.Push(rle.R(15, 20))
	if got := entriesOf(tree); !slices.Equal(got, []rle.Range{rle.R(0, 20)}) {
		t.Fatalf("expected single merged entry, got %v", got)
	}
	if tree.Count() != 1 || tree.Len() != 20 {
		t.Fatalf("expected 1 entry of length 20, have %d entries, length %d", tree.Count(), tree.Len())
	}
	mustCheck(t, tree)
}

func TestInsertSplitsEntry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "egwalker")
	defer teardown()
	//
	tree := newRangeTree(t, 0, 0)
	tree.Push(rle.R(0, 20))
	if err := tree.InsertAt(5, rle.R(100, 101)); err != nil {
		t.Fatal(err)
	}
	want := []rle.Range{rle.R(0, 5), rle.R(100, 101), rle.R(5, 20)}
	if got := entriesOf(tree); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if tree.Len() != 21 {
		t.Fatalf("expected length 21, have %d", tree.Len())
	}
	// continuing the inserted run merges into it
	if err := tree.InsertAt(6, rle.R(101, 103)); err != nil {
		t.Fatal(err)
	}
	want = []rle.Range{rle.R(0, 5), rle.R(100, 103), rle.R(5, 20)}
	if got := entriesOf(tree); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	mustCheck(t, tree)
}

func TestInsertBetweenMergesBothSides(t *testing.T) {
	tree := newRangeTree(t, 0, 0)
	tree.Push(rle.R(0, 5))
	tree.Push(rle.R(10, 15))
	if err := tree.InsertAt(5, rle.R(5, 10)); err != nil {
		t.Fatal(err)
	}
	if got := entriesOf(tree); !slices.Equal(got, []rle.Range{rle.R(0, 15)}) {
		t.Fatalf("expected gap to be closed into one entry, got %v", got)
	}
}

// gappedTree builds a tree of n entries of length 3 which cannot merge.
func gappedTree(t *testing.T, n, leafCap, innerCap int) *Tree[rle.Range, int] {
	tree := newRangeTree(t, leafCap, innerCap)
	for i := range n {
		tree.Push(rle.R(i*10, i*10+3))
	}
	mustCheck(t, tree)
	return tree
}

func TestPositionalRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "egwalker")
	defer teardown()
	//
	tree := gappedTree(t, 200, 4, 4)
	if tree.Height() < 3 {
		t.Fatalf("expected a tree of height >= 3, have %d", tree.Height())
	}
	for pos := 0; pos <= tree.Len(); pos++ {
		for _, stickEnd := range []bool{false, true} {
			c, err := tree.CursorAtPos(pos, stickEnd)
			if err != nil {
				t.Fatalf("seek to %d: %v", pos, err)
			}
			if got := c.Pos(); got != pos {
				t.Fatalf("cursor at %d (stickEnd=%v) reports position %d", pos, stickEnd, got)
			}
		}
	}
}

func TestStickEnd(t *testing.T) {
	tree := gappedTree(t, 50, 4, 4)
	for k := 1; k < 50; k++ {
		pos := k * 3
		end, _ := tree.CursorAtPos(pos, true)
		start, _ := tree.CursorAtPos(pos, false)
		e, _ := end.Entry()
		if e != rle.R((k-1)*10, (k-1)*10+3) || end.Offset() != 3 {
			t.Fatalf("stickEnd at %d: expected end of entry %d, got %v+%d", pos, k-1, e, end.Offset())
		}
		e, _ = start.Entry()
		if e != rle.R(k*10, k*10+3) || start.Offset() != 0 {
			t.Fatalf("at %d: expected start of entry %d, got %v+%d", pos, k, e, start.Offset())
		}
		if end.Compare(start) >= 0 {
			t.Fatalf("end of entry %d must order before start of entry %d", k-1, k)
		}
	}
	last, _ := tree.CursorAtPos(tree.Len(), false)
	if e, _ := last.Entry(); e != rle.R(490, 493) || last.Offset() != 3 {
		t.Fatalf("position at the end should be end of last entry, is %v+%d", e, last.Offset())
	}
}

func TestCompareAcrossLeaves(t *testing.T) {
	tree := gappedTree(t, 40, 4, 4)
	var boundary int
	for _, entries := range tree.Leaves() {
		for _, e := range entries {
			boundary += e.Len()
		}
		break
	}
	end, _ := tree.CursorAtPos(boundary, true)
	start, _ := tree.CursorAtPos(boundary, false)
	if end.Leaf() == start.Leaf() {
		t.Fatalf("expected cursors in different leaves at leaf boundary %d", boundary)
	}
	if end.Pos() != start.Pos() {
		t.Fatalf("both cursors should denote position %d", boundary)
	}
	if end.Compare(start) != -1 || start.Compare(end) != 1 {
		t.Fatalf("end of leaf must compare before start of next leaf")
	}
	if end.Compare(end) != 0 {
		t.Fatalf("cursor must compare equal to itself")
	}
	a, _ := tree.CursorAtPos(1, false)
	b, _ := tree.CursorAtPos(tree.Len()-1, false)
	if a.Compare(b) != -1 {
		t.Fatalf("expected cursor at 1 before cursor at %d", tree.Len()-1)
	}
}

func TestCompareAcrossTreesPanics(t *testing.T) {
	a := gappedTree(t, 3, 4, 4)
	b := gappedTree(t, 3, 4, 4)
	expectPanic(t, "cross-tree compare", func() {
		a.CursorAtStart().Compare(b.CursorAtStart())
	})
}

func TestStaleCursorPanics(t *testing.T) {
	tree := gappedTree(t, 10, 4, 4)
	c := tree.CursorAtStart()
	mc := tree.MutCursorAtEnd()
	mc.Insert(rle.R(1000, 1001))
	if mc.Pos() != tree.Len() {
		t.Fatalf("mutating cursor should stay valid at the end")
	}
	expectPanic(t, "stale cursor", func() { c.Pos() })
	expectPanic(t, "stale cursor", func() { c.Next() })
	expectPanic(t, "stale cursor", func() { c.Offset() })
	expectPanic(t, "stale cursor", func() { c.Leaf() })
	if v := tree.Version(); v == 0 {
		t.Fatalf("mutations must bump the tree version")
	}
}

func TestNextYieldsWholeEntries(t *testing.T) {
	tree := gappedTree(t, 30, 4, 4)
	c, _ := tree.CursorAtPos(4, false)
	var got []rle.Range
	for e, ok := c.Next(); ok; e, ok = c.Next() {
		got = append(got, e)
	}
	if len(got) != 29 || got[0] != rle.R(10, 13) || got[28] != rle.R(290, 293) {
		t.Fatalf("unexpected iteration from mid-entry: %d entries %v", len(got), got)
	}
	if _, ok := c.Next(); ok {
		t.Fatalf("exhausted cursor yields more entries")
	}
	c = tree.CursorAtStart()
	n := 0
	for range c.Entries() {
		n++
	}
	if n != tree.Count() {
		t.Fatalf("cursor iteration yields %d entries, tree counts %d", n, tree.Count())
	}
}

func TestDeleteAcrossLeaves(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "egwalker")
	defer teardown()
	//
	tree := gappedTree(t, 100, 4, 4)
	model := flatten(tree)
	for _, d := range [][2]int{{0, 1}, {4, 20}, {100, 65}, {3, 3}, {50, 0}} {
		if err := tree.DeleteAt(d[0], d[1]); err != nil {
			t.Fatalf("delete %v: %v", d, err)
		}
		model = slices.Delete(model, d[0], d[0]+d[1])
		mustCheck(t, tree)
		if got := flatten(tree); !slices.Equal(got, model) {
			t.Fatalf("after delete %v:\n got %v\nwant %v", d, got, model)
		}
	}
	if err := tree.DeleteAt(tree.Len()-2, 3); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected out of bounds deleting past the end, got %v", err)
	}
	if got := flatten(tree); !slices.Equal(got, model) {
		t.Fatalf("failed delete must not change the tree")
	}
	if err := tree.DeleteAt(0, tree.Len()); err != nil {
		t.Fatal(err)
	}
	if !tree.IsEmpty() || tree.Height() != 1 {
		t.Fatalf("deleting everything should leave an empty root leaf")
	}
	mustCheck(t, tree)
}

func TestDeleteKeepsCursorPosition(t *testing.T) {
	tree := gappedTree(t, 20, 4, 4)
	c, _ := tree.MutCursorAtPos(9, true)
	if err := c.Delete(6); err != nil {
		t.Fatal(err)
	}
	if c.Pos() != 9 {
		t.Fatalf("cursor should stay at 9, is at %d", c.Pos())
	}
	if e, _ := c.Entry(); e != rle.R(20, 23) || c.Offset() != 3 {
		t.Fatalf("cursor should stick to end of [20,23), is at %v+%d", e, c.Offset())
	}
}

func TestReplaceRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "egwalker")
	defer teardown()
	//
	tree := newRangeTree(t, 0, 0)
	tree.Push(rle.R(0, 20))
	if err := tree.ReplaceRangeAt(5, rle.R(100, 103)); err != nil {
		t.Fatal(err)
	}
	want := []rle.Range{rle.R(0, 5), rle.R(100, 103), rle.R(8, 20)}
	if got := entriesOf(tree); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	//
	tree = newRangeTree(t, 0, 0)
	for _, e := range []rle.Range{rle.R(0, 5), rle.R(10, 15), rle.R(20, 25)} {
		tree.Push(e)
	}
	c, _ := tree.MutCursorAtPos(3, false)
	if err := c.ReplaceRange(rle.R(50, 57)); err != nil {
		t.Fatal(err)
	}
	want = []rle.Range{rle.R(0, 3), rle.R(50, 57), rle.R(20, 25)}
	if got := entriesOf(tree); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if c.Pos() != 10 || tree.Len() != 15 {
		t.Fatalf("expected cursor at 10 in tree of length 15, have %d/%d", c.Pos(), tree.Len())
	}
	if err := tree.ReplaceRangeAt(14, rle.R(0, 5)); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected out of bounds replacing past the end, got %v", err)
	}
	if got := entriesOf(tree); !slices.Equal(got, want) {
		t.Fatalf("failed replace must not change the tree, have %v", got)
	}
	mustCheck(t, tree)
}

func TestReplaceEntry(t *testing.T) {
	tree := newRunTree(t, 0, 0)
	tree.Push(rle.Run{Start: 0, Length: 10})
	c, _ := tree.MutCursorAtPos(4, false)
	var reported []rle.Run
	c.ReplaceEntryNotify([]rle.Run{
		{Start: 0, Length: 3},
		{Start: 3, Length: 4, Deleted: true},
		{Start: 7, Length: 3},
	}, func(e rle.Run, _ LeafID) { reported = append(reported, e) })
	if len(reported) != 3 {
		t.Fatalf("expected 3 reported items, got %v", reported)
	}
	if c.Pos() != 0 {
		t.Fatalf("cursor should move to start of replaced entry, is at %d", c.Pos())
	}
	if n, _ := tree.ContentLen(); n != 6 {
		t.Fatalf("expected content length 6, have %d", n)
	}
	mustCheck(t, tree)
	expectPanic(t, "ReplaceEntry with 4 items", func() {
		c.ReplaceEntry(make([]rle.Run, 4))
	})
	// same length, merges back into one run
	c, _ = tree.MutCursorAtPos(5, false)
	c.ReplaceEntrySimple(rle.Run{Start: 3, Length: 4})
	if got := entriesOf(tree); !slices.Equal(got, []rle.Run{{Start: 0, Length: 10}}) {
		t.Fatalf("expected runs to merge after undelete, have %v", got)
	}
	if c.Pos() != 5 {
		t.Fatalf("ReplaceEntrySimple should keep cursor at 5, is at %d", c.Pos())
	}
	mustCheck(t, tree)
}

func TestMutateSingleEntry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "egwalker")
	defer teardown()
	//
	tree := newRunTree(t, 0, 0)
	tree.Push(rle.Run{Start: 0, Length: 10})
	c, _ := tree.MutCursorAtContent(2, false)
	n, wasVisible := MutateSingleEntryNotify(c, 3, nil, (*rle.Run).Delete)
	if n != 3 || !wasVisible {
		t.Fatalf("expected 3 visible units deleted, got %d/%v", n, wasVisible)
	}
	want := []rle.Run{{Start: 0, Length: 2}, {Start: 2, Length: 3, Deleted: true}, {Start: 5, Length: 5}}
	if got := entriesOf(tree); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if c.Pos() != 5 {
		t.Fatalf("cursor should move behind mutated units, is at %d", c.Pos())
	}
	// delete the remainder; it merges with the deleted run before it
	n, _ = MutateSingleEntryNotify(c, 100, nil, (*rle.Run).Delete)
	if n != 5 {
		t.Fatalf("expected remaining 5 units mutated, got %d", n)
	}
	want = []rle.Run{{Start: 0, Length: 2}, {Start: 2, Length: 8, Deleted: true}}
	if got := entriesOf(tree); !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if cl, _ := tree.ContentLen(); cl != 2 {
		t.Fatalf("expected content length 2, have %d", cl)
	}
	mustCheck(t, tree)
}

func TestContentPositions(t *testing.T) {
	tree := newRunTree(t, 4, 4)
	for i := range 60 {
		tree.Push(rle.Run{Start: i * 10, Length: 5, Deleted: i%3 == 1})
	}
	mustCheck(t, tree)
	visible := 0
	for i := range 60 {
		if i%3 == 1 {
			continue
		}
		c, err := tree.CursorAtContent(visible, false)
		if err != nil {
			t.Fatal(err)
		}
		if e, _ := c.Entry(); e.Start != i*10 || c.Offset() != 0 {
			t.Fatalf("content position %d should start run %d, is %v+%d", visible, i, e, c.Offset())
		}
		if got, _ := c.CountContentPos(); got != visible {
			t.Fatalf("cursor at content %d counts %d", visible, got)
		}
		if c.Pos() != i*5 {
			t.Fatalf("content position %d maps to raw %d, expected %d", visible, c.Pos(), i*5)
		}
		if id, _ := GetItem[int](c); id != i*10 {
			t.Fatalf("expected item %d, got %d", i*10, id)
		}
		visible += 5
	}
	if cl, _ := tree.ContentLen(); cl != visible {
		t.Fatalf("expected content length %d, have %d", visible, cl)
	}
	rangeTree := gappedTree(t, 3, 4, 4)
	if _, err := rangeTree.CursorAtContent(0, false); !errors.Is(err, ErrMetricUnavailable) {
		t.Fatalf("expected metric unavailable for raw tree, got %v", err)
	}
	if _, err := rangeTree.ContentLen(); !errors.Is(err, ErrMetricUnavailable) {
		t.Fatalf("expected metric unavailable for raw tree, got %v", err)
	}
}

func TestCursorAtQuery(t *testing.T) {
	tree := gappedTree(t, 30, 4, 4)
	// number entries instead of units
	c, err := tree.CursorAtQuery(7, false,
		func(v int) int { return v / 3 },
		func(rle.Range) int { return 1 },
	)
	if err != nil {
		t.Fatal(err)
	}
	if e, _ := c.Entry(); e != rle.R(70, 73) {
		t.Fatalf("expected entry #7, got %v", e)
	}
	n := c.CountPosRaw(
		func(v int) int { return v / 3 },
		func(rle.Range) int { return 1 },
		func(_ rle.Range, offset int) int { return offset / 3 },
	)
	if n != 7 {
		t.Fatalf("expected entry count 7 before cursor, got %d", n)
	}
}

func TestGetItemAtEntryEnd(t *testing.T) {
	tree := gappedTree(t, 12, 4, 4)
	c, _ := tree.CursorAtPos(3, true)
	id, err := GetItem[int](c)
	if err != nil || id != 10 {
		t.Fatalf("expected first item of following entry, got %d (%v)", id, err)
	}
	if _, err := GetItem[string](c); !errors.Is(err, ErrNotSearchable) {
		t.Fatalf("expected not searchable for string items, got %v", err)
	}
	if _, err := GetItem[int](tree.CursorAtEnd()); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Fatalf("expected out of bounds at end of tree, got %v", err)
	}
}

func TestToDot(t *testing.T) {
	tree := gappedTree(t, 30, 4, 4)
	var b strings.Builder
	if err := tree.ToDot(&b, 2); err != nil {
		t.Fatal(err)
	}
	dot := b.String()
	if !strings.HasPrefix(dot, "strict digraph {") || !strings.Contains(dot, "[0,3)") {
		t.Fatalf("unexpected DOT output:\n%s", dot)
	}
	leaves := 0
	for range tree.Leaves() {
		leaves++
	}
	if strings.Count(dot, "shape=box") != leaves {
		t.Fatalf("expected one box per leaf in:\n%s", dot)
	}
}
