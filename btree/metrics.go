package btree

// Metrics defines how entries are aggregated up the tree.
//
// For aggregates a, b, c, Add must be associative and Zero its neutral element:
//
//	Add(Add(a, b), c) == Add(a, Add(b, c))
//	Add(Zero(), a) == a == Add(a, Zero())
//
// Raw projects an aggregate onto the primary index and must equal the sum of
// Len() of the entries aggregated.
type Metrics[E any, V any] interface {
	Zero() V
	Add(acc, v V) V
	Of(e E) V
	Raw(v V) int
}

// FindContent is an optional capability of a Metrics strategy: a content
// position which skips units that are not visible.
type FindContent[E any, V any] interface {
	Content(v V) int
	// ContentAt returns the content count of the prefix [0,offset) of e.
	ContentAt(e E, offset int) int
}

// FindOffset is an optional capability of a Metrics strategy: an alternate
// offset numbering, such as bytes.
type FindOffset[E any, V any] interface {
	Offset(v V) int
	// OffsetAt returns the offset count of the prefix [0,offset) of e.
	OffsetAt(e E, offset int) int
}

// --- Stock strategies ------------------------------------------------------

// RawMetrics aggregates entry lengths only.
type RawMetrics[E Entry[E]] struct{}

func (RawMetrics[E]) Zero() int          { return 0 }
func (RawMetrics[E]) Add(acc, v int) int { return acc + v }
func (RawMetrics[E]) Of(e E) int         { return e.Len() }
func (RawMetrics[E]) Raw(v int) int      { return v }

// ContentPos aggregates raw and content lengths.
type ContentPos struct {
	Raw     int
	Content int
}

// ContentMetrics aggregates raw and content lengths of ContentEntry values.
type ContentMetrics[E ContentEntry[E]] struct{}

func (ContentMetrics[E]) Zero() ContentPos { return ContentPos{} }
func (ContentMetrics[E]) Add(acc, v ContentPos) ContentPos {
	return ContentPos{Raw: acc.Raw + v.Raw, Content: acc.Content + v.Content}
}
func (ContentMetrics[E]) Of(e E) ContentPos {
	return ContentPos{Raw: e.Len(), Content: e.ContentLen()}
}
func (ContentMetrics[E]) Raw(v ContentPos) int          { return v.Raw }
func (ContentMetrics[E]) Content(v ContentPos) int      { return v.Content }
func (ContentMetrics[E]) ContentAt(e E, offset int) int { return e.ContentLenAt(offset) }

// OffsetPos aggregates raw and offset lengths.
type OffsetPos struct {
	Raw    int
	Offset int
}

// OffsetMetrics aggregates raw and offset lengths of OffsetEntry values.
type OffsetMetrics[E OffsetEntry[E]] struct{}

func (OffsetMetrics[E]) Zero() OffsetPos { return OffsetPos{} }
func (OffsetMetrics[E]) Add(acc, v OffsetPos) OffsetPos {
	return OffsetPos{Raw: acc.Raw + v.Raw, Offset: acc.Offset + v.Offset}
}
func (OffsetMetrics[E]) Of(e E) OffsetPos {
	return OffsetPos{Raw: e.Len(), Offset: e.OffsetLen()}
}
func (OffsetMetrics[E]) Raw(v OffsetPos) int          { return v.Raw }
func (OffsetMetrics[E]) Offset(v OffsetPos) int       { return v.Offset }
func (OffsetMetrics[E]) OffsetAt(e E, offset int) int { return e.OffsetLenAt(offset) }

// measure bundles the conversions used to navigate along one numbering.
//
// at may be nil if units of the numbering map one-to-one onto entry offsets
// wherever num(e) > 0.
type measure[E any, V any] struct {
	agg func(V) int
	num func(E) int
	at  func(E, int) int
}

func (t *Tree[E, V]) rawMeasure() measure[E, V] {
	return measure[E, V]{
		agg: t.cfg.Metrics.Raw,
		num: func(e E) int { return e.Len() },
		at:  func(_ E, offset int) int { return offset },
	}
}

func (t *Tree[E, V]) contentMeasure() (measure[E, V], error) {
	fc, ok := t.cfg.Metrics.(FindContent[E, V])
	if !ok {
		return measure[E, V]{}, ErrMetricUnavailable
	}
	return measure[E, V]{
		agg: fc.Content,
		num: func(e E) int { return fc.ContentAt(e, e.Len()) },
		at:  fc.ContentAt,
	}, nil
}

func (t *Tree[E, V]) offsetMeasure() (measure[E, V], error) {
	fo, ok := t.cfg.Metrics.(FindOffset[E, V])
	if !ok {
		return measure[E, V]{}, ErrMetricUnavailable
	}
	return measure[E, V]{
		agg: fo.Offset,
		num: func(e E) int { return fo.OffsetAt(e, e.Len()) },
		at:  fo.OffsetAt,
	}, nil
}
