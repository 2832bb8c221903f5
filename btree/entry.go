package btree

// Entry is the contract for values stored in a tree.
//
// An entry covers Len() > 0 consecutive logical units. Entries are values; the
// tree copies them freely and never relies on identity.
type Entry[E any] interface {
	// Len returns the number of units covered.
	Len() int
	// Truncate splits the entry into [0,at) and [at,Len()), 0 < at < Len().
	Truncate(at int) (head, tail E)
	// CanAppend reports whether next can be concatenated losslessly.
	CanAppend(next E) bool
	// Append returns the concatenation. Only called if CanAppend holds.
	Append(next E) E
}

// ContentLength is implemented by entries of which only some units count as
// visible content, e.g. tombstones of deleted text.
type ContentLength interface {
	ContentLen() int
	// ContentLenAt returns the content length of the prefix [0,offset).
	ContentLenAt(offset int) int
}

// OffsetLength is implemented by entries with an alternate offset numbering,
// e.g. byte lengths of text counted in characters.
type OffsetLength interface {
	OffsetLen() int
	// OffsetLenAt returns the offset length of the prefix [0,offset).
	OffsetLenAt(offset int) int
}

// Searchable is implemented by entries from which single items may be extracted.
type Searchable[T any] interface {
	At(offset int) T
}

// ContentEntry is an entry with a content length.
type ContentEntry[E any] interface {
	Entry[E]
	ContentLength
}

// OffsetEntry is an entry with an alternate offset length.
type OffsetEntry[E any] interface {
	Entry[E]
	OffsetLength
}

// LeafID identifies a leaf node. It stays valid for as long as the leaf exists.
type LeafID int

// Notify is called once for every entry which arrived in a leaf during a
// mutation, with the entry's final value and leaf. It is invoked after the
// mutation has completed and must not mutate the tree.
type Notify[E any] func(e E, leaf LeafID)
