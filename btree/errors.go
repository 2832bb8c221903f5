package btree

import "errors"

var (
	// ErrInvalidConfig signals an invalid tree configuration.
	ErrInvalidConfig = errors.New("btree: invalid configuration")
	// ErrIndexOutOfBounds signals an invalid positional index.
	ErrIndexOutOfBounds = errors.New("btree: index out of bounds")
	// ErrMetricUnavailable signals a query through a metric the tree's
	// Metrics strategy does not provide.
	ErrMetricUnavailable = errors.New("btree: metric unavailable")
	// ErrNotSearchable signals that entries do not support item extraction.
	ErrNotSearchable = errors.New("btree: entry type is not searchable")
	// ErrNotFound signals that a leaf scan did not find the requested item.
	ErrNotFound = errors.New("btree: item not found")
)
