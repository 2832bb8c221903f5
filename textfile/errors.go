package textfile

import "errors"

var (
	// ErrNotRegular signals an attempt to load something other than a regular file.
	ErrNotRegular = errors.New("textfile: not a regular file")
	// ErrNotText signals file content which is not valid UTF-8.
	ErrNotText = errors.New("textfile: not UTF-8 text")
	// ErrIncomplete signals that not all bytes of a file could be loaded.
	ErrIncomplete = errors.New("textfile: incomplete load")
)
