package chunk

import "errors"

// Errors returned when building or cutting text runs.
var (
	ErrInvalidUTF8      = errors.New("chunk: text is not valid UTF-8")
	ErrChunkTooLarge    = errors.New("chunk: run longer than MaxBase bytes")
	ErrIndexOutOfBounds = errors.New("chunk: byte range outside of run")
	ErrNotCharBoundary  = errors.New("chunk: cut inside a character")
)
