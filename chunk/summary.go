package chunk

import "math/bits"

// Summary aggregates chunk-level text metrics for tree routing.
//
// Tree-level code uses this summary to navigate and aggregate, while chunk
// code keeps ownership of local byte/rune boundary logic.
type Summary struct {
	Chars int
	Bytes int
	Lines int
}

// Summary returns aggregate metrics for this chunk.
func (c Chunk) Summary() Summary {
	return Summary{
		Chars: bits.OnesCount64(c.chars),
		Bytes: c.ByteLen(),
		Lines: bits.OnesCount64(c.newlines),
	}
}

// Metrics aggregates chunk summaries up a run tree.
//
// Characters form the primary index, bytes the alternate offset index.
type Metrics struct{}

// Zero returns the neutral summary value.
func (Metrics) Zero() Summary { return Summary{} }

// Add combines two summaries.
func (Metrics) Add(left, right Summary) Summary {
	return Summary{
		Chars: left.Chars + right.Chars,
		Bytes: left.Bytes + right.Bytes,
		Lines: left.Lines + right.Lines,
	}
}

// Of summarizes a single chunk.
func (Metrics) Of(c Chunk) Summary { return c.Summary() }

// Raw projects a summary onto character counts.
func (Metrics) Raw(s Summary) int { return s.Chars }

// Offset projects a summary onto byte counts.
func (Metrics) Offset(s Summary) int { return s.Bytes }

// OffsetAt returns the byte length of the first offset characters of c.
func (Metrics) OffsetAt(c Chunk, offset int) int { return c.ByteOffset(offset) }

// Lines projects a summary onto newline counts.
func (Metrics) Lines(s Summary) int { return s.Lines }
