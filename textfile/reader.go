package textfile

import "io"

// NewReader returns a reader for the bytes of text.
//
// The reader re-locates its position for every call of Read, so text may be
// edited between reads; reading continues at the same byte offset.
func NewReader(text *Text) io.Reader {
	return &textReader{text: text}
}

type textReader struct {
	text   *Text
	offset int // byte offset of the next byte to read
}

func (tr *textReader) Read(p []byte) (n int, err error) {
	if tr.offset >= tr.text.Summary().Bytes {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	c, err := tr.text.CursorAtOffset(tr.offset, false)
	if err != nil {
		return 0, err
	}
	pos, err := c.CountOffsetPos()
	if err != nil {
		return 0, err
	}
	// the cursor may have rounded up to a character start within its chunk
	e, _ := c.Entry()
	skip := tr.offset - (pos - e.ByteOffset(c.Offset()))
	for ch, ok := c.Next(); ok && n < len(p); ch, ok = c.Next() {
		n += copy(p[n:], ch.Bytes()[skip:])
		skip = 0
	}
	tr.offset += n
	return n, nil
}
