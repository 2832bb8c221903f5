package textfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"

	"github.com/Leeeon233/egwalker-paper/btree"
	"github.com/Leeeon233/egwalker-paper/chunk"
	"github.com/guiguan/caster"
)

// Some constants for fragment size defaults
const (
	twoKb     = 2048
	sixKb     = 6144
	tenKb     = 10240
	hundredKb = 102400
	oneMb     = 1048576
)

// subscriberQueue is the channel capacity of every fragment subscriber.
const subscriberQueue = 16

// Text is a text held in a run tree of chunks. Its raw position counts
// characters; bytes are available as offset positions.
type Text = btree.Tree[chunk.Chunk, chunk.Summary]

// Fragment is a piece of a text file as read by the loader. Fragments end
// between user-perceived characters, so no character is ever cut.
type Fragment struct {
	Pos  int64 // byte position within the file
	Text string
}

// textFile represents an OS file which will be loaded as a Text.
type textFile struct {
	path     string         // file name
	info     os.FileInfo    // result from Stat(path)
	file     *os.File       // file handle
	cast     *caster.Caster // broadcaster for fragments
	fragSize int64
	mu       sync.Mutex
	err      error // first I/O or decoding error
}

// NewText creates an empty text.
func NewText() *Text {
	text, err := btree.New(btree.Config[chunk.Chunk, chunk.Summary]{Metrics: chunk.Metrics{}})
	if err != nil {
		panic(err) // stock configuration is always valid
	}
	return text
}

// Load reads a file, which must be a UTF-8 text file, into a Text.
// Clients may indicate a recommended fragment length; 0 lets Load choose one
// from the file size.
//
// Fragments are read by a background goroutine and broadcast to subscribers.
// The text builder is one of them, every watcher is another, receiving each
// fragment in file order. Load returns after all subscribers are done.
func Load(ctx context.Context, name string, fragSize int64, watchers ...func(Fragment)) (*Text, error) {
	tf, err := openFile(ctx, name)
	if err != nil {
		return nil, err
	}
	defer tf.file.Close()
	tf.fragSize = fragmentSize(tf.info.Size(), fragSize)
	tracer().Debugf("textfile: loading %s, %d bytes in fragments of %d", name, tf.info.Size(), tf.fragSize)
	//
	text := NewText()
	var wg sync.WaitGroup
	var loaded int64
	var buildErr error
	build := func(f Fragment) {
		if buildErr != nil {
			return
		}
		loaded += int64(len(f.Text))
		buildErr = AppendString(text, f.Text)
	}
	// subscribe everybody before the first fragment is published
	for _, w := range append([]func(Fragment){build}, watchers...) {
		ch, ok := tf.cast.Sub(ctx, subscriberQueue)
		if !ok {
			tf.cast.Close()
			wg.Wait()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: cannot subscribe to loader of %s", ErrIncomplete, name)
		}
		wg.Add(1)
		go func(ch <-chan interface{}) {
			defer wg.Done()
			for m := range ch {
				w(m.(Fragment))
			}
		}(ch)
	}
	go tf.loadFragments(ctx)
	wg.Wait()
	//
	if err := tf.lastError(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if buildErr != nil {
		return nil, buildErr
	}
	if loaded != tf.info.Size() {
		return nil, fmt.Errorf("%w: %d of %d bytes of %s", ErrIncomplete, loaded, tf.info.Size(), name)
	}
	return text, nil
}

// fragmentSize chooses a fragment length for a file of the given size.
func fragmentSize(size, requested int64) int64 {
	if requested > 0 && requested <= tenKb {
		return requested
	}
	switch {
	case size < 64:
		return max(size, 1)
	case size < 1024:
		return 64
	case size < tenKb:
		return 256
	case size < hundredKb:
		return 512
	case size < oneMb:
		return twoKb
	}
	return sixKb
}

// openFile opens an OS file and collects some useful information on it,
// checking for error conditions.
func openFile(ctx context.Context, name string) (*textFile, error) {
	fi, err := os.Stat(name)
	if err != nil {
		return nil, err
	} else if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, name)
	}
	file, err := os.Open(name) // just open for read access
	if err != nil {
		return nil, err
	}
	tf := &textFile{
		path: name,
		info: fi,
		file: file,
		cast: caster.New(ctx), // we will broadcast messages when fragments are loaded
	}
	return tf, nil
}

func (tf *textFile) fail(err error) {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	if tf.err == nil {
		tf.err = err
		tracer().Errorf("textfile: %v", err)
	}
}

func (tf *textFile) lastError() error {
	tf.mu.Lock()
	defer tf.mu.Unlock()
	return tf.err
}

// --- File loading goroutine ------------------------------------------------

// loadFragments reads the file front to back and publishes fragments cut at
// grapheme cluster boundaries. Bytes after the last boundary of a read are
// carried over into the next fragment. Closing the caster ends all
// subscriptions.
func (tf *textFile) loadFragments(ctx context.Context) {
	defer tf.cast.Close()
	size := tf.info.Size()
	var carry []byte
	for pos := int64(0); pos < size; pos += tf.fragSize {
		if err := ctx.Err(); err != nil {
			tf.fail(err)
			return
		}
		n := min(tf.fragSize, size-pos)
		buf := make([]byte, len(carry)+int(n))
		copy(buf, carry)
		cnt, err := tf.file.ReadAt(buf[len(carry):], pos)
		if err != nil && err != io.EOF {
			tf.fail(fmt.Errorf("%w: reading fragment at %d: %w", ErrIncomplete, pos, err))
			return
		} else if int64(cnt) < n {
			tf.fail(fmt.Errorf("%w: not all bytes loaded for fragment at %d", ErrIncomplete, pos))
			return
		}
		start := pos - int64(len(carry))
		frag, rest := buf, []byte(nil)
		if pos+n < size {
			frag, rest = cutFragment(buf)
		}
		if !utf8.Valid(frag) {
			tf.fail(fmt.Errorf("%w: in fragment at %d", ErrNotText, start))
			return
		}
		carry = append(carry[:0], rest...)
		if len(frag) == 0 {
			continue
		}
		tracer().Debugf("textfile: fragment at %d, %d bytes", start, len(frag))
		if !tf.cast.Pub(Fragment{Pos: start, Text: string(frag)}) {
			tf.fail(fmt.Errorf("%w: loader closed at %d", ErrIncomplete, start))
			return
		}
	}
	if len(carry) > 0 {
		tf.fail(fmt.Errorf("%w: %d trailing bytes", ErrNotText, len(carry)))
	}
}

// cutFragment splits buf before its last character, which may continue in
// the following bytes of the file. A buffer holding a single character is
// carried over completely.
func cutFragment(buf []byte) (frag, rest []byte) {
	end := len(buf)
	for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
		if utf8.RuneStart(buf[i]) {
			if !utf8.FullRune(buf[i:]) {
				end = i
			}
			break
		}
	}
	if end > maxSegment || !utf8.Valid(buf[:end]) {
		return buf[:end], buf[end:]
	}
	if cs := clusters(string(buf[:end])); len(cs) > 0 {
		end -= len(cs[len(cs)-1])
	}
	return buf[:end], buf[end:]
}

// AppendString appends s to text, in chunks cut between characters.
// Characters longer than a chunk are cut between runes. Text which is not
// valid UTF-8 is rejected with ErrNotText.
func AppendString(text *Text, s string) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: invalid UTF-8", ErrNotText)
	}
	push := func(part string) error {
		c, err := chunk.New(part)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNotText, err)
		}
		text.Push(c)
		return nil
	}
	start, end := 0, 0 // pending chunk is s[start:end]
	for _, c := range clusters(s) {
		n := len(c)
		if end > start && end+n-start > chunk.MaxBase {
			if err := push(s[start:end]); err != nil {
				return err
			}
			start = end
		}
		end += n
		for end-start > chunk.MaxBase {
			cut := chunk.MaxBase
			for cut > 0 && !utf8.RuneStart(s[start+cut]) {
				cut--
			}
			if err := push(s[start : start+cut]); err != nil {
				return err
			}
			start += cut
		}
	}
	if end > start {
		return push(s[start:end])
	}
	return nil
}

// String returns the content of text.
func String(text *Text) string {
	b := make([]byte, 0, text.Summary().Bytes)
	for c := range text.All() {
		b = append(b, c.Bytes()...)
	}
	return string(b)
}
