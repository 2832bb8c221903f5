package textfile

import (
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/npillmayer/uax/grapheme"
)

// maxSegment bounds the text handed to the grapheme breaker in one go. It
// stays below the 32766 bytes a grapheme.String may be built from.
const maxSegment = 32000

const zwj = '\u200d'

var setupGraphemes sync.Once

// clusters splits valid UTF-8 text into user-perceived characters.
//
// Clusters of the grapheme breaker are joined where it leaves a mark, an
// emoji modifier or a joiner at the start of a cluster, or breaks an emoji
// sequence after a joiner. Text longer than maxSegment is segmented in
// windows cut at rune starts.
func clusters(s string) []string {
	setupGraphemes.Do(grapheme.SetupGraphemeClasses)
	var out []string
	pos := 0
	for pos < len(s) {
		end := len(s)
		if end-pos > maxSegment {
			end = pos + runeCut(s[pos:], maxSegment)
		}
		gstr := grapheme.StringFromString(s[pos:end])
		for i := 0; i < gstr.Len() && pos < end; i++ {
			c := gstr.Nth(i)
			if len(c) == 0 {
				continue
			}
			if n := len(out); n > 0 && continues(out[n-1], c) {
				out[n-1] = s[pos-len(out[n-1]) : pos+len(c)]
			} else {
				out = append(out, s[pos:pos+len(c)])
			}
			pos += len(c)
		}
		if pos < end { // breaker gave up, keep the rest in one piece
			out = append(out, s[pos:end])
			pos = end
		}
	}
	return out
}

// continues reports whether cluster next must not be separated from prev.
func continues(prev, next string) bool {
	r, _ := utf8.DecodeRuneInString(next)
	if r == zwj || isExtending(r) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(prev)
	return last == zwj && unicode.Is(unicode.So, r)
}

// isExtending reports whether r attaches to the character before it.
func isExtending(r rune) bool {
	return unicode.In(r, unicode.Mn, unicode.Me, unicode.Mc) ||
		(r >= 0x1F3FB && r <= 0x1F3FF) // emoji skin tone modifiers
}

// runeCut returns the largest index in (0,limit] at which a rune of s starts,
// or limit if there is none. s must be longer than limit.
func runeCut(s string, limit int) int {
	for i := limit; i > 0; i-- {
		if utf8.RuneStart(s[i]) {
			return i
		}
	}
	return limit
}
