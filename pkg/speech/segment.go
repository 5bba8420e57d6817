package speech

import (
	"regexp"
	"strings"
)

// sentenceEnd matches sentence-ending punctuation followed by whitespace.
// Trailing text without a terminator is held until more arrives or the
// stream closes.
var sentenceEnd = regexp.MustCompile(`[.!?]["')\]]*\s`)

// segmenter accumulates text deltas and cuts them into complete sentences
// as soon as sentence-ending punctuation is observed.
type segmenter struct {
	buf  strings.Builder
	next int
}

// feed appends a delta and returns any newly completed sentences.
func (s *segmenter) feed(delta string) []Sentence {
	s.buf.WriteString(delta)

	var out []Sentence
	rest := s.buf.String()
	for {
		loc := sentenceEnd.FindStringIndex(rest)
		if loc == nil {
			break
		}
		text := strings.TrimSpace(rest[:loc[1]])
		rest = rest[loc[1]:]
		if text == "" {
			continue
		}
		out = append(out, Sentence{Index: s.next, Text: text})
		s.next++
	}

	s.buf.Reset()
	s.buf.WriteString(rest)
	return out
}

// flush returns the held trailing fragment as a final sentence, if any.
// Called once when the stream closes.
func (s *segmenter) flush() (Sentence, bool) {
	text := strings.TrimSpace(s.buf.String())
	s.buf.Reset()
	if text == "" {
		return Sentence{}, false
	}
	sent := Sentence{Index: s.next, Text: text}
	s.next++
	return sent, true
}
