// Package speech converts an incrementally-arriving text stream into
// continuously playing audio.
//
// A pipeline run has three concurrently active stages connected by bounded
// channels: the receiver segments incoming fragments into sentences, the
// synthesizer turns sentences into audio chunks (concurrently, so chunks may
// complete out of order), and the player plays chunks strictly in sentence
// order. The run returns only after the final chunk has played and the text
// stream has signaled completion, so spoken output is acoustically
// equivalent to reading the full extracted text start to end.
package speech

import (
	"io"
	"strings"
	"sync"
)

// Fragment is one raw text delta from the extraction stream, tagged with
// its emission index.
type Fragment struct {
	Index int
	Text  string
}

// Sentence is one segmented sentence, tagged with its emission index.
// Playback order equals sentence index order.
type Sentence struct {
	Index int
	Text  string
}

// Unit is the ordered record of one reading invocation: every fragment
// received and every sentence spoken. Owned by the pipeline while the
// invocation runs; safe to read after Speak returns.
type Unit struct {
	mu        sync.Mutex
	fragments []Fragment
	sentences []Sentence
}

// NewUnit creates an empty speech unit.
func NewUnit() *Unit {
	return &Unit{}
}

func (u *Unit) appendFragment(text string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.fragments = append(u.fragments, Fragment{Index: len(u.fragments), Text: text})
}

func (u *Unit) appendSentence(s Sentence) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.sentences = append(u.sentences, s)
}

// Text returns the full extracted text, fragments concatenated in order.
func (u *Unit) Text() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	var b strings.Builder
	for _, f := range u.fragments {
		b.WriteString(f.Text)
	}
	return b.String()
}

// Sentences returns the segmented sentences in emission order.
func (u *Unit) Sentences() []Sentence {
	u.mu.Lock()
	defer u.mu.Unlock()
	result := make([]Sentence, len(u.sentences))
	copy(result, u.sentences)
	return result
}

// Fragments returns the raw fragments in emission order.
func (u *Unit) Fragments() []Fragment {
	u.mu.Lock()
	defer u.mu.Unlock()
	result := make([]Fragment, len(u.fragments))
	copy(result, u.fragments)
	return result
}

// FragmentStream supplies text deltas for one reading invocation.
// Next returns io.EOF after the final delta.
type FragmentStream interface {
	Next() (string, error)
}

// SliceStream replays fixed deltas as a FragmentStream, for tests and
// single-shot synthesis of already-extracted text.
type SliceStream struct {
	deltas []string
	next   int
}

// NewSliceStream creates a stream over the given deltas.
func NewSliceStream(deltas ...string) *SliceStream {
	return &SliceStream{deltas: deltas}
}

// Next returns the next delta or io.EOF.
func (s *SliceStream) Next() (string, error) {
	if s.next >= len(s.deltas) {
		return "", io.EOF
	}
	d := s.deltas[s.next]
	s.next++
	return d, nil
}

var _ FragmentStream = (*SliceStream)(nil)
