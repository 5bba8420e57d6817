package speech_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ladybugs/bookbot/pkg/audio"
	"github.com/ladybugs/bookbot/pkg/speech"
	"github.com/ladybugs/bookbot/pkg/tts"
)

// echoVoice returns a mock whose audio payload is the synthesized text
// itself, so playback order can be checked against sentence text.
func echoVoice(name string, delay time.Duration) *tts.Mock {
	m := tts.NewMock(name)
	m.SynthesizeFunc = func(ctx context.Context, text string) (*tts.AudioResult, error) {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		return &tts.AudioResult{Audio: []byte(text), CharCount: len(text)}, nil
	}
	return m
}

func newPipeline(t *testing.T, sink audio.Sink, voices ...tts.Provider) *speech.Pipeline {
	t.Helper()
	p, err := speech.New(speech.Config{Voices: voices, Sink: sink})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestSpeakPlaysInSentenceOrder(t *testing.T) {
	// The first voice is slow and the second fast, so even-indexed
	// sentences finish synthesis after their odd-indexed successors.
	// Playback must still follow sentence order.
	slow := echoVoice("slow", 60*time.Millisecond)
	fast := echoVoice("fast", time.Millisecond)
	sink := audio.NewMockSink()
	p := newPipeline(t, sink, slow, fast)

	in := speech.NewSliceStream(
		"One is here. Two is ",
		"here. Three is here. ",
		"Four trailing",
	)
	unit, err := p.Speak(context.Background(), in)
	if err != nil {
		t.Fatalf("Speak: %v", err)
	}

	want := []string{"One is here.", "Two is here.", "Three is here.", "Four trailing"}
	sentences := unit.Sentences()
	if len(sentences) != len(want) {
		t.Fatalf("got %d sentences, want %d", len(sentences), len(want))
	}
	for i, s := range sentences {
		if s.Index != i || s.Text != want[i] {
			t.Errorf("sentence %d = {%d %q}, want {%d %q}", i, s.Index, s.Text, i, want[i])
		}
	}

	played := sink.Played()
	if len(played) != len(want) {
		t.Fatalf("got %d played chunks, want %d", len(played), len(want))
	}
	for i, chunk := range played {
		if string(chunk) != want[i] {
			t.Errorf("played[%d] = %q, want %q", i, chunk, want[i])
		}
	}
}

func TestSpeakAlternatesVoices(t *testing.T) {
	a := tts.NewMock("a")
	b := tts.NewMock("b")
	sink := audio.NewMockSink()
	p := newPipeline(t, sink, a, b)

	if _, err := p.Speak(context.Background(), speech.NewSliceStream(
		"First one. Second one. Third one. Fourth one.",
	)); err != nil {
		t.Fatalf("Speak: %v", err)
	}

	if got := a.CallCount("Synthesize"); got != 2 {
		t.Errorf("voice a synthesized %d sentences, want 2", got)
	}
	if got := b.CallCount("Synthesize"); got != 2 {
		t.Errorf("voice b synthesized %d sentences, want 2", got)
	}
	for _, call := range a.Calls() {
		if call.Method == "Synthesize" && call.Text != "First one." && call.Text != "Third one." {
			t.Errorf("voice a got sentence %q, want even-indexed sentences only", call.Text)
		}
	}
}

func TestSpeakRecordsTextOnSynthesisError(t *testing.T) {
	boom := errors.New("synthesis down")
	sink := audio.NewMockSink()
	p := newPipeline(t, sink, tts.WithError(boom))

	unit, err := p.Speak(context.Background(), speech.NewSliceStream("Hello there. "))
	if !errors.Is(err, boom) {
		t.Fatalf("Speak error = %v, want %v", err, boom)
	}
	if got := unit.Text(); got != "Hello there. " {
		t.Errorf("unit text = %q, want the full received text", got)
	}
}

func TestSpeakPropagatesStreamError(t *testing.T) {
	boom := errors.New("stream broke")
	sink := audio.NewMockSink()
	p := newPipeline(t, sink, tts.NewMock("a"))

	_, err := p.Speak(context.Background(), &failingStream{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("Speak error = %v, want %v", err, boom)
	}
}

func TestSpeakCancelStopsPlaybackPromptly(t *testing.T) {
	sink := audio.NewMockSink()
	sink.PlayDelay = 5 * time.Second
	p := newPipeline(t, sink, tts.NewMock("a"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := p.Speak(ctx, speech.NewSliceStream("One here. Two here. Three here. "))
	if err == nil {
		t.Fatal("Speak returned nil error after cancel")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Speak took %s to unwind after cancel", elapsed)
	}
}

type failingStream struct{ err error }

func (f *failingStream) Next() (string, error) { return "", f.err }

func TestCollect(t *testing.T) {
	t.Run("segments without synthesis", func(t *testing.T) {
		unit, err := speech.Collect(context.Background(), speech.NewSliceStream(
			"He said \"Stop.\" Then he left",
		))
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		want := []string{"He said \"Stop.\"", "Then he left"}
		got := unit.Sentences()
		if len(got) != len(want) {
			t.Fatalf("got %d sentences %v, want %d", len(got), got, len(want))
		}
		for i := range want {
			if got[i].Text != want[i] {
				t.Errorf("sentence %d = %q, want %q", i, got[i].Text, want[i])
			}
		}
	})

	t.Run("empty stream", func(t *testing.T) {
		unit, err := speech.Collect(context.Background(), speech.NewSliceStream())
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if n := len(unit.Sentences()); n != 0 {
			t.Errorf("got %d sentences, want 0", n)
		}
	})

	t.Run("terminator split across deltas", func(t *testing.T) {
		unit, err := speech.Collect(context.Background(), speech.NewSliceStream(
			"Is this a question", "? Yes! It is.",
		))
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		want := []string{"Is this a question?", "Yes!", "It is."}
		got := unit.Sentences()
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i].Text != want[i] {
				t.Errorf("sentence %d = %q, want %q", i, got[i].Text, want[i])
			}
		}
	})
}
