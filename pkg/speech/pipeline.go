package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ladybugs/bookbot/pkg/audio"
	"github.com/ladybugs/bookbot/pkg/tts"
)

// Defaults for pipeline tuning.
const (
	// DefaultQueueSize bounds the sentence and audio hand-off channels so a
	// slow stage creates backpressure instead of unbounded buffering.
	DefaultQueueSize = 8

	// DefaultPrefetch is the maximum number of synthesis requests in flight.
	DefaultPrefetch = 2
)

// Sentinel errors returned by the pipeline.
var (
	// ErrNoVoices is returned when no synthesis voice is configured.
	ErrNoVoices = errors.New("speech: at least one voice required")

	// ErrNoSink is returned when no audio sink is configured.
	ErrNoSink = errors.New("speech: audio sink required")
)

// Config holds pipeline construction parameters.
type Config struct {
	// Voices are the synthesis providers in alternation order; sentence i
	// is synthesized by Voices[i % len(Voices)].
	Voices []tts.Provider

	// Sink is the audio output device, claimed for the whole invocation.
	Sink audio.Sink

	// QueueSize bounds the inter-stage channels. Defaults to DefaultQueueSize.
	QueueSize int

	// Prefetch bounds concurrent synthesis requests. Defaults to DefaultPrefetch.
	Prefetch int

	// Logger for pipeline events.
	Logger *slog.Logger
}

// Pipeline runs the receiver/synthesizer/player stages for reading
// invocations. One Speak call is active at a time; the orchestrator blocks
// on it until the audio has fully drained.
type Pipeline struct {
	voices    []tts.Provider
	sink      audio.Sink
	queueSize int
	prefetch  int
	logger    *slog.Logger
}

// New creates a pipeline from the given configuration.
func New(cfg Config) (*Pipeline, error) {
	if len(cfg.Voices) == 0 {
		return nil, ErrNoVoices
	}
	if cfg.Sink == nil {
		return nil, ErrNoSink
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = DefaultPrefetch
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		voices:    cfg.Voices,
		sink:      cfg.Sink,
		queueSize: queueSize,
		prefetch:  prefetch,
		logger:    logger.With("component", "speech.pipeline"),
	}, nil
}

// chunk is synthesized audio tagged with its sentence index. Synthesis may
// complete out of order; the player restores emission order.
type chunk struct {
	index int
	audio []byte
}

// Speak drains the text stream through all three stages and blocks until
// the final sentence has finished playing. The returned Unit records every
// fragment and sentence even when an error cut the run short.
//
// Cancelling ctx flushes pending queues and stops playback promptly.
func (p *Pipeline) Speak(ctx context.Context, in FragmentStream) (*Unit, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unit := NewUnit()
	sentences := make(chan Sentence, p.queueSize)
	synthesized := make(chan chunk, p.queueSize)

	errc := make(chan error, 4)
	fail := func(err error) {
		select {
		case errc <- err:
		default:
		}
		cancel()
	}

	// Stage 1: receiver. Appends fragments to the unit and segments them
	// into sentences as terminators arrive; the trailing fragment is
	// flushed when the stream closes.
	go func() {
		defer close(sentences)

		seg := &segmenter{}
		emit := func(s Sentence) bool {
			unit.appendSentence(s)
			select {
			case sentences <- s:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			delta, err := in.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				fail(fmt.Errorf("speech: text stream: %w", err))
				return
			}
			if delta == "" {
				continue
			}
			unit.appendFragment(delta)
			for _, s := range seg.feed(delta) {
				if !emit(s) {
					return
				}
			}
		}
		if s, ok := seg.flush(); ok {
			emit(s)
		}
	}()

	// Stage 2: synthesizer. Bounded concurrent requests; each result is
	// tagged with its sentence index since completions may be out of order.
	go func() {
		var wg sync.WaitGroup
		sem := make(chan struct{}, p.prefetch)

	receive:
		for s := range sentences {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				break receive
			}

			wg.Add(1)
			go func(s Sentence) {
				defer wg.Done()
				defer func() { <-sem }()

				voice := p.voices[s.Index%len(p.voices)]
				result, err := voice.Synthesize(ctx, s.Text)
				if err != nil {
					fail(fmt.Errorf("speech: synthesize sentence %d: %w", s.Index, err))
					return
				}

				p.logger.Debug("sentence synthesized",
					"index", s.Index,
					"chars", len(s.Text),
					"bytes", len(result.Audio),
				)

				select {
				case synthesized <- chunk{index: s.Index, audio: result.Audio}:
				case <-ctx.Done():
				}
			}(s)
		}

		wg.Wait()
		close(synthesized)
	}()

	// Stage 3: player. Buffers out-of-order chunks and plays strictly in
	// ascending sentence index, back to back.
	pending := make(map[int][]byte)
	next := 0

playback:
	for c := range synthesized {
		pending[c.index] = c.audio
		for {
			buf, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)

			if err := p.sink.Play(ctx, buf); err != nil {
				fail(fmt.Errorf("speech: play sentence %d: %w", next, err))
				// Drain so the upstream stages can finish.
				for range synthesized {
				}
				break playback
			}
			next++
		}
	}

	select {
	case err := <-errc:
		return unit, err
	default:
	}

	p.logger.Debug("pipeline drained", "sentences", next)
	return unit, nil
}
