package perception

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ladybugs/bookbot/pkg/frame"
	"github.com/ladybugs/bookbot/pkg/inference"
	"github.com/ladybugs/bookbot/pkg/speech"
)

// labelMaxTokens bounds single-label responses.
const labelMaxTokens = 20

// readMaxTokens bounds a full page read.
const readMaxTokens = 4096

// ambiguousRetries is how many times a call is re-asked when the model
// returns a label outside the known set, before falling back to the
// default.
const ambiguousRetries = 1

// Skills exposes the three perception operations.
type Skills struct {
	provider inference.Provider
	pipeline *speech.Pipeline // nil in silent mode
	logger   *slog.Logger
}

// NewSkills creates perception skills on top of an inference provider.
// pipeline may be nil, in which case ReadSide extracts text without
// speaking it.
func NewSkills(provider inference.Provider, pipeline *speech.Pipeline, logger *slog.Logger) *Skills {
	if logger == nil {
		logger = slog.Default()
	}
	return &Skills{
		provider: provider,
		pipeline: pipeline,
		logger:   logger.With("component", "perception"),
	}
}

// AssessScene classifies the workspace state from a frame.
// An ambiguous label is re-asked once, then defaults to book_open so the
// loop proceeds to the cheaper page classification.
func (s *Skills) AssessScene(ctx context.Context, f *frame.Frame) (SceneState, error) {
	for attempt := 0; ; attempt++ {
		resp, err := s.provider.Vision(ctx, &inference.VisionRequest{
			Image:     f.Image,
			Prompt:    promptAssessScene,
			Text:      "What is the current state of the scene?",
			MaxTokens: labelMaxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("perception: assess scene: %w", err)
		}

		state, ok := ParseSceneState(resp.Content)
		if ok {
			s.logger.Debug("scene assessed", "state", state, "latency_ms", resp.LatencyMs)
			return state, nil
		}
		if attempt >= ambiguousRetries {
			s.logger.Warn("ambiguous scene label, defaulting", "raw", resp.Content)
			return SceneBookOpen, nil
		}
		s.logger.Debug("ambiguous scene label, re-asking", "raw", resp.Content)
	}
}

// ClassifyPage classifies an open spread. Invoked only while the scene is
// book_open. Ambiguous labels default to content.
func (s *Skills) ClassifyPage(ctx context.Context, f *frame.Frame) (PageType, error) {
	for attempt := 0; ; attempt++ {
		resp, err := s.provider.Vision(ctx, &inference.VisionRequest{
			Image:     f.Image,
			Prompt:    promptClassifyPage,
			Text:      "Classify this page.",
			MaxTokens: labelMaxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("perception: classify page: %w", err)
		}

		pageType, ok := ParsePageType(resp.Content)
		if ok {
			s.logger.Debug("page classified", "type", pageType, "latency_ms", resp.LatencyMs)
			return pageType, nil
		}
		if attempt >= ambiguousRetries {
			s.logger.Warn("ambiguous page label, defaulting", "raw", resp.Content)
			return PageContent, nil
		}
		s.logger.Debug("ambiguous page label, re-asking", "raw", resp.Content)
	}
}

// ReadSide streams the text of one half of the spread and feeds the speech
// pipeline as fragments arrive. It returns only after the final sentence
// has finished playing (or, in silent mode, after the stream drains), so
// the left page always finishes before the right page starts.
func (s *Skills) ReadSide(ctx context.Context, f *frame.Frame, side Side, mode Mode) (*speech.Unit, error) {
	stream, err := s.provider.VisionStream(ctx, &inference.VisionRequest{
		Image:     f.Image,
		Prompt:    readPrompt(side, mode),
		Text:      "Read this book page and return the text.",
		MaxTokens: readMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("perception: read %s: %w", side, err)
	}
	defer stream.Close()

	in := &streamAdapter{stream: stream}

	var unit *speech.Unit
	if s.pipeline != nil {
		unit, err = s.pipeline.Speak(ctx, in)
	} else {
		unit, err = speech.Collect(ctx, in)
	}
	if err != nil {
		return unit, fmt.Errorf("perception: read %s: %w", side, err)
	}

	s.logger.Info("page side read",
		"side", side,
		"mode", mode,
		"chars", len(unit.Text()),
		"sentences", len(unit.Sentences()),
	)
	return unit, nil
}

// streamAdapter exposes an inference stream as a speech fragment stream.
type streamAdapter struct {
	stream inference.Stream
}

// Next returns the next non-empty delta, io.EOF at end of stream.
func (a *streamAdapter) Next() (string, error) {
	for {
		chunk, err := a.stream.Recv()
		if err != nil {
			return "", err
		}
		if chunk.Delta != "" {
			return chunk.Delta, nil
		}
		if chunk.Done {
			return "", io.EOF
		}
	}
}

var _ speech.FragmentStream = (*streamAdapter)(nil)
