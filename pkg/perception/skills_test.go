package perception_test

import (
	"context"
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/ladybugs/bookbot/pkg/audio"
	"github.com/ladybugs/bookbot/pkg/frame"
	"github.com/ladybugs/bookbot/pkg/inference"
	"github.com/ladybugs/bookbot/pkg/perception"
	"github.com/ladybugs/bookbot/pkg/speech"
	"github.com/ladybugs/bookbot/pkg/tts"
)

func testFrame(t *testing.T) *frame.Frame {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 16)})
		}
	}
	f, err := frame.New(img, time.Now())
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}
	return f
}

func TestParseSceneState(t *testing.T) {
	cases := []struct {
		raw  string
		want perception.SceneState
		ok   bool
	}{
		{"book_open", perception.SceneBookOpen, true},
		{"  BOOK_CLOSED  ", perception.SceneBookClosed, true},
		{"The scene shows no_book on the table.", perception.SceneNoBook, true},
		{"book_done", perception.SceneBookDone, true},
		{"a cat sitting on a table", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		t.Run(c.raw, func(t *testing.T) {
			got, ok := perception.ParseSceneState(c.raw)
			if ok != c.ok || got != c.want {
				t.Errorf("ParseSceneState(%q) = (%q, %t), want (%q, %t)", c.raw, got, ok, c.want, c.ok)
			}
		})
	}
}

func TestParsePageType(t *testing.T) {
	cases := []struct {
		raw  string
		want perception.PageType
		ok   bool
	}{
		{"content", perception.PageContent, true},
		{"This is the toc.", perception.PageTOC, true},
		{"TITLE", perception.PageTitle, true},
		{"something else entirely", "", false},
	}
	for _, c := range cases {
		t.Run(c.raw, func(t *testing.T) {
			got, ok := perception.ParsePageType(c.raw)
			if ok != c.ok || got != c.want {
				t.Errorf("ParsePageType(%q) = (%q, %t), want (%q, %t)", c.raw, got, ok, c.want, c.ok)
			}
		})
	}
}

func TestPageTypeReadable(t *testing.T) {
	unreadable := []perception.PageType{perception.PageBlank, perception.PageIndex}
	for _, p := range unreadable {
		if p.Readable() {
			t.Errorf("%s should not be readable", p)
		}
	}
	readable := []perception.PageType{
		perception.PageCover, perception.PageTitle, perception.PageTOC, perception.PageContent,
	}
	for _, p := range readable {
		if !p.Readable() {
			t.Errorf("%s should be readable", p)
		}
	}
}

func TestAssessScene(t *testing.T) {
	t.Run("re-asks once on an ambiguous label", func(t *testing.T) {
		mock := inference.NewMock()
		responses := []string{"a table with stuff on it", "book_closed"}
		call := 0
		mock.VisionFunc = func(ctx context.Context, req *inference.VisionRequest) (*inference.VisionResponse, error) {
			content := responses[call]
			call++
			return &inference.VisionResponse{Content: content}, nil
		}
		skills := perception.NewSkills(mock, nil, nil)

		state, err := skills.AssessScene(context.Background(), testFrame(t))
		if err != nil {
			t.Fatalf("AssessScene: %v", err)
		}
		if state != perception.SceneBookClosed {
			t.Errorf("state = %s, want book_closed", state)
		}
		if got := mock.CallCount("Vision"); got != 2 {
			t.Errorf("vision calls = %d, want 2", got)
		}
	})

	t.Run("defaults to book_open when ambiguity persists", func(t *testing.T) {
		mock := inference.NewMock()
		mock.VisionFunc = func(ctx context.Context, req *inference.VisionRequest) (*inference.VisionResponse, error) {
			return &inference.VisionResponse{Content: "hard to say"}, nil
		}
		skills := perception.NewSkills(mock, nil, nil)

		state, err := skills.AssessScene(context.Background(), testFrame(t))
		if err != nil {
			t.Fatalf("AssessScene: %v", err)
		}
		if state != perception.SceneBookOpen {
			t.Errorf("state = %s, want book_open default", state)
		}
	})
}

func TestClassifyPageDefaultsToContent(t *testing.T) {
	mock := inference.NewMock()
	mock.VisionFunc = func(ctx context.Context, req *inference.VisionRequest) (*inference.VisionResponse, error) {
		return &inference.VisionResponse{Content: "a drawing of a ladybug"}, nil
	}
	skills := perception.NewSkills(mock, nil, nil)

	pageType, err := skills.ClassifyPage(context.Background(), testFrame(t))
	if err != nil {
		t.Fatalf("ClassifyPage: %v", err)
	}
	if pageType != perception.PageContent {
		t.Errorf("page type = %s, want content default", pageType)
	}
}

func TestReadSide(t *testing.T) {
	t.Run("silent mode collects segmented text", func(t *testing.T) {
		mock := inference.NewMock()
		mock.VisionStreamFunc = func(ctx context.Context, req *inference.VisionRequest) (inference.Stream, error) {
			return inference.NewMockStream("Once upon a time. ", "The end."), nil
		}
		skills := perception.NewSkills(mock, nil, nil)

		unit, err := skills.ReadSide(context.Background(), testFrame(t), perception.SideLeft, perception.ModeVerbose)
		if err != nil {
			t.Fatalf("ReadSide: %v", err)
		}
		if got := unit.Text(); got != "Once upon a time. The end." {
			t.Errorf("text = %q", got)
		}
		if got := len(unit.Sentences()); got != 2 {
			t.Errorf("sentences = %d, want 2", got)
		}
	})

	t.Run("speaks through the pipeline when configured", func(t *testing.T) {
		mock := inference.NewMock()
		mock.VisionStreamFunc = func(ctx context.Context, req *inference.VisionRequest) (inference.Stream, error) {
			return inference.NewMockStream("First sentence. Second sentence."), nil
		}
		sink := audio.NewMockSink()
		pipeline, err := speech.New(speech.Config{
			Voices: []tts.Provider{tts.NewMock("a"), tts.NewMock("b")},
			Sink:   sink,
		})
		if err != nil {
			t.Fatalf("speech.New: %v", err)
		}
		skills := perception.NewSkills(mock, pipeline, nil)

		unit, err := skills.ReadSide(context.Background(), testFrame(t), perception.SideRight, perception.ModeVerbose)
		if err != nil {
			t.Fatalf("ReadSide: %v", err)
		}
		if got := len(unit.Sentences()); got != 2 {
			t.Fatalf("sentences = %d, want 2", got)
		}
		if got := len(sink.Played()); got != 2 {
			t.Errorf("played chunks = %d, want 2", got)
		}
	})

	t.Run("mode and side select different prompts", func(t *testing.T) {
		mock := inference.NewMock()
		var prompts []string
		mock.VisionStreamFunc = func(ctx context.Context, req *inference.VisionRequest) (inference.Stream, error) {
			prompts = append(prompts, req.Prompt)
			return inference.NewMockStream("Chapter One."), nil
		}
		skills := perception.NewSkills(mock, nil, nil)

		ctx := context.Background()
		f := testFrame(t)
		for _, side := range []perception.Side{perception.SideLeft, perception.SideRight} {
			for _, mode := range []perception.Mode{perception.ModeVerbose, perception.ModeSkim} {
				if _, err := skills.ReadSide(ctx, f, side, mode); err != nil {
					t.Fatalf("ReadSide(%s, %s): %v", side, mode, err)
				}
			}
		}

		seen := map[string]bool{}
		for _, p := range prompts {
			seen[p] = true
		}
		if len(seen) != 4 {
			t.Errorf("got %d distinct prompts, want 4", len(seen))
		}
		if !strings.Contains(prompts[0], "LEFT") || !strings.Contains(prompts[2], "RIGHT") {
			t.Error("prompts do not name the requested side")
		}
	})
}
