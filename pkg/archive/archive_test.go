package archive_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ladybugs/bookbot/pkg/archive"
	"github.com/ladybugs/bookbot/pkg/frame"
	"github.com/ladybugs/bookbot/pkg/orchestrator"
	"github.com/ladybugs/bookbot/pkg/perception"
	"github.com/ladybugs/bookbot/pkg/speech"
)

func TestArchiver(t *testing.T) {
	root := t.TempDir()
	a := archive.New(root, nil)

	sess := &orchestrator.Session{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		BookID:    "ladybugs",
		Mode:      perception.ModeVerbose,
		StartedAt: time.Now(),
	}
	if err := a.SessionStarted(sess); err != nil {
		t.Fatalf("SessionStarted: %v", err)
	}
	if a.Dir() == "" || !strings.Contains(a.Dir(), "0f8fad5b") {
		t.Fatalf("session dir %q does not carry the session id", a.Dir())
	}

	left, err := speech.Collect(context.Background(), speech.NewSliceStream("Left page text."))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	cycle := &orchestrator.Cycle{
		Index:     0,
		StartedAt: time.Now(),
		Frame:     &frame.Frame{JPEG: []byte("jpeg-bytes"), Hash: frame.Hash(0xABCD)},
		Scene:     perception.SceneBookOpen,
		Page:      perception.PageContent,
		Left:      left,
	}
	sess.Cycles = append(sess.Cycles, cycle)
	if err := a.CycleFinished(sess, cycle); err != nil {
		t.Fatalf("CycleFinished: %v", err)
	}

	sess.Outcome = orchestrator.OutcomeCompleted
	sess.EndedAt = time.Now()
	if err := a.SessionFinished(sess); err != nil {
		t.Fatalf("SessionFinished: %v", err)
	}

	cycleDir := filepath.Join(a.Dir(), "cycle_000")
	if got, err := os.ReadFile(filepath.Join(cycleDir, "frame.jpg")); err != nil || string(got) != "jpeg-bytes" {
		t.Errorf("frame.jpg = %q, %v", got, err)
	}
	if got, err := os.ReadFile(filepath.Join(cycleDir, "left.txt")); err != nil || string(got) != "Left page text." {
		t.Errorf("left.txt = %q, %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(cycleDir, "right.txt")); !os.IsNotExist(err) {
		t.Error("right.txt written for a cycle with no right read")
	}

	meta, err := os.ReadFile(filepath.Join(cycleDir, "cycle.txt"))
	if err != nil {
		t.Fatalf("cycle.txt: %v", err)
	}
	for _, want := range []string{"scene: book_open", "page: content"} {
		if !strings.Contains(string(meta), want) {
			t.Errorf("cycle.txt missing %q:\n%s", want, meta)
		}
	}

	summary, err := os.ReadFile(filepath.Join(a.Dir(), "session.txt"))
	if err != nil {
		t.Fatalf("session.txt: %v", err)
	}
	for _, want := range []string{"outcome: completed", "book: ladybugs", "cycles: 1"} {
		if !strings.Contains(string(summary), want) {
			t.Errorf("session.txt missing %q:\n%s", want, summary)
		}
	}
}
