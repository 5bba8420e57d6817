// Package archive persists reading sessions to disk: the captured frames,
// the extracted text for each spread, and a final session summary.
package archive

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ladybugs/bookbot/pkg/orchestrator"
)

const dirPerm = 0o755

// Archiver is an orchestrator observer that writes one directory per
// session under a root directory.
type Archiver struct {
	root   string
	dir    string
	logger *slog.Logger
}

// New creates an archiver rooted at dir.
func New(root string, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{root: root, logger: logger.With("component", "archive")}
}

// Dir returns the current session's directory. Empty before the session
// starts.
func (a *Archiver) Dir() string { return a.dir }

// SessionStarted creates the session directory.
func (a *Archiver) SessionStarted(s *orchestrator.Session) error {
	name := fmt.Sprintf("%s_%s", s.StartedAt.Format("20060102_150405"), shortID(s.ID))
	a.dir = filepath.Join(a.root, name)
	if err := os.MkdirAll(a.dir, dirPerm); err != nil {
		return fmt.Errorf("archive: create session dir: %w", err)
	}
	a.logger.Info("archiving session", "dir", a.dir)
	return nil
}

// CycleFinished writes the cycle's frame, extracted text, and metadata.
func (a *Archiver) CycleFinished(s *orchestrator.Session, c *orchestrator.Cycle) error {
	dir := filepath.Join(a.dir, fmt.Sprintf("cycle_%03d", c.Index))
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("archive: create cycle dir: %w", err)
	}

	if c.Frame != nil && len(c.Frame.JPEG) > 0 {
		if err := os.WriteFile(filepath.Join(dir, "frame.jpg"), c.Frame.JPEG, 0o644); err != nil {
			return fmt.Errorf("archive: write frame: %w", err)
		}
	}
	if c.Left != nil {
		if err := writeText(filepath.Join(dir, "left.txt"), c.Left.Text()); err != nil {
			return err
		}
	}
	if c.Right != nil {
		if err := writeText(filepath.Join(dir, "right.txt"), c.Right.Text()); err != nil {
			return err
		}
	}
	return writeText(filepath.Join(dir, "cycle.txt"), cycleSummary(c))
}

// SessionFinished writes the session summary.
func (a *Archiver) SessionFinished(s *orchestrator.Session) error {
	return writeText(filepath.Join(a.dir, "session.txt"), sessionSummary(s))
}

func writeText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("archive: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func cycleSummary(c *orchestrator.Cycle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "cycle: %d\n", c.Index)
	fmt.Fprintf(&b, "started: %s\n", c.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "scene: %s\n", c.Scene)
	if c.Page != "" {
		fmt.Fprintf(&b, "page: %s\n", c.Page)
	}
	if c.Frame != nil {
		fmt.Fprintf(&b, "frame_hash: %s\n", c.Frame.Hash)
	}
	for _, m := range c.Motions {
		fmt.Fprintf(&b, "motion: %s attempts=%d elapsed=%s simulated=%t\n",
			m.Skill, m.Attempts, m.Elapsed.Round(time.Millisecond), m.Simulated)
	}
	if c.TurnChecks > 0 {
		fmt.Fprintf(&b, "turn_checks: %d\n", c.TurnChecks)
	}
	return b.String()
}

func sessionSummary(s *orchestrator.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "session: %s\n", s.ID)
	if s.BookID != "" {
		fmt.Fprintf(&b, "book: %s\n", s.BookID)
	}
	fmt.Fprintf(&b, "mode: %s\n", s.Mode)
	fmt.Fprintf(&b, "started: %s\n", s.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "ended: %s\n", s.EndedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "duration: %s\n", s.Duration().Round(time.Second))
	fmt.Fprintf(&b, "outcome: %s\n", s.Outcome)
	if s.Reason != "" {
		fmt.Fprintf(&b, "reason: %s\n", s.Reason)
	}
	fmt.Fprintf(&b, "cycles: %d\n", len(s.Cycles))
	fmt.Fprintf(&b, "pages_read: %d\n", s.PagesRead())
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

var _ orchestrator.Observer = (*Archiver)(nil)
