package orchestrator

import (
	"time"

	"github.com/google/uuid"

	"github.com/ladybugs/bookbot/pkg/frame"
	"github.com/ladybugs/bookbot/pkg/motor"
	"github.com/ladybugs/bookbot/pkg/perception"
	"github.com/ladybugs/bookbot/pkg/speech"
)

// Outcome is how a session ended.
type Outcome string

// Session outcomes.
const (
	// OutcomeCompleted means the book was read to the end and closed.
	OutcomeCompleted Outcome = "completed"

	// OutcomeAborted means the session stopped before the book was done.
	// Session.Reason says why.
	OutcomeAborted Outcome = "aborted"
)

// Session is the record of one reading run.
type Session struct {
	ID        string
	BookID    string
	Mode      perception.Mode
	StartedAt time.Time
	EndedAt   time.Time
	Outcome   Outcome
	Reason    string
	Cycles    []*Cycle
}

func newSession(bookID string, mode perception.Mode) *Session {
	return &Session{
		ID:        uuid.NewString(),
		BookID:    bookID,
		Mode:      mode,
		StartedAt: time.Now(),
	}
}

func (s *Session) finish(outcome Outcome, reason string) {
	s.Outcome = outcome
	s.Reason = reason
	s.EndedAt = time.Now()
}

// Duration is the session's wall time.
func (s *Session) Duration() time.Duration {
	if s.EndedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// PagesRead counts the cycles whose spread was read aloud.
func (s *Session) PagesRead() int {
	n := 0
	for _, c := range s.Cycles {
		if c.Left != nil || c.Right != nil {
			n++
		}
	}
	return n
}

// Cycle is the record of one perceive-decide-act iteration.
type Cycle struct {
	Index      int
	StartedAt  time.Time
	Frame      *frame.Frame
	Scene      perception.SceneState
	Page       perception.PageType
	Left       *speech.Unit
	Right      *speech.Unit
	Motions    []*motor.Outcome
	TurnChecks int // post-turn captures compared against the pre-turn frame
}

// Observer is notified as a session progresses. Callbacks run on the
// orchestrator goroutine; returned errors are logged and never stop the
// session.
type Observer interface {
	SessionStarted(s *Session) error
	CycleFinished(s *Session, c *Cycle) error
	SessionFinished(s *Session) error
}
