// Package orchestrator drives the reading loop: capture a frame, assess
// the scene, classify the spread, read it aloud, turn the page, and verify
// the turn actually happened.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ladybugs/bookbot/pkg/frame"
	"github.com/ladybugs/bookbot/pkg/motor"
	"github.com/ladybugs/bookbot/pkg/perception"
)

// Defaults.
const (
	// DefaultMaxCycles is the watchdog bound on loop iterations. A
	// typical book finishes in well under a hundred cycles.
	DefaultMaxCycles = 200

	// DefaultTurnRetries is how many extra page turns are attempted when
	// the spread looks unchanged after a turn.
	DefaultTurnRetries = 2
)

// Abort reasons.
const (
	ReasonNoBook    = "no book on the table"
	ReasonStuckPage = "stuck page: spread unchanged after repeated turns"
	ReasonWatchdog  = "cycle watchdog tripped"
)

// Config wires an Orchestrator. Source, Skills, and Motor are required.
type Config struct {
	Source frame.Source
	Skills *perception.Skills
	Motor  *motor.Executor

	// BookID labels the session record. Optional.
	BookID string

	// Mode selects skim or verbose reading. Defaults to verbose.
	Mode perception.Mode

	// MaxCycles bounds the loop. Defaults to DefaultMaxCycles.
	MaxCycles int

	// TurnRetries is how many extra turns are tried on an unchanged
	// spread. Defaults to DefaultTurnRetries.
	TurnRetries int

	Observers []Observer
	Logger    *slog.Logger
}

// Orchestrator runs reading sessions.
type Orchestrator struct {
	source      frame.Source
	skills      *perception.Skills
	motor       *motor.Executor
	bookID      string
	mode        perception.Mode
	maxCycles   int
	turnRetries int
	observers   []Observer
	logger      *slog.Logger
}

// New validates the config and builds an orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Source == nil {
		return nil, errors.New("orchestrator: frame source is required")
	}
	if cfg.Skills == nil {
		return nil, errors.New("orchestrator: perception skills are required")
	}
	if cfg.Motor == nil {
		return nil, errors.New("orchestrator: motor executor is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = perception.ModeVerbose
	}
	if cfg.MaxCycles == 0 {
		cfg.MaxCycles = DefaultMaxCycles
	}
	if cfg.TurnRetries == 0 {
		cfg.TurnRetries = DefaultTurnRetries
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		source:      cfg.Source,
		skills:      cfg.Skills,
		motor:       cfg.Motor,
		bookID:      cfg.BookID,
		mode:        cfg.Mode,
		maxCycles:   cfg.MaxCycles,
		turnRetries: cfg.TurnRetries,
		observers:   cfg.Observers,
		logger:      cfg.Logger.With("component", "orchestrator"),
	}, nil
}

// Run executes one reading session from the current table state until the
// book is done, an abort condition fires, or an infrastructure error stops
// the loop. The session record is returned in every case; the error is
// non-nil only for infrastructure failures, never for aborts.
func (o *Orchestrator) Run(ctx context.Context) (*Session, error) {
	sess := newSession(o.bookID, o.mode)
	o.logger.Info("session started", "session_id", sess.ID, "mode", o.mode)
	o.notify(func(obs Observer) error { return obs.SessionStarted(sess) })

	err := o.loop(ctx, sess)
	if err != nil && sess.Outcome == "" {
		sess.finish(OutcomeAborted, err.Error())
	}
	o.logger.Info("session finished",
		"session_id", sess.ID,
		"outcome", sess.Outcome,
		"reason", sess.Reason,
		"cycles", len(sess.Cycles),
		"pages_read", sess.PagesRead(),
		"duration", sess.Duration(),
	)
	o.notify(func(obs Observer) error { return obs.SessionFinished(sess) })
	return sess, err
}

func (o *Orchestrator) loop(ctx context.Context, sess *Session) error {
	for i := 0; ; i++ {
		if i >= o.maxCycles {
			sess.finish(OutcomeAborted, ReasonWatchdog)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		c := &Cycle{Index: i, StartedAt: time.Now()}
		sess.Cycles = append(sess.Cycles, c)
		done, err := o.cycle(ctx, sess, c)
		o.notify(func(obs Observer) error { return obs.CycleFinished(sess, c) })
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// cycle runs one perceive-decide-act iteration. It returns done=true when
// the session reached a terminal outcome.
func (o *Orchestrator) cycle(ctx context.Context, sess *Session, c *Cycle) (bool, error) {
	f, err := o.source.Capture(ctx)
	if err != nil {
		return false, fmt.Errorf("orchestrator: capture: %w", err)
	}
	c.Frame = f

	scene, err := o.skills.AssessScene(ctx, f)
	if err != nil {
		return false, err
	}
	c.Scene = scene
	o.logger.Info("cycle", "index", c.Index, "scene", scene, "frame", f.Hash)

	switch scene {
	case perception.SceneNoBook:
		sess.finish(OutcomeAborted, ReasonNoBook)
		return true, nil

	case perception.SceneBookClosed:
		out, err := o.motor.Execute(ctx, motor.OpenBook)
		if err != nil {
			return false, err
		}
		c.Motions = append(c.Motions, out)
		return false, nil

	case perception.SceneBookDone:
		out, err := o.motor.Execute(ctx, motor.CloseBook)
		if err != nil {
			return false, err
		}
		c.Motions = append(c.Motions, out)
		sess.finish(OutcomeCompleted, "")
		return true, nil

	case perception.SceneBookOpen:
		return o.readSpread(ctx, sess, c, f)

	default:
		return false, fmt.Errorf("orchestrator: unhandled scene state %q", scene)
	}
}

func (o *Orchestrator) readSpread(ctx context.Context, sess *Session, c *Cycle, f *frame.Frame) (bool, error) {
	page, err := o.skills.ClassifyPage(ctx, f)
	if err != nil {
		return false, err
	}
	c.Page = page

	if page.Readable() {
		left, err := o.skills.ReadSide(ctx, f, perception.SideLeft, o.mode)
		if err != nil {
			return false, err
		}
		c.Left = left

		right, err := o.skills.ReadSide(ctx, f, perception.SideRight, o.mode)
		if err != nil {
			return false, err
		}
		c.Right = right
	} else {
		o.logger.Info("skipping unreadable spread", "index", c.Index, "page", page)
	}

	turned, err := o.turnPage(ctx, c, f)
	if err != nil {
		return false, err
	}
	if !turned {
		sess.finish(OutcomeAborted, ReasonStuckPage)
		return true, nil
	}
	return false, nil
}

// turnPage executes the turn skill and verifies the spread changed by
// comparing frame hashes. The turn is retried on an unchanged spread up to
// the configured bound; an unchanged spread after that means the page is
// stuck and the session must abort, since re-reading the same spread
// forever is worse than stopping.
func (o *Orchestrator) turnPage(ctx context.Context, c *Cycle, before *frame.Frame) (bool, error) {
	for attempt := 0; attempt <= o.turnRetries; attempt++ {
		out, err := o.motor.Execute(ctx, motor.TurnPage)
		if err != nil {
			return false, err
		}
		c.Motions = append(c.Motions, out)

		after, err := o.source.Capture(ctx)
		if err != nil {
			return false, fmt.Errorf("orchestrator: post-turn capture: %w", err)
		}
		c.TurnChecks++

		if !before.Hash.Same(after.Hash) {
			return true, nil
		}
		o.logger.Warn("spread unchanged after turn",
			"index", c.Index,
			"attempt", attempt+1,
			"before", before.Hash,
			"after", after.Hash,
			"distance", before.Hash.Distance(after.Hash),
		)
	}
	return false, nil
}

func (o *Orchestrator) notify(call func(Observer) error) {
	for _, obs := range o.observers {
		if err := call(obs); err != nil {
			o.logger.Warn("observer error", "error", err)
		}
	}
}
