package motor

import (
	"context"
	"log/slog"
	"time"
)

// simScale shrinks a skill's nominal duration for simulation so dry runs
// stay fast while preserving relative skill timing.
const simScale = 20

// SimRunner pretends to execute skills. Used when no solo binary is on
// PATH, and in tests.
type SimRunner struct {
	logger *slog.Logger
}

// NewSimRunner creates the simulation fallback.
func NewSimRunner(logger *slog.Logger) *SimRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimRunner{logger: logger.With("runner", "sim")}
}

// Simulated implements Runner.
func (r *SimRunner) Simulated() bool { return true }

// Run waits a scaled-down version of the skill's nominal duration and
// reports success.
func (r *SimRunner) Run(ctx context.Context, skill Skill, spec Spec) error {
	wait := spec.Duration / simScale
	r.logger.Info("simulating skill", "skill", skill, "wait", wait)
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
