package motor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// ErrUnknownSkill is returned when Execute is asked for a skill with no spec.
var ErrUnknownSkill = errors.New("motor: unknown skill")

// Runner performs a single attempt of a skill. Implementations are the solo
// CLI automation and the simulation fallback.
type Runner interface {
	// Run executes one attempt. It blocks until the motion completes or
	// ctx is canceled.
	Run(ctx context.Context, skill Skill, spec Spec) error

	// Simulated reports whether this runner moves real hardware.
	Simulated() bool
}

// Default retry policy.
const (
	DefaultMaxRetries = 2
	DefaultBackoff    = 2 * time.Second

	// attemptGrace is added to a skill's nominal duration when deriving
	// the per-attempt timeout, covering CLI startup and prompt latency.
	attemptGrace = 30 * time.Second
)

// Config configures an Executor. Zero values take defaults.
type Config struct {
	// Specs maps each skill to its policy binding. Defaults to
	// DefaultSpecs.
	Specs map[Skill]Spec

	// MaxRetries is how many times a failed attempt is retried.
	MaxRetries int

	// Backoff is the base delay between attempts; the wait grows
	// linearly with the attempt number.
	Backoff time.Duration

	Logger *slog.Logger
}

// Executor runs motor skills with retry. It wraps a Runner, which does the
// actual motion.
type Executor struct {
	runner     Runner
	specs      map[Skill]Spec
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// NewExecutor builds an executor around the given runner.
func NewExecutor(runner Runner, cfg Config) *Executor {
	if cfg.Specs == nil {
		cfg.Specs = DefaultSpecs()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.Backoff == 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Executor{
		runner:     runner,
		specs:      cfg.Specs,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		logger:     cfg.Logger.With("component", "motor"),
	}
}

// AutoRunner selects the solo CLI when the binary is on PATH and falls back
// to simulation otherwise.
func AutoRunner(soloCfg SoloConfig, logger *slog.Logger) Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := exec.LookPath(soloBinary); err == nil {
		return NewSoloRunner(soloCfg, logger)
	}
	logger.Warn("solo binary not found, motor skills run simulated")
	return NewSimRunner(logger)
}

// Execute runs one skill, retrying failed attempts with linear backoff.
// The returned outcome reports attempts taken and whether the motion was
// simulated.
func (e *Executor) Execute(ctx context.Context, skill Skill) (*Outcome, error) {
	spec, ok := e.specs[skill]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSkill, skill)
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries+1; attempt++ {
		if attempt > 1 {
			wait := e.backoff * time.Duration(attempt-1)
			e.logger.Warn("skill attempt failed, retrying",
				"skill", skill, "attempt", attempt-1, "wait", wait, "error", lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, spec.Duration+attemptGrace)
		start := time.Now()
		err := e.runner.Run(attemptCtx, skill, spec)
		cancel()

		if err == nil {
			out := &Outcome{
				Skill:     skill,
				Attempts:  attempt,
				Elapsed:   time.Since(start),
				Simulated: e.runner.Simulated(),
			}
			e.logger.Info("skill completed",
				"skill", skill, "attempts", attempt,
				"elapsed", out.Elapsed, "simulated", out.Simulated)
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}
	return nil, fmt.Errorf("motor: %s failed after %d attempts: %w",
		skill, e.maxRetries+1, lastErr)
}
