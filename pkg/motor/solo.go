package motor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/creack/pty"
)

// soloBinary is the arm control CLI. Its inference mode is interactive
// only, so it is driven through a pseudo-terminal.
const soloBinary = "solo"

// promptTimeout bounds the wait for any single interactive prompt.
const promptTimeout = 20 * time.Second

// SoloConfig carries the answers for the solo CLI's interactive prompts
// that do not vary per skill.
type SoloConfig struct {
	// FollowerID identifies the arm. Defaults to 0.
	FollowerID int

	// CameraAngles are the viewing angles entered for each camera prompt,
	// in order. Defaults to one front-facing camera.
	CameraAngles []string

	// Cameras is the answer to the camera selection prompt. Defaults to
	// "0".
	Cameras string
}

func (c *SoloConfig) applyDefaults() {
	if len(c.CameraAngles) == 0 {
		c.CameraAngles = []string{"front"}
	}
	if c.Cameras == "" {
		c.Cameras = "0"
	}
}

// SoloRunner executes skills by spawning `solo robo --inference` and
// answering its prompts over a pty.
type SoloRunner struct {
	cfg    SoloConfig
	logger *slog.Logger
}

// NewSoloRunner creates a runner for the solo CLI.
func NewSoloRunner(cfg SoloConfig, logger *slog.Logger) *SoloRunner {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &SoloRunner{cfg: cfg, logger: logger.With("runner", "solo")}
}

// Simulated implements Runner.
func (r *SoloRunner) Simulated() bool { return false }

// Run spawns the CLI, walks the prompt sequence for the given skill, then
// waits for the inference session to finish. A non-zero exit is an error.
func (r *SoloRunner) Run(ctx context.Context, skill Skill, spec Spec) error {
	cmd := exec.CommandContext(ctx, soloBinary, "robo", "--inference")
	tty, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("motor: start %s: %w", soloBinary, err)
	}
	defer func() {
		tty.Close()
		cmd.Process.Kill()
		cmd.Wait()
	}()

	ex := newExpecter(tty)
	steps := []struct {
		expect string
		send   string
	}{
		{"preconfigured", "n"},
		{"teleoperate", "n"},
		{"follower id", strconv.Itoa(r.cfg.FollowerID)},
		{"policy path", spec.Policy},
		{"Duration", strconv.Itoa(int(spec.Duration.Seconds()))},
		{"task description", spec.Task},
	}
	for _, step := range steps {
		if err := r.answer(ctx, ex, step.expect, step.send); err != nil {
			return err
		}
	}
	for i, angle := range r.cfg.CameraAngles {
		prompt := fmt.Sprintf("Camera #%d", i)
		if err := r.answer(ctx, ex, prompt, angle); err != nil {
			return err
		}
	}
	if err := r.answer(ctx, ex, "Select cameras", r.cfg.Cameras); err != nil {
		return err
	}

	// Prompts done; the inference session runs until the CLI exits.
	r.logger.Debug("inference session running", "skill", skill, "duration", spec.Duration)
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("motor: %s exited: %w", soloBinary, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *SoloRunner) answer(ctx context.Context, ex *expecter, prompt, reply string) error {
	if err := ex.expect(ctx, prompt); err != nil {
		return fmt.Errorf("motor: waiting for %q prompt: %w", prompt, err)
	}
	r.logger.Debug("answering prompt", "prompt", prompt, "reply", reply)
	if err := ex.send(reply); err != nil {
		return fmt.Errorf("motor: answering %q prompt: %w", prompt, err)
	}
	return nil
}

// expecter accumulates pty output and matches prompts against it. A single
// reader goroutine feeds chunks through a channel so expect can honor ctx.
type expecter struct {
	tty  *os.File
	buf  bytes.Buffer
	data chan []byte
	errc chan error
}

func newExpecter(tty *os.File) *expecter {
	ex := &expecter{
		tty:  tty,
		data: make(chan []byte, 16),
		errc: make(chan error, 1),
	}
	go ex.read()
	return ex
}

func (ex *expecter) read() {
	for {
		chunk := make([]byte, 1024)
		n, err := ex.tty.Read(chunk)
		if n > 0 {
			ex.data <- chunk[:n]
		}
		if err != nil {
			ex.errc <- err
			return
		}
	}
}

// expect blocks until the accumulated output contains pattern, then
// discards everything read so far.
func (ex *expecter) expect(ctx context.Context, pattern string) error {
	timeout := time.NewTimer(promptTimeout)
	defer timeout.Stop()
	for {
		if strings.Contains(ex.buf.String(), pattern) {
			ex.buf.Reset()
			return nil
		}
		select {
		case chunk := <-ex.data:
			ex.buf.Write(chunk)
		case err := <-ex.errc:
			return fmt.Errorf("pty closed: %w", err)
		case <-timeout.C:
			return fmt.Errorf("timed out after %s", promptTimeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (ex *expecter) send(line string) error {
	_, err := ex.tty.WriteString(line + "\n")
	return err
}
