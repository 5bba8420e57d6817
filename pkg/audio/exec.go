package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// players lists supported system audio players in preference order,
// with the arguments that make them play one file and exit quietly.
var players = []struct {
	bin  string
	args []string
}{
	{"afplay", nil},
	{"mpv", []string{"--no-video", "--no-terminal"}},
	{"ffplay", []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
}

// ExecSink plays audio chunks through a system player subprocess.
type ExecSink struct {
	bin    string
	args   []string
	tmpDir string
	seq    int
	logger *slog.Logger
}

// NewExecSink locates a system audio player and prepares a scratch
// directory for chunk files.
func NewExecSink(logger *slog.Logger) (*ExecSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, p := range players {
		path, err := exec.LookPath(p.bin)
		if err != nil {
			continue
		}

		tmpDir, err := os.MkdirTemp("", "bookbot-audio-")
		if err != nil {
			return nil, fmt.Errorf("audio: scratch dir: %w", err)
		}

		logger.Debug("audio player selected", "player", path)
		return &ExecSink{
			bin:    path,
			args:   p.args,
			tmpDir: tmpDir,
			logger: logger.With("component", "audio.exec"),
		}, nil
	}

	return nil, ErrNoPlayer
}

// Play writes the chunk to a scratch file and blocks on the player process.
func (s *ExecSink) Play(ctx context.Context, chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	s.seq++
	path := filepath.Join(s.tmpDir, fmt.Sprintf("chunk_%04d.mp3", s.seq))
	if err := os.WriteFile(path, chunk, 0o644); err != nil {
		return fmt.Errorf("audio: write chunk: %w", err)
	}
	defer os.Remove(path)

	args := append(append([]string{}, s.args...), path)
	cmd := exec.CommandContext(ctx, s.bin, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("audio: playback: %w", err)
	}
	return nil
}

// Close removes the scratch directory.
func (s *ExecSink) Close() error {
	return os.RemoveAll(s.tmpDir)
}

var _ Sink = (*ExecSink)(nil)
