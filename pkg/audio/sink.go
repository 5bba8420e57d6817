// Package audio provides playback of synthesized speech chunks.
//
// A Sink is the audio output device. It is claimed exclusively by the
// speech pipeline's player stage for the duration of one reading
// invocation; Play blocks for the real-time duration of the chunk so
// back-to-back calls produce gapless output.
package audio

import (
	"context"
	"errors"
)

// ErrNoPlayer is returned when no system audio player can be found.
var ErrNoPlayer = errors.New("audio: no system player found")

// Sink plays audio chunks.
type Sink interface {
	// Play blocks until the chunk has finished playing or ctx is
	// cancelled. Cancellation stops playback promptly.
	Play(ctx context.Context, chunk []byte) error

	// Close releases the output device.
	Close() error
}
