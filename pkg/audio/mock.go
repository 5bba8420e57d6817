package audio

import (
	"context"
	"sync"
	"time"
)

// MockSink implements Sink for testing.
// It records played chunks in order and can simulate real-time playback.
type MockSink struct {
	// PlayDelay, when set, is slept per chunk to simulate playback time.
	PlayDelay time.Duration

	// PlayFunc overrides default behavior when set.
	PlayFunc func(ctx context.Context, chunk []byte) error

	mu     sync.Mutex
	played [][]byte
	closed bool
}

// NewMockSink creates a mock sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Play records the chunk, optionally sleeping to simulate playback.
func (s *MockSink) Play(ctx context.Context, chunk []byte) error {
	if s.PlayFunc != nil {
		return s.PlayFunc(ctx, chunk)
	}

	if s.PlayDelay > 0 {
		select {
		case <-time.After(s.PlayDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(chunk))
	copy(cp, chunk)
	s.played = append(s.played, cp)
	return nil
}

// Close marks the sink closed.
func (s *MockSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Played returns the chunks played so far, in order.
func (s *MockSink) Played() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([][]byte, len(s.played))
	copy(result, s.played)
	return result
}

// Closed reports whether Close was called.
func (s *MockSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

var _ Sink = (*MockSink)(nil)
