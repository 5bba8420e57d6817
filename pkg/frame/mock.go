package frame

import (
	"context"
	"sync"
)

// Mock implements Source for testing.
// Frames are served from a queue; the last frame repeats once exhausted,
// matching Folder's clamping behavior.
type Mock struct {
	// CaptureFunc overrides queue-based capture when set.
	CaptureFunc func(ctx context.Context) (*Frame, error)

	mu       sync.Mutex
	queue    []*Frame
	served   int
	captures int
}

// NewMock creates a mock source serving the given frames in order.
func NewMock(frames ...*Frame) *Mock {
	return &Mock{queue: frames}
}

// Push appends frames to the queue.
func (m *Mock) Push(frames ...*Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// Start is a no-op.
func (m *Mock) Start() error { return nil }

// Stop is a no-op.
func (m *Mock) Stop() error { return nil }

// Capture serves the next queued frame.
func (m *Mock) Capture(ctx context.Context) (*Frame, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.captures++
	if m.CaptureFunc != nil {
		return m.CaptureFunc(ctx)
	}
	if len(m.queue) == 0 {
		return nil, ErrNoFrames
	}

	idx := m.served
	if idx >= len(m.queue) {
		idx = len(m.queue) - 1
	}
	m.served++
	return m.queue[idx], nil
}

// Captures returns how many times Capture was called.
func (m *Mock) Captures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captures
}

var _ Source = (*Mock)(nil)
