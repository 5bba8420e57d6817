package inference

import (
	"context"
	"sync"
	"time"
)

// Mock implements Provider for testing.
type Mock struct {
	// VisionFunc is called when Vision is invoked.
	VisionFunc func(ctx context.Context, req *VisionRequest) (*VisionResponse, error)

	// VisionStreamFunc is called when VisionStream is invoked.
	VisionStreamFunc func(ctx context.Context, req *VisionRequest) (Stream, error)

	// HealthFunc is called when Health is invoked.
	HealthFunc func(ctx context.Context) error

	// CloseFunc is called when Close is invoked.
	CloseFunc func() error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a method invocation.
type MockCall struct {
	Method string
	Prompt string
	Time   time.Time
}

// NewMock creates a new mock provider with sensible defaults.
func NewMock() *Mock {
	return &Mock{
		VisionFunc: func(ctx context.Context, req *VisionRequest) (*VisionResponse, error) {
			return &VisionResponse{
				Content: "mock response",
				Usage:   Usage{PromptTokens: 100, CompletionTokens: 5, TotalTokens: 105},
			}, nil
		},
		HealthFunc: func(ctx context.Context) error {
			return nil
		},
	}
}

// Vision calls VisionFunc and records the call.
func (m *Mock) Vision(ctx context.Context, req *VisionRequest) (*VisionResponse, error) {
	m.record("Vision", req.Prompt)
	if m.VisionFunc != nil {
		return m.VisionFunc(ctx, req)
	}
	return nil, WrapError("mock", ErrProviderUnavailable)
}

// VisionStream calls VisionStreamFunc and records the call.
// When only VisionFunc is set, its content is replayed as a single chunk.
func (m *Mock) VisionStream(ctx context.Context, req *VisionRequest) (Stream, error) {
	m.record("VisionStream", req.Prompt)
	if m.VisionStreamFunc != nil {
		return m.VisionStreamFunc(ctx, req)
	}
	if m.VisionFunc != nil {
		resp, err := m.VisionFunc(ctx, req)
		if err != nil {
			return nil, err
		}
		return NewMockStream(resp.Content), nil
	}
	return nil, WrapError("mock", ErrProviderUnavailable)
}

// Health calls HealthFunc and records the call.
func (m *Mock) Health(ctx context.Context) error {
	m.record("Health", "")
	if m.HealthFunc != nil {
		return m.HealthFunc(ctx)
	}
	return nil
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.record("Close", "")
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

func (m *Mock) record(method, prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Prompt: prompt, Time: time.Now()})
}

// Calls returns all recorded method calls.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallCount returns the number of times a method was called.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// MockStream replays fixed text deltas as a Stream.
type MockStream struct {
	mu     sync.Mutex
	deltas []string
	next   int
	closed bool
}

// NewMockStream creates a stream that yields the given deltas in order,
// then a final Done chunk.
func NewMockStream(deltas ...string) *MockStream {
	return &MockStream{deltas: deltas}
}

// Recv returns the next delta.
func (s *MockStream) Recv() (*StreamChunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStreamClosed
	}
	if s.next >= len(s.deltas) {
		return &StreamChunk{Done: true, FinishReason: "stop"}, nil
	}
	delta := s.deltas[s.next]
	s.next++
	return &StreamChunk{Delta: delta}, nil
}

// Close marks the stream closed.
func (s *MockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Verify implementations at compile time.
var (
	_ Provider = (*Mock)(nil)
	_ Stream   = (*MockStream)(nil)
)
