package motor

import (
	"context"
	"sync"
)

// MockRunner is a configurable Runner for tests.
type MockRunner struct {
	// RunFunc handles Run calls. Nil means immediate success.
	RunFunc func(ctx context.Context, skill Skill, spec Spec) error

	// Sim is returned by Simulated.
	Sim bool

	mu    sync.Mutex
	calls []Skill
}

// Run implements Runner and records the call.
func (m *MockRunner) Run(ctx context.Context, skill Skill, spec Spec) error {
	m.mu.Lock()
	m.calls = append(m.calls, skill)
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, skill, spec)
	}
	return nil
}

// Simulated implements Runner.
func (m *MockRunner) Simulated() bool { return m.Sim }

// Calls returns the skills run so far, in order.
func (m *MockRunner) Calls() []Skill {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Skill, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Run calls.
func (m *MockRunner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

var (
	_ Runner = (*MockRunner)(nil)
	_ Runner = (*SoloRunner)(nil)
	_ Runner = (*SimRunner)(nil)
)
