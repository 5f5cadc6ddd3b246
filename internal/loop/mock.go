package loop

import (
	"context"
	"fmt"
	"sync"
)

// MockExecutor is a scripted Executor for tests. Results are queued per atom
// id; an atom with no queued results succeeds with a generic summary.
type MockExecutor struct {
	mu      sync.Mutex
	results map[string][]Result
	calls   []string
}

// NewMockExecutor creates an empty mock.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{results: make(map[string][]Result)}
}

// Queue appends scripted results for an atom, consumed in order across calls.
func (m *MockExecutor) Queue(atomID string, results ...Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[atomID] = append(m.results[atomID], results...)
}

// Execute implements Executor.
func (m *MockExecutor) Execute(ctx context.Context, task Task) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, task.Atom.ID)
	queued := m.results[task.Atom.ID]
	if len(queued) == 0 {
		return Result{Success: true, Summary: fmt.Sprintf("completed %s", task.Atom.ID)}, ctx.Err()
	}
	res := queued[0]
	m.results[task.Atom.ID] = queued[1:]
	return res, ctx.Err()
}

// Calls returns the atom ids executed so far, in dispatch order.
func (m *MockExecutor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}
