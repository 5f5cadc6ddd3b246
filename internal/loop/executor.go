package loop

import (
	"context"

	"github.com/recurhq/aot/internal/checklist"
	"github.com/recurhq/aot/internal/graph"
)

// Task is one unit of dispatched work: the atom plus the bindings of its
// resolved dependencies, in depends_on order.
type Task struct {
	Atom     graph.Atom
	Bindings []graph.DependencyBinding
}

// Result is the executor's report for one task.
type Result struct {
	Success   bool
	Summary   string
	Artifacts []string
	// Issues describes what went wrong when Success is false.
	Issues string
}

// Executor performs the actual work of an atom. The core never executes
// work itself; this is the only contract it has with whatever does.
type Executor interface {
	Execute(ctx context.Context, task Task) (Result, error)
}

// Verifier supplies machine evidence for checklist leaves. verify.Runner is
// the shipped implementation; assertion and quality leaves stay pending until
// a judgment-capable actor fills them in.
type Verifier interface {
	Gather(ctx context.Context, items []checklist.Node) (checklist.Evidence, error)
}

// Broadcaster receives a round event after each committed round. The watch
// server implements this to push live updates to websocket clients.
type Broadcaster interface {
	Broadcast(event RoundEvent)
}

// RoundEvent summarizes one committed round for live observers.
type RoundEvent struct {
	Iteration  int      `json:"iteration"`
	Status     string   `json:"status"`
	Pending    int      `json:"pending"`
	StallCount int      `json:"stall_count"`
	Dispatched []string `json:"dispatched,omitempty"`
	StopReason string   `json:"stop_reason,omitempty"`
}
