package loop

import (
	"context"
	"sync"

	"github.com/recurhq/aot/internal/graph"
)

// outcome pairs a dispatched atom with what its executor reported.
type outcome struct {
	atomID string
	result Result
	err    error
}

// pickRound selects the atoms to dispatch this round, in executable order.
// An atom whose claims overlap an already picked atom is deferred to a later
// round; the pick is capped at maxParallel. Picked atoms are marked
// in_progress before dispatch.
func (l *Loop) pickRound() ([]Task, error) {
	var tasks []Task
	claimed := make(map[string]bool)
	for _, atom := range l.graph.Executable() {
		if l.limits.MaxParallelAgents > 0 && len(tasks) >= l.limits.MaxParallelAgents {
			break
		}
		if claimsCollide(claimed, atom.Claims) {
			continue
		}
		bindings, err := l.graph.DependencyBindings(atom.ID)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, Task{Atom: *atom, Bindings: bindings})
		for _, c := range atom.Claims {
			claimed[c] = true
		}
	}
	for _, t := range tasks {
		if err := l.graph.SetStatus(t.Atom.ID, graph.StatusInProgress); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

func claimsCollide(claimed map[string]bool, claims []string) bool {
	for _, c := range claims {
		if claimed[c] {
			return true
		}
	}
	return false
}

// dispatch runs every task concurrently and joins before returning. Outcomes
// keep task order so the mutation phase is deterministic.
func (l *Loop) dispatch(ctx context.Context, tasks []Task) []outcome {
	outcomes := make([]outcome, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			res, err := l.executor.Execute(ctx, task)
			outcomes[i] = outcome{atomID: task.Atom.ID, result: res, err: err}
		}(i, task)
	}
	wg.Wait()
	return outcomes
}
