package loop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/recurhq/aot/internal/checklist"
	"github.com/recurhq/aot/internal/config"
	"github.com/recurhq/aot/internal/graph"
	"github.com/recurhq/aot/internal/logging"
	"github.com/recurhq/aot/internal/state"
)

// ExitReason indicates why the loop stopped.
type ExitReason int

const (
	ExitReasonUnknown         ExitReason = iota
	ExitReasonDone                       // Completion checklist passed
	ExitReasonChecklistFailed            // Graph complete but checklist not satisfied
	ExitReasonStopRequested              // External stop flag set
	ExitReasonRedirect                   // External redirect flag pending
	ExitReasonExhausted                  // An OR-group ran out of alternatives
	ExitReasonDeadlock                   // Pending atoms with no executable candidate
	ExitReasonMaxIterations              // Hit iteration ceiling
	ExitReasonStalled                    // Hit stall ceiling
	ExitReasonCanceled                   // Context canceled
	ExitReasonError                      // Internal error (persistence, evaluation)
)

// String returns a human-readable description of the exit reason.
func (r ExitReason) String() string {
	switch r {
	case ExitReasonDone:
		return "completed"
	case ExitReasonChecklistFailed:
		return "checklist not satisfied"
	case ExitReasonStopRequested:
		return "stop requested"
	case ExitReasonRedirect:
		return "redirect pending"
	case ExitReasonExhausted:
		return "or-group exhausted"
	case ExitReasonDeadlock:
		return "deadlock"
	case ExitReasonMaxIterations:
		return "max iterations"
	case ExitReasonStalled:
		return "stalled"
	case ExitReasonCanceled:
		return "canceled"
	case ExitReasonError:
		return "error"
	default:
		return "unknown"
	}
}

// RunResult contains the outcome of a loop execution.
type RunResult struct {
	Reason     ExitReason
	Iterations int
	// Checklist carries the final evaluation when the graph completed.
	Checklist *checklist.Result
	Error     error
}

// Options holds the dependencies for a Loop. Document and Executor are
// required; everything else has a sensible zero value.
type Options struct {
	Document *state.Document
	Executor Executor
	// Verifier gathers checklist evidence when the graph completes. Nil means
	// no machine evidence: command and file leaves stay pending.
	Verifier Verifier
	// Store, when set, persists the document after every committed round.
	Store *state.Store
	// Limits defaults to config.DefaultLimits when zero.
	Limits      config.Limits
	Logger      *logging.Logger
	Broadcaster Broadcaster
	// GraphOptions are passed through when building the graph, letting tests
	// control the clock, id generation, and backtracking strategy.
	GraphOptions []graph.Option
}

// Loop runs discrete rounds over the task graph until an exit condition.
type Loop struct {
	doc         *state.Document
	graph       *graph.Graph
	executor    Executor
	verifier    Verifier
	store       *state.Store
	limits      config.Limits
	log         *logging.Logger
	broadcaster Broadcaster
	// dispatched holds the atom ids of the current round for the round event.
	dispatched []string
}

// New builds a Loop, constructing the graph from the document and enforcing
// its structural invariants.
func New(opts Options) (*Loop, error) {
	if opts.Document == nil {
		return nil, errors.New("loop: document is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("loop: executor is required")
	}
	g, err := opts.Document.Graph(opts.GraphOptions...)
	if err != nil {
		return nil, err
	}
	limits := opts.Limits
	if limits == (config.Limits{}) {
		limits = config.DefaultLimits()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New()
	}
	return &Loop{
		doc:         opts.Document,
		graph:       g,
		executor:    opts.Executor,
		verifier:    opts.Verifier,
		store:       opts.Store,
		limits:      limits,
		log:         logger,
		broadcaster: opts.Broadcaster,
	}, nil
}

// Run executes rounds until an exit condition is met.
func (l *Loop) Run(ctx context.Context) RunResult {
	ctrl := &l.doc.Control
	ctrl.Status = state.StatusRunning
	ctrl.StopReason = ""
	// Atoms left in_progress by an interrupted run are re-queued.
	for _, atom := range l.graph.Atoms() {
		if atom.Status == graph.StatusInProgress {
			if err := l.graph.ResetForRetry(atom.ID); err != nil {
				return l.fail(err)
			}
		}
	}
	ctrl.PreviousPending = l.graph.PendingCount()

	for {
		l.dispatched = nil
		if ctx.Err() != nil {
			return RunResult{Reason: ExitReasonCanceled, Iterations: ctrl.Iteration}
		}
		if ctrl.StopRequested {
			ctrl.Status = state.StatusStopped
			ctrl.StopReason = "stop requested"
			return l.finish(ExitReasonStopRequested, nil)
		}
		if ctrl.RedirectRequest {
			// No mutation this round. An external actor applies corrections
			// and clears the flag before the loop resumes.
			l.log.Info("redirect pending, yielding", "iteration", ctrl.Iteration)
			return RunResult{Reason: ExitReasonRedirect, Iterations: ctrl.Iteration}
		}

		l.graph.EnsureSelections("initial selection")

		if l.graph.Complete() {
			eval, err := l.evaluateChecklist(ctx)
			if err != nil {
				return l.fail(err)
			}
			if eval == nil || eval.Passed {
				ctrl.Status = state.StatusCompleted
				return l.finish(ExitReasonDone, eval)
			}
			ctrl.Status = state.StatusStopped
			ctrl.StopReason = checklistStopReason(eval)
			return l.finish(ExitReasonChecklistFailed, eval)
		}

		if err := l.graph.CheckReadiness(); err != nil {
			ctrl.Status = state.StatusStopped
			ctrl.StopReason = "deadlock: pending atoms remain but none are executable"
			return l.finish(ExitReasonDeadlock, nil)
		}

		tasks, err := l.pickRound()
		if err != nil {
			return l.fail(err)
		}
		for _, t := range tasks {
			l.dispatched = append(l.dispatched, t.Atom.ID)
		}
		l.log.Debug("dispatching round", "iteration", ctrl.Iteration+1, "tasks", len(tasks))
		outcomes := l.dispatch(ctx, tasks)
		exhausted := l.applyOutcomes(outcomes)

		RecordRound(ctrl, l.graph.PendingCount())

		if exhausted != nil {
			ctrl.Status = state.StatusStopped
			ctrl.StopReason = fmt.Sprintf("or-group %s exhausted: every alternative failed", exhausted.Group)
			return l.finish(ExitReasonExhausted, nil)
		}
		if reason := CheckCeilings(ctrl, l.limits); reason != ExitReasonUnknown {
			return l.finish(reason, nil)
		}
		if err := l.commit(); err != nil {
			return l.fail(err)
		}
	}
}

// applyOutcomes runs the mutation phase for one round. Successes resolve and
// record bindings; failures flow through the backtracking controller. The
// first exhaustion encountered is returned so the caller can stop the loop;
// remaining outcomes are still applied so no completed work is lost.
func (l *Loop) applyOutcomes(outcomes []outcome) *graph.ExhaustionError {
	var exhausted *graph.ExhaustionError
	for _, o := range outcomes {
		if o.err != nil || !o.result.Success {
			reason := o.result.Issues
			if o.err != nil {
				reason = o.err.Error()
			}
			if reason == "" {
				reason = "execution failed"
			}
			l.log.Warn("atom failed", "atom", o.atomID, "reason", reason)
			_, err := l.graph.ReportFailure(o.atomID, reason)
			var ex *graph.ExhaustionError
			if errors.As(err, &ex) && exhausted == nil {
				exhausted = ex
			}
			continue
		}
		if err := l.graph.SetStatus(o.atomID, graph.StatusResolved); err != nil {
			l.log.Error("failed to resolve atom", "atom", o.atomID, "error", err)
			continue
		}
		if err := l.graph.Record(o.atomID, o.result.Summary, o.result.Artifacts); err != nil {
			l.log.Error("failed to record binding", "atom", o.atomID, "error", err)
		}
	}
	return exhausted
}

// evaluateChecklist gathers evidence and scores the completion checklist.
// An empty checklist trivially passes; the gate normally prevents that.
func (l *Loop) evaluateChecklist(ctx context.Context) (*checklist.Result, error) {
	items := l.doc.Objective.BaseCase.Checklist
	if len(items) == 0 {
		return nil, nil
	}
	ev := checklist.Evidence{}
	if l.verifier != nil {
		gathered, err := l.verifier.Gather(ctx, items)
		if err != nil {
			return nil, err
		}
		ev = gathered
	}
	return checklist.Evaluate(items, ev)
}

func checklistStopReason(eval *checklist.Result) string {
	switch {
	case len(eval.Pending) > 0:
		return "completion checklist awaiting external judgment: " + strings.Join(eval.Pending, ", ")
	case len(eval.Unconfirmed) > 0:
		return "completion checklist awaiting confirmation: " + strings.Join(eval.Unconfirmed, ", ")
	default:
		return "completion checklist failed"
	}
}

// commit writes the graph back into the document, persists it when a store is
// configured, and notifies the broadcaster.
func (l *Loop) commit() error {
	l.doc.ApplySnapshot(l.graph.Snapshot())
	if l.store != nil {
		if err := l.store.Save(l.doc); err != nil {
			return err
		}
	}
	if l.broadcaster != nil {
		l.broadcaster.Broadcast(RoundEvent{
			Iteration:  l.doc.Control.Iteration,
			Status:     string(l.doc.Control.Status),
			Pending:    l.graph.PendingCount(),
			StallCount: l.doc.Control.StallCount,
			Dispatched: append([]string(nil), l.dispatched...),
			StopReason: l.doc.Control.StopReason,
		})
	}
	return nil
}

// finish commits terminal state and builds the result. A commit failure on
// the way out is reported alongside the original reason.
func (l *Loop) finish(reason ExitReason, eval *checklist.Result) RunResult {
	res := RunResult{Reason: reason, Iterations: l.doc.Control.Iteration, Checklist: eval}
	if err := l.commit(); err != nil {
		res.Error = err
	}
	return res
}

func (l *Loop) fail(err error) RunResult {
	return RunResult{Reason: ExitReasonError, Iterations: l.doc.Control.Iteration, Error: err}
}
