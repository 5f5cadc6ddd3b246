// Package loop drives the iteration rounds over the task graph.
//
// Each round is discrete and non-overlapping: external stop/redirect flags
// are inspected at round start, executable atoms are dispatched to the
// Executor (bounded by max_parallel_agents, with a claim collision check),
// a join barrier waits for every dispatched task, and only then does the
// mutation phase run. The convergence counters update exactly once per
// round, after mutation and before the next readiness query.
//
// The loop halts when the completion checklist passes, when an OR-group
// exhausts its alternatives, on deadlock, or when an iteration or stall
// ceiling is breached. Fatal conditions surface as control.status=stopped
// with a machine-readable stop_reason; the loop never auto-resumes.
package loop
