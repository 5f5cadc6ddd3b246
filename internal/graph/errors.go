package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for lookup failures and readiness conditions.
var (
	// ErrAtomNotFound is returned when an atom id is unknown to the graph.
	ErrAtomNotFound = errors.New("atom not found")
	// ErrBindingNotFound is returned by Ledger lookups for atoms without a binding.
	ErrBindingNotFound = errors.New("binding not found")
	// ErrDeadlock is returned when pending atoms exist but none are executable
	// and no OR-group is awaiting a selection. It usually indicates a planning
	// defect and is never auto-recovered.
	ErrDeadlock = errors.New("deadlock: pending atoms exist but none are executable")
)

// DuplicateIDError is a structural error: the atom id already exists.
// Identifiers are unique across the graph's lifetime, including superseded atoms.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate atom id: %s", e.ID)
}

// DanglingDependencyError is a structural error: a depends_on entry names an
// unknown atom.
type DanglingDependencyError struct {
	AtomID    string
	DependsOn string
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("atom %s depends on undefined atom: %s", e.AtomID, e.DependsOn)
}

// CycleError is a structural error: the dependency graph contains a cycle.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	out := ""
	for i, id := range e.Path {
		if i > 0 {
			out += " -> "
		}
		out += id
	}
	return "circular dependency detected: " + out
}

// TransitionError is a structural error: the requested status change violates
// the pending -> in_progress -> resolved order.
type TransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("atom %s: invalid status transition %s -> %s", e.ID, e.From, e.To)
}

// ExhaustionError means every choice in an OR-group has failed. It is fatal
// to the loop: an external actor must inject a new choice before resuming.
type ExhaustionError struct {
	Group string
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("or-group %s exhausted: all choices have failed", e.Group)
}
