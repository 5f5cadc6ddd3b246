package graph

import "fmt"

// Strategy picks the next OR-group candidate after a failure. Next returns
// the id of the choice to select, or "" when the group is exhausted.
type Strategy interface {
	Next(group *ORGroup) string
}

// FirstAvailable selects the first choice, in declaration order, that has not
// failed. Deterministic, no scoring.
type FirstAvailable struct{}

// Next implements Strategy.
func (FirstAvailable) Next(group *ORGroup) string {
	for _, c := range group.Choices {
		if !group.HasFailed(c) {
			return c
		}
	}
	return ""
}

// BacktrackResult reports what ReportFailure did.
type BacktrackResult struct {
	AtomID string
	// Retried is true when the atom has no OR-group and was simply reset to
	// pending for another attempt.
	Retried bool
	// Switched is true when the atom's OR-group moved to a new selection.
	Switched bool
	Group    string
	Selected string
	// Exhausted is true when every choice in the group has now failed. The
	// caller must stop the loop; no further selection changes occur.
	Exhausted bool
}

// ReportFailure absorbs an execution failure for the given atom.
//
// An atom outside any OR-group is reset to pending so it can be retried.
// An atom inside OR-group G is appended to G's failed list; if choices
// remain, the strategy picks the new selection and a trail entry records the
// switch with the caller's reason. Only the group's selected pointer changes:
// atoms depending on the abandoned choice are not auto-unblocked. When no
// choice remains the group is exhausted and an ExhaustionError is returned
// alongside the result.
func (g *Graph) ReportFailure(atomID, reason string) (*BacktrackResult, error) {
	atom, ok := g.index[atomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAtomNotFound, atomID)
	}

	if atom.ORGroup == "" {
		if atom.Status == StatusInProgress {
			atom.Status = StatusPending
		}
		return &BacktrackResult{AtomID: atomID, Retried: true}, nil
	}

	grp := g.orGroups[atom.ORGroup]
	if grp == nil {
		return nil, fmt.Errorf("atom %s names unknown or-group %s", atomID, atom.ORGroup)
	}
	if !grp.HasFailed(atomID) {
		grp.Failed = append(grp.Failed, atomID)
	}
	// The failed alternative goes back to pending; it can never be selected
	// again, so it stays dormant rather than wedging the graph in_progress.
	if atom.Status == StatusInProgress {
		atom.Status = StatusPending
	}
	if grp.Selected == atomID {
		grp.Selected = ""
	}

	result := &BacktrackResult{AtomID: atomID, Group: atom.ORGroup}
	next := g.strategy.Next(grp)
	if next == "" {
		result.Exhausted = true
		return result, &ExhaustionError{Group: atom.ORGroup}
	}

	grp.Selected = next
	result.Switched = true
	result.Selected = next
	g.appendTrail(atom.ORGroup, next, reason)
	return result, nil
}
