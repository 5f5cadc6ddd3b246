package graph

// Executable returns the atoms currently eligible for dispatch, in atom
// insertion order. An atom qualifies iff it is pending, every depends_on
// entry is resolved, and, when it belongs to an OR-group, it is exactly the
// group's selected candidate. Calling Executable twice without an
// intervening mutation yields identical, identically ordered results.
func (g *Graph) Executable() []*Atom {
	var out []*Atom
	for _, atom := range g.atoms {
		if atom.Status != StatusPending {
			continue
		}
		if !g.depsResolved(atom) {
			continue
		}
		if atom.ORGroup != "" {
			grp := g.orGroups[atom.ORGroup]
			if grp == nil || grp.Selected != atom.ID {
				continue
			}
		}
		out = append(out, atom)
	}
	return out
}

func (g *Graph) depsResolved(atom *Atom) bool {
	for _, dep := range atom.DependsOn {
		if d, ok := g.index[dep]; !ok || d.Status != StatusResolved {
			return false
		}
	}
	return true
}

// live reports whether a pending atom is actually in play: atoms parked in an
// OR-group behind a different selection are dormant, not outstanding work.
func (g *Graph) live(atom *Atom) bool {
	if atom.ORGroup == "" {
		return true
	}
	grp := g.orGroups[atom.ORGroup]
	return grp == nil || grp.Selected == atom.ID
}

// PendingCount counts live pending atoms. Non-selected OR alternatives are
// excluded so a graph whose every group has a resolved selection can complete.
func (g *Graph) PendingCount() int {
	n := 0
	for _, atom := range g.atoms {
		if atom.Status == StatusPending && g.live(atom) {
			n++
		}
	}
	return n
}

// InProgressCount counts dispatched atoms.
func (g *Graph) InProgressCount() int {
	n := 0
	for _, atom := range g.atoms {
		if atom.Status == StatusInProgress {
			n++
		}
	}
	return n
}

// Complete reports whether no live work remains: nothing pending (modulo
// dormant OR alternatives) and nothing in flight.
func (g *Graph) Complete() bool {
	return g.PendingCount() == 0 && g.InProgressCount() == 0
}

// AwaitingSelection returns the OR-groups that have available choices but no
// current selection, in creation order.
func (g *Graph) AwaitingSelection() []string {
	var out []string
	for _, name := range g.orOrder {
		grp := g.orGroups[name]
		if grp.Selected == "" && !grp.Exhausted() {
			out = append(out, name)
		}
	}
	return out
}

// EnsureSelections gives every group awaiting a selection one, using the
// configured strategy, and records each choice in the trail. Loaded documents
// may legitimately carry unselected groups; live mutation never produces them.
func (g *Graph) EnsureSelections(reason string) {
	for _, name := range g.AwaitingSelection() {
		grp := g.orGroups[name]
		if next := g.strategy.Next(grp); next != "" {
			grp.Selected = next
			g.appendTrail(name, next, reason)
		}
	}
}

// CheckReadiness distinguishes "nothing to do because the graph is complete"
// from a deadlock. It returns ErrDeadlock when live pending atoms exist but
// none are executable, nothing is in flight, and no OR-group is awaiting a
// fresh selection.
func (g *Graph) CheckReadiness() error {
	if len(g.Executable()) > 0 {
		return nil
	}
	if g.PendingCount() == 0 {
		return nil
	}
	if g.InProgressCount() > 0 {
		return nil
	}
	if len(g.AwaitingSelection()) > 0 {
		return nil
	}
	return ErrDeadlock
}
