package graph

import "fmt"

// Record writes the binding for a resolved atom. The atom must be in status
// resolved at call time: the status transition and the binding write belong
// to the same mutation phase, and a resolved atom must never be left without
// a binding. Re-resolution of a previously failed or reopened atom overwrites
// its binding; the ledger is otherwise append-only.
func (g *Graph) Record(atomID, summary string, artifacts []string) error {
	atom, ok := g.index[atomID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAtomNotFound, atomID)
	}
	if atom.Status != StatusResolved {
		return fmt.Errorf("cannot record binding for %s: status is %s, want %s", atomID, atom.Status, StatusResolved)
	}
	if _, exists := g.bindings[atomID]; !exists {
		g.bindingOrder = append(g.bindingOrder, atomID)
	}
	g.bindings[atomID] = &Binding{
		Summary:   summary,
		Artifacts: append([]string(nil), artifacts...),
	}
	return nil
}

// Binding returns the binding for an atom, or ErrBindingNotFound.
func (g *Graph) Binding(atomID string) (*Binding, error) {
	b, ok := g.bindings[atomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBindingNotFound, atomID)
	}
	return b, nil
}

// BindingIDs returns the atom ids with bindings, in first-recorded order.
func (g *Graph) BindingIDs() []string {
	return g.bindingOrder
}

// DependencyBindings assembles the execution context for an atom: the
// bindings of its depends_on set, in depends_on order. Every dependency of an
// executable atom is resolved, and every resolved atom has a binding, so a
// missing entry is an error.
func (g *Graph) DependencyBindings(atomID string) ([]DependencyBinding, error) {
	atom, ok := g.index[atomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAtomNotFound, atomID)
	}
	out := make([]DependencyBinding, 0, len(atom.DependsOn))
	for _, dep := range atom.DependsOn {
		b, err := g.Binding(dep)
		if err != nil {
			return nil, fmt.Errorf("dependency %s of %s: %w", dep, atomID, err)
		}
		out = append(out, DependencyBinding{AtomID: dep, Binding: *b})
	}
	return out, nil
}
