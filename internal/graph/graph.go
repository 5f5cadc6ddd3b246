// Package graph implements the task-graph state machine at the heart of the
// aot loop: atoms with AND-dependencies, OR-groups with backtracking, the
// append-only trail, decomposition records, and the binding ledger.
//
// A Graph is a plain in-memory store with invariant enforcement. It performs
// no I/O and never blocks; persistence lives in internal/state and round
// sequencing in internal/loop.
package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Graph holds atoms, OR-groups, decomposition records, bindings, and the
// selection trail. Atoms are kept in insertion order so readiness results
// are deterministic. Atoms are never deleted, only resolved or superseded;
// retired identifiers are never reused.
type Graph struct {
	atoms          []*Atom
	index          map[string]*Atom
	orGroups       map[string]*ORGroup
	orOrder        []string
	decompositions []Decomposition
	trail          []TrailEntry
	bindings       map[string]*Binding
	bindingOrder   []string

	strategy Strategy
	now      func() time.Time
	newID    func() string
}

// Option customizes graph construction.
type Option func(*Graph)

// WithClock lets tests control trail and decomposition timestamps.
func WithClock(clock func() time.Time) Option {
	return func(g *Graph) {
		if clock != nil {
			g.now = clock
		}
	}
}

// WithStrategy overrides the default first-available backtracking policy.
func WithStrategy(s Strategy) Option {
	return func(g *Graph) {
		if s != nil {
			g.strategy = s
		}
	}
}

// WithIDGenerator lets tests control record ids.
func WithIDGenerator(gen func() string) Option {
	return func(g *Graph) {
		if gen != nil {
			g.newID = gen
		}
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		index:    make(map[string]*Atom),
		orGroups: make(map[string]*ORGroup),
		bindings: make(map[string]*Binding),
		strategy: FirstAvailable{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// AtomSpec describes an atom to be added by the planner.
type AtomSpec struct {
	ID          string
	Description string
	DependsOn   []string
	ORGroup     string
	Claims      []string
}

// AddAtom creates a new pending atom. It fails with DuplicateIDError if the
// id was ever used and with DanglingDependencyError if any dependency is
// unknown; on failure the graph is unchanged. Because every dependency must
// already exist, AddAtom cannot introduce a cycle.
//
// If the atom names an OR-group, it is appended to the group's choices; the
// group is created on first use and its first choice becomes the initial
// selection, recorded in the trail.
func (g *Graph) AddAtom(spec AtomSpec) (*Atom, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("atom id must not be empty")
	}
	if _, exists := g.index[spec.ID]; exists {
		return nil, &DuplicateIDError{ID: spec.ID}
	}
	for _, dep := range spec.DependsOn {
		if _, ok := g.index[dep]; !ok {
			return nil, &DanglingDependencyError{AtomID: spec.ID, DependsOn: dep}
		}
	}

	atom := &Atom{
		ID:          spec.ID,
		Description: spec.Description,
		Status:      StatusPending,
		DependsOn:   append([]string(nil), spec.DependsOn...),
		ORGroup:     spec.ORGroup,
		Claims:      append([]string(nil), spec.Claims...),
	}
	g.atoms = append(g.atoms, atom)
	g.index[atom.ID] = atom

	if spec.ORGroup != "" {
		g.joinORGroup(atom.ID, spec.ORGroup)
	}
	return atom, nil
}

// joinORGroup appends the atom to the group's choices, creating the group
// if needed. The first choice of a fresh group becomes the selection.
func (g *Graph) joinORGroup(atomID, group string) {
	grp, ok := g.orGroups[group]
	if !ok {
		grp = &ORGroup{}
		g.orGroups[group] = grp
		g.orOrder = append(g.orOrder, group)
	}
	grp.Choices = append(grp.Choices, atomID)
	if grp.Selected == "" && !grp.Exhausted() {
		grp.Selected = atomID
		g.appendTrail(group, atomID, "initial selection")
	}
}

// SetStatus applies a forward status transition. The only permitted moves are
// pending -> in_progress and in_progress -> resolved; everything else is a
// TransitionError. Backward edges exist only through ResetForRetry (the
// backtracking failure reset) and Reopen (external redirection).
func (g *Graph) SetStatus(id string, status Status) error {
	atom, ok := g.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAtomNotFound, id)
	}
	allowed := atom.Status == StatusPending && status == StatusInProgress ||
		atom.Status == StatusInProgress && status == StatusResolved
	if !allowed {
		return &TransitionError{ID: id, From: atom.Status, To: status}
	}
	atom.Status = status
	return nil
}

// ResetForRetry returns a pending or in-progress atom to pending so the same
// or a revised atom can be retried. This is the sanctioned backward edge used
// by the backtracking controller on execution failure.
func (g *Graph) ResetForRetry(id string) error {
	atom, ok := g.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAtomNotFound, id)
	}
	if atom.Status != StatusPending && atom.Status != StatusInProgress {
		return &TransitionError{ID: id, From: atom.Status, To: StatusPending}
	}
	atom.Status = StatusPending
	return nil
}

// Reopen returns a resolved atom to pending. This is the sanctioned backward
// edge for external redirection; its binding is kept until re-resolution
// overwrites it.
func (g *Graph) Reopen(id string) error {
	atom, ok := g.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAtomNotFound, id)
	}
	if atom.Status != StatusResolved {
		return &TransitionError{ID: id, From: atom.Status, To: StatusPending}
	}
	atom.Status = StatusPending
	return nil
}

// ChildSpec describes one child atom created by a decomposition.
type ChildSpec struct {
	ID          string
	Description string
	Claims      []string
}

// Decompose replaces a pending or in-progress parent with child atoms. Each
// child inherits the parent's depends_on set and records its origin. The
// parent transitions to the terminal superseded status so it never executes
// and never blocks. A decomposition record is appended for audit.
//
// On any validation failure the graph is unchanged.
func (g *Graph) Decompose(parentID string, children []ChildSpec, reason string) (*Decomposition, error) {
	parent, ok := g.index[parentID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAtomNotFound, parentID)
	}
	if parent.Status != StatusPending && parent.Status != StatusInProgress {
		return nil, fmt.Errorf("cannot decompose atom %s with status %s", parentID, parent.Status)
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("decomposition of %s requires at least one child", parentID)
	}
	seen := make(map[string]bool, len(children))
	for _, child := range children {
		if child.ID == "" {
			return nil, fmt.Errorf("child atom id must not be empty")
		}
		if _, exists := g.index[child.ID]; exists || seen[child.ID] {
			return nil, &DuplicateIDError{ID: child.ID}
		}
		seen[child.ID] = true
	}

	childIDs := make([]string, 0, len(children))
	for _, child := range children {
		atom := &Atom{
			ID:             child.ID,
			Description:    child.Description,
			Status:         StatusPending,
			DependsOn:      append([]string(nil), parent.DependsOn...),
			Claims:         append([]string(nil), child.Claims...),
			DecomposedFrom: parentID,
		}
		g.atoms = append(g.atoms, atom)
		g.index[atom.ID] = atom
		childIDs = append(childIDs, atom.ID)
	}
	parent.Status = StatusSuperseded

	record := Decomposition{
		ID:        g.newID(),
		Parent:    parentID,
		Children:  childIDs,
		Reason:    reason,
		Timestamp: g.now().Format(time.RFC3339),
	}
	g.decompositions = append(g.decompositions, record)
	return &record, nil
}

// Atom returns the atom with the given id.
func (g *Graph) Atom(id string) (*Atom, error) {
	atom, ok := g.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAtomNotFound, id)
	}
	return atom, nil
}

// Atoms returns all atoms in insertion order.
func (g *Graph) Atoms() []*Atom {
	return g.atoms
}

// ORGroup returns the named group, or nil if it does not exist.
func (g *Graph) ORGroup(name string) *ORGroup {
	return g.orGroups[name]
}

// ORGroupNames returns group names in creation order.
func (g *Graph) ORGroupNames() []string {
	return g.orOrder
}

// Trail returns the selection history, oldest first.
func (g *Graph) Trail() []TrailEntry {
	return g.trail
}

// Decompositions returns the decomposition records, oldest first.
func (g *Graph) Decompositions() []Decomposition {
	return g.decompositions
}

func (g *Graph) appendTrail(group, selected, reason string) {
	g.trail = append(g.trail, TrailEntry{
		ID:        g.newID(),
		ORGroup:   group,
		Selected:  selected,
		Reason:    reason,
		Timestamp: g.now().Format(time.RFC3339),
	})
}

// Snapshot is the serializable image of a graph, shaped like the persisted
// document sections.
type Snapshot struct {
	Atoms          []Atom
	ORGroups       map[string]ORGroup
	Decompositions []Decomposition
	Bindings       map[string]Binding
	Trail          []TrailEntry
}

// Snapshot copies the graph's current state.
func (g *Graph) Snapshot() Snapshot {
	s := Snapshot{
		Atoms:          make([]Atom, 0, len(g.atoms)),
		ORGroups:       make(map[string]ORGroup, len(g.orGroups)),
		Decompositions: append([]Decomposition(nil), g.decompositions...),
		Bindings:       make(map[string]Binding, len(g.bindings)),
		Trail:          append([]TrailEntry(nil), g.trail...),
	}
	for _, atom := range g.atoms {
		s.Atoms = append(s.Atoms, *atom)
	}
	for name, grp := range g.orGroups {
		s.ORGroups[name] = *grp
	}
	for id, b := range g.bindings {
		s.Bindings[id] = *b
	}
	return s
}

// FromSnapshot reconstructs a graph from a deserialized document. It enforces
// the same structural invariants as the mutating operations: unique ids, no
// dangling dependencies, no cycles, and OR-group selection consistency.
func FromSnapshot(s Snapshot, opts ...Option) (*Graph, error) {
	g := New(opts...)
	for i := range s.Atoms {
		atom := s.Atoms[i]
		if _, exists := g.index[atom.ID]; exists {
			return nil, &DuplicateIDError{ID: atom.ID}
		}
		copied := atom
		copied.DependsOn = append([]string(nil), atom.DependsOn...)
		copied.Claims = append([]string(nil), atom.Claims...)
		if copied.Status == "" {
			copied.Status = StatusPending
		}
		g.atoms = append(g.atoms, &copied)
		g.index[copied.ID] = &copied
	}
	for _, atom := range g.atoms {
		for _, dep := range atom.DependsOn {
			if _, ok := g.index[dep]; !ok {
				return nil, &DanglingDependencyError{AtomID: atom.ID, DependsOn: dep}
			}
		}
	}
	if cycle := DetectCycle(s.Atoms); len(cycle) > 0 {
		return nil, &CycleError{Path: cycle}
	}

	names := make([]string, 0, len(s.ORGroups))
	for name := range s.ORGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		grp := s.ORGroups[name]
		copied := ORGroup{
			Choices:  append([]string(nil), grp.Choices...),
			Selected: grp.Selected,
			Failed:   append([]string(nil), grp.Failed...),
		}
		if copied.Selected != "" {
			if !contains(copied.Choices, copied.Selected) || copied.HasFailed(copied.Selected) {
				return nil, fmt.Errorf("or-group %s: selected %q is not an available choice", name, copied.Selected)
			}
		}
		g.orGroups[name] = &copied
		g.orOrder = append(g.orOrder, name)
	}

	for id, b := range s.Bindings {
		if _, ok := g.index[id]; !ok {
			return nil, fmt.Errorf("binding for %s: %w", id, ErrAtomNotFound)
		}
		copied := Binding{Summary: b.Summary, Artifacts: append([]string(nil), b.Artifacts...)}
		g.bindings[id] = &copied
	}
	for _, atom := range g.atoms {
		if _, ok := g.bindings[atom.ID]; ok {
			g.bindingOrder = append(g.bindingOrder, atom.ID)
		}
	}

	g.decompositions = append([]Decomposition(nil), s.Decompositions...)
	g.trail = append([]TrailEntry(nil), s.Trail...)
	return g, nil
}

// DetectCycle runs a depth-first search over the depends_on edges and returns
// the offending path if a cycle exists, nil otherwise.
func DetectCycle(atoms []Atom) []string {
	index := make(map[string]*Atom, len(atoms))
	for i := range atoms {
		index[atoms[i].ID] = &atoms[i]
	}
	visited := make(map[string]bool)

	var dfs func(id string, path []string) []string
	dfs = func(id string, path []string) []string {
		for i, p := range path {
			if p == id {
				return append(append([]string(nil), path[i:]...), id)
			}
		}
		if visited[id] {
			return nil
		}
		visited[id] = true
		atom := index[id]
		if atom == nil {
			return nil
		}
		path = append(path, id)
		for _, dep := range atom.DependsOn {
			if cycle := dfs(dep, path); cycle != nil {
				return cycle
			}
		}
		return nil
	}

	for i := range atoms {
		if cycle := dfs(atoms[i].ID, nil); cycle != nil {
			return cycle
		}
	}
	return nil
}
