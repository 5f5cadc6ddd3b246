package graph

// Status represents an Atom's lifecycle state.
type Status string

const (
	// StatusPending means the atom has not started executing.
	StatusPending Status = "pending"
	// StatusInProgress means the atom has been dispatched to an executor.
	StatusInProgress Status = "in_progress"
	// StatusResolved means the atom completed and has (or is about to have) a binding.
	StatusResolved Status = "resolved"
	// StatusSuperseded means the atom was decomposed into children and is
	// terminally out of play. It never executes and never blocks.
	StatusSuperseded Status = "superseded"
)

// Atom is the smallest schedulable unit of work.
type Atom struct {
	ID          string   `yaml:"id" json:"id"`
	Description string   `yaml:"description" json:"description"`
	Status      Status   `yaml:"status" json:"status"`
	DependsOn   []string `yaml:"depends_on" json:"depends_on"`
	ORGroup     string   `yaml:"or_group,omitempty" json:"or_group,omitempty"`
	// Claims lists artifact paths the atom intends to touch. Two atoms with
	// overlapping claims must not be dispatched in the same round.
	Claims         []string `yaml:"claims,omitempty" json:"claims,omitempty"`
	DecomposedFrom string   `yaml:"decomposed_from,omitempty" json:"decomposed_from,omitempty"`
}

// ORGroup is a named choice point over mutually exclusive alternative atoms.
// Selected is either empty (unresolved) or a member of Choices that is not
// present in Failed.
type ORGroup struct {
	Choices  []string `yaml:"choices" json:"choices"`
	Selected string   `yaml:"selected,omitempty" json:"selected,omitempty"`
	Failed   []string `yaml:"failed" json:"failed"`
}

// Available returns the choices not yet marked failed, in Choices order.
func (g *ORGroup) Available() []string {
	var out []string
	for _, c := range g.Choices {
		if !contains(g.Failed, c) {
			out = append(out, c)
		}
	}
	return out
}

// Exhausted reports whether every choice has failed.
func (g *ORGroup) Exhausted() bool {
	return len(g.Available()) == 0
}

// HasFailed reports whether the given choice is marked failed.
func (g *ORGroup) HasFailed(id string) bool {
	return contains(g.Failed, id)
}

// TrailEntry records one OR-group selection change (initial selection or
// backtrack). Entries are append-only.
type TrailEntry struct {
	ID        string `yaml:"id" json:"id"`
	ORGroup   string `yaml:"or_group" json:"or_group"`
	Selected  string `yaml:"selected" json:"selected"`
	Reason    string `yaml:"reason" json:"reason"`
	Timestamp string `yaml:"timestamp" json:"timestamp"`
}

// Decomposition is the immutable audit record linking a parent atom to the
// children that replaced it. Readiness logic never consults it.
type Decomposition struct {
	ID        string   `yaml:"id" json:"id"`
	Parent    string   `yaml:"parent" json:"parent"`
	Children  []string `yaml:"children" json:"children"`
	Reason    string   `yaml:"reason" json:"reason"`
	Timestamp string   `yaml:"timestamp" json:"timestamp"`
}

// Binding holds the externally produced result of a resolved atom.
type Binding struct {
	Summary   string   `yaml:"summary" json:"summary"`
	Artifacts []string `yaml:"artifacts" json:"artifacts"`
}

// DependencyBinding pairs a dependency's atom id with its binding, in the
// dependent atom's depends_on order.
type DependencyBinding struct {
	AtomID  string  `json:"atom_id"`
	Binding Binding `json:"binding"`
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
