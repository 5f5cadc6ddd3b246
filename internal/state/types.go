// Package state persists the loop's full state as a single structured
// document: a YAML metadata block (objective, control, atoms, or_groups,
// decompositions, bindings, trail, corrections) followed by the free-form
// original request text.
package state

import (
	"github.com/recurhq/aot/internal/checklist"
	"github.com/recurhq/aot/internal/graph"
)

// LoopStatus is the lifecycle state of the whole loop.
type LoopStatus string

const (
	// StatusPending means the objective is being prepared; no round has run.
	StatusPending LoopStatus = "pending"
	// StatusRunning means rounds are in progress.
	StatusRunning LoopStatus = "running"
	// StatusStopped means the loop halted on a fatal condition or external
	// request and will not resume until an actor clears the condition.
	StatusStopped LoopStatus = "stopped"
	// StatusCompleted means the completion checklist passed.
	StatusCompleted LoopStatus = "completed"
)

// Objective captures what the loop is trying to achieve and how completion
// is verified.
type Objective struct {
	Goal             string   `yaml:"goal" json:"goal"`
	BackgroundIntent string   `yaml:"background_intent" json:"background_intent"`
	Deliverables     string   `yaml:"deliverables" json:"deliverables"`
	DefinitionOfDone string   `yaml:"definition_of_done" json:"definition_of_done"`
	BaseCase         BaseCase `yaml:"base_case" json:"base_case"`
}

// BaseCase holds the completion checklist.
type BaseCase struct {
	Checklist []checklist.Node `yaml:"checklist" json:"checklist"`
}

// Control is the process-wide loop state. The iteration counter is
// monotonically non-decreasing; the stall counter resets to zero whenever the
// pending-atom count strictly decreases between rounds.
type Control struct {
	Status          LoopStatus `yaml:"status" json:"status"`
	Iteration       int        `yaml:"iteration" json:"iteration"`
	StallCount      int        `yaml:"stall_count" json:"stall_count"`
	PreviousPending int        `yaml:"previous_pending" json:"previous_pending"`
	StopRequested   bool       `yaml:"stop_requested" json:"stop_requested"`
	RedirectRequest bool       `yaml:"redirect_requested" json:"redirect_requested"`
	StopReason      string     `yaml:"stop_reason" json:"stop_reason"`
}

// Correction is an append-only note recording an external redirect.
type Correction struct {
	Timestamp string `yaml:"timestamp" json:"timestamp"`
	Note      string `yaml:"note" json:"note"`
}

// Document is the persisted state: the metadata block plus the free-form
// request text that follows it. The container sections may be empty but must
// always be present.
type Document struct {
	Objective      Objective                `yaml:"objective" json:"objective"`
	Control        Control                  `yaml:"control" json:"control"`
	Atoms          []graph.Atom             `yaml:"atoms" json:"atoms"`
	ORGroups       map[string]graph.ORGroup `yaml:"or_groups" json:"or_groups"`
	Decompositions []graph.Decomposition    `yaml:"decompositions" json:"decompositions"`
	Bindings       map[string]graph.Binding `yaml:"bindings" json:"bindings"`
	Trail          []graph.TrailEntry       `yaml:"trail" json:"trail"`
	Corrections    []Correction             `yaml:"corrections" json:"corrections"`

	// Request is the free-form original request text after the metadata
	// block. It is not part of the YAML mapping.
	Request string `yaml:"-" json:"request"`
}

// NewDocument returns a document with empty containers and a pending control
// block, ready for the planner to populate.
func NewDocument(goal string) *Document {
	doc := &Document{
		Objective: Objective{Goal: goal},
		Control:   Control{Status: StatusPending},
	}
	doc.normalize()
	return doc
}

// normalize replaces nil containers with empty ones so every required
// section serializes as a present, empty container.
func (d *Document) normalize() {
	if d.Atoms == nil {
		d.Atoms = []graph.Atom{}
	}
	if d.ORGroups == nil {
		d.ORGroups = map[string]graph.ORGroup{}
	}
	if d.Decompositions == nil {
		d.Decompositions = []graph.Decomposition{}
	}
	if d.Bindings == nil {
		d.Bindings = map[string]graph.Binding{}
	}
	if d.Trail == nil {
		d.Trail = []graph.TrailEntry{}
	}
	if d.Corrections == nil {
		d.Corrections = []Correction{}
	}
}

// Graph builds the in-memory task graph from the document sections,
// enforcing the structural invariants.
func (d *Document) Graph(opts ...graph.Option) (*graph.Graph, error) {
	return graph.FromSnapshot(graph.Snapshot{
		Atoms:          d.Atoms,
		ORGroups:       d.ORGroups,
		Decompositions: d.Decompositions,
		Bindings:       d.Bindings,
		Trail:          d.Trail,
	}, opts...)
}

// ApplySnapshot writes the graph's state back into the document sections.
func (d *Document) ApplySnapshot(s graph.Snapshot) {
	d.Atoms = s.Atoms
	d.ORGroups = s.ORGroups
	d.Decompositions = s.Decompositions
	d.Bindings = s.Bindings
	d.Trail = s.Trail
	d.normalize()
}
