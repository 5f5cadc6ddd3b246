package state

import (
	"fmt"
	"strings"

	"github.com/recurhq/aot/internal/checklist"
	"github.com/recurhq/aot/internal/graph"
)

// ValidationResult reports structural problems in a loaded document.
type ValidationResult struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Valid reports whether the document has no errors. Warnings do not fail
// validation.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Validate checks the document's structure and integrity: required sections,
// at least one atom, unique ids, no dangling dependencies, no cycles,
// OR-group selection consistency, and a well-formed checklist.
func Validate(doc *Document) *ValidationResult {
	result := &ValidationResult{}

	if len(doc.Atoms) == 0 {
		result.Errors = append(result.Errors, "no atoms defined (must have at least 1)")
	}

	seen := make(map[string]bool, len(doc.Atoms))
	ids := make(map[string]bool, len(doc.Atoms))
	for _, atom := range doc.Atoms {
		if seen[atom.ID] {
			result.Errors = append(result.Errors, fmt.Sprintf("duplicate atom id: %s", atom.ID))
		}
		seen[atom.ID] = true
		ids[atom.ID] = true
		switch atom.Status {
		case graph.StatusPending, graph.StatusInProgress, graph.StatusResolved, graph.StatusSuperseded:
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("atom %s has invalid status: %q", atom.ID, atom.Status))
		}
	}
	for _, atom := range doc.Atoms {
		for _, dep := range atom.DependsOn {
			if !ids[dep] {
				result.Errors = append(result.Errors, fmt.Sprintf("atom %s depends on undefined atom: %s", atom.ID, dep))
			}
		}
	}
	if cycle := graph.DetectCycle(doc.Atoms); len(cycle) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("circular dependency detected: %s", strings.Join(cycle, " -> ")))
	}

	for name, grp := range doc.ORGroups {
		if grp.Selected == "" {
			continue
		}
		available := false
		for _, c := range grp.Available() {
			if c == grp.Selected {
				available = true
			}
		}
		if !available {
			result.Errors = append(result.Errors, fmt.Sprintf("or-group %s: selected %q is not an available choice", name, grp.Selected))
		}
	}

	for id := range doc.Bindings {
		if !ids[id] {
			result.Errors = append(result.Errors, fmt.Sprintf("binding references undefined atom: %s", id))
		}
	}

	switch doc.Control.Status {
	case StatusPending, StatusRunning, StatusStopped, StatusCompleted:
	default:
		result.Errors = append(result.Errors, fmt.Sprintf("control.status has invalid value: %q", doc.Control.Status))
	}

	if len(doc.Objective.BaseCase.Checklist) > 0 {
		if err := checklist.ValidateAll(doc.Objective.BaseCase.Checklist); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("base_case checklist: %v", err))
		}
	} else {
		result.Warnings = append(result.Warnings, "objective.base_case.checklist is empty")
	}

	return result
}

// GateResult reports whether the loop may start.
type GateResult struct {
	Ready   bool     `json:"ready"`
	Missing []string `json:"missing"`
	Status  string   `json:"status"`
}

// Gate checks the preconditions for entering the loop: a fully specified
// objective, a completion checklist, at least one atom, and a control status
// that permits starting.
func Gate(doc *Document) *GateResult {
	result := &GateResult{Status: string(doc.Control.Status)}

	fields := []struct {
		name  string
		value string
	}{
		{"objective.goal", doc.Objective.Goal},
		{"objective.background_intent", doc.Objective.BackgroundIntent},
		{"objective.deliverables", doc.Objective.Deliverables},
		{"objective.definition_of_done", doc.Objective.DefinitionOfDone},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			result.Missing = append(result.Missing, f.name)
		}
	}
	if len(doc.Objective.BaseCase.Checklist) == 0 {
		result.Missing = append(result.Missing, "objective.base_case")
	}
	if len(doc.Atoms) == 0 {
		result.Missing = append(result.Missing, "atoms (must have at least 1)")
	}
	switch doc.Control.Status {
	case StatusPending, StatusStopped, StatusRunning:
	default:
		result.Missing = append(result.Missing,
			fmt.Sprintf("control.status must be 'pending' or 'stopped', got %q", doc.Control.Status))
	}

	result.Ready = len(result.Missing) == 0
	return result
}
