package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recurhq/aot/internal/graph"
)

func TestValidate_CleanDocument(t *testing.T) {
	result := Validate(sampleDocument())
	assert.True(t, result.Valid())
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Document)
		wantErr string
	}{
		{
			name:    "no atoms",
			mutate:  func(d *Document) { d.Atoms = nil; d.Bindings = nil; d.ORGroups = nil },
			wantErr: "no atoms defined",
		},
		{
			name: "duplicate id",
			mutate: func(d *Document) {
				d.Atoms = append(d.Atoms, graph.Atom{ID: "A1", Status: graph.StatusPending})
			},
			wantErr: "duplicate atom id: A1",
		},
		{
			name: "invalid status",
			mutate: func(d *Document) {
				d.Atoms[0].Status = "done"
			},
			wantErr: "invalid status",
		},
		{
			name: "dangling dependency",
			mutate: func(d *Document) {
				d.Atoms[1].DependsOn = []string{"ZZ"}
			},
			wantErr: "depends on undefined atom: ZZ",
		},
		{
			name: "cycle",
			mutate: func(d *Document) {
				d.Atoms[0].DependsOn = []string{"B1"}
			},
			wantErr: "circular dependency detected",
		},
		{
			name: "selected choice already failed",
			mutate: func(d *Document) {
				grp := d.ORGroups["reader"]
				grp.Selected = "B1"
				d.ORGroups["reader"] = grp
			},
			wantErr: `selected "B1" is not an available choice`,
		},
		{
			name: "binding for unknown atom",
			mutate: func(d *Document) {
				d.Bindings["ghost"] = graph.Binding{Summary: "x"}
			},
			wantErr: "binding references undefined atom: ghost",
		},
		{
			name: "invalid control status",
			mutate: func(d *Document) {
				d.Control.Status = "paused"
			},
			wantErr: "control.status has invalid value",
		},
		{
			name: "malformed checklist",
			mutate: func(d *Document) {
				d.Objective.BaseCase.Checklist[0].Check = nil
			},
			wantErr: "base_case checklist",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument()
			tt.mutate(doc)
			result := Validate(doc)
			assert.False(t, result.Valid())
			found := false
			for _, e := range result.Errors {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			assert.True(t, found, "expected an error containing %q, got %v", tt.wantErr, result.Errors)
		})
	}
}

func TestValidate_EmptyChecklistIsWarning(t *testing.T) {
	doc := sampleDocument()
	doc.Objective.BaseCase.Checklist = nil
	result := Validate(doc)
	assert.True(t, result.Valid())
	assert.Contains(t, result.Warnings, "objective.base_case.checklist is empty")
}

func TestGate_Ready(t *testing.T) {
	doc := sampleDocument()
	result := Gate(doc)
	assert.True(t, result.Ready)
	assert.Empty(t, result.Missing)
	assert.Equal(t, "running", result.Status)
}

func TestGate_MissingObjectiveFields(t *testing.T) {
	doc := sampleDocument()
	doc.Objective.BackgroundIntent = "  "
	doc.Objective.DefinitionOfDone = ""
	doc.Objective.BaseCase.Checklist = nil
	result := Gate(doc)
	assert.False(t, result.Ready)
	assert.Equal(t, []string{
		"objective.background_intent",
		"objective.definition_of_done",
		"objective.base_case",
	}, result.Missing)
}

func TestGate_CompletedDoesNotRestart(t *testing.T) {
	doc := sampleDocument()
	doc.Control.Status = StatusCompleted
	result := Gate(doc)
	assert.False(t, result.Ready)
	assert.Len(t, result.Missing, 1)
}
