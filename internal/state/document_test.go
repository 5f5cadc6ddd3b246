package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recurhq/aot/internal/checklist"
	"github.com/recurhq/aot/internal/graph"
)

func sampleDocument() *Document {
	return &Document{
		Objective: Objective{
			Goal:             "ship the importer",
			BackgroundIntent: "unblock the data team",
			Deliverables:     "importer binary plus docs",
			DefinitionOfDone: "all checks green",
			BaseCase: BaseCase{
				Checklist: []checklist.Node{
					{Item: "tests pass", Check: &checklist.Check{Kind: checklist.KindCommand, Value: "go test ./..."}},
				},
			},
		},
		Control: Control{Status: StatusRunning, Iteration: 3, StallCount: 1, PreviousPending: 2},
		Atoms: []graph.Atom{
			{ID: "A1", Description: "schema", Status: graph.StatusResolved, DependsOn: []string{}},
			{ID: "B1", Description: "csv reader", Status: graph.StatusPending, DependsOn: []string{"A1"}, ORGroup: "reader"},
			{ID: "B2", Description: "stream reader", Status: graph.StatusPending, DependsOn: []string{"A1"}, ORGroup: "reader"},
		},
		ORGroups: map[string]graph.ORGroup{
			"reader": {Choices: []string{"B1", "B2"}, Selected: "B2", Failed: []string{"B1"}},
		},
		Decompositions: []graph.Decomposition{},
		Bindings: map[string]graph.Binding{
			"A1": {Summary: "schema defined", Artifacts: []string{"schema.sql"}},
		},
		Trail: []graph.TrailEntry{
			{ID: "t1", ORGroup: "reader", Selected: "B1", Reason: "initial selection", Timestamp: "2026-03-01T12:00:00Z"},
			{ID: "t2", ORGroup: "reader", Selected: "B2", Reason: "B1 kept corrupting rows", Timestamp: "2026-03-01T13:00:00Z"},
		},
		Corrections: []Correction{},
		Request:     "Please build an importer for the legacy CSV exports.\n",
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := sampleDocument()

	data, err := Marshal(doc)
	require.NoError(t, err)

	parsed, err := Unmarshal(data)
	require.NoError(t, err)

	// Structural equality: ordered for sequences, key-set-equal for mappings,
	// request text preserved byte for byte.
	assert.Equal(t, doc, parsed)
}

func TestDocumentRoundTrip_EmptyContainers(t *testing.T) {
	doc := NewDocument("a goal")
	data, err := Marshal(doc)
	require.NoError(t, err)

	// Required sections are present as empty containers.
	text := string(data)
	for _, section := range []string{"objective:", "control:", "atoms: []", "or_groups: {}", "bindings: {}", "trail: []", "decompositions: []", "corrections: []"} {
		assert.Contains(t, text, section)
	}

	parsed, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, doc, parsed)
	assert.NotNil(t, parsed.Bindings)
	assert.NotNil(t, parsed.Trail)
}

func TestUnmarshal_MissingFrontmatter(t *testing.T) {
	_, err := Unmarshal([]byte("just some text"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start with ---")

	_, err = Unmarshal([]byte("---\nobjective:\n  goal: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing closing")
}

func TestDocumentGraphBridge(t *testing.T) {
	doc := sampleDocument()

	g, err := doc.Graph()
	require.NoError(t, err)
	assert.Len(t, g.Atoms(), 3)
	assert.Equal(t, "B2", g.ORGroup("reader").Selected)

	// Mutate through the graph and write back.
	require.NoError(t, g.SetStatus("B2", graph.StatusInProgress))
	doc.ApplySnapshot(g.Snapshot())

	assert.Equal(t, graph.StatusInProgress, doc.Atoms[2].Status)
}

func TestDocumentGraphBridge_RejectsCycle(t *testing.T) {
	doc := NewDocument("g")
	doc.Atoms = []graph.Atom{
		{ID: "A1", Status: graph.StatusPending, DependsOn: []string{"A2"}},
		{ID: "A2", Status: graph.StatusPending, DependsOn: []string{"A1"}},
	}

	_, err := doc.Graph()
	var cycle *graph.CycleError
	assert.ErrorAs(t, err, &cycle)
}
