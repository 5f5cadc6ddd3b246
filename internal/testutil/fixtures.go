package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recurhq/aot/internal/checklist"
	"github.com/recurhq/aot/internal/graph"
	"github.com/recurhq/aot/internal/state"
)

// SampleRequest is the free-form request text used by document fixtures.
const SampleRequest = "Build a CSV importer for the legacy exports and document it.\n"

// SampleObjective returns a fully specified objective whose base case is a
// single always-passing command check.
func SampleObjective() state.Objective {
	return state.Objective{
		Goal:             "ship the importer",
		BackgroundIntent: "unblock the data team",
		Deliverables:     "importer binary plus docs",
		DefinitionOfDone: "all checks green",
		BaseCase: state.BaseCase{
			Checklist: []checklist.Node{
				{Item: "always passes", Check: &checklist.Check{Kind: checklist.KindCommand, Value: "true"}},
			},
		},
	}
}

// LinearDocument returns a document with n atoms chained A1 <- A2 <- ... <- An,
// each depending on its predecessor, all pending.
func LinearDocument(n int) *state.Document {
	doc := state.NewDocument("ship the importer")
	doc.Objective = SampleObjective()
	doc.Request = SampleRequest
	for i := 1; i <= n; i++ {
		atom := graph.Atom{
			ID:          fmt.Sprintf("A%d", i),
			Description: fmt.Sprintf("step %d", i),
			Status:      graph.StatusPending,
		}
		if i > 1 {
			atom.DependsOn = []string{fmt.Sprintf("A%d", i-1)}
		}
		doc.Atoms = append(doc.Atoms, atom)
	}
	return doc
}

// IndependentDocument returns a document with n atoms and no dependencies.
func IndependentDocument(n int) *state.Document {
	doc := state.NewDocument("ship the importer")
	doc.Objective = SampleObjective()
	doc.Request = SampleRequest
	for i := 1; i <= n; i++ {
		doc.Atoms = append(doc.Atoms, graph.Atom{
			ID:          fmt.Sprintf("A%d", i),
			Description: fmt.Sprintf("independent step %d", i),
			Status:      graph.StatusPending,
		})
	}
	return doc
}

// ORGroupDocument returns a document with one OR-group named "impl" whose
// choices are the given atom ids, all pending, with no selection yet.
func ORGroupDocument(choices ...string) *state.Document {
	doc := state.NewDocument("ship the importer")
	doc.Objective = SampleObjective()
	doc.Request = SampleRequest
	for _, id := range choices {
		doc.Atoms = append(doc.Atoms, graph.Atom{
			ID:          id,
			Description: "alternative " + id,
			Status:      graph.StatusPending,
			ORGroup:     "impl",
		})
	}
	doc.ORGroups["impl"] = graph.ORGroup{Choices: choices, Failed: []string{}}
	return doc
}

// SetupStateDir creates a temp directory with an .aot subdirectory and
// returns the directory and a store pointing at the default state path.
func SetupStateDir(t *testing.T) (string, *state.Store) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".aot"), 0o755))
	return dir, state.NewStore(filepath.Join(dir, state.DefaultStatePath))
}

// WriteTestFile writes content to path under base, creating parents.
func WriteTestFile(t *testing.T, base, path, content string) string {
	t.Helper()
	full := filepath.Join(base, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	return full
}
