package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_RequiresResolvedAtom(t *testing.T) {
	g := newTestGraph()
	mustAdd(t, g, AtomSpec{ID: "A1"})

	err := g.Record("A1", "done", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status is pending")

	require.NoError(t, g.SetStatus("A1", StatusInProgress))
	assert.Error(t, g.Record("A1", "done", nil))

	require.NoError(t, g.SetStatus("A1", StatusResolved))
	require.NoError(t, g.Record("A1", "implemented the parser", []string{"parser.go", "parser_test.go"}))

	b, err := g.Binding("A1")
	require.NoError(t, err)
	assert.Equal(t, "implemented the parser", b.Summary)
	assert.Equal(t, []string{"parser.go", "parser_test.go"}, b.Artifacts)
}

func TestRecord_OverwriteOnReResolution(t *testing.T) {
	g := newTestGraph()
	mustAdd(t, g, AtomSpec{ID: "A1"})
	require.NoError(t, g.SetStatus("A1", StatusInProgress))
	require.NoError(t, g.SetStatus("A1", StatusResolved))
	require.NoError(t, g.Record("A1", "first attempt", []string{"a.go"}))

	// Redirection reopens the atom; re-resolution overwrites the binding.
	require.NoError(t, g.Reopen("A1"))
	require.NoError(t, g.SetStatus("A1", StatusInProgress))
	require.NoError(t, g.SetStatus("A1", StatusResolved))
	require.NoError(t, g.Record("A1", "second attempt", []string{"a.go", "b.go"}))

	b, err := g.Binding("A1")
	require.NoError(t, err)
	assert.Equal(t, "second attempt", b.Summary)
	assert.Equal(t, []string{"A1"}, g.BindingIDs())
}

func TestBinding_NotFound(t *testing.T) {
	g := newTestGraph()
	mustAdd(t, g, AtomSpec{ID: "A1"})

	_, err := g.Binding("A1")
	assert.ErrorIs(t, err, ErrBindingNotFound)
}

func TestDependencyBindings(t *testing.T) {
	g := newTestGraph()
	mustAdd(t, g, AtomSpec{ID: "A1"})
	mustAdd(t, g, AtomSpec{ID: "A2"})
	mustAdd(t, g, AtomSpec{ID: "A3", DependsOn: []string{"A2", "A1"}})

	for _, id := range []string{"A1", "A2"} {
		require.NoError(t, g.SetStatus(id, StatusInProgress))
		require.NoError(t, g.SetStatus(id, StatusResolved))
		require.NoError(t, g.Record(id, "resolved "+id, []string{id + ".out"}))
	}

	deps, err := g.DependencyBindings("A3")
	require.NoError(t, err)
	require.Len(t, deps, 2)
	// depends_on order, not insertion order.
	assert.Equal(t, "A2", deps[0].AtomID)
	assert.Equal(t, "A1", deps[1].AtomID)
	assert.Equal(t, "resolved A2", deps[0].Binding.Summary)
}

func TestDependencyBindings_MissingBinding(t *testing.T) {
	g := newTestGraph()
	mustAdd(t, g, AtomSpec{ID: "A1"})
	mustAdd(t, g, AtomSpec{ID: "A2", DependsOn: []string{"A1"}})

	_, err := g.DependencyBindings("A2")
	assert.ErrorIs(t, err, ErrBindingNotFound)
}
