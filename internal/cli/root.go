package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/graph"
	"github.com/recurhq/aot/internal/state"
)

// Version is set at build time via ldflags.
var Version = "dev"

var stateFile string

var rootCmd = &cobra.Command{
	Use:   "aot",
	Short: "Task-graph loop driver for autonomous objective completion",
	Long: `aot manages an iterative task-completion loop: a goal is decomposed into
a graph of atomic work items with AND-dependencies and OR-group alternatives,
external workers execute the ready items, failed alternatives are backtracked
automatically, and the loop ends when a verifiable completion checklist passes
or progress stalls.

State lives in a single markdown document with a YAML metadata block,
.aot/loop-state.md by default.`,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("aot version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state-file", state.DefaultStatePath,
		"path to the loop state document")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func openStore() *state.Store {
	return state.NewStore(stateFile)
}

func loadDocument() (*state.Document, *state.Store, error) {
	store := openStore()
	doc, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	return doc, store, nil
}

// withGraph builds the graph from the document, applies the mutation, and
// writes the result back into the document.
func withGraph(doc *state.Document, fn func(*graph.Graph) error) error {
	g, err := doc.Graph()
	if err != nil {
		return fmt.Errorf("invalid state document: %w", err)
	}
	if err := fn(g); err != nil {
		return err
	}
	doc.ApplySnapshot(g.Snapshot())
	return nil
}
