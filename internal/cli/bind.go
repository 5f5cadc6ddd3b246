package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/graph"
)

var (
	bindSummary   string
	bindArtifacts []string
)

var bindCmd = &cobra.Command{
	Use:   "bind <id>",
	Short: "Record a resolved atom's result binding",
	Long: `Record the external result of a resolved atom: a summary and an ordered
list of artifact references. The atom must already be resolved; dependents
read these bindings to assemble their execution context.

Example:
  aot bind A1 --summary "schema defined" --artifact schema.sql`,
	Args: cobra.ExactArgs(1),
	RunE: runBind,
}

func init() {
	bindCmd.Flags().StringVar(&bindSummary, "summary", "", "what the atom produced")
	bindCmd.Flags().StringArrayVar(&bindArtifacts, "artifact", nil, "artifact reference (repeatable)")
	_ = bindCmd.MarkFlagRequired("summary")
	rootCmd.AddCommand(bindCmd)
}

func runBind(cmd *cobra.Command, args []string) error {
	doc, store, err := loadDocument()
	if err != nil {
		return err
	}

	err = withGraph(doc, func(g *graph.Graph) error {
		return g.Record(args[0], bindSummary, bindArtifacts)
	})
	if err != nil {
		return err
	}

	if err := store.Save(doc); err != nil {
		return err
	}

	fmt.Printf("Recorded binding for %s (%d artifacts).\n", args[0], len(bindArtifacts))
	return nil
}
