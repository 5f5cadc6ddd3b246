package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/graph"
)

var (
	addAtomDependsOn []string
	addAtomORGroup   string
	addAtomClaims    []string
)

var addAtomCmd = &cobra.Command{
	Use:   "add-atom <id> <description>",
	Short: "Add an atom to the graph",
	Long: `Add an atom to the graph. Dependencies must already exist; a duplicate id
or a dangling dependency fails without changing the document.

Example:
  aot add-atom B1 "parse the export" --depends-on A1 --depends-on A2
  aot add-atom C1 "csv reader" --or-group reader --claims internal/reader.go`,
	Args: cobra.ExactArgs(2),
	RunE: runAddAtom,
}

func init() {
	addAtomCmd.Flags().StringArrayVar(&addAtomDependsOn, "depends-on", nil, "dependency atom id (repeatable)")
	addAtomCmd.Flags().StringVar(&addAtomORGroup, "or-group", "", "OR-group this atom is an alternative in")
	addAtomCmd.Flags().StringArrayVar(&addAtomClaims, "claims", nil, "artifact path the atom intends to touch (repeatable)")
	rootCmd.AddCommand(addAtomCmd)
}

func runAddAtom(cmd *cobra.Command, args []string) error {
	doc, store, err := loadDocument()
	if err != nil {
		return err
	}

	err = withGraph(doc, func(g *graph.Graph) error {
		_, err := g.AddAtom(graph.AtomSpec{
			ID:          args[0],
			Description: args[1],
			DependsOn:   addAtomDependsOn,
			ORGroup:     addAtomORGroup,
			Claims:      addAtomClaims,
		})
		return err
	})
	if err != nil {
		return err
	}

	if err := store.Save(doc); err != nil {
		return err
	}

	fmt.Printf("Added atom %s (%d atoms total).\n", args[0], len(doc.Atoms))
	return nil
}
