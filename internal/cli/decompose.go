package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/graph"
)

var (
	decomposeChildren []string
	decomposeReason   string
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <parent-id>",
	Short: "Replace an atom with child atoms",
	Long: `Decompose a pending or in-progress atom into children. Each child inherits
the parent's dependencies, the parent becomes superseded, and an immutable
decomposition record is appended.

Children are given as id=description pairs:

  aot decompose B1 --reason "too coarse" \
    --child B1a="parse the header" \
    --child B1b="parse the rows"`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompose,
}

func init() {
	decomposeCmd.Flags().StringArrayVar(&decomposeChildren, "child", nil, "child as id=description (repeatable, at least one)")
	decomposeCmd.Flags().StringVar(&decomposeReason, "reason", "", "why the atom is being decomposed")
	_ = decomposeCmd.MarkFlagRequired("child")
	_ = decomposeCmd.MarkFlagRequired("reason")
	rootCmd.AddCommand(decomposeCmd)
}

func runDecompose(cmd *cobra.Command, args []string) error {
	children := make([]graph.ChildSpec, 0, len(decomposeChildren))
	for _, raw := range decomposeChildren {
		id, description, ok := strings.Cut(raw, "=")
		if !ok || id == "" || description == "" {
			return fmt.Errorf("invalid --child %q: want id=description", raw)
		}
		children = append(children, graph.ChildSpec{ID: id, Description: description})
	}

	doc, store, err := loadDocument()
	if err != nil {
		return err
	}

	var record *graph.Decomposition
	err = withGraph(doc, func(g *graph.Graph) error {
		rec, err := g.Decompose(args[0], children, decomposeReason)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return err
	}

	if err := store.Save(doc); err != nil {
		return err
	}

	fmt.Printf("Decomposed %s into %s.\n", args[0], strings.Join(record.Children, ", "))
	return nil
}
