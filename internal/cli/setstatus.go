package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/graph"
)

var setStatusReopen bool

var setStatusCmd = &cobra.Command{
	Use:   "set-status <id> <status>",
	Short: "Transition an atom's status",
	Long: `Transition an atom along the sanctioned order pending -> in_progress ->
resolved. Backward edges are restricted: --reopen moves a resolved atom back
to pending for redirection; failure resets go through 'aot fail'.

Example:
  aot set-status B1 in_progress
  aot set-status B1 resolved
  aot set-status B1 pending --reopen`,
	Args: cobra.ExactArgs(2),
	RunE: runSetStatus,
}

func init() {
	setStatusCmd.Flags().BoolVar(&setStatusReopen, "reopen", false, "reopen a resolved atom (resolved -> pending)")
	rootCmd.AddCommand(setStatusCmd)
}

func runSetStatus(cmd *cobra.Command, args []string) error {
	id, status := args[0], graph.Status(args[1])

	doc, store, err := loadDocument()
	if err != nil {
		return err
	}

	err = withGraph(doc, func(g *graph.Graph) error {
		if setStatusReopen {
			if status != graph.StatusPending {
				return fmt.Errorf("--reopen only supports the pending status, got %q", status)
			}
			return g.Reopen(id)
		}
		return g.SetStatus(id, status)
	})
	if err != nil {
		return err
	}

	if err := store.Save(doc); err != nil {
		return err
	}

	fmt.Printf("Atom %s is now %s.\n", id, status)
	return nil
}
