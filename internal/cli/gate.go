package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/state"
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Check whether the loop may start",
	Long: `Check the loop entry preconditions: a fully specified objective (goal,
background intent, deliverables, definition of done), a non-empty base case
checklist, at least one atom, and a control status that permits starting.`,
	Args: cobra.NoArgs,
	RunE: runGate,
}

func init() {
	rootCmd.AddCommand(gateCmd)
}

func runGate(cmd *cobra.Command, args []string) error {
	doc, _, err := loadDocument()
	if err != nil {
		return err
	}

	result := state.Gate(doc)
	if !result.Ready {
		fmt.Printf("Gate: NOT READY (status: %s)\n", result.Status)
		for _, m := range result.Missing {
			fmt.Printf("  missing: %s\n", m)
		}
		return fmt.Errorf("gate failed: %d preconditions missing", len(result.Missing))
	}

	fmt.Printf("Gate: READY (status: %s)\n", result.Status)
	return nil
}
