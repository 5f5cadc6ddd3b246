package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/graph"
	"github.com/recurhq/aot/internal/state"
)

var failReason string

var failCmd = &cobra.Command{
	Use:   "fail <id>",
	Short: "Report an atom's execution failure",
	Long: `Report that an atom's external execution failed. An atom outside any
OR-group is reset to pending for retry. An atom inside an OR-group is marked
failed and the group switches to the next available alternative, recording
the switch in the trail; if no alternative remains, the loop is stopped with
an exhaustion reason and an external actor must inject a new choice.

Example:
  aot fail B1 --reason "B1 kept corrupting rows"`,
	Args: cobra.ExactArgs(1),
	RunE: runFail,
}

func init() {
	failCmd.Flags().StringVar(&failReason, "reason", "", "why the execution failed")
	_ = failCmd.MarkFlagRequired("reason")
	rootCmd.AddCommand(failCmd)
}

func runFail(cmd *cobra.Command, args []string) error {
	doc, store, err := loadDocument()
	if err != nil {
		return err
	}

	var result *graph.BacktrackResult
	err = withGraph(doc, func(g *graph.Graph) error {
		res, ferr := g.ReportFailure(args[0], failReason)
		result = res

		var exhausted *graph.ExhaustionError
		if errors.As(ferr, &exhausted) {
			// Exhaustion is terminal for the loop but the failure itself is
			// recorded; persist the stopped control block.
			return nil
		}
		return ferr
	})
	if err != nil {
		return err
	}

	if result.Exhausted {
		doc.Control.Status = state.StatusStopped
		doc.Control.StopReason = fmt.Sprintf("or-group %s exhausted: every alternative failed", result.Group)
	}

	if err := store.Save(doc); err != nil {
		return err
	}

	switch {
	case result.Exhausted:
		fmt.Printf("OR-group %s is exhausted; loop stopped.\n", result.Group)
		fmt.Printf("Add a new alternative and clear the stopped status to resume.\n")
	case result.Switched:
		fmt.Printf("Marked %s failed; OR-group %s switched to %s.\n", result.AtomID, result.Group, result.Selected)
	default:
		fmt.Printf("Reset %s to pending for retry.\n", result.AtomID)
	}
	return nil
}
