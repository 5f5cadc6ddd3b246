package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/graph"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the graph and control block at a glance",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	doc, _, err := loadDocument()
	if err != nil {
		return err
	}

	g, err := doc.Graph()
	if err != nil {
		return fmt.Errorf("invalid state document: %w", err)
	}

	fmt.Printf("Goal: %s\n", doc.Objective.Goal)
	fmt.Printf("Status: %s", doc.Control.Status)
	if doc.Control.StopReason != "" {
		fmt.Printf(" (%s)", doc.Control.StopReason)
	}
	fmt.Printf("\n")
	fmt.Printf("Iteration: %d  Stall count: %d\n", doc.Control.Iteration, doc.Control.StallCount)

	counts := map[graph.Status]int{}
	for _, atom := range doc.Atoms {
		counts[atom.Status]++
	}
	fmt.Printf("Atoms: %d total, %d pending, %d in progress, %d resolved, %d superseded\n",
		len(doc.Atoms),
		counts[graph.StatusPending],
		counts[graph.StatusInProgress],
		counts[graph.StatusResolved],
		counts[graph.StatusSuperseded])

	if executable := g.Executable(); len(executable) > 0 {
		ids := make([]string, len(executable))
		for i, atom := range executable {
			ids[i] = atom.ID
		}
		fmt.Printf("Executable now: %s\n", strings.Join(ids, ", "))
	} else if g.Complete() {
		fmt.Printf("Executable now: none (graph complete)\n")
	} else if err := g.CheckReadiness(); err != nil {
		fmt.Printf("Executable now: none (DEADLOCK: pending atoms remain but none can run)\n")
	} else {
		fmt.Printf("Executable now: none\n")
	}

	for _, name := range g.ORGroupNames() {
		grp := g.ORGroup(name)
		selected := grp.Selected
		if selected == "" {
			selected = "(none)"
		}
		fmt.Printf("OR-group %s: selected %s, %d/%d failed\n",
			name, selected, len(grp.Failed), len(grp.Choices))
	}

	fmt.Printf("Bindings: %d  Trail entries: %d  Corrections: %d\n",
		len(doc.Bindings), len(doc.Trail), len(doc.Corrections))
	return nil
}
