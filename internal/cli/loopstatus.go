package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loopStatusCmd = &cobra.Command{
	Use:   "loop-status",
	Short: "Show the control block",
	Long: `Show the loop's control block: lifecycle status, iteration and stall
counters, the previous round's pending count, and the stop/redirect flags.`,
	Args: cobra.NoArgs,
	RunE: runLoopStatus,
}

func init() {
	rootCmd.AddCommand(loopStatusCmd)
}

func runLoopStatus(cmd *cobra.Command, args []string) error {
	doc, _, err := loadDocument()
	if err != nil {
		return err
	}

	ctrl := doc.Control
	fmt.Printf("Status: %s\n", ctrl.Status)
	fmt.Printf("Iteration: %d\n", ctrl.Iteration)
	fmt.Printf("Stall count: %d\n", ctrl.StallCount)
	fmt.Printf("Previous pending: %d\n", ctrl.PreviousPending)
	fmt.Printf("Stop requested: %v\n", ctrl.StopRequested)
	fmt.Printf("Redirect requested: %v\n", ctrl.RedirectRequest)
	if ctrl.StopReason != "" {
		fmt.Printf("Stop reason: %s\n", ctrl.StopReason)
	}
	return nil
}
