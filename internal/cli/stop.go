package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stopClear bool

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Request a graceful loop stop",
	Long: `Set the stop flag in the control block. A running loop checks the flag at
the start of each round and exits without dispatching further work; in-flight
work from the current round still completes and is recorded.

Use --clear to withdraw a pending stop request before the loop honors it.`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().BoolVar(&stopClear, "clear", false, "withdraw a pending stop request")
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	doc, store, err := loadDocument()
	if err != nil {
		return err
	}

	doc.Control.StopRequested = !stopClear
	if err := store.Save(doc); err != nil {
		return err
	}

	if stopClear {
		fmt.Printf("Stop request cleared.\n")
	} else {
		fmt.Printf("Stop requested; the loop will exit at the next round boundary.\n")
	}
	return nil
}
