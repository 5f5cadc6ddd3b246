package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/state"
)

var (
	initRequestFile string
	initForce       bool
)

var initCmd = &cobra.Command{
	Use:   "init <goal>",
	Short: "Create a new loop state document",
	Long: `Create a new state document with the given goal and empty sections.

The objective's background intent, deliverables, definition of done, and base
case checklist must be filled in (by the planner or by hand) before 'aot gate'
will let the loop start.

Example:
  aot init "ship the importer"
  aot init "ship the importer" --request-file request.md`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initRequestFile, "request-file", "", "file with the original request text")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing state document")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	store := openStore()
	if store.Exists() && !initForce {
		return fmt.Errorf("state document already exists: %s (use --force to overwrite)", store.Path())
	}

	doc := state.NewDocument(args[0])
	if initRequestFile != "" {
		data, err := os.ReadFile(initRequestFile)
		if err != nil {
			return fmt.Errorf("failed to read request file: %w", err)
		}
		doc.Request = string(data)
	}

	if err := store.Save(doc); err != nil {
		return err
	}

	fmt.Printf("Initialized state document: %s\n", store.Path())
	fmt.Printf("  Goal: %s\n", args[0])
	fmt.Printf("\nFill in the objective and add atoms, then check 'aot gate'.\n")
	return nil
}
