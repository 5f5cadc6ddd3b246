package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/state"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the state document's structural integrity",
	Long: `Validate the state document: required sections, unique atom ids, no
dangling dependencies, no cycles, OR-group selection consistency, binding
references, and a well-formed checklist.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, _, err := loadDocument()
	if err != nil {
		return err
	}

	result := state.Validate(doc)
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if !result.Valid() {
		for _, e := range result.Errors {
			fmt.Printf("error: %s\n", e)
		}
		return fmt.Errorf("state document is invalid (%d errors)", len(result.Errors))
	}

	fmt.Printf("State document is valid: %d atoms, %d or-groups, %d bindings.\n",
		len(doc.Atoms), len(doc.ORGroups), len(doc.Bindings))
	return nil
}
