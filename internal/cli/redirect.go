package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/state"
)

var (
	redirectNote  string
	redirectClear bool
)

var redirectCmd = &cobra.Command{
	Use:   "redirect",
	Short: "Request a redirect and record the correction",
	Long: `Set the redirect flag and append a correction note. A running loop yields
at the next round boundary without mutating the graph; the corrections are
then applied to the document (reopen atoms, add atoms, edit the objective)
and the flag cleared with --clear before the loop is restarted.

Example:
  aot redirect --note "importer must also handle the 2019 exports"
  aot redirect --clear`,
	Args: cobra.NoArgs,
	RunE: runRedirect,
}

func init() {
	redirectCmd.Flags().StringVar(&redirectNote, "note", "", "what should change and why")
	redirectCmd.Flags().BoolVar(&redirectClear, "clear", false, "clear the redirect flag after applying corrections")
	rootCmd.AddCommand(redirectCmd)
}

func runRedirect(cmd *cobra.Command, args []string) error {
	if !redirectClear && redirectNote == "" {
		return fmt.Errorf("a redirect needs --note (or --clear to finish one)")
	}

	doc, store, err := loadDocument()
	if err != nil {
		return err
	}

	if redirectClear {
		doc.Control.RedirectRequest = false
	} else {
		doc.Control.RedirectRequest = true
		doc.Corrections = append(doc.Corrections, state.Correction{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Note:      redirectNote,
		})
	}

	if err := store.Save(doc); err != nil {
		return err
	}

	if redirectClear {
		fmt.Printf("Redirect flag cleared; the loop may be restarted.\n")
	} else {
		fmt.Printf("Redirect requested; the loop will yield at the next round boundary.\n")
		fmt.Printf("Corrections recorded: %d\n", len(doc.Corrections))
	}
	return nil
}
