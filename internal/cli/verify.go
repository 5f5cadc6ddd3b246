package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/recurhq/aot/internal/checklist"
	"github.com/recurhq/aot/internal/verify"
)

var (
	verifyDir     string
	verifyTimeout time.Duration
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Evaluate the completion checklist",
	Long: `Run the machine-decidable checks of the base case checklist (commands and
file existence) and evaluate the tree against the gathered evidence.
Assertion and quality leaves are reported as pending: they need a
judgment-capable actor.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyDir, "dir", "", "working directory for command and file checks")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", verify.DefaultTimeout, "per-command timeout")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	doc, _, err := loadDocument()
	if err != nil {
		return err
	}
	items := doc.Objective.BaseCase.Checklist
	if len(items) == 0 {
		return fmt.Errorf("objective.base_case.checklist is empty; nothing to verify")
	}

	runner := &verify.Runner{Dir: verifyDir, Timeout: verifyTimeout}
	evidence, err := runner.Gather(cmd.Context(), items)
	if err != nil {
		return fmt.Errorf("failed to gather evidence: %w", err)
	}

	result, err := checklist.Evaluate(items, evidence)
	if err != nil {
		return err
	}

	for _, report := range result.Checklist {
		printReport(report, 0)
	}
	fmt.Printf("\nOverall: %s\n", result.Outcome)
	if len(result.Pending) > 0 {
		fmt.Printf("Awaiting external judgment: %s\n", strings.Join(result.Pending, ", "))
	}
	if len(result.Unconfirmed) > 0 {
		fmt.Printf("Awaiting confirmation: %s\n", strings.Join(result.Unconfirmed, ", "))
	}
	if !result.Passed {
		return fmt.Errorf("completion checklist not satisfied")
	}
	fmt.Printf("Completion checklist satisfied.\n")
	return nil
}

func printReport(report checklist.Report, depth int) {
	marker := map[checklist.Outcome]string{
		checklist.OutcomePass:    "PASS",
		checklist.OutcomeFail:    "FAIL",
		checklist.OutcomePending: "PEND",
	}[report.Outcome]
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s[%s] %s", indent, marker, report.Item)
	if report.Evidence != "" {
		fmt.Printf(" (%s)", report.Evidence)
	}
	fmt.Printf("\n")
	for _, child := range report.Children {
		printReport(child, depth+1)
	}
}
