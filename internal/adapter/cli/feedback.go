package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// feedbackCommand records a reviewer verdict on a finding. Accepted and
// rejected counts accumulate into per-category precision priors that
// later runs use to adjust scoring.
func feedbackCommand(consolidator Consolidator) *cobra.Command {
	var findingKey string
	var status string

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record whether a finding was accepted or rejected",
		RunE: func(cmd *cobra.Command, args []string) error {
			if findingKey == "" {
				return fmt.Errorf("--finding-key is required")
			}

			if err := consolidator.RecordFeedback(cmd.Context(), findingKey, status); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recorded %s for %s\n", status, findingKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&findingKey, "finding-key", "", "Stable key of the finding (from the report)")
	cmd.Flags().StringVar(&status, "status", "", "Verdict: accepted or rejected")

	return cmd
}
