package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// runsCommand lists recent consolidation runs from the store.
func runsCommand(consolidator Consolidator) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent consolidation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be a positive integer")
			}

			runs, err := consolidator.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(out, "no runs recorded")
				return nil
			}

			_, _ = fmt.Fprintf(out, "%-32s  %-20s  %-28s  %-8s  %s\n", "RUN", "TIMESTAMP", "CHANGE", "FINDINGS", "RISK")
			for _, run := range runs {
				_, _ = fmt.Fprintf(out, "%-32s  %-20s  %-28s  %-8d  %s\n",
					run.RunID,
					run.Timestamp.UTC().Format("2006-01-02 15:04:05"),
					run.ChangeKey,
					run.FindingCount,
					run.SummaryRisk,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to list")

	return cmd
}
