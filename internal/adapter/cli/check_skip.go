package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bkyoung/review-consolidator/internal/usecase/consolidate"
	"github.com/bkyoung/review-consolidator/internal/usecase/skip"
)

// ErrShouldReview is returned when no skip trigger is found,
// indicating the review should proceed. Use this as a sentinel
// error in CI workflows.
var ErrShouldReview = errors.New("should review")

// checkSkipCommand creates the check-skip subcommand.
// This command checks commit messages and change metadata for skip triggers.
//
// Exit codes:
//   - 0: Skip trigger found, consolidation should be skipped
//   - 1: No skip trigger, consolidation should proceed
func checkSkipCommand(consolidator Consolidator) *cobra.Command {
	var commitMessages []string
	var title string
	var description string
	var baseRef string
	var targetRef string

	cmd := &cobra.Command{
		Use:   "check-skip",
		Short: "Check if review consolidation should be skipped",
		Long: `Check commit messages and change metadata for skip triggers.

Supported skip trigger patterns:
  [skip review]
  [skip-review]

Patterns are case-insensitive and can appear anywhere in the text.

With --commit-message, --title, or --description the supplied text is
checked directly. Without them, the commit messages between --base and
the target branch are read from the repository.

Exit codes:
  0 - Skip trigger found, consolidation should be skipped
  1 - No skip trigger, consolidation should proceed

Example usage in CI:
  if ./rc check-skip --commit-message "${HEAD_COMMIT_MESSAGE}"; then
    echo "Skipping review consolidation"
    exit 0
  fi`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result skip.CheckResult

			if len(commitMessages) > 0 || title != "" || description != "" {
				result = skip.Check(skip.CheckRequest{
					CommitMessages:    commitMessages,
					ChangeTitle:       title,
					ChangeDescription: description,
				})
			} else {
				var err error
				result, err = consolidator.CheckSkip(cmd.Context(), consolidate.Request{
					BaseRef:   baseRef,
					TargetRef: targetRef,
				})
				if err != nil {
					return err
				}
			}

			if result.ShouldSkip {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "skip: %s\n", result.Reason)
				return nil // Exit 0
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "review: no skip trigger found")
			return ErrShouldReview // Exit 1
		},
	}

	cmd.Flags().StringArrayVar(&commitMessages, "commit-message", nil, "Commit message(s) to check (can be repeated)")
	cmd.Flags().StringVar(&title, "title", "", "Change title to check")
	cmd.Flags().StringVar(&description, "description", "", "Change description/body to check")
	cmd.Flags().StringVar(&baseRef, "base", "main", "Base reference when reading commit messages from git")
	cmd.Flags().StringVar(&targetRef, "target", "", "Target branch when reading commit messages from git (default: current branch)")

	return cmd
}
