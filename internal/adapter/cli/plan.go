package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/review-consolidator/internal/usecase/consolidate"
)

// planCommand computes the coverage plan for a change without writing
// artifacts or touching the store. Output is JSON so CI pipelines can
// decide whether to launch a supplemental review pass.
func planCommand(deps Dependencies) *cobra.Command {
	var baseRef string
	var targetRef string
	var findingsPath string
	var patchPath string
	var maxTargets int
	var includeUncommitted bool

	cmd := &cobra.Command{
		Use:   "plan [target]",
		Short: "Show which changed files lack review coverage",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				targetRef = args[0]
			}

			var patch string
			if patchPath != "" {
				data, err := os.ReadFile(patchPath)
				if err != nil {
					return fmt.Errorf("read patch file: %w", err)
				}
				patch = string(data)
			}

			plan, err := deps.Consolidator.Plan(cmd.Context(), consolidate.Request{
				BaseRef:            baseRef,
				TargetRef:          targetRef,
				FindingsPath:       findingsPath,
				Patch:              patch,
				MaxTargets:         maxTargets,
				IncludeUncommitted: includeUncommitted,
			})
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(plan)
		},
	}

	cmd.Flags().StringVar(&baseRef, "base", "main", "Base reference to diff against")
	cmd.Flags().StringVar(&targetRef, "target", "", "Target branch to inspect (overrides positional)")
	cmd.Flags().StringVar(&findingsPath, "findings", "", "Findings file from the base review pass (\"-\" for stdin)")
	cmd.Flags().StringVar(&patchPath, "patch", "", "Unified diff file to index instead of computing one from git")
	cmd.Flags().IntVar(&maxTargets, "max-targets", deps.DefaultMaxTargets, "Maximum files named in the coverage plan")
	cmd.Flags().BoolVar(&includeUncommitted, "include-uncommitted", false, "Include uncommitted changes on the target branch")

	return cmd
}
