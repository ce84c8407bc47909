package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/review-consolidator/internal/domain"
	"github.com/bkyoung/review-consolidator/internal/usecase/consolidate"
)

func runCommand(deps Dependencies) *cobra.Command {
	var baseRef string
	var targetRef string
	var changeKey string
	var repository string
	var findingsPath string
	var supplementalPath string
	var patchPath string
	var outputDir string
	var formats []string
	var summaryOnly bool
	var maxInlineComments int
	var maxTargets int
	var includeUncommitted bool

	cmd := &cobra.Command{
		Use:   "run [target]",
		Short: "Consolidate review passes for a change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				targetRef = args[0]
			}
			ctx := cmd.Context()

			if findingsPath == "-" && consolidate.IsInteractive() {
				return fmt.Errorf("reading findings from stdin requires piped input")
			}

			var patch string
			if patchPath != "" {
				data, err := os.ReadFile(patchPath)
				if err != nil {
					return fmt.Errorf("read patch file: %w", err)
				}
				patch = string(data)
			}

			result, err := deps.Consolidator.Run(ctx, consolidate.Request{
				BaseRef:            baseRef,
				TargetRef:          targetRef,
				ChangeKey:          changeKey,
				Repository:         repository,
				FindingsPath:       findingsPath,
				SupplementalPath:   supplementalPath,
				Patch:              patch,
				OutputDir:          outputDir,
				Formats:            formats,
				SummaryOnly:        summaryOnly,
				MaxInlineComments:  maxInlineComments,
				MaxTargets:         maxTargets,
				IncludeUncommitted: includeUncommitted,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Skipped {
				_, _ = fmt.Fprintf(out, "skip: %s\n", result.SkipReason)
				return nil
			}

			if consolidate.IsOutputTerminal() {
				printRunSummary(out, formats, result)
			} else {
				for _, format := range orderedFormats(formats, result.ArtifactPaths) {
					_, _ = fmt.Fprintf(out, "%s\t%s\n", format, result.ArtifactPaths[format])
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseRef, "base", "main", "Base reference to diff against")
	cmd.Flags().StringVar(&targetRef, "target", "", "Target branch to consolidate (overrides positional)")
	cmd.Flags().StringVar(&changeKey, "change-key", "", "Override the derived change key (e.g. a PR identity)")
	cmd.Flags().StringVar(&repository, "repository", deps.DefaultRepo, "Optional repository name override")
	cmd.Flags().StringVar(&findingsPath, "findings", "", "Findings file from the base review pass (\"-\" for stdin)")
	cmd.Flags().StringVar(&supplementalPath, "supplemental", "", "Findings file from a supplemental review pass")
	cmd.Flags().StringVar(&patchPath, "patch", "", "Unified diff file to index instead of computing one from git")
	outputDefault := deps.DefaultOutput
	if outputDefault == "" {
		outputDefault = "out"
	}
	cmd.Flags().StringVar(&outputDir, "output", outputDefault, "Directory to write consolidated artifacts")
	cmd.Flags().StringSliceVar(&formats, "format", deps.DefaultFormats, "Artifact formats to write (json, markdown, sarif)")
	cmd.Flags().BoolVar(&summaryOnly, "summary-only", deps.DefaultSummary, "Convert all findings to summary comments")
	cmd.Flags().IntVar(&maxInlineComments, "max-inline-comments", deps.DefaultMaxInline, "Maximum inline comments kept per file")
	cmd.Flags().IntVar(&maxTargets, "max-targets", deps.DefaultMaxTargets, "Maximum files named in the coverage plan")
	cmd.Flags().BoolVar(&includeUncommitted, "include-uncommitted", false, "Include uncommitted changes on the target branch")

	return cmd
}

func printRunSummary(out io.Writer, formats []string, result consolidate.Result) {
	report := result.Report

	inline, summary := 0, 0
	for _, finding := range report.Findings {
		if finding.CommentType == domain.CommentTypeInline {
			inline++
		} else {
			summary++
		}
	}

	_, _ = fmt.Fprintf(out, "Consolidated %d findings (risk: %s, %s confidence)\n",
		len(report.Findings), report.Summary.Risk, report.Summary.Confidence)
	_, _ = fmt.Fprintf(out, "%d inline, %d summary; %d matched existing, %d new\n",
		inline, summary, report.Reconciliation.Matched, report.Reconciliation.Created)

	if report.Coverage.ShouldRun {
		_, _ = fmt.Fprintf(out, "Coverage gap: %d of %d changed files reviewed, supplemental pass recommended\n",
			report.Coverage.CoveredChanged, report.Coverage.TotalChanged)
	}

	for _, format := range orderedFormats(formats, result.ArtifactPaths) {
		_, _ = fmt.Fprintf(out, "  %s: %s\n", format, result.ArtifactPaths[format])
	}
}

// orderedFormats returns the requested formats that produced artifacts,
// preserving request order. Map iteration alone would be unstable.
func orderedFormats(requested []string, paths map[string]string) []string {
	if len(requested) == 0 {
		requested = []string{"json"}
	}
	ordered := make([]string, 0, len(paths))
	for _, format := range requested {
		if _, ok := paths[format]; ok {
			ordered = append(ordered, format)
		}
	}
	return ordered
}
