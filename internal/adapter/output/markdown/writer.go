package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/review-consolidator/internal/domain"
	"github.com/bkyoung/review-consolidator/internal/usecase/consolidate"
)

type clock func() string

// Writer renders consolidated reports into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a Markdown artifact to disk.
func (w *Writer) Write(ctx context.Context, artifact consolidate.Artifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	report := artifact.Report
	filename := fmt.Sprintf("%s_%s_consolidated_%s.md",
		sanitise(report.Repository),
		sanitise(report.TargetRef),
		w.now(),
	)
	path := filepath.Join(artifact.OutputDir, filename)

	content := buildContent(report)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

func buildContent(report domain.Report) string {
	var builder strings.Builder
	caser := cases.Title(language.English)

	builder.WriteString("# Consolidated Review Report\n\n")
	builder.WriteString(fmt.Sprintf("- Repository: %s\n", report.Repository))
	builder.WriteString(fmt.Sprintf("- Base: %s\n", report.BaseRef))
	builder.WriteString(fmt.Sprintf("- Target: %s\n", report.TargetRef))
	builder.WriteString(fmt.Sprintf("- Run: %s\n", report.RunID))
	builder.WriteString(fmt.Sprintf("- Risk: %s (%s confidence)\n\n", caser.String(string(report.Summary.Risk)), report.Summary.Confidence))

	writeSummary(&builder, report.Summary)
	writeCoverage(&builder, report.Coverage)
	writeFindings(&builder, caser, report.Findings)
	writeStats(&builder, report)

	return builder.String()
}

func writeSummary(builder *strings.Builder, summary domain.RunSummary) {
	builder.WriteString("## Summary\n\n")

	if len(summary.KeyConcerns) > 0 {
		builder.WriteString("Key concerns:\n\n")
		for _, concern := range summary.KeyConcerns {
			builder.WriteString(fmt.Sprintf("- %s\n", concern))
		}
		builder.WriteString("\n")
	}

	if len(summary.WhatToTest) > 0 {
		builder.WriteString("What to test:\n\n")
		for _, item := range summary.WhatToTest {
			builder.WriteString(fmt.Sprintf("- %s\n", item))
		}
		builder.WriteString("\n")
	}

	for _, file := range summary.Files {
		builder.WriteString(fmt.Sprintf("- `%s` (%s risk): %s\n", file.Path, file.Risk, file.Summary))
	}
	if len(summary.Files) > 0 {
		builder.WriteString("\n")
	}
}

func writeCoverage(builder *strings.Builder, plan domain.CoveragePlan) {
	builder.WriteString("## Coverage\n\n")
	builder.WriteString(fmt.Sprintf("- Changed files: %d (%d with findings, %.0f%% covered)\n",
		plan.TotalChanged, plan.CoveredChanged, plan.CoverageRatio*100))

	if plan.ShouldRun {
		builder.WriteString("- Supplemental pass recommended for:\n")
		for _, target := range plan.Targets {
			builder.WriteString(fmt.Sprintf("  - `%s` — %s\n", target.Path, target.Reason))
		}
	} else {
		builder.WriteString("- Supplemental pass not needed\n")
	}
	builder.WriteString("\n")
}

func writeFindings(builder *strings.Builder, caser cases.Caser, findings []domain.Finding) {
	if len(findings) == 0 {
		builder.WriteString("No findings reported.\n")
		return
	}

	builder.WriteString("## Findings\n\n")
	for _, finding := range findings {
		builder.WriteString(fmt.Sprintf("### %s (%s)\n", finding.Title, caser.String(string(finding.Severity))))
		if finding.CommentType == domain.CommentTypeInline {
			builder.WriteString(fmt.Sprintf("- File: %s:%d\n", finding.Path, finding.Line))
		} else if finding.Path != "" {
			builder.WriteString(fmt.Sprintf("- File: %s\n", finding.Path))
		}
		builder.WriteString(fmt.Sprintf("- Category: %s\n", finding.Category))
		builder.WriteString(fmt.Sprintf("- Confidence: %s\n", finding.Confidence))
		builder.WriteString(fmt.Sprintf("- Score: %.1f\n\n", finding.Score))
		builder.WriteString(finding.Body)
		builder.WriteString("\n")

		if finding.Evidence != "" {
			builder.WriteString(fmt.Sprintf("\n```\n%s\n```\n", finding.Evidence))
		}
		if finding.SuggestedPatch != "" {
			builder.WriteString(fmt.Sprintf("\nSuggested change:\n\n```\n%s\n```\n", finding.SuggestedPatch))
		}
		builder.WriteString("\n")
	}
}

func writeStats(builder *strings.Builder, report domain.Report) {
	builder.WriteString("## Diagnostics\n\n")
	builder.WriteString(fmt.Sprintf("- Dropped (empty): %d\n", report.Stats.DroppedEmpty))
	builder.WriteString(fmt.Sprintf("- Deduplicated: %d\n", report.Stats.Deduplicated))
	builder.WriteString(fmt.Sprintf("- Converted to summary: %d\n", report.Stats.ConvertedToSummary))
	builder.WriteString(fmt.Sprintf("- Downgraded blocking: %d\n", report.Stats.DowngradedBlocking))
	builder.WriteString(fmt.Sprintf("- Dropped (per-file cap): %d\n", report.Stats.DroppedPerFileCap))

	if report.Merge != nil {
		builder.WriteString(fmt.Sprintf("- Supplemental merge: %d added, %d duplicates, %d low-value\n",
			report.Merge.Added, report.Merge.DroppedDuplicates, report.Merge.DroppedLowValue))
	}

	builder.WriteString(fmt.Sprintf("- Reconciliation: %d matched, %d new\n",
		report.Reconciliation.Matched, report.Reconciliation.Created))
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
