package merge

import (
	"sort"
	"strings"

	"github.com/bkyoung/review-consolidator/internal/domain"
)

// maxSummaryItems caps the merged key-concerns and what-to-test lists.
const maxSummaryItems = 10

// MergeSummaries combines the run-level summaries of two passes.
// Risk takes the worse of the two tiers and confidence the more
// conservative, so merging never makes a run look safer than either
// pass said it was.
func MergeSummaries(base, supplemental domain.RunSummary) domain.RunSummary {
	return domain.RunSummary{
		Risk:        higherRisk(base.Risk, supplemental.Risk),
		Confidence:  lowerConfidence(base.Confidence, supplemental.Confidence),
		KeyConcerns: mergeList(base.KeyConcerns, supplemental.KeyConcerns),
		WhatToTest:  mergeList(base.WhatToTest, supplemental.WhatToTest),
		Files:       mergeFiles(base.Files, supplemental.Files),
	}
}

func higherRisk(a, b domain.RiskLevel) domain.RiskLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

func lowerConfidence(a, b domain.Confidence) domain.Confidence {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if b.Rank() < a.Rank() {
		return b
	}
	return a
}

// mergeList unions two lists keeping first-seen order: trimmed, exact
// duplicates removed, capped.
func mergeList(base, supplemental []string) []string {
	seen := make(map[string]bool, len(base)+len(supplemental))
	out := make([]string, 0, maxSummaryItems)
	for _, list := range [][]string{base, supplemental} {
		for _, item := range list {
			trimmed := strings.TrimSpace(item)
			if trimmed == "" || seen[trimmed] {
				continue
			}
			if len(out) == maxSummaryItems {
				return out
			}
			seen[trimmed] = true
			out = append(out, trimmed)
		}
	}
	return out
}

// mergeFiles unions per-path entries, keeping the longer summary text
// and the higher risk tier for paths both passes describe.
func mergeFiles(base, supplemental []domain.FileSummary) []domain.FileSummary {
	byPath := make(map[string]domain.FileSummary, len(base)+len(supplemental))
	for _, list := range [][]domain.FileSummary{base, supplemental} {
		for _, file := range list {
			current, ok := byPath[file.Path]
			if !ok {
				byPath[file.Path] = file
				continue
			}
			if len(file.Summary) > len(current.Summary) {
				current.Summary = file.Summary
			}
			current.Risk = higherRisk(current.Risk, file.Risk)
			byPath[file.Path] = current
		}
	}

	out := make([]domain.FileSummary, 0, len(byPath))
	for _, file := range byPath {
		out = append(out, file)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
