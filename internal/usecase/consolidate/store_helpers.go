package consolidate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bkyoung/review-consolidator/internal/diff"
	"github.com/bkyoung/review-consolidator/internal/domain"
)

// calculateConfigHash creates a deterministic hash of the request
// configuration, so stored runs record which settings produced them.
func calculateConfigHash(req Request) string {
	configStr := fmt.Sprintf("%s|%s|%s|%s|%s|%v|%v|%d|%d",
		req.BaseRef,
		req.TargetRef,
		req.Repository,
		req.OutputDir,
		strings.Join(req.Formats, ","),
		req.SummaryOnly,
		req.IncludeUncommitted,
		req.MaxInlineComments,
		req.MaxTargets,
	)

	hash := sha256.Sum256([]byte(configStr))
	return hex.EncodeToString(hash[:8]) // 16 char hash
}

// generateRunID and generateFindingID are intentionally duplicated from
// internal/store/util.go. This package defines the Store interface that
// the store adapter implements; importing the adapter's helpers here
// would invert the dependency direction. The sync test in
// store_helpers_test.go fails if the implementations diverge.

// generateRunID creates a unique, time-ordered run ID.
func generateRunID(timestamp time.Time, baseRef, targetRef string) string {
	ts := timestamp.UTC().Format("20060102T150405Z")

	input := fmt.Sprintf("%s|%s|%d", baseRef, targetRef, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3])

	return fmt.Sprintf("run-%s-%s", ts, shortHash)
}

// generateFindingID creates a unique ID for a persisted finding.
func generateFindingID(runID string, index int) string {
	return fmt.Sprintf("finding-%s-%04d", runID, index)
}

// buildFindingRecords projects the final findings into their persisted
// form, computing the identity hashes later runs match against. The
// hunk hash is empty for summary comments and for findings whose line
// no longer resolves to a hunk.
func buildFindingRecords(runID string, findings []domain.Finding, index *diff.Index) []StoreFinding {
	records := make([]StoreFinding, len(findings))
	for i, f := range findings {
		fingerprint := domain.Fingerprint(f)
		hunkHash := ""
		if index != nil && f.CommentType == domain.CommentTypeInline {
			hunkHash = index.HunkHash(f.Path, f.Side, f.Line)
		}
		records[i] = StoreFinding{
			FindingID:      generateFindingID(runID, i),
			RunID:          runID,
			Key:            f.Key,
			Fingerprint:    fingerprint,
			MatchKey:       domain.MatchKey(fingerprint, f.Path, hunkHash, f.Title),
			Path:           f.Path,
			Side:           string(f.Side),
			Line:           f.Line,
			Severity:       string(f.Severity),
			Category:       string(f.Category),
			Title:          f.Title,
			Body:           f.Body,
			Evidence:       f.Evidence,
			SuggestedPatch: f.SuggestedPatch,
			CommentType:    string(f.CommentType),
			Confidence:     string(f.Confidence),
			Score:          f.Score,
		}
	}
	return records
}

// persistRun records the run and its findings. Persistence failures
// are logged, not fatal: the artifacts on disk are the primary output.
func (o *Orchestrator) persistRun(ctx context.Context, req Request, changeKey string, timestamp time.Time, report domain.Report, index *diff.Index) {
	if o.deps.Store == nil {
		return
	}

	run := StoreRun{
		RunID:        report.RunID,
		Timestamp:    timestamp,
		ChangeKey:    changeKey,
		Repository:   req.Repository,
		BaseRef:      req.BaseRef,
		TargetRef:    req.TargetRef,
		ConfigHash:   calculateConfigHash(req),
		FindingCount: len(report.Findings),
		SummaryRisk:  string(report.Summary.Risk),
	}
	if err := o.deps.Store.CreateRun(ctx, run); err != nil {
		o.logWarning(ctx, "failed to create run record", map[string]interface{}{
			"error": err.Error(),
			"runId": report.RunID,
		})
		return
	}

	if len(report.Findings) == 0 {
		return
	}
	records := buildFindingRecords(report.RunID, report.Findings, index)
	if err := o.deps.Store.SaveFindings(ctx, records); err != nil {
		o.logWarning(ctx, "failed to save findings", map[string]interface{}{
			"error": err.Error(),
			"runId": report.RunID,
		})
	}
}
