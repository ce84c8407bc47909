package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bkyoung/review-consolidator/internal/domain"
	"github.com/bkyoung/review-consolidator/internal/store"
	"github.com/bkyoung/review-consolidator/internal/usecase/consolidate"
)

// Bridge adapts store.Store to the consolidate.Store port.
// This avoids circular dependencies between packages.
type Bridge struct {
	store store.Store
	now   func() time.Time
}

// NewBridge creates a new store adapter.
func NewBridge(s store.Store) *Bridge {
	return &Bridge{store: s, now: time.Now}
}

// CreateRun converts and saves a run record.
func (b *Bridge) CreateRun(ctx context.Context, run consolidate.StoreRun) error {
	storeRun := store.Run{
		RunID:        run.RunID,
		Timestamp:    run.Timestamp,
		ChangeKey:    run.ChangeKey,
		Repository:   run.Repository,
		BaseRef:      run.BaseRef,
		TargetRef:    run.TargetRef,
		ConfigHash:   run.ConfigHash,
		FindingCount: run.FindingCount,
		SummaryRisk:  run.SummaryRisk,
	}
	return b.store.CreateRun(ctx, storeRun)
}

// SaveFindings converts and saves finding records.
func (b *Bridge) SaveFindings(ctx context.Context, findings []consolidate.StoreFinding) error {
	storeFindings := make([]store.FindingRecord, len(findings))
	for i, f := range findings {
		storeFindings[i] = store.FindingRecord{
			FindingID:      f.FindingID,
			RunID:          f.RunID,
			Key:            f.Key,
			Fingerprint:    f.Fingerprint,
			MatchKey:       f.MatchKey,
			Path:           f.Path,
			Side:           f.Side,
			Line:           f.Line,
			Severity:       f.Severity,
			Category:       f.Category,
			Title:          f.Title,
			Body:           f.Body,
			Evidence:       f.Evidence,
			SuggestedPatch: f.SuggestedPatch,
			CommentType:    f.CommentType,
			Confidence:     f.Confidence,
			Score:          f.Score,
		}
	}
	return b.store.SaveFindings(ctx, storeFindings)
}

// LatestCandidates loads the findings of the most recent run for the
// change key and projects them for reconciliation. A change that has
// never been consolidated yields an empty result, not an error.
func (b *Bridge) LatestCandidates(ctx context.Context, changeKey string) ([]domain.ExistingFindingCandidate, error) {
	run, err := b.store.LatestRunForChange(ctx, changeKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	findings, err := b.store.GetFindingsByRun(ctx, run.RunID)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.ExistingFindingCandidate, len(findings))
	for i, f := range findings {
		candidates[i] = domain.ExistingFindingCandidate{
			ID:       f.FindingID,
			Path:     f.Path,
			Line:     f.Line,
			Side:     domain.Side(f.Side),
			Severity: domain.Severity(f.Severity),
			Category: domain.Category(f.Category),
			Title:    f.Title,
			Body:     f.Body,
		}
	}
	return candidates, nil
}

// CategoryPriors converts the stored priors map into a slice sorted by
// category for deterministic consumption.
func (b *Bridge) CategoryPriors(ctx context.Context) ([]consolidate.StorePrior, error) {
	priors, err := b.store.GetCategoryPriors(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]consolidate.StorePrior, 0, len(priors))
	for _, prior := range priors {
		result = append(result, consolidate.StorePrior{
			Category: prior.Category,
			Alpha:    prior.Alpha,
			Beta:     prior.Beta,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Category < result[j].Category })
	return result, nil
}

// RecordFeedback resolves the finding's category, stores the verdict,
// and folds it into that category's prior.
func (b *Bridge) RecordFeedback(ctx context.Context, findingKey, status string) error {
	finding, err := b.store.LatestFindingByKey(ctx, findingKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no finding recorded with key %s", findingKey)
		}
		return err
	}

	feedback := store.Feedback{
		FindingKey: findingKey,
		Category:   finding.Category,
		Status:     status,
		Timestamp:  b.now(),
	}
	if err := b.store.RecordFeedback(ctx, feedback); err != nil {
		return err
	}

	accepted, rejected := 0, 1
	if status == consolidate.FeedbackAccepted {
		accepted, rejected = 1, 0
	}
	return b.store.UpdateCategoryPrior(ctx, finding.Category, accepted, rejected)
}

// ListRuns converts the most recent runs, newest first.
func (b *Bridge) ListRuns(ctx context.Context, limit int) ([]consolidate.StoreRun, error) {
	runs, err := b.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]consolidate.StoreRun, len(runs))
	for i, run := range runs {
		result[i] = consolidate.StoreRun{
			RunID:        run.RunID,
			Timestamp:    run.Timestamp,
			ChangeKey:    run.ChangeKey,
			Repository:   run.Repository,
			BaseRef:      run.BaseRef,
			TargetRef:    run.TargetRef,
			ConfigHash:   run.ConfigHash,
			FindingCount: run.FindingCount,
			SummaryRisk:  run.SummaryRisk,
		}
	}
	return result, nil
}

// Close closes the underlying store.
func (b *Bridge) Close() error {
	return b.store.Close()
}
