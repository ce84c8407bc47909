package consolidate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bkyoung/review-consolidator/internal/diff"
	"github.com/bkyoung/review-consolidator/internal/domain"
	"github.com/bkyoung/review-consolidator/internal/usecase/coverage"
	"github.com/bkyoung/review-consolidator/internal/usecase/match"
	"github.com/bkyoung/review-consolidator/internal/usecase/merge"
	"github.com/bkyoung/review-consolidator/internal/usecase/refine"
	"github.com/bkyoung/review-consolidator/internal/usecase/skip"
)

// GitEngine abstracts git operations for consolidation.
type GitEngine interface {
	// CumulativeDiff returns the diff between two refs (branches or commits).
	CumulativeDiff(ctx context.Context, baseRef, targetRef string, includeUncommitted bool) (domain.Diff, error)

	// CurrentBranch returns the name of the checked-out branch.
	CurrentBranch(ctx context.Context) (string, error)

	// CommitMessages returns the messages of commits reachable from
	// targetRef but not from baseRef, newest first. Used for skip
	// trigger detection.
	CommitMessages(ctx context.Context, baseRef, targetRef string) ([]string, error)
}

// Pass is one review pass's output: a change-level summary plus the
// raw candidate findings it produced.
type Pass struct {
	Summary  domain.RunSummary
	Findings []domain.Finding
}

// PassReader loads a review pass from a findings file. The path "-"
// reads from standard input.
type PassReader interface {
	ReadPass(ctx context.Context, path string) (Pass, error)
}

// Artifact encapsulates the report writer inputs.
type Artifact struct {
	OutputDir string
	Report    domain.Report
}

// JSONWriter persists the consolidated report to disk.
type JSONWriter interface {
	Write(ctx context.Context, artifact Artifact) (string, error)
}

// MarkdownWriter persists the consolidated report to disk.
type MarkdownWriter interface {
	Write(ctx context.Context, artifact Artifact) (string, error)
}

// SARIFWriter persists the consolidated report to disk in SARIF format.
type SARIFWriter interface {
	Write(ctx context.Context, artifact Artifact) (string, error)
}

// Redactor defines the outbound port for secret redaction.
type Redactor interface {
	RedactFinding(f domain.Finding) domain.Finding
	RedactSummary(s domain.RunSummary) domain.RunSummary
}

// Feedback status values accepted by RecordFeedback.
const (
	FeedbackAccepted = "accepted"
	FeedbackRejected = "rejected"
)

// Store defines the outbound port for persisting consolidation history.
type Store interface {
	CreateRun(ctx context.Context, run StoreRun) error
	SaveFindings(ctx context.Context, findings []StoreFinding) error

	// LatestCandidates returns the findings of the most recent run for
	// the change key, projected for reconciliation. A change with no
	// prior runs yields an empty slice, not an error.
	LatestCandidates(ctx context.Context, changeKey string) ([]domain.ExistingFindingCandidate, error)

	// CategoryPriors returns the accumulated reviewer feedback per
	// category.
	CategoryPriors(ctx context.Context) ([]StorePrior, error)

	// RecordFeedback stores a reviewer verdict on a finding key and
	// folds it into the category priors.
	RecordFeedback(ctx context.Context, findingKey, status string) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]StoreRun, error)

	Close() error
}

// StoreRun represents a consolidation run for persistence.
type StoreRun struct {
	RunID        string
	Timestamp    time.Time
	ChangeKey    string
	Repository   string
	BaseRef      string
	TargetRef    string
	ConfigHash   string
	FindingCount int
	SummaryRisk  string
}

// StoreFinding represents a finding record for persistence.
type StoreFinding struct {
	FindingID      string
	RunID          string
	Key            string
	Fingerprint    string
	MatchKey       string
	Path           string
	Side           string
	Line           int
	Severity       string
	Category       string
	Title          string
	Body           string
	Evidence       string
	SuggestedPatch string
	CommentType    string
	Confidence     string
	Score          float64
}

// StorePrior represents accumulated reviewer feedback for a category.
type StorePrior struct {
	Category string
	Alpha    float64
	Beta     float64
}

// Precision returns the expected acceptance rate for the category.
func (p StorePrior) Precision() float64 {
	if p.Alpha+p.Beta == 0 {
		return 0.5
	}
	return p.Alpha / (p.Alpha + p.Beta)
}

// Observations returns how much evidence backs the prior.
func (p StorePrior) Observations() float64 {
	return p.Alpha + p.Beta
}

// FeedbackThresholds tune how category priors translate into scoring
// boosts and penalties.
type FeedbackThresholds struct {
	// MinObservations is the minimum accepted+rejected count before a
	// category's precision influences scoring.
	MinObservations int

	// BoostThreshold is the precision at or above which a category is boosted.
	BoostThreshold float64

	// PenalizeThreshold is the precision at or below which a category is penalized.
	PenalizeThreshold float64
}

// DefaultFeedbackThresholds returns the standard feedback tuning.
func DefaultFeedbackThresholds() FeedbackThresholds {
	return FeedbackThresholds{
		MinObservations:   5,
		BoostThreshold:    0.7,
		PenalizeThreshold: 0.3,
	}
}

// OrchestratorDeps captures the inbound dependencies for the orchestrator.
type OrchestratorDeps struct {
	Git      GitEngine
	Passes   PassReader
	Markdown MarkdownWriter
	JSON     JSONWriter
	SARIF    SARIFWriter
	Redactor Redactor // Optional: scrubs secrets from report text
	Store    Store    // Optional: persistence for cross-run matching and feedback
	Logger   Logger   // Optional: structured logging for warnings and info

	// Weights tune candidate scoring. The zero value selects the
	// standard weights.
	Weights refine.ScoreWeights

	// Feedback tunes how stored priors shift scoring. The zero value
	// selects the standard thresholds.
	Feedback FeedbackThresholds
}

// Request represents an inbound CLI request.
type Request struct {
	BaseRef            string
	TargetRef          string   // Empty: detect the current branch
	ChangeKey          string   // Optional: override the derived change key
	Repository         string   // Repository display name
	FindingsPath       string   // Base pass findings file ("-" for stdin)
	SupplementalPath   string   // Optional: supplemental pass findings file
	Patch              string   // Optional: raw unified diff, overrides git
	OutputDir          string
	Formats            []string // json, markdown, sarif; empty means json
	SummaryOnly        bool
	MaxInlineComments  int
	MaxTargets         int
	IncludeUncommitted bool
}

// Result captures the orchestrator outcome.
type Result struct {
	RunID          string
	Skipped        bool
	SkipReason     string
	Report         domain.Report
	Reconciliation match.Result
	ArtifactPaths  map[string]string // format name -> written path
}

// Orchestrator implements the consolidation flow.
type Orchestrator struct {
	deps OrchestratorDeps
}

// NewOrchestrator wires the orchestrator dependencies. Zero-valued
// weights and feedback thresholds are replaced with the defaults.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	if deps.Weights == (refine.ScoreWeights{}) {
		deps.Weights = refine.DefaultScoreWeights()
	}
	if deps.Feedback == (FeedbackThresholds{}) {
		deps.Feedback = DefaultFeedbackThresholds()
	}
	return &Orchestrator{deps: deps}
}

// validateDependencies checks that all required dependencies are present.
func (o *Orchestrator) validateDependencies() error {
	if o.deps.Git == nil {
		return errors.New("git engine is required")
	}
	if o.deps.Passes == nil {
		return errors.New("pass reader is required")
	}
	if o.deps.JSON == nil {
		return errors.New("json writer is required")
	}
	if o.deps.Markdown == nil {
		return errors.New("markdown writer is required")
	}
	if o.deps.SARIF == nil {
		return errors.New("sarif writer is required")
	}
	// Redactor is optional
	// Store is optional
	// Logger is optional
	return nil
}

// Run consolidates one or two review passes into a single report for
// the change named by the request.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	if err := o.validateDependencies(); err != nil {
		return Result{}, err
	}
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	req, changeKey, err := o.resolveRefs(ctx, req)
	if err != nil {
		return Result{}, err
	}

	// Honor skip triggers before doing any work.
	messages, err := o.deps.Git.CommitMessages(ctx, req.BaseRef, req.TargetRef)
	if err != nil {
		o.logWarning(ctx, "failed to read commit messages for skip check", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if check := skip.Check(skip.CheckRequest{CommitMessages: messages}); check.ShouldSkip {
		o.logInfo(ctx, "skip trigger found, not consolidating", map[string]interface{}{
			"source": check.Reason,
		})
		return Result{Skipped: true, SkipReason: check.Reason}, nil
	}

	index, changed := o.diffContext(ctx, req)
	changedPaths := make([]string, len(changed))
	for i, file := range changed {
		changedPaths[i] = file.Path
	}

	basePass, err := o.deps.Passes.ReadPass(ctx, req.FindingsPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read findings: %w", err)
	}

	policy := o.loadFeedbackPolicy(ctx)
	engine := refine.NewEngine(o.deps.Weights)
	input := refine.Input{
		Index:        index,
		ChangedPaths: changedPaths,
		Limits:       refine.Limits{MaxInlineComments: req.MaxInlineComments},
		Mode:         refine.Mode{SummaryOnly: req.SummaryOnly},
		Policy:       policy,
	}

	input.Candidates = basePass.Findings
	refined := engine.Refine(input)
	findings := refined.Findings
	stats := refined.Stats
	summary := basePass.Summary

	plan := coverage.NewPlanner(req.MaxTargets).Plan(changed, findings)

	var mergeStats *domain.MergeStats
	if req.SupplementalPath != "" {
		suppPass, err := o.deps.Passes.ReadPass(ctx, req.SupplementalPath)
		if err != nil {
			o.logWarning(ctx, "failed to read supplemental findings", map[string]interface{}{
				"error": err.Error(),
				"path":  req.SupplementalPath,
			})
		} else {
			input.Candidates = suppPass.Findings
			suppRefined := engine.Refine(input)
			stats = addStats(stats, suppRefined.Stats)

			merged := merge.Merge(findings, suppRefined.Findings)
			findings = merged.Findings
			refine.SortFindings(findings)
			mergeStats = &merged.Stats
			summary = merge.MergeSummaries(summary, suppPass.Summary)
		}
	}

	// Redact before reconciling so new findings compare against stored
	// candidates on equal, already-scrubbed text.
	if o.deps.Redactor != nil {
		for i := range findings {
			findings[i] = o.deps.Redactor.RedactFinding(findings[i])
		}
		summary = o.deps.Redactor.RedactSummary(summary)
	}

	var candidates []domain.ExistingFindingCandidate
	if o.deps.Store != nil {
		candidates, err = o.deps.Store.LatestCandidates(ctx, changeKey)
		if err != nil {
			o.logWarning(ctx, "failed to load prior findings for reconciliation", map[string]interface{}{
				"error":     err.Error(),
				"changeKey": changeKey,
			})
			candidates = nil
		}
	}
	reconciliation := match.Reconcile(findings, candidates)

	now := time.Now().UTC()
	runID := generateRunID(now, req.BaseRef, req.TargetRef)
	report := domain.Report{
		RunID:          runID,
		Repository:     req.Repository,
		ChangeKey:      changeKey,
		BaseRef:        req.BaseRef,
		TargetRef:      req.TargetRef,
		GeneratedAt:    now.Format(time.RFC3339),
		Summary:        summary,
		Findings:       findings,
		Stats:          stats,
		Merge:          mergeStats,
		Coverage:       plan,
		Reconciliation: reconciliation.Stats,
	}

	paths, err := o.writeArtifacts(ctx, req, report)
	if err != nil {
		return Result{}, err
	}

	o.persistRun(ctx, req, changeKey, now, report, index)

	o.logInfo(ctx, "consolidation complete", map[string]interface{}{
		"runId":    runID,
		"findings": len(findings),
		"matched":  reconciliation.Stats.Matched,
		"created":  reconciliation.Stats.Created,
		"risk":     string(summary.Risk),
	})

	return Result{
		RunID:          runID,
		Report:         report,
		Reconciliation: reconciliation,
		ArtifactPaths:  paths,
	}, nil
}

// Plan computes the coverage plan for a change without writing
// artifacts or touching run history.
func (o *Orchestrator) Plan(ctx context.Context, req Request) (domain.CoveragePlan, error) {
	if err := o.validateDependencies(); err != nil {
		return domain.CoveragePlan{}, err
	}
	if req.BaseRef == "" {
		return domain.CoveragePlan{}, errors.New("base ref is required")
	}
	if req.FindingsPath == "" {
		return domain.CoveragePlan{}, errors.New("findings path is required")
	}

	req, _, err := o.resolveRefs(ctx, req)
	if err != nil {
		return domain.CoveragePlan{}, err
	}

	index, changed := o.diffContext(ctx, req)
	changedPaths := make([]string, len(changed))
	for i, file := range changed {
		changedPaths[i] = file.Path
	}

	pass, err := o.deps.Passes.ReadPass(ctx, req.FindingsPath)
	if err != nil {
		return domain.CoveragePlan{}, fmt.Errorf("failed to read findings: %w", err)
	}

	refined := refine.NewEngine(o.deps.Weights).Refine(refine.Input{
		Candidates:   pass.Findings,
		Index:        index,
		ChangedPaths: changedPaths,
		Limits:       refine.Limits{MaxInlineComments: req.MaxInlineComments},
		Mode:         refine.Mode{SummaryOnly: req.SummaryOnly},
		Policy:       o.loadFeedbackPolicy(ctx),
	})

	return coverage.NewPlanner(req.MaxTargets).Plan(changed, refined.Findings), nil
}

// CheckSkip reports whether the change between the request refs asks
// to skip review.
func (o *Orchestrator) CheckSkip(ctx context.Context, req Request) (skip.CheckResult, error) {
	if o.deps.Git == nil {
		return skip.CheckResult{}, errors.New("git engine is required")
	}
	req, _, err := o.resolveRefs(ctx, req)
	if err != nil {
		return skip.CheckResult{}, err
	}
	messages, err := o.deps.Git.CommitMessages(ctx, req.BaseRef, req.TargetRef)
	if err != nil {
		return skip.CheckResult{}, fmt.Errorf("failed to read commit messages: %w", err)
	}
	return skip.Check(skip.CheckRequest{CommitMessages: messages}), nil
}

// CurrentBranch resolves the repository's checked-out branch.
func (o *Orchestrator) CurrentBranch(ctx context.Context) (string, error) {
	if o.deps.Git == nil {
		return "", errors.New("orchestrator dependencies missing")
	}
	return o.deps.Git.CurrentBranch(ctx)
}

// RecordFeedback stores a reviewer verdict on a finding. The status
// must be "accepted" or "rejected".
func (o *Orchestrator) RecordFeedback(ctx context.Context, findingKey, status string) error {
	if o.deps.Store == nil {
		return errors.New("store is disabled; feedback requires persistence")
	}
	if findingKey == "" {
		return errors.New("finding key is required")
	}
	if status != FeedbackAccepted && status != FeedbackRejected {
		return fmt.Errorf("invalid feedback status %q: want %q or %q", status, FeedbackAccepted, FeedbackRejected)
	}
	return o.deps.Store.RecordFeedback(ctx, findingKey, status)
}

// ListRuns returns the most recent consolidation runs, newest first.
func (o *Orchestrator) ListRuns(ctx context.Context, limit int) ([]StoreRun, error) {
	if o.deps.Store == nil {
		return nil, errors.New("store is disabled; run history requires persistence")
	}
	return o.deps.Store.ListRuns(ctx, limit)
}

// resolveRefs fills in the target ref and change key. The target ref
// falls back to the checked-out branch; the change key falls back to
// repository@targetRef.
func (o *Orchestrator) resolveRefs(ctx context.Context, req Request) (Request, string, error) {
	if req.TargetRef == "" {
		branch, err := o.deps.Git.CurrentBranch(ctx)
		if err != nil {
			return req, "", fmt.Errorf("failed to detect target ref (pass one explicitly): %w", err)
		}
		req.TargetRef = branch
	}
	changeKey := req.ChangeKey
	if changeKey == "" {
		changeKey = fmt.Sprintf("%s@%s", req.Repository, req.TargetRef)
	}
	return req, changeKey, nil
}

// diffContext acquires the change's diff and derives the line index
// and per-file stats from it. Acquisition or parse failures degrade to
// an empty index: every comment then resolves to summary type.
func (o *Orchestrator) diffContext(ctx context.Context, req Request) (*diff.Index, []domain.ChangedFile) {
	var files []domain.FileDiff
	if req.Patch != "" {
		parsed, err := diff.SplitFiles(req.Patch)
		if err != nil {
			o.logWarning(ctx, "failed to parse patch, continuing without diff context", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			files = parsed
		}
	} else {
		d, err := o.deps.Git.CumulativeDiff(ctx, req.BaseRef, req.TargetRef, req.IncludeUncommitted)
		if err != nil {
			o.logWarning(ctx, "failed to compute diff, continuing without diff context", map[string]interface{}{
				"error":  err.Error(),
				"base":   req.BaseRef,
				"target": req.TargetRef,
			})
		} else {
			files = d.Files
		}
	}
	return diff.NewIndex(files), diff.FileStats(files)
}

// loadFeedbackPolicy turns stored category priors into scoring
// adjustments. Without a store, or on read failure, scoring runs
// unadjusted.
func (o *Orchestrator) loadFeedbackPolicy(ctx context.Context) refine.FeedbackPolicy {
	if o.deps.Store == nil {
		return refine.FeedbackPolicy{}
	}
	priors, err := o.deps.Store.CategoryPriors(ctx)
	if err != nil {
		o.logWarning(ctx, "failed to load category priors", map[string]interface{}{
			"error": err.Error(),
		})
		return refine.FeedbackPolicy{}
	}

	thresholds := o.deps.Feedback
	policy := refine.FeedbackPolicy{
		Boosted:   make(map[domain.Category]bool),
		Penalized: make(map[domain.Category]bool),
	}
	for _, prior := range priors {
		if prior.Observations() < float64(thresholds.MinObservations) {
			continue
		}
		category := domain.Category(prior.Category)
		if !category.IsValid() {
			continue
		}
		switch {
		case prior.Precision() >= thresholds.BoostThreshold:
			policy.Boosted[category] = true
		case prior.Precision() <= thresholds.PenalizeThreshold:
			policy.Penalized[category] = true
		}
	}
	return policy
}

// writeArtifacts renders the report in each requested format.
func (o *Orchestrator) writeArtifacts(ctx context.Context, req Request, report domain.Report) (map[string]string, error) {
	formats := req.Formats
	if len(formats) == 0 {
		formats = []string{"json"}
	}

	artifact := Artifact{OutputDir: req.OutputDir, Report: report}
	paths := make(map[string]string, len(formats))
	for _, format := range formats {
		switch format {
		case "json":
			path, err := o.deps.JSON.Write(ctx, artifact)
			if err != nil {
				return nil, fmt.Errorf("json write failed: %w", err)
			}
			paths[format] = path
		case "markdown":
			path, err := o.deps.Markdown.Write(ctx, artifact)
			if err != nil {
				return nil, fmt.Errorf("markdown write failed: %w", err)
			}
			paths[format] = path
		case "sarif":
			path, err := o.deps.SARIF.Write(ctx, artifact)
			if err != nil {
				return nil, fmt.Errorf("sarif write failed: %w", err)
			}
			paths[format] = path
		default:
			o.logWarning(ctx, "unknown output format requested", map[string]interface{}{
				"format": format,
			})
		}
	}
	return paths, nil
}

func (o *Orchestrator) logWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogWarning(ctx, message, fields)
		return
	}
	log.Printf("warning: %s: %v\n", message, fields)
}

func (o *Orchestrator) logInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if o.deps.Logger != nil {
		o.deps.Logger.LogInfo(ctx, message, fields)
	}
}

func validateRequest(req Request) error {
	if req.BaseRef == "" {
		return errors.New("base ref is required")
	}
	if req.FindingsPath == "" {
		return errors.New("findings path is required")
	}
	if req.OutputDir == "" {
		return errors.New("output directory is required")
	}
	return nil
}

func addStats(a, b domain.RefineStats) domain.RefineStats {
	return domain.RefineStats{
		DroppedEmpty:       a.DroppedEmpty + b.DroppedEmpty,
		Deduplicated:       a.Deduplicated + b.Deduplicated,
		ConvertedToSummary: a.ConvertedToSummary + b.ConvertedToSummary,
		DowngradedBlocking: a.DowngradedBlocking + b.DowngradedBlocking,
		DroppedPerFileCap:  a.DroppedPerFileCap + b.DroppedPerFileCap,
	}
}
