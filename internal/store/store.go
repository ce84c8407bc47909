package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
// Callers distinguish it from real failures with errors.Is.
var ErrNotFound = errors.New("record not found")

// Store defines the persistence interface for consolidation history.
// Runs and their findings feed cross-run matching; feedback feeds the
// category precision priors used by the scorer.
type Store interface {
	// Run management
	CreateRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	LatestRunForChange(ctx context.Context, changeKey string) (Run, error)

	// Finding persistence
	SaveFindings(ctx context.Context, findings []FindingRecord) error
	GetFindingsByRun(ctx context.Context, runID string) ([]FindingRecord, error)
	LatestFindingByKey(ctx context.Context, key string) (FindingRecord, error)

	// Reviewer feedback
	RecordFeedback(ctx context.Context, feedback Feedback) error
	GetFeedbackForFinding(ctx context.Context, findingKey string) ([]Feedback, error)
	GetCategoryPriors(ctx context.Context) (map[string]CategoryPrior, error)
	UpdateCategoryPrior(ctx context.Context, category string, accepted, rejected int) error

	// Utility
	Close() error
}

// Run is the stored metadata for one consolidation run.
type Run struct {
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

// FindingRecord is the persisted form of a consolidated finding. Key,
// Fingerprint, and MatchKey carry the identity hashes that later runs
// use to recognize the same finding again.
type FindingRecord struct {
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

// Feedback records a reviewer accepting or rejecting a finding. The
// category is denormalized onto the row so priors can be rebuilt
// without joining back through findings.
type Feedback struct {
	FeedbackID int
	FindingKey string
	Category   string
	Status     string // "accepted" or "rejected"
	Timestamp  time.Time
}

// CategoryPrior holds Beta distribution parameters tracking how often
// findings in a category were accepted (alpha) versus rejected (beta).
type CategoryPrior struct {
	Category string
	Alpha    float64
	Beta     float64
}

// Precision returns the expected acceptance rate for the category.
func (p CategoryPrior) Precision() float64 {
	if p.Alpha+p.Beta == 0 {
		return 0.5 // Uniform prior
	}
	return p.Alpha / (p.Alpha + p.Beta)
}

// Observations returns how much evidence backs the prior.
func (p CategoryPrior) Observations() float64 {
	return p.Alpha + p.Beta
}
