package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bkyoung/review-consolidator/internal/store"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Metadata about each consolidation run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		change_key TEXT NOT NULL,
		repository TEXT NOT NULL,
		base_ref TEXT NOT NULL,
		target_ref TEXT NOT NULL,
		config_hash TEXT NOT NULL,
		finding_count INTEGER NOT NULL DEFAULT 0,
		summary_risk TEXT NOT NULL DEFAULT ''
	);

	-- Consolidated findings from each run
	CREATE TABLE IF NOT EXISTS findings (
		finding_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		match_key TEXT NOT NULL,
		path TEXT NOT NULL,
		side TEXT NOT NULL,
		line INTEGER NOT NULL,
		severity TEXT NOT NULL,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		evidence TEXT,
		suggested_patch TEXT,
		comment_type TEXT NOT NULL,
		confidence TEXT NOT NULL,
		score REAL NOT NULL DEFAULT 0.0,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Reviewer feedback, keyed by the finding's stable key so it
	-- survives across runs that re-report the same finding
	CREATE TABLE IF NOT EXISTS feedback (
		feedback_id INTEGER PRIMARY KEY AUTOINCREMENT,
		finding_key TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL CHECK(status IN ('accepted', 'rejected')),
		timestamp INTEGER NOT NULL
	);

	-- Per-category precision counts (Beta distribution parameters)
	CREATE TABLE IF NOT EXISTS category_priors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		alpha REAL NOT NULL DEFAULT 0.0,
		beta REAL NOT NULL DEFAULT 0.0,
		UNIQUE(category)
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_findings_key ON findings(key);
	CREATE INDEX IF NOT EXISTS idx_runs_change ON runs(change_key, timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_feedback_key ON feedback(finding_key);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun stores a new consolidation run.
func (s *Store) CreateRun(ctx context.Context, run store.Run) error {
	query := `
		INSERT INTO runs (run_id, timestamp, change_key, repository, base_ref, target_ref, config_hash, finding_count, summary_risk)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Timestamp.Unix(),
		run.ChangeKey,
		run.Repository,
		run.BaseRef,
		run.TargetRef,
		run.ConfigHash,
		run.FindingCount,
		run.SummaryRisk,
	)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	query := `
		SELECT run_id, timestamp, change_key, repository, base_ref, target_ref, config_hash, finding_count, summary_risk
		FROM runs
		WHERE run_id = ?
	`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, runID))
	if err != nil {
		if err == sql.ErrNoRows {
			return store.Run{}, fmt.Errorf("run %s: %w", runID, store.ErrNotFound)
		}
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

// ListRuns retrieves the most recent runs, limited by the given count.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	query := `
		SELECT run_id, timestamp, change_key, repository, base_ref, target_ref, config_hash, finding_count, summary_risk
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// LatestRunForChange retrieves the most recent run recorded for a change key.
// Returns store.ErrNotFound when the change has never been consolidated.
func (s *Store) LatestRunForChange(ctx context.Context, changeKey string) (store.Run, error) {
	query := `
		SELECT run_id, timestamp, change_key, repository, base_ref, target_ref, config_hash, finding_count, summary_risk
		FROM runs
		WHERE change_key = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, changeKey))
	if err != nil {
		if err == sql.ErrNoRows {
			return store.Run{}, fmt.Errorf("no run for change %s: %w", changeKey, store.ErrNotFound)
		}
		return store.Run{}, fmt.Errorf("failed to get latest run: %w", err)
	}

	return run, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (store.Run, error) {
	var run store.Run
	var timestamp int64

	err := row.Scan(
		&run.RunID,
		&timestamp,
		&run.ChangeKey,
		&run.Repository,
		&run.BaseRef,
		&run.TargetRef,
		&run.ConfigHash,
		&run.FindingCount,
		&run.SummaryRisk,
	)
	if err != nil {
		return store.Run{}, err
	}

	run.Timestamp = time.Unix(timestamp, 0)
	return run, nil
}

// SaveFindings stores multiple findings in a single transaction.
func (s *Store) SaveFindings(ctx context.Context, findings []store.FindingRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO findings (finding_id, run_id, key, fingerprint, match_key, path, side, line, severity, category, title, body, evidence, suggested_patch, comment_type, confidence, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, finding := range findings {
		if _, err := stmt.ExecContext(ctx,
			finding.FindingID,
			finding.RunID,
			finding.Key,
			finding.Fingerprint,
			finding.MatchKey,
			finding.Path,
			finding.Side,
			finding.Line,
			finding.Severity,
			finding.Category,
			finding.Title,
			finding.Body,
			finding.Evidence,
			finding.SuggestedPatch,
			finding.CommentType,
			finding.Confidence,
			finding.Score,
		); err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetFindingsByRun retrieves all findings for a given run in report
// order (score descending, then path and line ascending).
func (s *Store) GetFindingsByRun(ctx context.Context, runID string) ([]store.FindingRecord, error) {
	query := `
		SELECT finding_id, run_id, key, fingerprint, match_key, path, side, line, severity, category, title, body, evidence, suggested_patch, comment_type, confidence, score
		FROM findings
		WHERE run_id = ?
		ORDER BY score DESC, path ASC, line ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings by run: %w", err)
	}
	defer rows.Close()

	var findings []store.FindingRecord
	for rows.Next() {
		var finding store.FindingRecord
		var evidence, patch sql.NullString

		if err := rows.Scan(
			&finding.FindingID,
			&finding.RunID,
			&finding.Key,
			&finding.Fingerprint,
			&finding.MatchKey,
			&finding.Path,
			&finding.Side,
			&finding.Line,
			&finding.Severity,
			&finding.Category,
			&finding.Title,
			&finding.Body,
			&evidence,
			&patch,
			&finding.CommentType,
			&finding.Confidence,
			&finding.Score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}

		finding.Evidence = evidence.String
		finding.SuggestedPatch = patch.String
		findings = append(findings, finding)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating findings: %w", err)
	}

	return findings, nil
}

// LatestFindingByKey retrieves the most recently stored finding with the
// given stable key. Feedback recording uses it to resolve the category a
// key belongs to. Returns store.ErrNotFound for unknown keys.
func (s *Store) LatestFindingByKey(ctx context.Context, key string) (store.FindingRecord, error) {
	query := `
		SELECT finding_id, run_id, key, fingerprint, match_key, path, side, line, severity, category, title, body, evidence, suggested_patch, comment_type, confidence, score
		FROM findings
		WHERE key = ?
		ORDER BY rowid DESC
		LIMIT 1
	`

	var finding store.FindingRecord
	var evidence, patch sql.NullString

	err := s.db.QueryRowContext(ctx, query, key).Scan(
		&finding.FindingID,
		&finding.RunID,
		&finding.Key,
		&finding.Fingerprint,
		&finding.MatchKey,
		&finding.Path,
		&finding.Side,
		&finding.Line,
		&finding.Severity,
		&finding.Category,
		&finding.Title,
		&finding.Body,
		&evidence,
		&patch,
		&finding.CommentType,
		&finding.Confidence,
		&finding.Score,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return store.FindingRecord{}, fmt.Errorf("finding %s: %w", key, store.ErrNotFound)
		}
		return store.FindingRecord{}, fmt.Errorf("failed to get finding by key: %w", err)
	}

	finding.Evidence = evidence.String
	finding.SuggestedPatch = patch.String
	return finding, nil
}

// RecordFeedback stores reviewer feedback for a finding key.
func (s *Store) RecordFeedback(ctx context.Context, feedback store.Feedback) error {
	query := `
		INSERT INTO feedback (finding_key, category, status, timestamp)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		feedback.FindingKey,
		feedback.Category,
		feedback.Status,
		feedback.Timestamp.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to record feedback: %w", err)
	}

	return nil
}

// GetFeedbackForFinding retrieves all feedback recorded against a finding key.
func (s *Store) GetFeedbackForFinding(ctx context.Context, findingKey string) ([]store.Feedback, error) {
	query := `
		SELECT feedback_id, finding_key, category, status, timestamp
		FROM feedback
		WHERE finding_key = ?
		ORDER BY timestamp DESC
	`

	rows, err := s.db.QueryContext(ctx, query, findingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback for finding: %w", err)
	}
	defer rows.Close()

	var feedbacks []store.Feedback
	for rows.Next() {
		var feedback store.Feedback
		var timestamp int64

		if err := rows.Scan(
			&feedback.FeedbackID,
			&feedback.FindingKey,
			&feedback.Category,
			&feedback.Status,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}

		feedback.Timestamp = time.Unix(timestamp, 0)
		feedbacks = append(feedbacks, feedback)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return feedbacks, nil
}

// GetCategoryPriors retrieves all category priors keyed by category.
func (s *Store) GetCategoryPriors(ctx context.Context) (map[string]store.CategoryPrior, error) {
	query := `
		SELECT category, alpha, beta
		FROM category_priors
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get category priors: %w", err)
	}
	defer rows.Close()

	priors := make(map[string]store.CategoryPrior)

	for rows.Next() {
		var prior store.CategoryPrior

		if err := rows.Scan(
			&prior.Category,
			&prior.Alpha,
			&prior.Beta,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category prior: %w", err)
		}

		priors[prior.Category] = prior
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category priors: %w", err)
	}

	return priors, nil
}

// UpdateCategoryPrior adds accepted and rejected counts to a category's
// Beta parameters, creating the row on first use. Counts accumulate so
// alpha+beta always equals the number of recorded observations.
func (s *Store) UpdateCategoryPrior(ctx context.Context, category string, accepted, rejected int) error {
	query := `
		INSERT INTO category_priors (category, alpha, beta)
		VALUES (?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET
			alpha = alpha + excluded.alpha,
			beta = beta + excluded.beta
	`

	_, err := s.db.ExecContext(ctx, query, category, float64(accepted), float64(rejected))
	if err != nil {
		return fmt.Errorf("failed to update category prior: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
