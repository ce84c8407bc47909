// Package refine turns raw candidate findings from a review pass into
// a normalized, scored, deduplicated comment set bounded by configured
// limits.
package refine

import "github.com/bkyoung/review-consolidator/internal/domain"

// ScoreWeights holds the constants used to prioritize candidates.
// Values are fixed at construction; engines share them by value so a
// run's scoring cannot drift mid-batch.
type ScoreWeights struct {
	SeverityBlocking  float64
	SeverityImportant float64
	SeverityNit       float64

	ConfidenceHigh   float64
	ConfidenceMedium float64
	ConfidenceLow    float64

	CategorySecurity        float64
	CategoryBug             float64
	CategoryPerformance     float64
	CategoryTesting         float64
	CategoryMaintainability float64
	CategoryStyle           float64

	SuggestionBoost     float64
	EvidenceBoostMax    float64
	EvidenceBoostChars  int
	InDiffBoost         float64
	ChangedPathBoost    float64
	FeedbackBoost       float64
	FeedbackPenalty     float64
}

// DefaultScoreWeights returns the standard scoring constants.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		SeverityBlocking:  100,
		SeverityImportant: 65,
		SeverityNit:       25,

		ConfidenceHigh:   1,
		ConfidenceMedium: 0.7,
		ConfidenceLow:    0.35,

		CategorySecurity:        25,
		CategoryBug:             20,
		CategoryPerformance:     15,
		CategoryTesting:         12,
		CategoryMaintainability: 8,
		CategoryStyle:           2,

		SuggestionBoost:    6,
		EvidenceBoostMax:   6,
		EvidenceBoostChars: 80,
		InDiffBoost:        6,
		ChangedPathBoost:   4,
		FeedbackBoost:      8,
		FeedbackPenalty:    18,
	}
}

func (w ScoreWeights) severityWeight(s domain.Severity) float64 {
	switch s {
	case domain.SeverityBlocking:
		return w.SeverityBlocking
	case domain.SeverityImportant:
		return w.SeverityImportant
	case domain.SeverityNit:
		return w.SeverityNit
	default:
		return 0
	}
}

// confidenceWeight treats absent or unrecognized confidence as medium.
func (w ScoreWeights) confidenceWeight(c domain.Confidence) float64 {
	switch c {
	case domain.ConfidenceHigh:
		return w.ConfidenceHigh
	case domain.ConfidenceLow:
		return w.ConfidenceLow
	default:
		return w.ConfidenceMedium
	}
}

func (w ScoreWeights) categoryWeight(c domain.Category) float64 {
	switch c {
	case domain.CategorySecurity:
		return w.CategorySecurity
	case domain.CategoryBug:
		return w.CategoryBug
	case domain.CategoryPerformance:
		return w.CategoryPerformance
	case domain.CategoryTesting:
		return w.CategoryTesting
	case domain.CategoryMaintainability:
		return w.CategoryMaintainability
	case domain.CategoryStyle:
		return w.CategoryStyle
	default:
		return 0
	}
}

func (w ScoreWeights) evidenceBoost(evidence string) float64 {
	if w.EvidenceBoostChars <= 0 {
		return 0
	}
	boost := float64(len(evidence) / w.EvidenceBoostChars)
	if boost > w.EvidenceBoostMax {
		boost = w.EvidenceBoostMax
	}
	return boost
}
