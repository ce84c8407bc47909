// Package match decides whether a freshly refined finding restates an
// issue already posted by an earlier run, so the caller can update the
// existing comment instead of posting a near-duplicate. Matching is
// title-led: line numbers drift between revisions and bodies get
// rephrased, but a restated issue keeps most of its title vocabulary.
package match

import (
	"github.com/bkyoung/review-consolidator/internal/domain"
)

// Composite score weights. Title similarity dominates; the rest break
// ties between candidates that describe similar issues.
const (
	titleWeight     = 0.64
	bodyWeight      = 0.16
	proximityWeight = 0.14
	sideWeight      = 0.04
	severityWeight  = 0.02
)

const (
	// strongTitleThreshold admits a candidate on title similarity alone.
	strongTitleThreshold = 0.5
	// weakTitleThreshold admits a candidate with a weaker title overlap
	// when its line sits within weakTitleMaxDistance of the finding.
	weakTitleThreshold   = 0.34
	weakTitleMaxDistance = 8
	// acceptThreshold is the minimum composite score for a verdict.
	acceptThreshold = 0.5
)

// Match returns the existing candidate the finding most likely
// restates, or ok=false when the finding should be treated as new.
// Candidates whose id is in claimed are invisible. Ties on composite
// score keep the earliest candidate in the input order.
func Match(f domain.Finding, candidates []domain.ExistingFindingCandidate, claimed map[string]bool) (domain.ExistingFindingCandidate, bool) {
	path := domain.NormalizePath(f.Path)
	titleTokens := tokenize(f.Title)
	bodyTokens := tokenize(f.Body)

	var best domain.ExistingFindingCandidate
	bestScore := -1.0
	for _, candidate := range candidates {
		if claimed[candidate.ID] {
			continue
		}
		if domain.NormalizePath(candidate.Path) != path || candidate.Category != f.Category {
			continue
		}

		titleScore := jaccard(titleTokens, tokenize(candidate.Title))
		distance := lineDistance(f.Line, candidate.Line)
		if titleScore < strongTitleThreshold &&
			!(titleScore >= weakTitleThreshold && distance <= weakTitleMaxDistance) {
			continue
		}

		score := titleWeight*titleScore +
			bodyWeight*jaccard(bodyTokens, tokenize(candidate.Body)) +
			proximityWeight*proximityScore(distance) +
			sideWeight*agreement(candidate.Side == f.Side) +
			severityWeight*agreement(candidate.Severity == f.Severity)
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if bestScore < acceptThreshold {
		return domain.ExistingFindingCandidate{}, false
	}
	return best, true
}

// proximityScore buckets absolute line distance. Wide buckets tolerate
// the hunk drift a follow-up commit introduces.
func proximityScore(distance int) float64 {
	switch {
	case distance <= 2:
		return 1.0
	case distance <= 6:
		return 0.9
	case distance <= 12:
		return 0.75
	case distance <= 25:
		return 0.55
	default:
		return 0.3
	}
}

func agreement(matched bool) float64 {
	if matched {
		return 1.0
	}
	return 0.7
}

func lineDistance(a, b int) int {
	if a < b {
		return b - a
	}
	return a - b
}
