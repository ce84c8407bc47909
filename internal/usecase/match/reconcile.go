package match

import (
	"github.com/bkyoung/review-consolidator/internal/domain"
)

// Pair links a refined finding to the stored candidate it updates.
// Index is the finding's position in the input slice, so callers can
// apply update decisions back onto their own list.
type Pair struct {
	Index     int
	Finding   domain.Finding
	Candidate domain.ExistingFindingCandidate
}

// Result partitions a run's findings into updates of prior findings and
// genuinely new ones.
type Result struct {
	Matched   []Pair
	Unmatched []domain.Finding
	Stats     domain.ReconcileStats
}

// Reconcile matches each finding against the candidate set in order,
// claiming candidate ids as it goes. An id claimed by an earlier
// finding is invisible to later ones, so two findings can never update
// the same stored row. Order dependence is deliberate: findings arrive
// sorted by score, so the strongest finding gets first claim.
func Reconcile(findings []domain.Finding, candidates []domain.ExistingFindingCandidate) Result {
	claimed := make(map[string]bool, len(candidates))

	var result Result
	for i, f := range findings {
		candidate, ok := Match(f, candidates, claimed)
		if !ok {
			result.Unmatched = append(result.Unmatched, f)
			result.Stats.Created++
			continue
		}
		claimed[candidate.ID] = true
		result.Matched = append(result.Matched, Pair{Index: i, Finding: f, Candidate: candidate})
		result.Stats.Matched++
	}
	return result
}
