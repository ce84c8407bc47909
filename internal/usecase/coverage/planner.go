// Package coverage decides whether a supplemental review pass should
// run, and which changed files it should focus on.
package coverage

import (
	"fmt"
	"sort"

	"github.com/bkyoung/review-consolidator/internal/domain"
)

// Churn thresholds for risk tiers.
const (
	highChurnThreshold   = 250
	mediumChurnThreshold = 80
)

// DefaultMaxTargets bounds the target list when no limit is configured.
const DefaultMaxTargets = 8

// Planner computes coverage plans. It performs no I/O; the caller
// decides what to do with the verdict.
type Planner struct {
	maxTargets int
}

// NewPlanner creates a planner whose target list is capped at
// maxTargets (clamped to 2..16; zero or negative selects the default).
func NewPlanner(maxTargets int) *Planner {
	if maxTargets <= 0 {
		maxTargets = DefaultMaxTargets
	}
	return &Planner{maxTargets: clamp(maxTargets, 2, 16)}
}

// Plan reports how well the produced findings cover the changed files
// and whether a supplemental pass is worth running. A file counts as
// covered when at least one inline, non-low-value finding lands on it.
func (p *Planner) Plan(changed []domain.ChangedFile, findings []domain.Finding) domain.CoveragePlan {
	plan := domain.CoveragePlan{TotalChanged: len(changed)}
	if len(changed) == 0 {
		return plan
	}

	changedSet := make(map[string]bool, len(changed))
	for _, cf := range changed {
		changedSet[domain.NormalizePath(cf.Path)] = true
	}

	covered := make(map[string]bool)
	for _, f := range findings {
		path := domain.NormalizePath(f.Path)
		if !changedSet[path] {
			continue
		}
		plan.FindingsOnChanged++
		if f.CommentType == domain.CommentTypeInline && !f.IsLowValue() {
			covered[path] = true
		}
	}

	plan.CoveredChanged = len(covered)
	plan.CoverageRatio = float64(plan.CoveredChanged) / float64(plan.TotalChanged)
	plan.MinExpectedFindings = clamp(ceilHalf(plan.TotalChanged), 2, 6)

	uncovered := plan.TotalChanged - plan.CoveredChanged
	plan.ShouldRun = plan.TotalChanged >= 2 &&
		uncovered > 0 &&
		(plan.CoverageRatio < 0.75 || plan.FindingsOnChanged < plan.MinExpectedFindings)

	plan.Targets = p.targets(changed, covered)
	return plan
}

// targets scores the uncovered files, highest risk and churn first.
func (p *Planner) targets(changed []domain.ChangedFile, covered map[string]bool) []domain.CoverageTarget {
	var targets []domain.CoverageTarget
	for _, cf := range changed {
		path := domain.NormalizePath(cf.Path)
		if covered[path] {
			continue
		}
		risk := riskFor(cf)
		churn := cf.Churn()
		targets = append(targets, domain.CoverageTarget{
			Path:   path,
			Risk:   risk,
			Churn:  churn,
			Score:  risk.Rank()*100 + min(99, churn),
			Reason: fmt.Sprintf("%s-risk file with %d changed lines and no inline findings", risk, churn),
		})
	}

	sort.SliceStable(targets, func(i, j int) bool {
		if targets[i].Score != targets[j].Score {
			return targets[i].Score > targets[j].Score
		}
		return targets[i].Path < targets[j].Path
	})

	if len(targets) > p.maxTargets {
		targets = targets[:p.maxTargets]
	}
	return targets
}

// riskFor prefers a supplied risk tier, falling back to churn.
func riskFor(cf domain.ChangedFile) domain.RiskLevel {
	if cf.Risk.IsValid() {
		return cf.Risk
	}
	churn := cf.Churn()
	switch {
	case churn >= highChurnThreshold:
		return domain.RiskHigh
	case churn >= mediumChurnThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// ceilHalf returns ceil(n/2), the expected finding count for n changed
// files before clamping.
func ceilHalf(n int) int {
	return (n + 1) / 2
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
