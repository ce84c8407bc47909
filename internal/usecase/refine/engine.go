package refine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bkyoung/review-consolidator/internal/domain"
)

// DiffIndex answers line-membership queries against the change under
// review. A nil index means no diff context: every comment resolves to
// summary type.
type DiffIndex interface {
	Contains(path string, side domain.Side, line int) bool
}

// Limits bound the size of the final comment set.
type Limits struct {
	MaxInlineComments int
}

// Mode controls which comment types the output may carry.
type Mode struct {
	SummaryOnly  bool
	AllowedTypes []domain.CommentType
}

func (m Mode) allowsInline() bool {
	if m.SummaryOnly {
		return false
	}
	if len(m.AllowedTypes) == 0 {
		return true
	}
	for _, t := range m.AllowedTypes {
		if t == domain.CommentTypeInline {
			return true
		}
	}
	return false
}

// FeedbackPolicy adjusts category scores based on historical reviewer
// reactions. The zero value applies no boosts or penalties.
type FeedbackPolicy struct {
	Boosted   map[domain.Category]bool
	Penalized map[domain.Category]bool
}

// Input carries one pass's raw candidates plus the context needed to
// refine them.
type Input struct {
	Candidates   []domain.Finding
	Index        DiffIndex
	ChangedPaths []string
	Limits       Limits
	Mode         Mode
	Policy       FeedbackPolicy
}

// Result is the refined, ordered finding list plus accounting. Every
// input candidate lands in exactly one of: Findings, DroppedEmpty,
// Deduplicated, or DroppedPerFileCap.
type Result struct {
	Findings []domain.Finding
	Stats    domain.RefineStats
}

// Engine applies the refinement pipeline: normalize, validate, adjust
// severity and comment type, score, dedup, cap, order, and resolve
// identifier collisions. Refining its own output again is a no-op.
type Engine struct {
	weights ScoreWeights
}

// NewEngine creates an engine with the given scoring weights.
func NewEngine(weights ScoreWeights) *Engine {
	return &Engine{weights: weights}
}

// Refine processes one pass's candidates. It never fails: malformed
// candidates resolve into drop/convert/downgrade outcomes recorded in
// the stats.
func (e *Engine) Refine(in Input) Result {
	changed := make(map[string]bool, len(in.ChangedPaths))
	for _, p := range in.ChangedPaths {
		changed[domain.NormalizePath(p)] = true
	}
	inlineAllowed := in.Mode.allowsInline()

	var result Result
	kept := make([]domain.Finding, 0, len(in.Candidates))

	for _, candidate := range in.Candidates {
		f := normalizeFinding(candidate)

		if !f.Severity.IsValid() || !f.Category.IsValid() {
			result.Stats.DroppedEmpty++
			continue
		}
		if !domain.MeaningfulText(f.Title) || !domain.MeaningfulText(f.Body) || !domain.MeaningfulText(f.Evidence) {
			result.Stats.DroppedEmpty++
			continue
		}

		// Style issues are never worth more than a nit.
		if f.Category == domain.CategoryStyle {
			f.Severity = domain.SeverityNit
		}

		// A blocking claim without a concrete patch downgrades rather
		// than blocking the merge on an unactionable comment.
		if f.Severity == domain.SeverityBlocking && !domain.MeaningfulText(f.SuggestedPatch) {
			f.Severity = domain.SeverityImportant
			result.Stats.DowngradedBlocking++
		}

		inDiff := in.Index != nil && in.Index.Contains(f.Path, f.Side, f.Line)
		if f.CommentType == domain.CommentTypeInline && (!inlineAllowed || !inDiff) {
			f.CommentType = domain.CommentTypeSummary
			result.Stats.ConvertedToSummary++
		}

		f.Score = e.score(f, inDiff, changed[f.Path], in.Policy)
		kept = append(kept, f)
	}

	kept, deduplicated := dedupe(kept)
	result.Stats.Deduplicated = deduplicated

	SortFindings(kept)

	kept, droppedByCap := applyPerFileCap(kept, in.Limits.MaxInlineComments)
	result.Stats.DroppedPerFileCap = droppedByCap

	resolveCollisions(kept)

	result.Findings = kept
	return result
}

func (e *Engine) score(f domain.Finding, inDiff, onChangedPath bool, policy FeedbackPolicy) float64 {
	score := e.weights.severityWeight(f.Severity) * e.weights.confidenceWeight(f.Confidence)
	score += e.weights.categoryWeight(f.Category)

	if domain.MeaningfulText(f.SuggestedPatch) {
		score += e.weights.SuggestionBoost
	}
	score += e.weights.evidenceBoost(f.Evidence)
	if inDiff {
		score += e.weights.InDiffBoost
	}
	if onChangedPath {
		score += e.weights.ChangedPathBoost
	}
	if policy.Boosted[f.Category] {
		score += e.weights.FeedbackBoost
	}
	if policy.Penalized[f.Category] {
		score -= e.weights.FeedbackPenalty
	}
	return score
}

// groupKey identifies findings that say the same thing about the same
// place in the same way.
func groupKey(f domain.Finding) string {
	return strings.Join([]string{
		f.Path,
		string(f.Side),
		fmt.Sprintf("%d", f.Line),
		string(f.Category),
		titleKey(f.Title),
		string(f.CommentType),
	}, "|")
}

// dedupe keeps the highest-scoring member of each group, preserving
// input order among winners. Returns the survivors and the loser count.
func dedupe(findings []domain.Finding) ([]domain.Finding, int) {
	bestByKey := make(map[string]int, len(findings))
	for i, f := range findings {
		key := groupKey(f)
		if prev, ok := bestByKey[key]; !ok || f.Score > findings[prev].Score {
			bestByKey[key] = i
		}
	}

	winners := make(map[int]bool, len(bestByKey))
	for _, i := range bestByKey {
		winners[i] = true
	}

	survivors := make([]domain.Finding, 0, len(bestByKey))
	dropped := 0
	for i, f := range findings {
		if winners[i] {
			survivors = append(survivors, f)
		} else {
			dropped++
		}
	}
	return survivors, dropped
}

// SortFindings orders by descending score, then path, then line. This
// is the presentation order of every consolidated comment set, exposed
// so callers that combine refined lists can restore it.
func SortFindings(findings []domain.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Score != findings[j].Score {
			return findings[i].Score > findings[j].Score
		}
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}
		return findings[i].Line < findings[j].Line
	})
}

// applyPerFileCap drops inline comments beyond the per-file budget,
// processing in the already-sorted priority order. Summary comments
// are exempt. Expects findings sorted by SortFindings.
func applyPerFileCap(findings []domain.Finding, maxInlineComments int) ([]domain.Finding, int) {
	maxPerFile := clamp(ceilDiv(maxInlineComments, 3), 2, 6)

	perFile := make(map[string]int)
	survivors := findings[:0]
	dropped := 0
	for _, f := range findings {
		if f.CommentType == domain.CommentTypeInline {
			perFile[f.Path]++
			if perFile[f.Path] > maxPerFile {
				dropped++
				continue
			}
		}
		survivors = append(survivors, f)
	}
	return survivors, dropped
}

// resolveCollisions suffixes duplicate ids and keys (-2, -3, ...) in
// final order, leaving the first occurrence unsuffixed. Ids and keys
// are suffixed independently.
func resolveCollisions(findings []domain.Finding) {
	seenIDs := make(map[string]int, len(findings))
	seenKeys := make(map[string]int, len(findings))
	for i := range findings {
		id := findings[i].ID
		seenIDs[id]++
		if n := seenIDs[id]; n > 1 {
			findings[i].ID = fmt.Sprintf("%s-%d", id, n)
		}

		key := findings[i].Key
		seenKeys[key]++
		if n := seenKeys[key]; n > 1 {
			findings[i].Key = fmt.Sprintf("%s-%d", key, n)
		}
	}
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

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
