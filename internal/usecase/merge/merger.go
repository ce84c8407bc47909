// Package merge folds a supplemental review pass into the base pass
// output. Its duplicate filter is deliberately lighter than the
// refinement engine's exact grouping: a second pass restates the same
// problem in its own words, so titles are compared with punctuation
// stripped and nearby lines are treated as the same site.
package merge

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/bkyoung/review-consolidator/internal/domain"
)

// nearLineWindow is how far apart two findings can sit while still
// describing the same issue in the semantic duplicate check.
const nearLineWindow = 8

// Result carries the combined finding list and the merge accounting.
// Every supplemental finding lands in exactly one counter.
type Result struct {
	Findings []domain.Finding
	Stats    domain.MergeStats
}

// Merge appends supplemental findings that survive the low-value and
// duplicate filters to the base list. Base findings are never modified
// or dropped. Each accepted finding is registered before the next
// candidate is considered, so duplicates within the supplemental list
// itself also collapse.
func Merge(base, supplemental []domain.Finding) Result {
	strict := make(map[string]bool, len(base))
	semantic := make(map[string][]int, len(base))
	for _, f := range base {
		register(strict, semantic, f)
	}

	merged := make([]domain.Finding, 0, len(base)+len(supplemental))
	merged = append(merged, base...)

	var stats domain.MergeStats
	for _, candidate := range supplemental {
		if candidate.IsLowValue() {
			stats.DroppedLowValue++
			continue
		}
		if isDuplicate(strict, semantic, candidate) {
			stats.DroppedDuplicates++
			continue
		}
		merged = append(merged, candidate)
		register(strict, semantic, candidate)
		stats.Added++
	}

	return Result{Findings: merged, Stats: stats}
}

func isDuplicate(strict map[string]bool, semantic map[string][]int, f domain.Finding) bool {
	if strict[strictKey(f)] {
		return true
	}
	for _, line := range semantic[semanticKey(f)] {
		if absInt(f.Line-line) <= nearLineWindow {
			return true
		}
	}
	return false
}

func register(strict map[string]bool, semantic map[string][]int, f domain.Finding) {
	strict[strictKey(f)] = true
	key := semanticKey(f)
	semantic[key] = append(semantic[key], f.Line)
}

// strictKey identifies an exact restatement: same place, same kind,
// same title once punctuation and case are ignored.
func strictKey(f domain.Finding) string {
	return strings.Join([]string{
		domain.NormalizePath(f.Path),
		string(f.Side),
		strconv.Itoa(f.Line),
		string(f.Category),
		titleKey(f.Title),
	}, "|")
}

// semanticKey deliberately omits side and line; proximity is checked
// separately against every registered line for the key.
func semanticKey(f domain.Finding) string {
	return strings.Join([]string{
		domain.NormalizePath(f.Path),
		string(f.Category),
		titleKey(f.Title),
	}, "|")
}

// titleKey lowercases, replaces every non-alphanumeric rune with a
// space, and collapses runs of whitespace. "Missing null check!" and
// "missing  null check" reduce to the same key.
func titleKey(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
