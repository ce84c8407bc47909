package merge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/review-consolidator/internal/domain"
	"github.com/bkyoung/review-consolidator/internal/usecase/merge"
)

func finding(path string, line int, title string) domain.Finding {
	return domain.Finding{
		Path:        path,
		Side:        domain.SideRight,
		Line:        line,
		Severity:    domain.SeverityImportant,
		Category:    domain.CategoryBug,
		Title:       title,
		Body:        "The body explains the problem in enough detail to act on.",
		CommentType: domain.CommentTypeInline,
		Confidence:  domain.ConfidenceHigh,
	}
}

func TestMerge_NearbyRestatementDropped(t *testing.T) {
	// Given a base finding and a supplemental pass that restates it two
	// lines away with different punctuation
	base := []domain.Finding{finding("a.ts", 22, "Missing null check")}
	supplemental := []domain.Finding{
		finding("a.ts", 24, "Missing null check!"),
		finding("a.ts", 41, "Retry loop can spin forever"),
	}

	// When
	result := merge.Merge(base, supplemental)

	// Then only the genuinely new finding survives
	require.Len(t, result.Findings, 2)
	assert.Equal(t, "Missing null check", result.Findings[0].Title)
	assert.Equal(t, "Retry loop can spin forever", result.Findings[1].Title)
	assert.Equal(t, 1, result.Stats.Added)
	assert.Equal(t, 1, result.Stats.DroppedDuplicates)
	assert.Equal(t, 0, result.Stats.DroppedLowValue)
}

func TestMerge_StrictDuplicateDropped(t *testing.T) {
	// Given a supplemental finding identical to a base one except for
	// title casing
	base := []domain.Finding{finding("pkg/x.go", 10, "Unchecked error")}
	supplemental := []domain.Finding{finding("pkg/x.go", 10, "UNCHECKED ERROR")}

	// When
	result := merge.Merge(base, supplemental)

	// Then
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, 1, result.Stats.DroppedDuplicates)
}

func TestMerge_SemanticWindowBoundary(t *testing.T) {
	// Given restatements exactly at and just past the proximity window
	base := []domain.Finding{finding("pkg/x.go", 100, "Race on shared map")}
	within := finding("pkg/x.go", 108, "Race on shared map")
	beyond := finding("pkg/x.go", 109, "Race on shared map")

	// When
	result := merge.Merge(base, []domain.Finding{within, beyond})

	// Then eight lines away is a duplicate, nine is not
	require.Len(t, result.Findings, 2)
	assert.Equal(t, 109, result.Findings[1].Line)
	assert.Equal(t, 1, result.Stats.Added)
	assert.Equal(t, 1, result.Stats.DroppedDuplicates)
}

func TestMerge_SemanticIgnoresSide(t *testing.T) {
	// Given the same issue reported on opposite sides of the diff
	base := []domain.Finding{finding("pkg/x.go", 10, "Leaked file handle")}
	candidate := finding("pkg/x.go", 12, "Leaked file handle")
	candidate.Side = domain.SideLeft

	// When
	result := merge.Merge(base, []domain.Finding{candidate})

	// Then the side difference does not defeat the proximity check
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, 1, result.Stats.DroppedDuplicates)
}

func TestMerge_DifferentCategoryKept(t *testing.T) {
	// Given the same title and line but a different category
	base := []domain.Finding{finding("pkg/x.go", 10, "Unbounded allocation")}
	candidate := finding("pkg/x.go", 10, "Unbounded allocation")
	candidate.Category = domain.CategoryPerformance

	// When
	result := merge.Merge(base, []domain.Finding{candidate})

	// Then
	assert.Len(t, result.Findings, 2)
	assert.Equal(t, 1, result.Stats.Added)
}

func TestMerge_LowValueSupplementalDropped(t *testing.T) {
	// Given supplemental nits that carry no real signal
	base := []domain.Finding{finding("pkg/x.go", 10, "Unchecked error")}
	styleNit := finding("pkg/y.go", 5, "Rename this variable")
	styleNit.Severity = domain.SeverityNit
	styleNit.Category = domain.CategoryStyle
	shakyNit := finding("pkg/y.go", 9, "Consider a different loop shape")
	shakyNit.Severity = domain.SeverityNit
	shakyNit.Confidence = domain.ConfidenceLow

	// When
	result := merge.Merge(base, []domain.Finding{styleNit, shakyNit})

	// Then both are filtered before any duplicate check
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, 2, result.Stats.DroppedLowValue)
	assert.Equal(t, 0, result.Stats.Added)
}

func TestMerge_BaseLowValueSurvives(t *testing.T) {
	// Given a base list that already passed refinement, even if a nit
	base := []domain.Finding{}
	nit := finding("pkg/x.go", 3, "Prefer early return")
	nit.Severity = domain.SeverityNit
	nit.Category = domain.CategoryStyle
	base = append(base, nit)

	// When
	result := merge.Merge(base, nil)

	// Then the low-value filter only applies to supplemental candidates
	assert.Len(t, result.Findings, 1)
}

func TestMerge_SupplementalSelfDuplicatesCollapse(t *testing.T) {
	// Given two supplemental findings that restate each other
	supplemental := []domain.Finding{
		finding("pkg/x.go", 30, "Timeout never applied"),
		finding("pkg/x.go", 33, "Timeout never applied."),
	}

	// When merged into an empty base
	result := merge.Merge(nil, supplemental)

	// Then the first registers and claims the second
	require.Len(t, result.Findings, 1)
	assert.Equal(t, 30, result.Findings[0].Line)
	assert.Equal(t, 1, result.Stats.Added)
	assert.Equal(t, 1, result.Stats.DroppedDuplicates)
}

func TestMerge_PathNormalizationApplied(t *testing.T) {
	// Given a supplemental finding using a diff-style path prefix
	base := []domain.Finding{finding("pkg/x.go", 10, "Unchecked error")}
	candidate := finding("b/pkg/x.go", 10, "Unchecked error")

	// When
	result := merge.Merge(base, []domain.Finding{candidate})

	// Then the two paths compare equal
	assert.Len(t, result.Findings, 1)
	assert.Equal(t, 1, result.Stats.DroppedDuplicates)
}

func TestMerge_AccountingConservation(t *testing.T) {
	// Given a supplemental batch with one keeper, one duplicate, and
	// one low-value nit
	base := []domain.Finding{finding("a.go", 5, "Missing context propagation")}
	nit := finding("c.go", 2, "Spacing")
	nit.Severity = domain.SeverityNit
	nit.Category = domain.CategoryStyle
	supplemental := []domain.Finding{
		finding("a.go", 6, "Missing context propagation"),
		finding("b.go", 7, "Off by one in pagination"),
		nit,
	}

	// When
	result := merge.Merge(base, supplemental)

	// Then every supplemental finding lands in exactly one counter
	stats := result.Stats
	assert.Equal(t, len(supplemental), stats.Added+stats.DroppedDuplicates+stats.DroppedLowValue)
	assert.Equal(t, len(base)+stats.Added, len(result.Findings))
}

func TestMerge_EmptyInputs(t *testing.T) {
	result := merge.Merge(nil, nil)

	assert.Empty(t, result.Findings)
	assert.Zero(t, result.Stats)
}
