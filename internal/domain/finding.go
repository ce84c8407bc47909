package domain

import "strings"

// Severity classifies how urgent a finding is.
type Severity string

const (
	// SeverityBlocking indicates the change should not merge as-is.
	SeverityBlocking Severity = "blocking"
	// SeverityImportant indicates the issue deserves attention before merge.
	SeverityImportant Severity = "important"
	// SeverityNit indicates a minor, non-blocking observation.
	SeverityNit Severity = "nit"
)

// IsValid returns true if the severity is a recognized value.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityBlocking, SeverityImportant, SeverityNit:
		return true
	default:
		return false
	}
}

// Rank orders severities for comparison. Higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityBlocking:
		return 3
	case SeverityImportant:
		return 2
	case SeverityNit:
		return 1
	default:
		return 0
	}
}

// Category classifies what kind of issue a finding describes.
type Category string

const (
	CategoryBug             Category = "bug"
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryMaintainability Category = "maintainability"
	CategoryTesting         Category = "testing"
	CategoryStyle           Category = "style"
)

// IsValid returns true if the category is a recognized value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryBug, CategorySecurity, CategoryPerformance,
		CategoryMaintainability, CategoryTesting, CategoryStyle:
		return true
	default:
		return false
	}
}

// Confidence expresses how certain the producing pass was about a finding.
// It is optional on input; an empty value is treated as medium.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// IsValid returns true if the confidence is a recognized value.
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	default:
		return false
	}
}

// Rank orders confidences for comparison. Higher is more confident.
// An empty confidence ranks as medium.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium, "":
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Side names which side of a diff a line number refers to.
type Side string

const (
	// SideRight refers to the new (post-change) file content.
	SideRight Side = "RIGHT"
	// SideLeft refers to the old (pre-change) file content.
	SideLeft Side = "LEFT"
)

// CommentType distinguishes comments anchored to a diff line from
// comments that belong in the change-level summary.
type CommentType string

const (
	CommentTypeInline  CommentType = "inline"
	CommentTypeSummary CommentType = "summary"
)

// Finding is a single review comment candidate or consolidated comment.
type Finding struct {
	ID             string      `json:"id"`
	Key            string      `json:"key"`
	Path           string      `json:"path"`
	Side           Side        `json:"side"`
	Line           int         `json:"line"`
	Severity       Severity    `json:"severity"`
	Category       Category    `json:"category"`
	Title          string      `json:"title"`
	Body           string      `json:"body"`
	Evidence       string      `json:"evidence"`
	SuggestedPatch string      `json:"suggestedPatch"`
	CommentType    CommentType `json:"commentType"`
	Confidence     Confidence  `json:"confidence"`
	Score          float64     `json:"score"`
}

// IsLowValue reports whether a finding carries too little signal to count
// as review attention: style nits, and nits the producer itself doubts.
func (f Finding) IsLowValue() bool {
	if f.Severity != SeverityNit {
		return false
	}
	return f.Category == CategoryStyle || f.Confidence == ConfidenceLow
}

// placeholderTexts are values LLM passes emit in lieu of real content.
// Deliberately small: growing this list risks dropping legitimate text.
var placeholderTexts = map[string]bool{
	"n/a":  true,
	"none": true,
}

// MeaningfulText reports whether s carries actual content rather than
// being empty or a placeholder token.
func MeaningfulText(s string) bool {
	normalized := strings.Join(strings.Fields(s), " ")
	if normalized == "" {
		return false
	}
	return !placeholderTexts[strings.ToLower(normalized)]
}
