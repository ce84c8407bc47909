package domain_test

import (
	"testing"

	"github.com/bkyoung/review-consolidator/internal/domain"
)

func TestSeverity_IsValid(t *testing.T) {
	tests := []struct {
		severity domain.Severity
		want     bool
	}{
		{domain.SeverityBlocking, true},
		{domain.SeverityImportant, true},
		{domain.SeverityNit, true},
		{domain.Severity("critical"), false},
		{domain.Severity(""), false},
		{domain.Severity("Blocking"), false}, // Case-sensitive
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			if got := tt.severity.IsValid(); got != tt.want {
				t.Errorf("Severity(%q).IsValid() = %v, want %v", tt.severity, got, tt.want)
			}
		})
	}
}

func TestSeverity_Rank_Ordering(t *testing.T) {
	if domain.SeverityBlocking.Rank() <= domain.SeverityImportant.Rank() {
		t.Error("blocking should outrank important")
	}
	if domain.SeverityImportant.Rank() <= domain.SeverityNit.Rank() {
		t.Error("important should outrank nit")
	}
	if domain.Severity("bogus").Rank() != 0 {
		t.Error("unknown severity should rank zero")
	}
}

func TestCategory_IsValid(t *testing.T) {
	valid := []domain.Category{
		domain.CategoryBug, domain.CategorySecurity, domain.CategoryPerformance,
		domain.CategoryMaintainability, domain.CategoryTesting, domain.CategoryStyle,
	}
	for _, c := range valid {
		if !c.IsValid() {
			t.Errorf("Category(%q).IsValid() = false, want true", c)
		}
	}
	for _, c := range []domain.Category{"", "docs", "Security"} {
		if c.IsValid() {
			t.Errorf("Category(%q).IsValid() = true, want false", c)
		}
	}
}

func TestConfidence_Rank_EmptyTreatedAsMedium(t *testing.T) {
	if domain.Confidence("").Rank() != domain.ConfidenceMedium.Rank() {
		t.Error("empty confidence should rank as medium")
	}
	if domain.ConfidenceHigh.Rank() <= domain.ConfidenceMedium.Rank() {
		t.Error("high should outrank medium")
	}
	if domain.ConfidenceMedium.Rank() <= domain.ConfidenceLow.Rank() {
		t.Error("medium should outrank low")
	}
}

func TestFinding_IsLowValue(t *testing.T) {
	tests := []struct {
		name    string
		finding domain.Finding
		want    bool
	}{
		{
			name:    "style nit",
			finding: domain.Finding{Severity: domain.SeverityNit, Category: domain.CategoryStyle},
			want:    true,
		},
		{
			name:    "low confidence nit",
			finding: domain.Finding{Severity: domain.SeverityNit, Category: domain.CategoryBug, Confidence: domain.ConfidenceLow},
			want:    true,
		},
		{
			name:    "confident bug nit",
			finding: domain.Finding{Severity: domain.SeverityNit, Category: domain.CategoryBug, Confidence: domain.ConfidenceHigh},
			want:    false,
		},
		{
			name:    "important style finding",
			finding: domain.Finding{Severity: domain.SeverityImportant, Category: domain.CategoryStyle},
			want:    false,
		},
		{
			name:    "low confidence blocking",
			finding: domain.Finding{Severity: domain.SeverityBlocking, Category: domain.CategoryBug, Confidence: domain.ConfidenceLow},
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.finding.IsLowValue(); got != tt.want {
				t.Errorf("IsLowValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeaningfulText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"whitespace only", "   \t\n  ", false},
		{"na placeholder", "n/a", false},
		{"na uppercase", "N/A", false},
		{"none placeholder", "none", false},
		{"none padded", "  None  ", false},
		{"real text", "Missing nil check before dereference", true},
		{"short but real", "ok", true},
		{"placeholder inside sentence", "none of the callers check this", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.MeaningfulText(tt.text); got != tt.want {
				t.Errorf("MeaningfulText(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestRiskLevel_Rank_Ordering(t *testing.T) {
	if domain.RiskHigh.Rank() <= domain.RiskMedium.Rank() || domain.RiskMedium.Rank() <= domain.RiskLow.Rank() {
		t.Error("risk ranks should be strictly increasing with risk")
	}
}

func TestChangedFile_Churn(t *testing.T) {
	f := domain.ChangedFile{Path: "a.go", Additions: 120, Deletions: 30}
	if f.Churn() != 150 {
		t.Errorf("Churn() = %d, want 150", f.Churn())
	}
}
