package sarif

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/review-consolidator/internal/domain"
	"github.com/bkyoung/review-consolidator/internal/usecase/consolidate"
)

// Writer implements the consolidate.SARIFWriter interface.
type Writer struct {
	now func() string
}

// NewWriter creates a new SARIF writer.
func NewWriter(now func() string) *Writer {
	return &Writer{now: now}
}

// Write persists a consolidated report to disk as a SARIF file.
func (w *Writer) Write(ctx context.Context, artifact consolidate.Artifact) (string, error) {
	report := artifact.Report
	outputDir := filepath.Join(artifact.OutputDir, fmt.Sprintf("%s_%s", sanitise(report.Repository), sanitise(report.TargetRef)), w.now())
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(outputDir, "consolidated.sarif")

	sarifDoc := convertToSARIF(report)

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create sarif file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(sarifDoc); err != nil {
		return "", fmt.Errorf("failed to encode report to sarif: %w", err)
	}

	return filePath, nil
}

// convertToSARIF converts a domain.Report to SARIF format.
func convertToSARIF(report domain.Report) map[string]interface{} {
	results := make([]map[string]interface{}, 0, len(report.Findings))

	for _, finding := range report.Findings {
		// SARIF requires non-empty message text
		messageText := finding.Body
		if messageText == "" {
			messageText = finding.Title
		}

		ruleID := string(finding.Category)
		if ruleID == "" {
			ruleID = "code-review"
		}

		result := map[string]interface{}{
			"ruleId": ruleID,
			"level":  convertSeverity(finding.Severity),
			"message": map[string]interface{}{
				"text": messageText,
			},
		}

		// Omit locations entirely for summary-level findings without a path
		if finding.Path != "" {
			physicalLocation := map[string]interface{}{
				"artifactLocation": map[string]interface{}{
					"uri": finding.Path,
				},
			}

			// Don't fabricate line 1 for findings without a specific location
			if finding.Line >= 1 {
				physicalLocation["region"] = map[string]interface{}{
					"startLine": finding.Line,
					"endLine":   finding.Line,
				}
			}

			result["locations"] = []map[string]interface{}{
				{"physicalLocation": physicalLocation},
			}
		}

		properties := map[string]interface{}{
			"title":      finding.Title,
			"confidence": string(finding.Confidence),
			"score":      finding.Score,
		}
		if finding.SuggestedPatch != "" {
			properties["suggestedPatch"] = finding.SuggestedPatch
		}
		result["properties"] = properties

		results = append(results, result)
	}

	return map[string]interface{}{
		"version": "2.1.0",
		"$schema": "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		"runs": []map[string]interface{}{
			{
				"tool": map[string]interface{}{
					"driver": map[string]interface{}{
						"name":            "review-consolidator",
						"informationUri":  "https://github.com/bkyoung/review-consolidator",
						"version":         "1.0.0",
						"semanticVersion": "1.0.0",
						"rules":           buildRules(report.Findings),
					},
				},
				"results":    results,
				"properties": buildProperties(report),
			},
		},
	}
}

// buildRules declares one rule per finding category so every result's
// ruleId resolves.
func buildRules(findings []domain.Finding) []map[string]interface{} {
	caser := cases.Title(language.English)

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, finding := range findings {
		category := string(finding.Category)
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true
		categories = append(categories, category)
	}
	sort.Strings(categories)

	rules := make([]map[string]interface{}, 0, len(categories))
	for _, category := range categories {
		rules = append(rules, map[string]interface{}{
			"id":               category,
			"name":             caser.String(category),
			"shortDescription": map[string]interface{}{"text": caser.String(category) + " findings from consolidated review"},
		})
	}
	return rules
}

// buildProperties creates the run-level properties map.
func buildProperties(report domain.Report) map[string]interface{} {
	return map[string]interface{}{
		"runId":       report.RunID,
		"changeKey":   report.ChangeKey,
		"baseRef":     report.BaseRef,
		"targetRef":   report.TargetRef,
		"risk":        string(report.Summary.Risk),
		"confidence":  string(report.Summary.Confidence),
		"keyConcerns": report.Summary.KeyConcerns,
	}
}

// convertSeverity maps consolidated severity levels to SARIF levels.
func convertSeverity(severity domain.Severity) string {
	switch severity {
	case domain.SeverityBlocking:
		return "error"
	case domain.SeverityImportant:
		return "warning"
	case domain.SeverityNit:
		return "note"
	default:
		return "warning"
	}
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
