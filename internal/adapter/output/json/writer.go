package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bkyoung/review-consolidator/internal/usecase/consolidate"
)

// Writer implements the consolidate.JSONWriter interface.
type Writer struct {
	now func() string
}

// NewWriter creates a new JSON writer.
func NewWriter(now func() string) *Writer {
	return &Writer{now: now}
}

// Write persists a consolidated report to disk as a JSON file.
func (w *Writer) Write(ctx context.Context, artifact consolidate.Artifact) (string, error) {
	report := artifact.Report
	outputDir := filepath.Join(artifact.OutputDir, fmt.Sprintf("%s_%s", sanitise(report.Repository), sanitise(report.TargetRef)), w.now())
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(outputDir, "consolidated.json")

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create json file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode report to json: %w", err)
	}

	return filePath, nil
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
