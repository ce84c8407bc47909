// Package ingest reads review pass output files into the shape the
// consolidation use case expects.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bkyoung/review-consolidator/internal/domain"
	"github.com/bkyoung/review-consolidator/internal/usecase/consolidate"
)

// Reader loads pass files from disk or, for the path "-", from the
// configured stdin stream.
type Reader struct {
	stdin io.Reader
}

// NewReader creates a pass reader. The stdin stream backs the "-"
// path; pass os.Stdin outside tests.
func NewReader(stdin io.Reader) *Reader {
	return &Reader{stdin: stdin}
}

// passFile is the on-disk shape produced by a review pass: a summary
// plus the candidate findings. Files holding a bare findings array are
// also accepted, since some pass producers emit findings only.
type passFile struct {
	Summary  domain.RunSummary `json:"summary"`
	Findings []domain.Finding  `json:"findings"`
}

// ReadPass parses a findings file. Candidate content is taken as-is;
// validation and normalization happen during refinement.
func (r *Reader) ReadPass(ctx context.Context, path string) (consolidate.Pass, error) {
	data, err := r.readAll(path)
	if err != nil {
		return consolidate.Pass{}, err
	}

	trimmed := bytes.TrimLeftFunc(data, func(ch rune) bool {
		return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
	})
	if len(trimmed) == 0 {
		return consolidate.Pass{}, fmt.Errorf("findings file %s is empty", path)
	}

	// A bare array is a findings-only pass with no summary.
	if trimmed[0] == '[' {
		var findings []domain.Finding
		if err := json.Unmarshal(trimmed, &findings); err != nil {
			return consolidate.Pass{}, fmt.Errorf("failed to parse findings file %s: %w", path, err)
		}
		return consolidate.Pass{Findings: findings}, nil
	}

	var file passFile
	if err := json.Unmarshal(trimmed, &file); err != nil {
		return consolidate.Pass{}, fmt.Errorf("failed to parse findings file %s: %w", path, err)
	}
	return consolidate.Pass{Summary: file.Summary, Findings: file.Findings}, nil
}

func (r *Reader) readAll(path string) ([]byte, error) {
	if path == "-" {
		if r.stdin == nil {
			return nil, fmt.Errorf("stdin is not available")
		}
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read findings from stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read findings file: %w", err)
	}
	return data, nil
}
