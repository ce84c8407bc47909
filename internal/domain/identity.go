package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint identifies the issue a finding describes independently of
// where in the diff it currently sits. Stable across re-reviews as long
// as the finding key and path are stable.
func Fingerprint(f Finding) string {
	payload := fmt.Sprintf("%s|%s", f.Key, f.Path)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:16]) // 32 hex chars
}

// MatchKey identifies a finding restated against the same diff content.
// Two findings with equal match keys describe the same issue anchored to
// the same hunk, even if surrounding lines drifted between reviews.
func MatchKey(fingerprint, path, hunkHash, title string) string {
	payload := fmt.Sprintf("%s|%s|%s|%s", fingerprint, path, hunkHash, title)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:16]) // 32 hex chars
}

// ExistingFindingCandidate is the read-only projection of a previously
// posted finding used when reconciling a fresh review against earlier
// ones. Candidates are never mutated by matching.
type ExistingFindingCandidate struct {
	ID       string   `json:"id"`
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Side     Side     `json:"side"`
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
}
