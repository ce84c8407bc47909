package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// GenerateRunID creates a unique, time-ordered run ID.
// Format: run-<timestamp>-<hash>
// Example: run-20251021T143052Z-a3f9c2
func GenerateRunID(timestamp time.Time, baseRef, targetRef string) string {
	// Use UTC timestamp in ISO format for consistent ordering
	ts := timestamp.UTC().Format("20060102T150405Z")

	// Create short hash from refs and nanoseconds for uniqueness
	input := fmt.Sprintf("%s|%s|%d", baseRef, targetRef, timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	shortHash := hex.EncodeToString(hash[:3]) // 6 character hash

	return fmt.Sprintf("run-%s-%s", ts, shortHash)
}

// GenerateFindingID creates a unique ID for a persisted finding.
// Format: finding-<run_id>-<index>
// Index is zero-padded to 4 digits for proper sorting.
func GenerateFindingID(runID string, index int) string {
	return fmt.Sprintf("finding-%s-%04d", runID, index)
}

// CalculateConfigHash creates a deterministic hash of a configuration.
// This allows tracking which config produced each run.
// The input should be JSON-serializable.
func CalculateConfigHash(config interface{}) (string, error) {
	// Serialize config to JSON (Go's JSON marshaling sorts map keys for determinism)
	data, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	// Hash the serialized config
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}
