package domain

import "testing"

func TestFingerprint_Deterministic(t *testing.T) {
	f := Finding{Key: "abc123def456", Path: "internal/runner.go"}

	fp1 := Fingerprint(f)
	fp2 := Fingerprint(f)

	if fp1 != fp2 {
		t.Errorf("fingerprints should be deterministic: %s != %s", fp1, fp2)
	}
	if len(fp1) != 32 {
		t.Errorf("fingerprint should be 32 hex characters, got %d: %s", len(fp1), fp1)
	}
	for _, c := range fp1 {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Errorf("fingerprint should be lowercase hex, found char %c in %s", c, fp1)
			break
		}
	}
}

func TestFingerprint_StableAcrossLineChanges(t *testing.T) {
	f1 := Finding{Key: "abc123def456", Path: "internal/runner.go", Line: 40}
	f2 := Finding{Key: "abc123def456", Path: "internal/runner.go", Line: 97}

	if Fingerprint(f1) != Fingerprint(f2) {
		t.Error("fingerprint should ignore line position")
	}
}

func TestFingerprint_DifferentForDifferentPaths(t *testing.T) {
	f1 := Finding{Key: "abc123def456", Path: "internal/runner.go"}
	f2 := Finding{Key: "abc123def456", Path: "internal/worker.go"}

	if Fingerprint(f1) == Fingerprint(f2) {
		t.Error("fingerprints should differ for different paths")
	}
}

func TestMatchKey_Deterministic(t *testing.T) {
	k1 := MatchKey("fp1", "a.go", "hunkhash", "Missing nil check")
	k2 := MatchKey("fp1", "a.go", "hunkhash", "Missing nil check")

	if k1 != k2 {
		t.Errorf("match keys should be deterministic: %s != %s", k1, k2)
	}
	if len(k1) != 32 {
		t.Errorf("match key should be 32 hex characters, got %d", len(k1))
	}
}

func TestMatchKey_SensitiveToEachInput(t *testing.T) {
	base := MatchKey("fp1", "a.go", "hunk1", "Missing nil check")

	variants := []string{
		MatchKey("fp2", "a.go", "hunk1", "Missing nil check"),
		MatchKey("fp1", "b.go", "hunk1", "Missing nil check"),
		MatchKey("fp1", "a.go", "hunk2", "Missing nil check"),
		MatchKey("fp1", "a.go", "hunk1", "Missing bounds check"),
	}

	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d should produce a different match key", i)
		}
	}
}
