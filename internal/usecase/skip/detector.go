// Package skip detects the opt-out marker authors use to bypass review
// consolidation for a change, for example on generated or vendored
// updates where review comments are noise.
package skip

import (
	"regexp"
	"strings"
)

// skipTriggerPattern matches [skip review] or [skip-review] (case-insensitive).
var skipTriggerPattern = regexp.MustCompile(`(?i)\[skip[ -]review\]`)

// ContainsSkipTrigger checks if text contains a skip trigger pattern.
// Supported patterns:
//   - [skip review]
//   - [skip-review]
//
// Matching is case-insensitive.
func ContainsSkipTrigger(text string) bool {
	return skipTriggerPattern.MatchString(text)
}

// CheckRequest contains the inputs to check for skip triggers.
type CheckRequest struct {
	CommitMessages    []string // Commit messages in the change (optional)
	ChangeTitle       string   // Pull request or change title (optional)
	ChangeDescription string   // Pull request or change description (optional)
}

// CheckResult contains the result of checking for skip triggers.
type CheckResult struct {
	ShouldSkip bool   // True if a skip trigger was found
	Reason     string // Source where the trigger was found
}

// Check examines commit messages and change metadata for skip triggers.
// It checks in order: commit messages, title, description. Returns the
// first match found.
func Check(req CheckRequest) CheckResult {
	for _, msg := range req.CommitMessages {
		if ContainsSkipTrigger(msg) {
			return CheckResult{
				ShouldSkip: true,
				Reason:     "commit message",
			}
		}
	}

	if ContainsSkipTrigger(strings.TrimSpace(req.ChangeTitle)) {
		return CheckResult{
			ShouldSkip: true,
			Reason:     "change title",
		}
	}

	if ContainsSkipTrigger(req.ChangeDescription) {
		return CheckResult{
			ShouldSkip: true,
			Reason:     "change description",
		}
	}

	return CheckResult{}
}
