// Package redaction scrubs secrets from finding text before it is
// written to reports or persisted. Evidence fields quote diff content
// directly, so a committed credential would otherwise propagate into
// every artifact.
package redaction

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/bkyoung/review-consolidator/internal/domain"
)

// Engine performs regex-based secret detection and redaction.
type Engine struct {
	patterns []*regexp.Regexp
}

// NewEngine creates a redaction engine with the default secret patterns
// plus any extra user-supplied patterns from configuration.
func NewEngine(extra ...string) (*Engine, error) {
	patterns := defaultPatterns()
	for _, raw := range extra {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile redaction pattern %q: %w", raw, err)
		}
		patterns = append(patterns, re)
	}
	return &Engine{patterns: patterns}, nil
}

// Redact scans input for secrets and replaces them with stable
// placeholders. The same secret always maps to the same placeholder, so
// repeated occurrences stay correlated in the redacted text.
func (e *Engine) Redact(input string) string {
	result := input
	seenSecrets := make(map[string]string) // secret -> placeholder

	for _, pattern := range e.patterns {
		matches := pattern.FindAllString(result, -1)
		for _, match := range matches {
			if _, seen := seenSecrets[match]; seen {
				continue
			}
			seenSecrets[match] = placeholderFor(match)
		}
	}

	for secret, placeholder := range seenSecrets {
		result = strings.ReplaceAll(result, secret, placeholder)
	}

	return result
}

// RedactFinding returns a copy of the finding with every free-text
// field scrubbed. Identity and location fields are left alone.
func (e *Engine) RedactFinding(f domain.Finding) domain.Finding {
	f.Title = e.Redact(f.Title)
	f.Body = e.Redact(f.Body)
	f.Evidence = e.Redact(f.Evidence)
	f.SuggestedPatch = e.Redact(f.SuggestedPatch)
	return f
}

// RedactSummary scrubs the free-text parts of a run summary. The input
// summary is not modified.
func (e *Engine) RedactSummary(s domain.RunSummary) domain.RunSummary {
	s.KeyConcerns = e.redactAll(s.KeyConcerns)
	s.WhatToTest = e.redactAll(s.WhatToTest)

	files := make([]domain.FileSummary, len(s.Files))
	for i, file := range s.Files {
		file.Summary = e.Redact(file.Summary)
		files[i] = file
	}
	s.Files = files
	return s
}

func (e *Engine) redactAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = e.Redact(item)
	}
	return out
}

// IsRedacted checks if the content contains redaction placeholders.
func (e *Engine) IsRedacted(content string) bool {
	return strings.Contains(content, "<REDACTED:")
}

// placeholderFor creates a stable, unique placeholder for a secret.
func placeholderFor(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return fmt.Sprintf("<REDACTED:%s>", hex.EncodeToString(hash[:])[:8])
}

// defaultPatterns returns the default set of regex patterns for secret detection.
func defaultPatterns() []*regexp.Regexp {
	patterns := []string{
		// OpenAI API keys (flexible length for testing and real keys)
		`sk-[a-zA-Z0-9]{20,}`,
		// Anthropic API keys
		`sk-ant-[a-zA-Z0-9\-]{20,}`,
		// AWS Access Key ID
		`AKIA[0-9A-Z]{16}`,
		// AWS Secret Access Key (generalized high-entropy pattern)
		`aws.{0,20}?['\"][0-9a-zA-Z/+]{40}['\"]`,
		// GitHub tokens
		`gh[posr]_[a-zA-Z0-9]{20,}`,
		// Google API keys
		`AIza[0-9A-Za-z\-_]{35}`,
		// JWT tokens (basic pattern)
		`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`,
		// Private keys (PEM format)
		`-----BEGIN\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)\s+PRIVATE\s+KEY-----[\s\S]*?-----END\s+(?:RSA|EC|OPENSSH|DSA|ENCRYPTED)\s+PRIVATE\s+KEY-----`,
		// Slack tokens
		`xox[baprs]-[a-zA-Z0-9\-]{10,}`,
		// Generic bearer tokens (after "Bearer " keyword)
		`Bearer\s+[a-zA-Z0-9_\-\.]+`,
	}

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		compiled = append(compiled, regexp.MustCompile(pattern))
	}
	return compiled
}
