package match

import (
	"strings"
	"unicode"
)

// noiseWords are dropped during tokenization because they appear in
// nearly every finding title and body without distinguishing one issue
// from another. Includes a few review-domain fillers alongside common
// English stopwords.
var noiseWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "this": true,
	"that": true, "are": true, "was": true, "were": true, "has": true,
	"have": true, "had": true, "can": true, "could": true, "should": true,
	"would": true, "will": true, "may": true, "might": true, "must": true,
	"been": true, "being": true, "does": true, "from": true, "into": true,
	"when": true, "where": true, "which": true, "while": true, "also": true,
	"than": true, "then": true, "them": true, "they": true, "their": true,
	"there": true, "here": true, "such": true, "some": true, "each": true,
	"other": true, "more": true, "most": true, "very": true, "just": true,
	"only": true, "about": true, "after": true, "before": true,
	"during": true, "between": true, "because": true,
	"run": true, "runs": true,
}

// tokenize lowercases the text, treats every non-alphanumeric rune as a
// separator, and drops tokens shorter than three characters or in the
// noise set. Hyphenated compounds split into their parts, so
// "stale-worktree" and "stale worktree" tokenize identically.
func tokenize(text string) map[string]bool {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	tokens := make(map[string]bool)
	for _, word := range strings.Fields(b.String()) {
		if len(word) < 3 || noiseWords[word] {
			continue
		}
		tokens[word] = true
	}
	return tokens
}

// jaccard returns |a ∩ b| / |a ∪ b|. Two empty sets count as identical;
// one empty set shares nothing.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range a {
		if b[token] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
