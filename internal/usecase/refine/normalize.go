package refine

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bkyoung/review-consolidator/internal/domain"
)

// derivedHashLen is the length of ids and keys derived for candidates
// that arrived without one.
const derivedHashLen = 12

// collapseWhitespace reduces any run of whitespace to a single space
// and trims the ends. Used for titles and identity keys.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeMultiline trims surrounding whitespace and canonicalizes
// line endings without flattening intentional paragraph structure.
func normalizeMultiline(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}

// titleKey is the case-folded single-line form of a title, used for
// dedup grouping and duplicate detection across passes.
func titleKey(title string) string {
	return strings.ToLower(collapseWhitespace(title))
}

// derivedHash returns a short stable hash over the joined parts.
func derivedHash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:derivedHashLen]
}

// normalizeFinding canonicalizes every field of a raw candidate:
// whitespace, path form, enum casing, side and comment-type defaults,
// and derived id/key for candidates that arrived without identifiers.
func normalizeFinding(f domain.Finding) domain.Finding {
	f.Path = domain.NormalizePath(f.Path)
	f.Title = collapseWhitespace(f.Title)
	f.Body = normalizeMultiline(f.Body)
	f.Evidence = normalizeMultiline(f.Evidence)
	f.SuggestedPatch = normalizeMultiline(f.SuggestedPatch)

	f.Severity = domain.Severity(strings.ToLower(strings.TrimSpace(string(f.Severity))))
	f.Category = domain.Category(strings.ToLower(strings.TrimSpace(string(f.Category))))
	f.Confidence = domain.Confidence(strings.ToLower(strings.TrimSpace(string(f.Confidence))))

	switch strings.ToUpper(strings.TrimSpace(string(f.Side))) {
	case string(domain.SideLeft):
		f.Side = domain.SideLeft
	default:
		f.Side = domain.SideRight
	}

	switch strings.ToLower(strings.TrimSpace(string(f.CommentType))) {
	case string(domain.CommentTypeSummary):
		f.CommentType = domain.CommentTypeSummary
	default:
		f.CommentType = domain.CommentTypeInline
	}

	f.ID = strings.TrimSpace(f.ID)
	if f.ID == "" {
		f.ID = derivedHash(f.Path, string(f.Side), fmt.Sprintf("%d", f.Line), f.Title)
	}
	f.Key = strings.TrimSpace(f.Key)
	if f.Key == "" {
		f.Key = derivedHash(f.Path, fmt.Sprintf("%d", f.Line), string(f.Category), f.Title)
	}

	return f
}
