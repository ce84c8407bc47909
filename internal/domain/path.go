package domain

import "strings"

// NormalizePath canonicalizes a repository-relative path the way
// finding identity and diff lookups expect it: no surrounding
// whitespace, no leading slash, no a/ or b/ diff prefix.
func NormalizePath(path string) string {
	p := strings.TrimSpace(path)
	for strings.HasPrefix(p, "/") {
		p = p[1:]
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		p = p[2:]
	}
	return p
}
