package diff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bkyoung/review-consolidator/internal/domain"
)

// LineType represents the type of a line in a diff.
type LineType int

const (
	// LineContext represents an unchanged context line (starts with ' ').
	LineContext LineType = iota
	// LineAddition represents an added line (starts with '+').
	LineAddition
	// LineDeletion represents a deleted line (starts with '-').
	LineDeletion
)

// Line represents a single line in a diff hunk.
type Line struct {
	Type    LineType // The type of change
	Content string   // The line content (without the prefix)
	OldLine *int     // Line number in old file (nil for additions)
	NewLine *int     // Line number in new file (nil for deletions)
}

// Hunk represents a single @@ hunk in a unified diff.
type Hunk struct {
	OldStart int    // Starting line in old file
	OldLines int    // Number of lines from old file
	NewStart int    // Starting line in new file
	NewLines int    // Number of lines in new file
	Lines    []Line // The lines in this hunk
}

// ParsedDiff represents a parsed unified diff for a single file.
type ParsedDiff struct {
	Hunks []Hunk
}

// Parse parses a unified diff string into a ParsedDiff.
// It handles standard git diff output including file headers.
func Parse(patch string) (ParsedDiff, error) {
	if patch == "" {
		return ParsedDiff{}, nil
	}

	lines := strings.Split(patch, "\n")
	result := ParsedDiff{}

	var currentHunk *Hunk
	currentOldLine := 0
	currentNewLine := 0

	for _, line := range lines {
		// Skip empty lines at end
		if line == "" {
			continue
		}

		// Skip file headers (diff --git, index, ---, +++)
		if strings.HasPrefix(line, "diff --git") ||
			strings.HasPrefix(line, "index ") ||
			strings.HasPrefix(line, "--- ") ||
			strings.HasPrefix(line, "+++ ") {
			continue
		}

		// Skip "\ No newline at end of file" markers
		if strings.HasPrefix(line, "\\ ") {
			continue
		}

		// Parse hunk header
		if strings.HasPrefix(line, "@@") {
			// Save previous hunk if exists
			if currentHunk != nil {
				result.Hunks = append(result.Hunks, *currentHunk)
			}

			hunk, err := parseHunkHeader(line)
			if err != nil {
				// Skip malformed headers
				continue
			}

			currentHunk = &hunk
			currentOldLine = hunk.OldStart
			currentNewLine = hunk.NewStart
			continue
		}

		// Skip if not in a hunk yet
		if currentHunk == nil {
			continue
		}

		diffLine := Line{}

		if len(line) > 0 {
			switch line[0] {
			case '+':
				diffLine.Type = LineAddition
				diffLine.Content = line[1:]
				diffLine.NewLine = IntPtr(currentNewLine)
				currentNewLine++
			case '-':
				diffLine.Type = LineDeletion
				diffLine.Content = line[1:]
				diffLine.OldLine = IntPtr(currentOldLine)
				currentOldLine++
			case ' ':
				diffLine.Type = LineContext
				diffLine.Content = line[1:]
				diffLine.OldLine = IntPtr(currentOldLine)
				diffLine.NewLine = IntPtr(currentNewLine)
				currentOldLine++
				currentNewLine++
			default:
				// Treat unknown as context (handles edge cases)
				diffLine.Type = LineContext
				diffLine.Content = line
				diffLine.OldLine = IntPtr(currentOldLine)
				diffLine.NewLine = IntPtr(currentNewLine)
				currentOldLine++
				currentNewLine++
			}
		}

		currentHunk.Lines = append(currentHunk.Lines, diffLine)
	}

	// Don't forget the last hunk
	if currentHunk != nil {
		result.Hunks = append(result.Hunks, *currentHunk)
	}

	return result, nil
}

// SplitFiles splits a multi-file unified diff blob into per-file diffs.
// File sections are delimited by "diff --git" headers; paths resolve
// from the +++/--- headers (falling back to the section header), which
// tolerates renames, added files, and deleted files. Returns an error
// when the blob is non-empty but contains no recognizable file section.
func SplitFiles(blob string) ([]domain.FileDiff, error) {
	if strings.TrimSpace(blob) == "" {
		return nil, nil
	}

	lines := strings.Split(blob, "\n")

	var files []domain.FileDiff
	var current *domain.FileDiff
	var body []string
	var headerOld, headerNew string
	inHunks := false

	flush := func() {
		if current == nil {
			return
		}
		current.Patch = strings.Join(body, "\n")
		resolveSectionPaths(current, headerOld, headerNew)
		files = append(files, *current)
		current = nil
		body = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
			current = &domain.FileDiff{Status: domain.FileStatusModified}
			body = []string{line}
			headerOld, headerNew = parseGitHeaderPaths(line)
			inHunks = false
			continue
		}

		if current == nil {
			// Preamble before the first file section
			continue
		}

		body = append(body, line)

		if strings.HasPrefix(line, "@@") {
			inHunks = true
			continue
		}
		if inHunks {
			// Hunk content; a content deletion can start with "--",
			// so metadata detection stops once hunks begin.
			continue
		}

		switch {
		case strings.HasPrefix(line, "new file mode"):
			current.Status = domain.FileStatusAdded
		case strings.HasPrefix(line, "deleted file mode"):
			current.Status = domain.FileStatusDeleted
		case strings.HasPrefix(line, "rename from "):
			current.OldPath = strings.TrimPrefix(line, "rename from ")
			current.Status = domain.FileStatusRenamed
		case strings.HasPrefix(line, "rename to "):
			current.Path = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "--- "):
			if p := headerPath(line[4:]); p != "" && current.OldPath == "" {
				current.OldPath = p
			}
		case strings.HasPrefix(line, "+++ "):
			if p := headerPath(line[4:]); p != "" {
				current.Path = p
			}
		case strings.HasPrefix(line, "Binary files ") || line == "GIT binary patch":
			current.IsBinary = true
		}
	}
	flush()

	if len(files) == 0 {
		return nil, fmt.Errorf("split diff: no file sections found")
	}

	return files, nil
}

// resolveSectionPaths fills in Path/OldPath from the section header when
// the +++/--- lines did not provide them (binary files, pure renames).
func resolveSectionPaths(fd *domain.FileDiff, headerOld, headerNew string) {
	if fd.Path == "" {
		fd.Path = headerNew
	}
	if fd.Path == "" {
		fd.Path = fd.OldPath
	}
	if fd.Status == domain.FileStatusDeleted && fd.OldPath != "" {
		// A deleted file has no new-side path; report the old one.
		fd.Path = fd.OldPath
		fd.OldPath = ""
	}
	if fd.OldPath == fd.Path {
		fd.OldPath = ""
	}
	if fd.OldPath == "" && fd.Status == domain.FileStatusRenamed {
		fd.OldPath = headerOld
	}
}

// parseGitHeaderPaths extracts old/new paths from a "diff --git a/X b/Y"
// header. Paths containing spaces are ambiguous here; the ---/+++ lines
// are authoritative when present.
func parseGitHeaderPaths(line string) (oldPath, newPath string) {
	rest := strings.TrimPrefix(line, "diff --git ")
	idx := strings.LastIndex(rest, " b/")
	if idx < 0 {
		return "", ""
	}
	oldPath = strings.TrimPrefix(rest[:idx], "a/")
	newPath = rest[idx+len(" b/"):]
	return oldPath, newPath
}

// headerPath extracts the path from a ---/+++ header value, stripping
// the a//b/ prefixes and any trailing tab-separated metadata. Returns
// "" for /dev/null.
func headerPath(s string) string {
	s = strings.TrimSpace(s)
	if tab := strings.IndexByte(s, '\t'); tab >= 0 {
		s = s[:tab]
	}
	if s == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(s, "a/") || strings.HasPrefix(s, "b/") {
		s = s[2:]
	}
	return s
}

// FileStats derives per-file churn counts from parsed patches.
// Binary files count zero churn.
func FileStats(files []domain.FileDiff) []domain.ChangedFile {
	stats := make([]domain.ChangedFile, 0, len(files))
	for _, fd := range files {
		cf := domain.ChangedFile{Path: fd.Path}
		if !fd.IsBinary {
			parsed, err := Parse(fd.Patch)
			if err == nil {
				for _, hunk := range parsed.Hunks {
					for _, line := range hunk.Lines {
						switch line.Type {
						case LineAddition:
							cf.Additions++
						case LineDeletion:
							cf.Deletions++
						}
					}
				}
			}
		}
		stats = append(stats, cf)
	}
	return stats
}

// parseHunkHeader parses a hunk header line like "@@ -10,7 +10,8 @@ optional context".
func parseHunkHeader(line string) (Hunk, error) {
	hunk := Hunk{}

	// Find the @@ markers
	parts := strings.Split(line, "@@")
	if len(parts) < 2 {
		return hunk, nil
	}

	// Parse the range info between @@ markers
	rangeInfo := strings.TrimSpace(parts[1])
	rangeParts := strings.Fields(rangeInfo)

	for _, part := range rangeParts {
		if strings.HasPrefix(part, "-") {
			// Old file range: -start,count or -start
			old := strings.TrimPrefix(part, "-")
			oldStart, oldLines := parseRange(old)
			hunk.OldStart = oldStart
			hunk.OldLines = oldLines
		} else if strings.HasPrefix(part, "+") {
			// New file range: +start,count or +start
			new := strings.TrimPrefix(part, "+")
			newStart, newLines := parseRange(new)
			hunk.NewStart = newStart
			hunk.NewLines = newLines
		}
	}

	return hunk, nil
}

// parseRange parses "start,count" or "start" format.
func parseRange(s string) (start, count int) {
	if idx := strings.Index(s, ","); idx >= 0 {
		start, _ = strconv.Atoi(s[:idx])
		count, _ = strconv.Atoi(s[idx+1:])
	} else {
		start, _ = strconv.Atoi(s)
		count = 1
	}
	return
}

// IntPtr returns a pointer to the given int value.
// Exported for use in tests across packages.
func IntPtr(n int) *int {
	return &n
}
