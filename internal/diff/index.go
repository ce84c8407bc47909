package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bkyoung/review-consolidator/internal/domain"
)

// contextRadius is the number of entries on each side of a line that
// feed its context hash.
const contextRadius = 3

// indexEntry is one diff line as seen from a particular side.
type indexEntry struct {
	line    int
	content string
	typ     LineType
}

type sideIndex struct {
	lines   map[int]bool
	entries []indexEntry
}

// hunkIndex is the queryable form of a single hunk: a content hash plus
// per-side line sets and ordered entries.
type hunkIndex struct {
	hash  string
	right sideIndex
	left  sideIndex
}

func (h *hunkIndex) side(s domain.Side) *sideIndex {
	if s == domain.SideLeft {
		return &h.left
	}
	return &h.right
}

// Index is a read-only view of a diff supporting line-membership and
// content-hash queries by (path, side, line).
type Index struct {
	files map[string][]*hunkIndex
}

// NewIndex builds an Index from per-file diffs. Binary files and files
// without hunks index nothing. A nil or empty file list yields an index
// that answers not-in-diff for every query.
func NewIndex(files []domain.FileDiff) *Index {
	idx := &Index{files: make(map[string][]*hunkIndex)}
	for _, fd := range files {
		if fd.IsBinary {
			continue
		}
		parsed, err := Parse(fd.Patch)
		if err != nil || len(parsed.Hunks) == 0 {
			continue
		}
		path := domain.NormalizePath(fd.Path)
		for _, hunk := range parsed.Hunks {
			idx.files[path] = append(idx.files[path], buildHunkIndex(hunk))
		}
	}
	return idx
}

// NewIndexFromBlob builds an Index from a raw multi-file unified diff.
// The split error propagates so callers can distinguish "no diff" from
// "diff text present but unparseable".
func NewIndexFromBlob(blob string) (*Index, error) {
	files, err := SplitFiles(blob)
	if err != nil {
		return nil, fmt.Errorf("index diff: %w", err)
	}
	return NewIndex(files), nil
}

func buildHunkIndex(hunk Hunk) *hunkIndex {
	h := &hunkIndex{
		right: sideIndex{lines: make(map[int]bool)},
		left:  sideIndex{lines: make(map[int]bool)},
	}
	hasher := sha256.New()
	for _, line := range hunk.Lines {
		fmt.Fprintf(hasher, "%d|%s\n", line.Type, line.Content)
		if line.NewLine != nil {
			h.right.lines[*line.NewLine] = true
			h.right.entries = append(h.right.entries, indexEntry{
				line:    *line.NewLine,
				content: line.Content,
				typ:     line.Type,
			})
		}
		if line.OldLine != nil {
			h.left.lines[*line.OldLine] = true
			h.left.entries = append(h.left.entries, indexEntry{
				line:    *line.OldLine,
				content: line.Content,
				typ:     line.Type,
			})
		}
	}
	h.hash = hex.EncodeToString(hasher.Sum(nil))
	return h
}

// Contains reports whether the line exists in the diff on the given
// side of the file. Pure context lines count on both sides. An unknown
// path is simply not in the diff.
func (idx *Index) Contains(path string, side domain.Side, line int) bool {
	return idx.findHunk(path, side, line) != nil
}

// HunkHash returns the content hash of the hunk whose side-appropriate
// line set contains the line, or "" when the line is not in the diff.
// The hash covers only the hunk's own ordered (changeType, content)
// pairs, so it survives line-number drift elsewhere in the file.
func (idx *Index) HunkHash(path string, side domain.Side, line int) string {
	if h := idx.findHunk(path, side, line); h != nil {
		return h.hash
	}
	return ""
}

// ContextHash returns a hash over the entries within contextRadius of
// the line inside its hunk, or "" when the line is not in the diff.
// Line numbers are excluded from the hash so re-diffing after unrelated
// drift yields the same value.
func (idx *Index) ContextHash(path string, side domain.Side, line int) string {
	h := idx.findHunk(path, side, line)
	if h == nil {
		return ""
	}

	entries := h.side(side).entries
	at := -1
	for i, e := range entries {
		if e.line == line {
			at = i
			break
		}
	}
	if at < 0 {
		return ""
	}

	lo := at - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := at + contextRadius + 1
	if hi > len(entries) {
		hi = len(entries)
	}

	hasher := sha256.New()
	for _, e := range entries[lo:hi] {
		fmt.Fprintf(hasher, "%d|%s\n", e.typ, e.content)
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// FileCount returns the number of files with indexed hunks.
func (idx *Index) FileCount() int {
	if idx == nil {
		return 0
	}
	return len(idx.files)
}

func (idx *Index) findHunk(path string, side domain.Side, line int) *hunkIndex {
	if idx == nil || line <= 0 {
		return nil
	}
	for _, h := range idx.files[domain.NormalizePath(path)] {
		if h.side(side).lines[line] {
			return h
		}
	}
	return nil
}
