// Package diff parses unified diff text and indexes it for line-level
// lookups.
//
// The parser tracks line numbers on both sides of the diff (old and new
// file), which lets review comments be anchored to either side. The
// index built on top of it answers whether a (path, side, line) triple
// is present in the diff and derives content hashes for the hunk and
// the local context around a line, stable against unrelated drift
// elsewhere in the file.
package diff
