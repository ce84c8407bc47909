package diff_test

import (
	"testing"

	"github.com/bkyoung/review-consolidator/internal/diff"
	"github.com/bkyoung/review-consolidator/internal/domain"
)

// equalIntPtr compares two *int values for equality (test helper).
func equalIntPtr(a, b *int) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func TestParse_SingleHunk(t *testing.T) {
	patch := `@@ -10,3 +10,4 @@ func example() {
 context line
+added line
 another context
+second addition
`

	parsed, err := diff.Parse(patch)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(parsed.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(parsed.Hunks))
	}

	hunk := parsed.Hunks[0]
	if hunk.OldStart != 10 {
		t.Errorf("expected OldStart=10, got %d", hunk.OldStart)
	}
	if hunk.NewStart != 10 {
		t.Errorf("expected NewStart=10, got %d", hunk.NewStart)
	}

	// Should have 4 lines: context, addition, context, addition
	if len(hunk.Lines) != 4 {
		t.Errorf("expected 4 lines, got %d", len(hunk.Lines))
	}
}

func TestParse_MultipleHunks(t *testing.T) {
	patch := `@@ -10,2 +10,3 @@ func first() {
 context
+added
@@ -20,2 +21,3 @@ func second() {
 context
+added
`

	parsed, err := diff.Parse(patch)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(parsed.Hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(parsed.Hunks))
	}

	if parsed.Hunks[0].NewStart != 10 {
		t.Errorf("hunk 0: expected NewStart=10, got %d", parsed.Hunks[0].NewStart)
	}
	if parsed.Hunks[1].NewStart != 21 {
		t.Errorf("hunk 1: expected NewStart=21, got %d", parsed.Hunks[1].NewStart)
	}
}

func TestParse_AdditionsOnly(t *testing.T) {
	// New file - all additions
	patch := `@@ -0,0 +1,3 @@
+line one
+line two
+line three
`

	parsed, err := diff.Parse(patch)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(parsed.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(parsed.Hunks))
	}

	hunk := parsed.Hunks[0]
	if len(hunk.Lines) != 3 {
		t.Errorf("expected 3 lines, got %d", len(hunk.Lines))
	}

	for i, line := range hunk.Lines {
		if line.Type != diff.LineAddition {
			t.Errorf("line %d: expected Addition, got %v", i, line.Type)
		}
		if line.OldLine != nil {
			t.Errorf("line %d: addition should have nil OldLine", i)
		}
		if !equalIntPtr(line.NewLine, diff.IntPtr(i+1)) {
			t.Errorf("line %d: expected NewLine=%d, got %v", i, i+1, line.NewLine)
		}
	}
}

func TestParse_DeletionsOnly(t *testing.T) {
	// Deleted file - all deletions
	patch := `@@ -1,3 +0,0 @@
-line one
-line two
-line three
`

	parsed, err := diff.Parse(patch)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(parsed.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(parsed.Hunks))
	}

	hunk := parsed.Hunks[0]
	for i, line := range hunk.Lines {
		if line.Type != diff.LineDeletion {
			t.Errorf("line %d: expected Deletion, got %v", i, line.Type)
		}
		if line.NewLine != nil {
			t.Errorf("line %d: deletion should have nil NewLine", i)
		}
		if !equalIntPtr(line.OldLine, diff.IntPtr(i+1)) {
			t.Errorf("line %d: expected OldLine=%d, got %v", i, i+1, line.OldLine)
		}
	}
}

func TestParse_MixedChanges(t *testing.T) {
	patch := `@@ -5,4 +5,4 @@ package main
 import "fmt"
-func old() {}
+func new() {}
 func main() {}
`

	parsed, err := diff.Parse(patch)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	hunk := parsed.Hunks[0]
	// context, deletion, addition, context = 4 lines
	if len(hunk.Lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(hunk.Lines))
	}

	expected := []diff.LineType{
		diff.LineContext,
		diff.LineDeletion,
		diff.LineAddition,
		diff.LineContext,
	}

	for i, line := range hunk.Lines {
		if line.Type != expected[i] {
			t.Errorf("line %d: expected %v, got %v", i, expected[i], line.Type)
		}
	}
}

func TestParse_TracksBothSides(t *testing.T) {
	patch := `@@ -5,4 +5,4 @@ package main
 import "fmt"
-func old() {}
+func new() {}
 func main() {}
`

	parsed, err := diff.Parse(patch)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	lines := parsed.Hunks[0].Lines

	// Context at old 5 / new 5
	if !equalIntPtr(lines[0].OldLine, diff.IntPtr(5)) || !equalIntPtr(lines[0].NewLine, diff.IntPtr(5)) {
		t.Errorf("context line: OldLine=%v NewLine=%v, want 5/5", lines[0].OldLine, lines[0].NewLine)
	}
	// Deletion at old 6, no new side
	if !equalIntPtr(lines[1].OldLine, diff.IntPtr(6)) || lines[1].NewLine != nil {
		t.Errorf("deletion: OldLine=%v NewLine=%v, want 6/nil", lines[1].OldLine, lines[1].NewLine)
	}
	// Addition at new 6, no old side
	if lines[2].OldLine != nil || !equalIntPtr(lines[2].NewLine, diff.IntPtr(6)) {
		t.Errorf("addition: OldLine=%v NewLine=%v, want nil/6", lines[2].OldLine, lines[2].NewLine)
	}
	// Trailing context advanced on both sides
	if !equalIntPtr(lines[3].OldLine, diff.IntPtr(7)) || !equalIntPtr(lines[3].NewLine, diff.IntPtr(7)) {
		t.Errorf("trailing context: OldLine=%v NewLine=%v, want 7/7", lines[3].OldLine, lines[3].NewLine)
	}
}

func TestParse_EmptyPatch(t *testing.T) {
	parsed, err := diff.Parse("")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(parsed.Hunks) != 0 {
		t.Errorf("expected 0 hunks for empty patch, got %d", len(parsed.Hunks))
	}
}

func TestParse_NoNewlineAtEOF(t *testing.T) {
	patch := `@@ -1,2 +1,2 @@
 line one
-line two
\ No newline at end of file
+line two modified
\ No newline at end of file
`

	parsed, err := diff.Parse(patch)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// Should have 1 hunk with lines (ignoring the "\ No newline" markers)
	if len(parsed.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(parsed.Hunks))
	}

	// The "\ No newline" lines should be skipped
	hunk := parsed.Hunks[0]
	for _, line := range hunk.Lines {
		if line.Type != diff.LineContext && line.Type != diff.LineAddition && line.Type != diff.LineDeletion {
			t.Errorf("unexpected line type: %v", line.Type)
		}
	}
}

func TestParse_WithFileHeaders(t *testing.T) {
	// Real diff with git headers
	patch := `diff --git a/file.go b/file.go
index 1234567..abcdefg 100644
--- a/file.go
+++ b/file.go
@@ -10,3 +10,4 @@ func example() {
 context
+added
 more context
`

	parsed, err := diff.Parse(patch)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(parsed.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(parsed.Hunks))
	}

	// Headers should not produce lines; first line is context at new 10
	lines := parsed.Hunks[0].Lines
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !equalIntPtr(lines[0].NewLine, diff.IntPtr(10)) {
		t.Errorf("first line NewLine = %v, want 10", lines[0].NewLine)
	}
}

func TestSplitFiles_MultipleFiles(t *testing.T) {
	blob := `diff --git a/cmd/main.go b/cmd/main.go
index 1234567..abcdefg 100644
--- a/cmd/main.go
+++ b/cmd/main.go
@@ -1,3 +1,4 @@
 package main
+import "fmt"
 func main() {
 }
diff --git a/internal/util.go b/internal/util.go
index 2345678..bcdefgh 100644
--- a/internal/util.go
+++ b/internal/util.go
@@ -10,2 +10,3 @@ func helper() {
 	x := 1
+	y := 2
`

	files, err := diff.SplitFiles(blob)
	if err != nil {
		t.Fatalf("SplitFiles() error = %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Path != "cmd/main.go" {
		t.Errorf("file 0 path = %q, want cmd/main.go", files[0].Path)
	}
	if files[1].Path != "internal/util.go" {
		t.Errorf("file 1 path = %q, want internal/util.go", files[1].Path)
	}
	for i, f := range files {
		if f.Status != domain.FileStatusModified {
			t.Errorf("file %d status = %q, want modified", i, f.Status)
		}
		parsed, err := diff.Parse(f.Patch)
		if err != nil || len(parsed.Hunks) != 1 {
			t.Errorf("file %d patch should parse to 1 hunk", i)
		}
	}
}

func TestSplitFiles_AddedFile(t *testing.T) {
	blob := `diff --git a/newfile.go b/newfile.go
new file mode 100644
index 0000000..abcdefg
--- /dev/null
+++ b/newfile.go
@@ -0,0 +1,2 @@
+package new
+var X = 1
`

	files, err := diff.SplitFiles(blob)
	if err != nil {
		t.Fatalf("SplitFiles() error = %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].Path != "newfile.go" {
		t.Errorf("path = %q, want newfile.go", files[0].Path)
	}
	if files[0].Status != domain.FileStatusAdded {
		t.Errorf("status = %q, want added", files[0].Status)
	}
}

func TestSplitFiles_DeletedFile(t *testing.T) {
	blob := `diff --git a/oldfile.go b/oldfile.go
deleted file mode 100644
index abcdefg..0000000
--- a/oldfile.go
+++ /dev/null
@@ -1,2 +0,0 @@
-package old
-var X = 1
`

	files, err := diff.SplitFiles(blob)
	if err != nil {
		t.Fatalf("SplitFiles() error = %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].Path != "oldfile.go" {
		t.Errorf("path = %q, want oldfile.go", files[0].Path)
	}
	if files[0].Status != domain.FileStatusDeleted {
		t.Errorf("status = %q, want deleted", files[0].Status)
	}
}

func TestSplitFiles_RenamedFile(t *testing.T) {
	blob := `diff --git a/pkg/old_name.go b/pkg/new_name.go
similarity index 95%
rename from pkg/old_name.go
rename to pkg/new_name.go
index 1234567..abcdefg 100644
--- a/pkg/old_name.go
+++ b/pkg/new_name.go
@@ -1,2 +1,2 @@
-package oldname
+package newname
`

	files, err := diff.SplitFiles(blob)
	if err != nil {
		t.Fatalf("SplitFiles() error = %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if files[0].Path != "pkg/new_name.go" {
		t.Errorf("path = %q, want pkg/new_name.go", files[0].Path)
	}
	if files[0].OldPath != "pkg/old_name.go" {
		t.Errorf("old path = %q, want pkg/old_name.go", files[0].OldPath)
	}
	if files[0].Status != domain.FileStatusRenamed {
		t.Errorf("status = %q, want renamed", files[0].Status)
	}
}

func TestSplitFiles_BinaryFile(t *testing.T) {
	blob := `diff --git a/logo.png b/logo.png
index 1234567..abcdefg 100644
Binary files a/logo.png and b/logo.png differ
`

	files, err := diff.SplitFiles(blob)
	if err != nil {
		t.Fatalf("SplitFiles() error = %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	if !files[0].IsBinary {
		t.Error("expected IsBinary=true")
	}
	if files[0].Path != "logo.png" {
		t.Errorf("path = %q, want logo.png", files[0].Path)
	}
}

func TestSplitFiles_EmptyBlob(t *testing.T) {
	files, err := diff.SplitFiles("")
	if err != nil {
		t.Fatalf("SplitFiles() error = %v", err)
	}
	if files != nil {
		t.Errorf("expected nil files for empty blob, got %d", len(files))
	}
}

func TestSplitFiles_Unparseable(t *testing.T) {
	_, err := diff.SplitFiles("this is not a diff\njust random text\n")
	if err == nil {
		t.Fatal("expected error for text with no file sections")
	}
}

func TestFileStats_CountsChurn(t *testing.T) {
	files := []domain.FileDiff{
		{
			Path: "a.go",
			Patch: `@@ -1,3 +1,4 @@
 context
+added one
+added two
-removed
`,
		},
		{
			Path:     "logo.png",
			IsBinary: true,
		},
	}

	stats := diff.FileStats(files)
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats, got %d", len(stats))
	}
	if stats[0].Additions != 2 || stats[0].Deletions != 1 {
		t.Errorf("a.go stats = +%d/-%d, want +2/-1", stats[0].Additions, stats[0].Deletions)
	}
	if stats[0].Churn() != 3 {
		t.Errorf("a.go churn = %d, want 3", stats[0].Churn())
	}
	if stats[1].Additions != 0 || stats[1].Deletions != 0 {
		t.Errorf("binary file should count zero churn, got +%d/-%d", stats[1].Additions, stats[1].Deletions)
	}
}
