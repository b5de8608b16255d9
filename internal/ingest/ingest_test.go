package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"conveyor/internal/ingest"
	"conveyor/internal/services"
	"conveyor/internal/testsupport"
)

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"notes/Q3_SALES-data.txt", "Q3 Sales Data"},
		{"hello_world.txt", "Hello World"},
		{"archive.tar.gz", "Archive Tar"},
		{"UPPER.md", "Upper"},
		{"spaced   name.txt", "Spaced Name"},
		{"...---___", "Untitled"},
		{"", "Untitled"},
	}
	for _, tc := range cases {
		if got := ingest.DeriveTitle(tc.path); got != tc.want {
			t.Errorf("DeriveTitle(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestAnalyzeMeasuresContent(t *testing.T) {
	report := ingest.Analyze("data/report.txt", []byte("hello world\nsecond line\n"))
	if report.Title != "Report" {
		t.Errorf("title = %q, want %q", report.Title, "Report")
	}
	if report.Bytes != 24 {
		t.Errorf("bytes = %d, want 24", report.Bytes)
	}
	if report.Lines != 2 {
		t.Errorf("lines = %d, want 2", report.Lines)
	}
	if report.Words != 4 {
		t.Errorf("words = %d, want 4", report.Words)
	}
	if !report.ValidUTF8 {
		t.Error("content should be valid UTF-8")
	}
	if len(report.SHA256) != 64 {
		t.Errorf("sha256 length = %d, want 64 hex chars", len(report.SHA256))
	}

	other := ingest.Analyze("data/report.txt", []byte("different"))
	if other.SHA256 == report.SHA256 {
		t.Error("different content produced the same digest")
	}
}

func TestAnalyzeEdges(t *testing.T) {
	empty := ingest.Analyze("empty.txt", nil)
	if empty.Bytes != 0 || empty.Lines != 0 || empty.Words != 0 {
		t.Errorf("empty content measured as %+v", empty)
	}
	if !empty.ValidUTF8 {
		t.Error("empty content should count as valid UTF-8")
	}

	unterminated := ingest.Analyze("x.txt", []byte("one two"))
	if unterminated.Lines != 1 {
		t.Errorf("unterminated line counted as %d lines, want 1", unterminated.Lines)
	}
	if unterminated.Words != 2 {
		t.Errorf("words = %d, want 2", unterminated.Words)
	}

	binary := ingest.Analyze("x.bin", []byte{0xff, 0xfe, 'a'})
	if binary.ValidUTF8 {
		t.Error("invalid byte sequence reported as valid UTF-8")
	}
}

func TestFileTaskReadsAtExecute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	testsupport.WriteFile(t, path, "alpha beta\n")

	task := ingest.NewFileTask(path, nil)
	if err := task.Execute(t.Context()); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if task.Kind() != ingest.Kind {
		t.Errorf("kind = %q, want %q", task.Kind(), ingest.Kind)
	}
	if task.ID() == "" {
		t.Error("task has no id")
	}
	if task.Path() != path {
		t.Errorf("path = %q, want %q", task.Path(), path)
	}
}

func TestFileTaskMissingFile(t *testing.T) {
	task := ingest.NewFileTask(filepath.Join(t.TempDir(), "gone.txt"), nil)
	err := task.Execute(t.Context())
	if err == nil {
		t.Fatal("execute succeeded for a missing file")
	}
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error %v is not marked not-found", err)
	}
}

func TestFileTaskCapturedContentSurvivesDeletion(t *testing.T) {
	// The path never exists; the captured bytes are all that matters.
	path := filepath.Join(t.TempDir(), "settled.txt")
	task := ingest.NewFileTaskWithContent(path, []byte("captured before removal"), nil)
	if err := task.Execute(t.Context()); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestFileTaskObservesCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	testsupport.WriteFile(t, path, "alpha\n")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := ingest.NewFileTask(path, nil).Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("execute on cancelled context returned %v", err)
	}
}
