package logtail

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log file: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log file for append: %v", err)
	}
	defer file.Close()
	if _, err := file.WriteString(content); err != nil {
		t.Fatalf("append log file: %v", err)
	}
}

func TestTailLastLinesAndResume(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	writeLog(t, path, "one\ntwo\nthree\nfour\n")

	result, err := Tail(context.Background(), path, Options{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "three" || result.Lines[1] != "four" {
		t.Fatalf("unexpected lines %v", result.Lines)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log file: %v", err)
	}
	if result.Offset != info.Size() {
		t.Fatalf("offset %d, want %d", result.Offset, info.Size())
	}

	appendLog(t, path, "five\n")
	next, err := Tail(context.Background(), path, Options{Offset: result.Offset})
	if err != nil {
		t.Fatalf("Tail resume: %v", err)
	}
	if len(next.Lines) != 1 || next.Lines[0] != "five" {
		t.Fatalf("unexpected resumed lines %v", next.Lines)
	}
}

func TestTailFewerLinesThanLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	writeLog(t, path, "only\n")

	result, err := Tail(context.Background(), path, Options{Offset: -1, Limit: 10})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 1 || result.Lines[0] != "only" {
		t.Fatalf("unexpected lines %v", result.Lines)
	}
}

func TestTailOffsetZeroReadsWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	writeLog(t, path, "alpha\nbeta\n")

	result, err := Tail(context.Background(), path, Options{Offset: 0})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "alpha" || result.Lines[1] != "beta" {
		t.Fatalf("unexpected lines %v", result.Lines)
	}
}

func TestTailZeroLimitSkipsToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	writeLog(t, path, "alpha\nbeta\n")

	result, err := Tail(context.Background(), path, Options{Offset: -1, Limit: 0})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 0 {
		t.Fatalf("expected no lines, got %v", result.Lines)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log file: %v", err)
	}
	if result.Offset != info.Size() {
		t.Fatalf("offset %d, want %d", result.Offset, info.Size())
	}
}

func TestTailMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.log")

	result, err := Tail(context.Background(), path, Options{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestTailClampsStaleOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	writeLog(t, path, "short\n")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log file: %v", err)
	}

	result, err := Tail(context.Background(), path, Options{Offset: info.Size() + 500})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 0 {
		t.Fatalf("expected no lines, got %v", result.Lines)
	}
	if result.Offset != info.Size() {
		t.Fatalf("offset %d, want %d", result.Offset, info.Size())
	}
}

func TestTailFollowWaitsForAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	writeLog(t, path, "existing\n")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log file: %v", err)
	}

	go func() {
		time.Sleep(300 * time.Millisecond)
		file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			t.Errorf("open log file for append: %v", err)
			return
		}
		defer file.Close()
		if _, err := file.WriteString("fresh\n"); err != nil {
			t.Errorf("append log file: %v", err)
		}
	}()

	start := time.Now()
	result, err := Tail(context.Background(), path, Options{
		Offset: info.Size(),
		Follow: true,
		Wait:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 1 || result.Lines[0] != "fresh" {
		t.Fatalf("unexpected lines %v", result.Lines)
	}
	if elapsed := time.Since(start); elapsed >= 5*time.Second {
		t.Fatalf("follow did not return early, took %s", elapsed)
	}
}

func TestTailFollowSeesCreatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")

	go func() {
		time.Sleep(300 * time.Millisecond)
		if err := os.WriteFile(path, []byte("born\n"), 0o644); err != nil {
			t.Errorf("write log file: %v", err)
		}
	}()

	result, err := Tail(context.Background(), path, Options{
		Offset: -1,
		Limit:  5,
		Follow: true,
		Wait:   5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 1 || result.Lines[0] != "born" {
		t.Fatalf("unexpected lines %v", result.Lines)
	}
}

func TestTailFollowStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	writeLog(t, path, "existing\n")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat log file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err = Tail(ctx, path, Options{Offset: info.Size(), Follow: true, Wait: 10 * time.Second})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTailRejectsDirectory(t *testing.T) {
	dir := t.TempDir()

	if _, err := Tail(context.Background(), dir, Options{Offset: -1, Limit: 5}); err == nil {
		t.Fatal("expected error for directory path")
	}
}
