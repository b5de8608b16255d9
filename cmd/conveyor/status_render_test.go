package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusError, "Not running", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Daemon:", "[ERROR] Not running")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Daemon", statusOK, "Running", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Daemon", false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "== Daemon ==" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("unexpected rule: %q", lines[1])
	}
}

func TestStatusKinds(t *testing.T) {
	if poolStatusKind("running") != statusOK {
		t.Fatal("running pool should render OK")
	}
	if poolStatusKind("stopping") != statusWarn {
		t.Fatal("stopping pool should render WARN")
	}
	if poolStatusKind("stopped") != statusError {
		t.Fatal("stopped pool should render ERROR")
	}
	if probeStatusKind("healthy") != statusOK {
		t.Fatal("healthy probe should render OK")
	}
	if probeStatusKind("unknown") != statusInfo {
		t.Fatal("unknown probe should render INFO")
	}
	if checkStatusKind(false) != statusError {
		t.Fatal("failed check should render ERROR")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
