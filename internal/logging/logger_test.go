package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"conveyor/internal/config"
	"conveyor/internal/services"
)

func newFileLogger(t *testing.T, level, format string) (*slog.Logger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Options{
		Level:            level,
		Format:           format,
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	return logger, path
}

func readLogFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log output: %v", err)
	}
	return string(data)
}

func TestConsoleCallerOnlyAtDebug(t *testing.T) {
	logger, path := newFileLogger(t, "info", "console")
	logger.Info("queue drained", String("queue", "work"))

	output := readLogFile(t, path)
	if !strings.Contains(output, "INFO") || !strings.Contains(output, "queue drained") {
		t.Fatalf("info line missing from output: %q", output)
	}
	if strings.Contains(output, "logger_test.go") {
		t.Fatalf("info-level console output should omit caller: %q", output)
	}

	debugLogger, debugPath := newFileLogger(t, "debug", "console")
	debugLogger.Debug("queue drained")

	debugOutput := readLogFile(t, debugPath)
	if !strings.Contains(debugOutput, "logger_test.go") {
		t.Fatalf("debug-level console output should include caller: %q", debugOutput)
	}
}

func TestInvalidLevelDefaultsToInfo(t *testing.T) {
	logger, path := newFileLogger(t, "verbose", "console")
	logger.Debug("hidden detail")
	logger.Info("visible line")

	output := readLogFile(t, path)
	if strings.Contains(output, "hidden detail") {
		t.Fatalf("debug output should be suppressed at default level: %q", output)
	}
	if !strings.Contains(output, "visible line") {
		t.Fatalf("info output missing: %q", output)
	}
}

func TestUnsupportedFormatRejected(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestJSONFormat(t *testing.T) {
	logger, path := newFileLogger(t, "info", "json")
	logger.Warn("probe slow", String(FieldTarget, "api"), Duration("elapsed", 1500*time.Millisecond))

	output := strings.TrimSpace(readLogFile(t, path))
	var entry map[string]any
	if err := json.Unmarshal([]byte(output), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, output)
	}
	if entry["level"] != "warn" {
		t.Fatalf("level = %v, want lowercase warn", entry["level"])
	}
	if entry["msg"] != "probe slow" {
		t.Fatalf("msg = %v", entry["msg"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatal("ts field missing from JSON output")
	}
	if entry[FieldTarget] != "api" {
		t.Fatalf("target = %v", entry[FieldTarget])
	}
}

func TestComponentBecomesMessagePrefix(t *testing.T) {
	logger, path := newFileLogger(t, "info", "console")
	NewComponentLogger(logger, "watcher").Info("started", String(FieldPath, "/tmp/inbox"))

	output := readLogFile(t, path)
	if !strings.Contains(output, "watcher: started") {
		t.Fatalf("component prefix missing: %q", output)
	}
	if strings.Contains(output, "component=") {
		t.Fatalf("component should not appear as key=value: %q", output)
	}
	if !strings.Contains(output, "path=/tmp/inbox") {
		t.Fatalf("path attr missing: %q", output)
	}
}

func TestWithContextAddsItemFields(t *testing.T) {
	logger, path := newFileLogger(t, "info", "console")

	ctx := services.WithItemID(t.Context(), "item-42")
	ctx = services.WithWorker(ctx, "consumer-1")
	WithContext(ctx, logger).Info("processing")

	output := readLogFile(t, path)
	if !strings.Contains(output, "item_id=item-42") {
		t.Fatalf("item_id missing: %q", output)
	}
	if !strings.Contains(output, "worker=consumer-1") {
		t.Fatalf("worker missing: %q", output)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logger, path := newFileLogger(t, "info", "console")
	WarnWithContext(logger, "journal write retried", "journal_retry")

	output := readLogFile(t, path)
	for _, want := range []string{"event_type=journal_retry", "error_hint=", "impact="} {
		if !strings.Contains(output, want) {
			t.Fatalf("warn output missing %q: %q", want, output)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "console"

	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("new from config: %v", err)
	}
	logger.Info("daemon ready")

	output := readLogFile(t, filepath.Join(cfg.Paths.LogDir, "conveyor.log"))
	if !strings.Contains(output, "daemon ready") {
		t.Fatalf("log file missing entry: %q", output)
	}
}

func TestWithLevelOverrideRaisesMinimum(t *testing.T) {
	logger, path := newFileLogger(t, "debug", "console")

	quiet := WithLevelOverride(logger, slog.LevelWarn)
	quiet.Info("suppressed line")
	quiet.Warn("kept line")

	// Re-overriding replaces the previous minimum instead of stacking.
	loud := WithLevelOverride(quiet, slog.LevelDebug)
	loud.Debug("restored line")

	output := readLogFile(t, path)
	if strings.Contains(output, "suppressed line") {
		t.Fatalf("info should be suppressed by override: %q", output)
	}
	if !strings.Contains(output, "kept line") {
		t.Fatalf("warn should pass override: %q", output)
	}
	if !strings.Contains(output, "restored line") {
		t.Fatalf("clone should replace previous override: %q", output)
	}
}

func TestComponentLevel(t *testing.T) {
	overrides := map[string]string{"watcher": "debug", "health": "error"}

	level, ok := ComponentLevel(overrides, "watcher")
	if !ok || level != slog.LevelDebug {
		t.Fatalf("watcher override = %v %v", level, ok)
	}
	if _, ok := ComponentLevel(overrides, "queue"); ok {
		t.Fatal("unexpected override for queue")
	}
	if _, ok := ComponentLevel(nil, "watcher"); ok {
		t.Fatal("nil overrides should report no override")
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()

	oldPath := filepath.Join(dir, "conveyor-old.log")
	newPath := filepath.Join(dir, "conveyor-new.log")
	keptPath := filepath.Join(dir, "conveyor.log")
	for _, path := range []string{oldPath, newPath, keptPath} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	stale := time.Now().AddDate(0, 0, -10)
	for _, path := range []string{oldPath, keptPath} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("age fixture: %v", err)
		}
	}

	CleanupOldLogs(NewNop(), 7, RetentionTarget{
		Dir:     dir,
		Pattern: "conveyor*.log",
		Exclude: []string{keptPath},
	})

	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("stale log should be pruned: %v", err)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Fatalf("fresh log should remain: %v", err)
	}
	if _, err := os.Stat(keptPath); err != nil {
		t.Fatalf("excluded log should remain: %v", err)
	}
}
