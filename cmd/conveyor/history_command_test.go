package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"conveyor/internal/journal"
	"conveyor/internal/testsupport"
)

func TestHistoryOfflineReadsJournal(t *testing.T) {
	env := setupOfflineEnv(t)

	j := testsupport.MustOpenJournal(t, env.cfg)
	outcome := journal.Outcome{
		ItemID:       uuid.NewString(),
		Kind:         "ingest",
		Worker:       "worker-1",
		Status:       journal.StatusFailed,
		ErrorMessage: "payload vanished before processing",
		Duration:     1500 * time.Millisecond,
		FinishedAt:   time.Now().UTC(),
	}
	if err := j.RecordOutcome(context.Background(), outcome); err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	out, _, err := runCLI(t, []string{"history"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Failed")
	requireContains(t, out, "payload vanished")
	requireContains(t, out, "Totals: failed 1")
}

func TestHistoryJSON(t *testing.T) {
	env := setupOfflineEnv(t)

	j := testsupport.MustOpenJournal(t, env.cfg)
	if err := j.RecordOutcome(context.Background(), journal.Outcome{
		ItemID:     uuid.NewString(),
		Kind:       "ingest",
		Worker:     "worker-2",
		Status:     journal.StatusCompleted,
		Duration:   80 * time.Millisecond,
		FinishedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	out, _, err := runCLI(t, []string{"history", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	requireContains(t, out, `"status": "completed"`)
	requireContains(t, out, `"worker": "worker-2"`)
}

func TestHistoryEmpty(t *testing.T) {
	env := setupOfflineEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No outcomes recorded")
}
