package testsupport

import (
	"testing"

	"conveyor/internal/config"
	"conveyor/internal/journal"
)

// MustOpenJournal opens a journal for tests and registers cleanup.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Journal {
	t.Helper()

	j, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}
	t.Cleanup(func() {
		j.Close()
	})
	return j
}
