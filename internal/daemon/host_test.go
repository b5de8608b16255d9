package daemon_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"conveyor/internal/daemon"
	"conveyor/internal/journal"
	"conveyor/internal/queue"
	"conveyor/internal/services"
	"conveyor/internal/testsupport"
)

func newHost(t *testing.T, opts ...testsupport.ConfigOption) *daemon.Host {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	h, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		if err := h.Close(); err != nil {
			t.Errorf("close host: %v", err)
		}
	})
	return h
}

func TestHostProcessesItemsInOrder(t *testing.T) {
	h := newHost(t)

	if err := h.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}

	var mu sync.Mutex
	var order []int
	for i := 1; i <= 3; i++ {
		h.Enqueue(queue.NewTask("sequence", func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, i)
			return nil
		}))
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(order)
		mu.Unlock()
		if n == 3 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	h.StopAll()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("items ran in order %v, want [1 2 3]", order)
	}

	outcomes, err := h.History(t.Context(), 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("journal has %d outcomes, want 3", len(outcomes))
	}
	for _, outcome := range outcomes {
		if outcome.Status != journal.StatusCompleted {
			t.Errorf("outcome %s is %s, want completed", outcome.ItemID, outcome.Status)
		}
	}
}

func TestHostStopFinishesInFlightItem(t *testing.T) {
	h := newHost(t)
	if err := h.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}

	started := make(chan struct{})
	var finished sync.WaitGroup
	finished.Add(1)
	h.Enqueue(queue.NewTask("slow", func(context.Context) error {
		// Deliberately ignores cancellation: shutdown must still wait.
		close(started)
		defer finished.Done()
		time.Sleep(150 * time.Millisecond)
		return nil
	}))

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("item never started")
	}
	h.StopAll()

	done := make(chan struct{})
	go func() {
		finished.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("StopAll returned before the in-flight item finished")
	}
	if h.Running() {
		t.Fatal("host still reports running after StopAll")
	}
}

func TestHostSecondInstanceRefused(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New first: %v", err)
	}
	t.Cleanup(func() { _ = first.Close() })
	if err := first.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll first: %v", err)
	}

	second, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New second: %v", err)
	}
	t.Cleanup(func() { _ = second.Close() })

	err = second.StartAll(t.Context())
	if err == nil {
		t.Fatal("second host started while the first held the lock")
	}
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("lock conflict error %v is not marked unavailable", err)
	}

	// Releasing the first instance frees the lock for the next start.
	first.StopAll()
	if err := second.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll after lock release: %v", err)
	}
	second.StopAll()
}

func TestHostStatus(t *testing.T) {
	h := newHost(t, testsupport.WithWatcher("*.txt", 40*time.Millisecond))

	status := h.Status()
	if status.Running {
		t.Fatal("fresh host reports running")
	}

	if err := h.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	status = h.Status()
	if !status.Running {
		t.Fatal("started host does not report running")
	}
	if status.PID <= 0 {
		t.Errorf("pid = %d", status.PID)
	}
	if status.Watcher == nil {
		t.Error("watcher stats missing despite watcher enabled")
	}
	if !strings.HasSuffix(status.JournalPath, "journal.db") {
		t.Errorf("journal path = %q", status.JournalPath)
	}
	if status.QueueDepth != 0 {
		t.Errorf("queue depth = %d, want 0", status.QueueDepth)
	}
	if filepath.Dir(status.SocketPath) != filepath.Dir(status.LogPath) {
		t.Errorf("socket %q and log %q are not siblings", status.SocketPath, status.LogPath)
	}

	h.StopAll()
	if h.Status().Running {
		t.Fatal("stopped host reports running")
	}
}

func TestHostSubmit(t *testing.T) {
	h := newHost(t)
	if err := h.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	defer h.StopAll()

	payload := filepath.Join(t.TempDir(), "todo.txt")
	testsupport.WriteFile(t, payload, "one two three\n")

	id, err := h.Submit("ingest", payload)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id == "" {
		t.Fatal("submit returned no item id")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		outcomes, err := h.History(t.Context(), 5)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(outcomes) == 1 {
			if outcomes[0].ItemID != id || outcomes[0].Status != journal.StatusCompleted {
				t.Fatalf("outcome = %+v, want completed %s", outcomes[0], id)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("submitted item never completed")
}

func TestHostSubmitValidation(t *testing.T) {
	h := newHost(t)
	if err := h.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	defer h.StopAll()

	if _, err := h.Submit("transcode", "x"); !errors.Is(err, services.ErrValidation) {
		t.Errorf("unknown kind error = %v, want validation", err)
	}
	if _, err := h.Submit("ingest", ""); !errors.Is(err, services.ErrValidation) {
		t.Errorf("empty payload error = %v, want validation", err)
	}
	missing := filepath.Join(t.TempDir(), "absent.txt")
	if _, err := h.Submit("ingest", missing); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("missing payload error = %v, want not-found", err)
	}
	if _, err := h.Submit("ingest", t.TempDir()); !errors.Is(err, services.ErrValidation) {
		t.Errorf("directory payload error = %v, want validation", err)
	}
}

func TestHostSubmitRequiresRunning(t *testing.T) {
	h := newHost(t)
	if _, err := h.Submit("ingest", "whatever.txt"); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("submit on stopped host = %v, want unavailable", err)
	}
}

func TestHostStartTwiceFails(t *testing.T) {
	h := newHost(t)
	if err := h.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	defer h.StopAll()

	if err := h.StartAll(t.Context()); err == nil {
		t.Fatal("second StartAll succeeded")
	}
}

func TestHostWatcherFeedsQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWatcher("*.txt", 40*time.Millisecond))
	h, err := daemon.New(cfg, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	if err := h.StartAll(t.Context()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	defer h.StopAll()

	testsupport.WriteFile(t, filepath.Join(cfg.Paths.WatchDir, "dropped.txtt"), "ignored, wrong suffix\n")
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.WatchDir, "dropped.txt"), "via the watch directory\n")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		outcomes, err := h.History(t.Context(), 5)
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(outcomes) == 1 {
			if outcomes[0].Kind != "ingest" || outcomes[0].Status != journal.StatusCompleted {
				t.Fatalf("outcome = %+v, want completed ingest", outcomes[0])
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("watched file never produced a completed item")
}
