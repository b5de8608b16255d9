package watchfs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"conveyor/internal/config"
	"conveyor/internal/ingest"
	"conveyor/internal/logging"
	"conveyor/internal/queue"
	"conveyor/internal/services"
)

// Sink receives the work items the watcher produces.
type Sink interface {
	Enqueue(item queue.Item)
}

// Stats is a point-in-time snapshot of watcher activity.
type Stats struct {
	EventsSeen     uint64
	ItemsEnqueued  uint64
	PendingSettles int
}

// Watcher debounces change events for one directory into ingest items.
type Watcher struct {
	dir     string
	pattern string
	settle  time.Duration
	sink    Sink
	logger  *slog.Logger
	base    *slog.Logger

	mu      sync.Mutex
	running bool
	pending map[string]*time.Timer
	cancel  context.CancelFunc
	fsw     *fsnotify.Watcher

	wg      sync.WaitGroup
	flushes sync.WaitGroup

	eventsSeen    atomic.Uint64
	itemsEnqueued atomic.Uint64
}

// New builds a watcher over cfg's watch directory. The sink is typically the
// work queue shared with the consumer pool.
func New(cfg *config.Config, sink Sink, logger *slog.Logger) *Watcher {
	return &Watcher{
		dir:     cfg.Paths.WatchDir,
		pattern: cfg.Watcher.Pattern,
		settle:  cfg.Watcher.SettleDelay(),
		sink:    sink,
		logger:  logging.NewComponentLogger(logger, "watcher"),
		base:    logger,
	}
}

// Start attaches to the directory and launches the event loop. An unreadable
// or missing watch directory is a startup failure, not something to limp past.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}
	if w.sink == nil {
		return services.Wrap(services.ErrConfiguration, "watcher", "start", "no sink configured", nil)
	}

	info, err := os.Stat(w.dir)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "watcher", "start", fmt.Sprintf("watch directory %s unavailable", w.dir), err)
	}
	if !info.IsDir() {
		return services.Wrap(services.ErrConfiguration, "watcher", "start", fmt.Sprintf("watch path %s is not a directory", w.dir), nil)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return services.Wrap(services.ErrUnavailable, "watcher", "start", "create filesystem notifier", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return services.Wrap(services.ErrUnavailable, "watcher", "start", fmt.Sprintf("watch %s", w.dir), err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.fsw = fsw
	w.cancel = cancel
	w.pending = make(map[string]*time.Timer)
	w.running = true
	w.wg.Add(1)
	go w.loop(runCtx)

	w.logger.Info("watch started",
		logging.String(logging.FieldPath, w.dir),
		logging.String("pattern", w.pattern),
		logging.Duration("settle_delay", w.settle),
	)
	return nil
}

// Stop cancels pending settle timers and waits for the event loop and any
// in-flight settle callbacks to finish. No items are enqueued after it
// returns.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	cancel := w.cancel
	w.cancel = nil
	for _, timer := range w.pending {
		timer.Stop()
	}
	cancelled := len(w.pending)
	w.pending = nil
	w.mu.Unlock()

	cancel()
	w.fsw.Close()
	w.wg.Wait()
	w.flushes.Wait()

	w.logger.Info("watch stopped",
		logging.Uint64("events_seen", w.eventsSeen.Load()),
		logging.Uint64("items_enqueued", w.itemsEnqueued.Load()),
		logging.Int("settles_cancelled", cancelled),
	)
}

// Stats reports counters for status displays and tests.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	pending := len(w.pending)
	w.mu.Unlock()
	return Stats{
		EventsSeen:     w.eventsSeen.Load(),
		ItemsEnqueued:  w.itemsEnqueued.Load(),
		PendingSettles: pending,
	}
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(w.logger, "filesystem notifier reported an error", "watch_backend_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check inotify watch limits for the daemon user"),
				logging.String(logging.FieldImpact, "some file changes may have been missed"),
			)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	matched, err := filepath.Match(w.pattern, filepath.Base(event.Name))
	if err != nil || !matched {
		return
	}
	w.eventsSeen.Add(1)

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		hadPending := w.cancelPending(event.Name)
		w.logger.Info("watched file removed",
			logging.String(logging.FieldPath, event.Name),
			logging.Bool("settle_cancelled", hadPending),
		)
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.schedule(event.Name)
		w.logger.Debug("settle timer armed",
			logging.String(logging.FieldPath, event.Name),
			logging.String("op", event.Op.String()),
		)
	}
}

// schedule arms or resets the per-path settle timer. A burst of writes keeps
// pushing the timer back, so the file is read once, after it goes quiet.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return
	}
	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.flush(path)
	})
}

func (w *Watcher) cancelPending(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	timer, ok := w.pending[path]
	if !ok {
		return false
	}
	timer.Stop()
	delete(w.pending, path)
	return true
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	if w.pending == nil {
		w.mu.Unlock()
		return
	}
	if _, ok := w.pending[path]; !ok {
		// Cancelled between the timer firing and this callback running.
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.flushes.Add(1)
	w.mu.Unlock()
	defer w.flushes.Done()

	content, err := os.ReadFile(path)
	if err != nil {
		logging.WarnWithContext(w.logger, "settled file could not be read", "watch_read_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check file permissions in the watch directory"),
			logging.String(logging.FieldImpact, "this file change was dropped"),
		)
		return
	}

	item := ingest.NewFileTaskWithContent(path, content, w.base)
	w.sink.Enqueue(item)
	w.itemsEnqueued.Add(1)
	w.logger.Info("file settled",
		logging.String(logging.FieldPath, path),
		logging.String(logging.FieldItemID, item.ID()),
		logging.Int("bytes", len(content)),
	)
}
