package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"conveyor/internal/logging"
)

// Trigger invokes a callback at a fixed cadence until stopped.
type Trigger struct {
	name     string
	interval time.Duration
	callback func(context.Context)
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	ticks atomic.Uint64
}

// NewTrigger constructs a trigger. The name shows up as a structured logging
// attribute on every line the trigger emits.
func NewTrigger(name string, interval time.Duration, callback func(context.Context), logger *slog.Logger) *Trigger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Trigger{
		name:     name,
		interval: interval,
		callback: callback,
		logger:   logging.NewComponentLogger(logger, "schedule").With(logging.String("trigger", name)),
	}
}

// Start launches the interval loop. The first invocation happens after one
// full interval has elapsed.
func (t *Trigger) Start(ctx context.Context) error {
	if t.callback == nil {
		return fmt.Errorf("trigger %s has no callback", t.name)
	}
	if t.interval <= 0 {
		return fmt.Errorf("trigger %s interval must be positive, got %s", t.name, t.interval)
	}

	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return errors.New("trigger already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.running = true
	t.wg.Add(1)
	t.mu.Unlock()

	go t.loop(runCtx)

	t.logger.Debug("trigger started", logging.Duration("interval", t.interval))
	return nil
}

// Stop interrupts the wait and blocks until the loop has exited. After Stop
// returns the callback is not running and will not run again.
func (t *Trigger) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	cancel := t.cancel
	t.running = false
	t.cancel = nil
	t.mu.Unlock()

	cancel()
	t.wg.Wait()
	t.logger.Debug("trigger stopped", logging.Uint64("ticks", t.ticks.Load()))
}

// Ticks reports how many times the callback has been invoked.
func (t *Trigger) Ticks() uint64 {
	return t.ticks.Load()
}

func (t *Trigger) loop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// The select race on shutdown: the tick and the cancel can be
			// ready together, and a cancelled trigger must not fire.
			if ctx.Err() != nil {
				return
			}
			t.tick(ctx)
		}
	}
}

func (t *Trigger) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("trigger callback panicked; cadence continues",
				logging.Any("panic_value", r),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldEventType, "trigger_panic"),
			)
		}
	}()
	t.ticks.Add(1)
	t.callback(ctx)
}
