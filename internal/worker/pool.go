package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"conveyor/internal/config"
	"conveyor/internal/journal"
	"conveyor/internal/logging"
	"conveyor/internal/notifications"
	"conveyor/internal/queue"
	"conveyor/internal/services"
)

// State describes the pool lifecycle. A freshly constructed pool reports
// StateStarting until Start brings its consumer loops up.
type State string

const (
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateStopping State = "stopping"
	StateStopped  State = "stopped"
)

// Stats is a point-in-time view of pool activity.
type Stats struct {
	State     State
	Consumers int
	InFlight  int
	Processed uint64
	Failed    uint64
}

// Pool coordinates the consumer loops that execute queued work.
type Pool struct {
	queue    *queue.Queue
	journal  *journal.Journal
	notifier notifications.Service
	logger   *slog.Logger
	count    int

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	wg     sync.WaitGroup

	inFlight  atomic.Int64
	processed atomic.Uint64
	failed    atomic.Uint64
}

// NewPool constructs a pool sized from the queue config. The journal may be
// nil when outcome history is not wanted (tests); the notifier defaults to
// the config-derived service when nil.
func NewPool(cfg *config.Config, q *queue.Queue, j *journal.Journal, notifier notifications.Service, logger *slog.Logger) *Pool {
	count := cfg.Queue.ConsumerCount
	if count < 1 {
		count = 1
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pool{
		queue:    q,
		journal:  j,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "worker"),
		count:    count,
		state:    StateStarting,
	}
}

// Start launches the consumer loops. It returns an error when the pool is
// already running.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state == StateRunning || p.state == StateStopping {
		p.mu.Unlock()
		return errors.New("worker pool already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.state = StateRunning
	p.wg.Add(p.count)
	p.mu.Unlock()

	for i := 0; i < p.count; i++ {
		go p.runLoop(runCtx, fmt.Sprintf("consumer-%d", i+1))
	}

	p.logger.Info("consumer loops started", logging.Int("consumers", p.count))
	return nil
}

// Stop signals the consumer loops to exit once their current item finishes
// and waits for them. The context bounds the wait: when it expires, loops
// still finishing an item are left to complete in the background and Stop
// returns a timeout error.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		return nil
	}
	p.state = StateStopping
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var stopErr error
	select {
	case <-done:
	case <-ctx.Done():
		stopErr = services.Wrap(services.ErrTimeout, "worker", "stop", "grace period expired with items in flight", ctx.Err())
	}

	p.mu.Lock()
	p.state = StateStopped
	p.mu.Unlock()

	if stopErr != nil {
		logging.WarnWithContext(p.logger, "shutdown grace expired before consumers drained", "worker_stop_timeout",
			logging.Int("in_flight", int(p.inFlight.Load())),
			logging.String(logging.FieldErrorHint, "raise daemon.shutdown_grace_seconds or make items honor cancellation"),
			logging.String(logging.FieldImpact, "in-flight outcomes may be missing from the journal"),
		)
		return stopErr
	}
	p.logger.Info("consumer loops stopped",
		logging.Uint64("processed", p.processed.Load()),
		logging.Uint64("failed", p.failed.Load()),
	)
	return nil
}

// State reports the current lifecycle state.
func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Stats reports pool activity counters.
func (p *Pool) Stats() Stats {
	return Stats{
		State:     p.State(),
		Consumers: p.count,
		InFlight:  int(p.inFlight.Load()),
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}

func (p *Pool) runLoop(ctx context.Context, name string) {
	defer p.wg.Done()

	logger := p.logger.With(logging.String(logging.FieldWorker, name))
	logger.Debug("consumer loop started")

	for {
		item, err := p.queue.Dequeue(ctx)
		if err != nil {
			logger.Debug("consumer loop stopped")
			return
		}
		p.process(ctx, name, logger, item)
	}
}

func (p *Pool) process(ctx context.Context, workerName string, logger *slog.Logger, item queue.Item) {
	ctx = services.WithWorker(ctx, workerName)
	ctx = services.WithItemID(ctx, item.ID())
	ctx = services.WithItemKind(ctx, item.Kind())
	itemLogger := logging.WithContext(ctx, logger)

	p.inFlight.Add(1)
	defer p.inFlight.Add(-1)

	itemLogger.Info("item started", logging.String(logging.FieldEventType, "item_start"))
	started := time.Now()
	err := p.execute(ctx, itemLogger, item)
	duration := time.Since(started)

	outcome := journal.Outcome{
		ItemID:     item.ID(),
		Kind:       item.Kind(),
		Worker:     workerName,
		Status:     journal.StatusCompleted,
		Duration:   duration,
		FinishedAt: time.Now().UTC(),
	}
	switch {
	case err == nil:
		p.processed.Add(1)
		itemLogger.Info("item completed",
			logging.String(logging.FieldEventType, "item_complete"),
			logging.Duration("item_duration", duration),
		)
	case errors.Is(err, services.ErrPanic):
		p.failed.Add(1)
		outcome.Status = journal.StatusPanicked
		outcome.ErrorMessage = err.Error()
		logging.ErrorWithContext(itemLogger, "item panicked; consumer loop continues", "item_panic",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the item payload and recent handler changes"),
		)
	default:
		p.failed.Add(1)
		outcome.Status = journal.StatusFailed
		outcome.ErrorMessage = err.Error()
		logging.ErrorWithContext(itemLogger, "item failed", "item_failed",
			logging.Error(err),
			logging.String("failure_kind", string(services.Classify(err))),
		)
	}

	p.recordOutcome(itemLogger, outcome)

	if err != nil {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if nerr := p.notifier.NotifyItemFailed(notifyCtx, item.ID(), item.Kind(), err.Error()); nerr != nil {
			itemLogger.Debug("failure notification not delivered", logging.Error(nerr))
		}
	}
}

// execute runs the item behind a panic boundary so a misbehaving payload
// cannot take the consumer loop down.
func (p *Pool) execute(ctx context.Context, logger *slog.Logger, item queue.Item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic during item execution",
				logging.Any("panic_value", r),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldEventType, "item_panic"),
			)
			err = services.Wrap(services.ErrPanic, "worker", "execute", fmt.Sprint(r), nil)
		}
	}()
	return item.Execute(ctx)
}

// recordOutcome writes the terminal record on a fresh context so a shutdown
// cancellation cannot drop it.
func (p *Pool) recordOutcome(logger *slog.Logger, outcome journal.Outcome) {
	if p.journal == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.journal.RecordOutcome(recordCtx, outcome); err != nil {
		logging.WarnWithContext(logger, "outcome journal write failed; history incomplete", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check data_dir permissions and disk space"),
			logging.String(logging.FieldImpact, "item outcome missing from history"),
		)
	}
}
