package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"conveyor/internal/config"
	"conveyor/internal/journal"
	"conveyor/internal/logging"
	"conveyor/internal/notifications"
	"conveyor/internal/schedule"
)

// Runner owns the probe cadence and the latest per-target state. Target state
// is written only by the sweep; readers get copies through Snapshot.
type Runner struct {
	targets  []Target
	interval time.Duration
	client   *http.Client
	journal  *journal.Journal
	notifier notifications.Service
	logger   *slog.Logger
	trigger  *schedule.Trigger

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	statuses   []TargetStatus
	known      bool
	allHealthy bool

	wg     sync.WaitGroup
	sweeps atomic.Uint64
}

// NewRunner builds a probe runner from the configured targets. Per-target
// timeouts fall back to the section-wide default.
func NewRunner(cfg *config.Config, j *journal.Journal, notifier notifications.Service, logger *slog.Logger) *Runner {
	targets := make([]Target, 0, len(cfg.Health.Targets))
	statuses := make([]TargetStatus, 0, len(cfg.Health.Targets))
	for _, t := range cfg.Health.Targets {
		target := Target{
			Name:    t.Name,
			URL:     t.URL,
			Timeout: t.Timeout(cfg.Health.DefaultTimeout()),
		}
		targets = append(targets, target)
		statuses = append(statuses, TargetStatus{
			Name:   target.Name,
			URL:    target.URL,
			Status: StatusUnknown,
		})
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	r := &Runner{
		targets:  targets,
		interval: cfg.Health.Interval(),
		// Deadlines come from the per-probe context, never from the client,
		// so targets with different timeouts can share the connection pool.
		client:   &http.Client{},
		journal:  j,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "health"),
		statuses: statuses,
	}
	r.trigger = schedule.NewTrigger("health", r.interval, r.RunSweep, logger)
	return r
}

// Start begins the probe cadence and kicks off one immediate sweep in the
// background so state is populated without waiting a full interval.
func (r *Runner) Start(ctx context.Context) error {
	if len(r.targets) == 0 {
		r.logger.Info("no health targets configured; probes disabled")
		return nil
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("health runner already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.RunSweep(runCtx)
	}()

	if err := r.trigger.Start(runCtx); err != nil {
		cancel()
		r.wg.Wait()
		r.mu.Lock()
		r.running = false
		r.cancel = nil
		r.mu.Unlock()
		return fmt.Errorf("start health cadence: %w", err)
	}

	r.logger.Info("probe cadence started",
		logging.Int("targets", len(r.targets)),
		logging.Duration("interval", r.interval),
	)
	return nil
}

// Stop halts the cadence and waits for any in-flight sweep to wind down.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	r.trigger.Stop()
	r.wg.Wait()
	r.logger.Info("probe cadence stopped", logging.Uint64("sweeps", r.sweeps.Load()))
}

// Snapshot returns a copy of the latest per-target state in configured order.
func (r *Runner) Snapshot() []TargetStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]TargetStatus(nil), r.statuses...)
}

// Sweeps reports how many sweeps have completed.
func (r *Runner) Sweeps() uint64 {
	return r.sweeps.Load()
}

// RunSweep probes every target concurrently and waits for all of them. Each
// probe has its own deadline; a fast failure never cancels a slow sibling, so
// the sweep lasts as long as the slowest target, not the sum.
func (r *Runner) RunSweep(ctx context.Context) {
	if len(r.targets) == 0 || ctx.Err() != nil {
		return
	}

	started := time.Now()
	results := make([]TargetStatus, len(r.targets))
	var g errgroup.Group
	for i, target := range r.targets {
		g.Go(func() error {
			results[i] = r.probe(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		// Shutdown raced the sweep; the aborted results would read as
		// outages, so drop them.
		r.logger.Debug("health sweep abandoned during shutdown")
		return
	}

	healthy := 0
	var unhealthy []string
	for _, result := range results {
		if result.Status == StatusHealthy {
			healthy++
		} else {
			unhealthy = append(unhealthy, result.Name)
		}
	}

	r.mu.Lock()
	r.statuses = results
	wasKnown := r.known
	wasAllHealthy := r.allHealthy
	r.known = true
	r.allHealthy = healthy == len(results)
	nowAllHealthy := r.allHealthy
	r.mu.Unlock()
	r.sweeps.Add(1)

	summary := fmt.Sprintf("%d of %d healthy", healthy, len(results))
	if nowAllHealthy {
		r.logger.Info("health sweep complete",
			logging.String("summary", summary),
			logging.Duration("elapsed", time.Since(started)),
		)
	} else {
		logging.WarnWithContext(r.logger, "health sweep complete", "health_degraded",
			logging.String("summary", summary),
			logging.String("unhealthy", strings.Join(unhealthy, ", ")),
			logging.Duration("elapsed", time.Since(started)),
			logging.String(logging.FieldErrorHint, "check the listed targets and their probe errors"),
			logging.String(logging.FieldImpact, "dependent work may be failing"),
		)
	}

	r.record(results)

	transitioned := (wasKnown && wasAllHealthy != nowAllHealthy) || (!wasKnown && !nowAllHealthy)
	if transitioned {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := r.notifier.NotifyHealthChanged(notifyCtx, healthy, len(results), unhealthy); err != nil {
			r.logger.Debug("health notification failed", logging.Error(err))
		}
	}
}

func (r *Runner) probe(ctx context.Context, target Target) TargetStatus {
	status := TargetStatus{
		Name:        target.Name,
		URL:         target.URL,
		Status:      StatusUnhealthy,
		LastChecked: time.Now().UTC(),
	}

	probeCtx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, target.URL, nil)
	if err != nil {
		status.Error = fmt.Sprintf("build request: %v", err)
		return status
	}

	requestStart := time.Now()
	resp, err := r.client.Do(req)
	status.Latency = time.Since(requestStart)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			status.Error = fmt.Sprintf("timed out after %s", target.Timeout)
		} else {
			status.Error = err.Error()
		}
		return status
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	status.StatusCode = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		status.Status = StatusHealthy
	} else {
		status.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return status
}

func (r *Runner) record(results []TargetStatus) {
	if r.journal == nil {
		return
	}
	records := make([]journal.ProbeRecord, 0, len(results))
	for _, result := range results {
		records = append(records, journal.ProbeRecord{
			Target:     result.Name,
			URL:        result.URL,
			Healthy:    result.Status == StatusHealthy,
			StatusCode: result.StatusCode,
			Detail:     result.Error,
			Elapsed:    result.Latency,
			CheckedAt:  result.LastChecked,
		})
	}

	// Probe history is written on a fresh context so a shutdown arriving
	// right after a sweep cannot drop the records.
	writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.journal.RecordProbes(writeCtx, records); err != nil {
		logging.WarnWithContext(r.logger, "probe results not journaled", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check data_dir free space and permissions"),
			logging.String(logging.FieldImpact, "health history is incomplete"),
		)
	}
}
