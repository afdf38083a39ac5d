package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/domain"
)

// DeltaSource abstracts the delta service so the watcher works against
// the in-process use case or a remote client alike.
type DeltaSource interface {
	GetChanges(ctx context.Context, since *domain.Cursor, actor string) (*domain.DeltaBatch, error)
}

// WatcherConfig controls the polling loop.
type WatcherConfig struct {
	Interval time.Duration
	Timeout  time.Duration
	Actor    string
}

// Watcher is a cancelable polling subscription over a DeltaSource. It
// owns exactly one cursor: the cursor advances only from server
// responses, never from locally computed time, and a failed poll leaves
// it untouched so the next tick retries the same range. Transient
// failures are logged and absorbed; the loop never terminates on them.
type Watcher struct {
	source  DeltaSource
	handler func(domain.DeltaBatch)
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     WatcherConfig

	mu     sync.Mutex
	cursor domain.Cursor
	primed bool
}

// NewWatcher builds a watcher that invokes handler for every non-empty
// batch. The first tick establishes a baseline cursor without replaying
// history.
func NewWatcher(source DeltaSource, handler func(domain.DeltaBatch), logger *zap.Logger, cfg WatcherConfig) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Watcher{
		source:  source,
		handler: handler,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = w.cron.AddFunc(schedule, w.Poll)

	return w
}

// Start launches the polling schedule.
func (w *Watcher) Start() {
	if w == nil || w.cron == nil {
		return
	}
	w.cron.Start()
	w.logger.Info("delta watcher started", zap.Duration("interval", w.cfg.Interval))
}

// Stop cancels future ticks and waits for an in-flight one to finish.
// A late result from an abandoned poll cannot corrupt the cursor: the
// advance is monotonic, so stale cursors are no-ops.
func (w *Watcher) Stop(ctx context.Context) {
	if w == nil || w.cron == nil {
		return
	}
	stopCtx := w.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	w.logger.Info("delta watcher stopped")
}

// Poll runs one bounded, timeout-protected tick.
func (w *Watcher) Poll() {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.Timeout)
	defer cancel()

	since := w.since()
	batch, err := w.source.GetChanges(ctx, since, w.cfg.Actor)
	if err != nil {
		// Transient: cursor stays where it was, next tick retries.
		w.logger.Warn("delta poll failed", zap.Error(err))
		return
	}

	w.advance(batch.Cursor)
	if w.handler != nil && !batch.Changes.Empty() {
		w.handler(*batch)
	}
}

// Cursor returns the cursor currently held by the subscription.
func (w *Watcher) Cursor() domain.Cursor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cursor
}

func (w *Watcher) since() *domain.Cursor {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.primed {
		return nil
	}
	cursor := w.cursor
	return &cursor
}

// advance moves the cursor forward only. Advancing to an older-or-equal
// position is a no-op, which makes late results from abandoned polls
// harmless.
func (w *Watcher) advance(next domain.Cursor) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.primed || next > w.cursor {
		w.cursor = next
		w.primed = true
	}
}
