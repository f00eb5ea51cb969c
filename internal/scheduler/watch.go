package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/menu-monitor/internal/monitor"
)

// ErrRunInProgress is returned when a pass is requested while one is running.
var ErrRunInProgress = errors.New("run already in progress")

// AfterRunFunc is invoked with each finished report.
type AfterRunFunc func(ctx context.Context, report Report)

// Watcher repeats a Pool run on a fixed interval and keeps the latest report.
type Watcher struct {
	pool     *Pool
	tasks    []monitor.Task
	interval time.Duration
	afterRun []AfterRunFunc
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	last    *Report
}

// WatcherOption customizes a Watcher.
type WatcherOption func(*Watcher)

// WithAfterRun registers fn to run after every pass.
func WithAfterRun(fn AfterRunFunc) WatcherOption {
	return func(w *Watcher) {
		w.afterRun = append(w.afterRun, fn)
	}
}

// NewWatcher builds a Watcher over tasks.
func NewWatcher(pool *Pool, tasks []monitor.Task, interval time.Duration, opts ...WatcherOption) (*Watcher, error) {
	if pool == nil {
		return nil, errors.New("watcher requires a pool")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("watch interval must be positive, got %s", interval)
	}
	w := &Watcher{
		pool:     pool,
		tasks:    tasks,
		interval: interval,
		logger:   pool.logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start runs a pass immediately and then once per interval until ctx ends.
func (w *Watcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	if _, err := w.Trigger(ctx); err != nil {
		w.logger.Info("skipping scheduled run", zap.Error(err))
	}
}

// Trigger runs one pass now and returns its report. It fails fast with
// ErrRunInProgress instead of queuing behind a running pass.
func (w *Watcher) Trigger(ctx context.Context) (Report, error) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return Report{}, ErrRunInProgress
	}
	w.running = true
	w.mu.Unlock()

	report := w.pool.Run(ctx, w.tasks)

	w.mu.Lock()
	w.running = false
	w.last = &report
	w.mu.Unlock()

	for _, fn := range w.afterRun {
		fn(ctx, report)
	}
	return report, nil
}

// Last returns the most recent finished report.
func (w *Watcher) Last() (Report, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return Report{}, false
	}
	return *w.last, true
}

// Running reports whether a pass is in progress.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
