// Package scheduler fans monitor tasks out over a bounded worker pool.
package scheduler

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/menu-monitor/internal/metrics"
	"github.com/JakeFAU/menu-monitor/internal/monitor"
)

// DefaultMaxWorkers bounds simultaneous in-flight monitors.
const DefaultMaxWorkers = 10

// Config controls Pool sizing.
type Config struct {
	MaxWorkers int
	QueueDepth int
}

// IDGenerator produces run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Pool runs every task once per Run call. A failing or panicking task never
// affects its siblings.
type Pool struct {
	cfg    Config
	deps   monitor.Deps
	ids    IDGenerator
	logger *zap.Logger
}

// New constructs a Pool. ids may be nil, in which case runs carry no ID.
func New(cfg Config, deps monitor.Deps, ids IDGenerator) *Pool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = cfg.MaxWorkers
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
		deps.Logger = logger
	}
	return &Pool{
		cfg:    cfg,
		deps:   deps,
		ids:    ids,
		logger: logger,
	}
}

// Run executes tasks concurrently and blocks until each has finished. Tasks
// that never start because ctx ended are recorded as failed.
func (p *Pool) Run(ctx context.Context, tasks []monitor.Task) Report {
	runID := p.newRunID()
	ctx = monitor.WithRunID(ctx, runID)
	logger := p.logger.With(zap.String("run_id", runID))

	report := Report{
		RunID:   runID,
		Started: time.Now(),
		Results: make([]TaskResult, len(tasks)),
	}
	started := make([]bool, len(tasks))

	queue := newJobQueue(p.cfg.QueueDepth)
	go func() {
		defer queue.close()
		for i, task := range tasks {
			if err := queue.enqueue(ctx, job{index: i, task: task}); err != nil {
				logger.Warn("stopped enqueuing monitors", zap.Error(err))
				return
			}
		}
	}()

	workers := min(p.cfg.MaxWorkers, len(tasks))
	deps := p.deps
	deps.Logger = logger
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				j, err := queue.dequeue(ctx)
				if err != nil || ctx.Err() != nil {
					return
				}
				started[j.index] = true
				report.Results[j.index] = runTask(ctx, j.task, deps)
			}
		}()
	}
	wg.Wait()

	for i, task := range tasks {
		if started[i] {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = errors.New("monitor not started")
		}
		report.Results[i] = TaskResult{
			Monitor: task.Name(),
			Outcome: monitor.OutcomeFailed,
			Error:   err.Error(),
			Err:     err,
		}
	}
	report.Finished = time.Now()

	logger.Info("run complete",
		zap.Int("monitors", len(tasks)),
		zap.Int("alerts", report.Alerts()),
		zap.Int("silent", report.Count(monitor.OutcomeSilent)),
		zap.Int("reported_errors", report.Count(monitor.OutcomeReported)),
		zap.Int("failed", report.Count(monitor.OutcomeFailed)),
		zap.Duration("duration", report.Finished.Sub(report.Started)),
	)
	return report
}

func (p *Pool) newRunID() string {
	if p.ids == nil {
		return ""
	}
	id, err := p.ids.NewID()
	if err != nil {
		p.logger.Warn("run id generation failed", zap.Error(err))
		return ""
	}
	return id
}

// runTask executes one monitor, converting panics into a failed result.
func runTask(ctx context.Context, task monitor.Task, deps monitor.Deps) (res TaskResult) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	start := time.Now()
	res.Monitor = task.Name()
	logger := deps.Logger.With(zap.String("monitor", res.Monitor))

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = monitor.OutcomeFailed
			res.Alerts = 0
			res.Err = &PanicError{Monitor: res.Monitor, Value: r, Stack: debug.Stack()}
		}
		res.Duration = time.Since(start)
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
		record(logger, res)
	}()

	result, err := task.Run(ctx, deps)
	res.Outcome = result.Outcome
	res.Alerts = result.Alerts
	res.Err = err
	if err != nil && res.Outcome == "" {
		res.Outcome = monitor.OutcomeFailed
	}
	return res
}

func record(logger *zap.Logger, res TaskResult) {
	metrics.ObserveRun(res.Monitor, string(res.Outcome), res.Alerts)
	switch {
	case res.Outcome == monitor.OutcomeFailed:
		var panicErr *PanicError
		if errors.As(res.Err, &panicErr) {
			logger.Error("monitor panicked",
				zap.Any("value", panicErr.Value),
				zap.ByteString("stack", panicErr.Stack),
			)
			return
		}
		logger.Error("monitor failed", zap.Error(res.Err))
	case monitor.IsReported(res.Err):
		logger.Info("monitor reported error", zap.Error(res.Err))
	case res.Err != nil:
		logger.Warn("monitor finished with error", zap.Error(res.Err))
	default:
		logger.Debug("monitor finished",
			zap.String("outcome", string(res.Outcome)),
			zap.Int("alerts", res.Alerts),
			zap.Duration("duration", res.Duration),
		)
	}
}
