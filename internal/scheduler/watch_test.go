package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/menu-monitor/internal/monitor"
)

func TestNewWatcherValidates(t *testing.T) {
	t.Parallel()

	_, err := NewWatcher(nil, nil, time.Second)
	require.Error(t, err)

	_, err = NewWatcher(New(Config{}, monitor.Deps{}, nil), nil, 0)
	require.Error(t, err)
}

func TestWatcherTriggerRecordsLastReport(t *testing.T) {
	t.Parallel()

	var afterRuns atomic.Int32
	tasks := []monitor.Task{silentTask("A")}
	w, err := NewWatcher(New(Config{}, monitor.Deps{}, staticIDs("run")), tasks, time.Hour,
		WithAfterRun(func(context.Context, Report) { afterRuns.Add(1) }))
	require.NoError(t, err)

	_, ok := w.Last()
	require.False(t, ok)

	report, err := w.Trigger(context.Background())
	require.NoError(t, err)
	require.Equal(t, "run", report.RunID)

	last, ok := w.Last()
	require.True(t, ok)
	require.Equal(t, report.RunID, last.RunID)
	require.Equal(t, int32(1), afterRuns.Load())
	require.False(t, w.Running())
}

func TestWatcherRejectsOverlappingRuns(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	entered := make(chan struct{})
	task := funcTask{name: "Slow", run: func(context.Context) (monitor.Result, error) {
		close(entered)
		<-release
		return monitor.Result{Outcome: monitor.OutcomeSilent}, nil
	}}
	w, err := NewWatcher(New(Config{}, monitor.Deps{}, nil), []monitor.Task{task}, time.Hour)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = w.Trigger(context.Background())
	}()
	<-entered
	require.True(t, w.Running())

	_, err = w.Trigger(context.Background())
	require.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	<-done
	require.False(t, w.Running())
}

func TestWatcherStartRunsUntilCanceled(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	task := funcTask{name: "Tick", run: func(context.Context) (monitor.Result, error) {
		runs.Add(1)
		return monitor.Result{Outcome: monitor.OutcomeSilent}, nil
	}}
	w, err := NewWatcher(New(Config{}, monitor.Deps{}, nil), []monitor.Task{task}, 10*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func silentTask(name string) monitor.Task {
	return funcTask{name: name, run: func(context.Context) (monitor.Result, error) {
		return monitor.Result{Outcome: monitor.OutcomeSilent}, nil
	}}
}
