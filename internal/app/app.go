// Package app builds the long-lived services from configuration and runs them,
// either as a single pass or as a watch loop behind the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/menu-monitor/internal/api"
	"github.com/JakeFAU/menu-monitor/internal/clock/system"
	"github.com/JakeFAU/menu-monitor/internal/config"
	collyfetcher "github.com/JakeFAU/menu-monitor/internal/fetcher/colly"
	"github.com/JakeFAU/menu-monitor/internal/id/uuid"
	"github.com/JakeFAU/menu-monitor/internal/logging"
	"github.com/JakeFAU/menu-monitor/internal/menus/arizmendi"
	"github.com/JakeFAU/menu-monitor/internal/menus/standardfare"
	"github.com/JakeFAU/menu-monitor/internal/metrics"
	"github.com/JakeFAU/menu-monitor/internal/monitor"
	"github.com/JakeFAU/menu-monitor/internal/notify"
	"github.com/JakeFAU/menu-monitor/internal/notify/discord"
	"github.com/JakeFAU/menu-monitor/internal/notify/pubsub"
	"github.com/JakeFAU/menu-monitor/internal/policy/ratelimit"
	"github.com/JakeFAU/menu-monitor/internal/scheduler"
	"github.com/JakeFAU/menu-monitor/internal/sink"
	"github.com/JakeFAU/menu-monitor/internal/snapshot"
	gcsstorage "github.com/JakeFAU/menu-monitor/internal/storage/gcs"
	localstorage "github.com/JakeFAU/menu-monitor/internal/storage/local"
	memorystorage "github.com/JakeFAU/menu-monitor/internal/storage/memory"
	"github.com/JakeFAU/menu-monitor/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

// Options overrides process-level wiring, mainly for tests.
type Options struct {
	// Alerts and Errors receive the alert and error lines. Default to stdout and stderr.
	Alerts io.Writer
	Errors io.Writer
	// Logger replaces the logger built from configuration.
	Logger *zap.Logger
	// Notifiers are added to the configured ones.
	Notifiers []notify.Notifier
}

// App contains the application's dependencies.
type App struct {
	cfg            config.Config
	logger         *zap.Logger
	tasks          []monitor.Task
	pool           *scheduler.Pool
	notifiers      []notify.Notifier
	closers        []io.Closer
	tracerShutdown telemetry.ShutdownFunc
}

// Build creates the application's dependencies. On error, anything already
// opened is released.
func Build(ctx context.Context, cfg config.Config, opts Options) (app *App, err error) {
	logger := opts.Logger
	if logger == nil {
		logger, err = logging.New(cfg.Logging.Development)
		if err != nil {
			return nil, fmt.Errorf("logger init failed: %w", err)
		}
	}
	app = &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			_ = app.Close(ctx)
			app = nil
		}
	}()

	app.tracerShutdown, err = telemetry.InitTracerProvider(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("tracer init failed: %w", err)
	}
	metrics.Init()

	clock, err := system.InZone(cfg.Clock.Timezone)
	if err != nil {
		return nil, err
	}

	snapshots, err := app.setupSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	if err := app.setupNotifiers(ctx); err != nil {
		return nil, err
	}
	app.notifiers = append(app.notifiers, opts.Notifiers...)

	alerts, errs := opts.Alerts, opts.Errors
	if alerts == nil {
		alerts = os.Stdout
	}
	if errs == nil {
		errs = os.Stderr
	}
	reporter := sink.NewNotifying(sink.NewLines(alerts, errs), app.notifiers, clock, logger.Named("sink"))

	deps := monitor.Deps{
		Fetcher:  app.newFetcher(),
		Reporter: reporter,
		Clock:    clock,
		Logger:   logger.Named("monitor"),
	}
	if snapshots != nil {
		deps.Snapshots = snapshots
	}

	app.tasks = Monitors(cfg.Monitors)
	app.pool = scheduler.New(scheduler.Config{
		MaxWorkers: cfg.Scheduler.MaxWorkers,
		QueueDepth: cfg.Scheduler.QueueDepth,
	}, deps, uuid.New())

	logger.Info("application built",
		zap.Int("monitors", len(app.tasks)),
		zap.Int("max_workers", cfg.Scheduler.MaxWorkers),
		zap.String("timezone", cfg.Clock.Timezone),
		zap.String("snapshot_backend", cfg.Snapshot.Backend),
		zap.Int("notifiers", len(app.notifiers)),
	)
	return app, nil
}

// Monitors instantiates every enabled monitor variant.
func Monitors(cfg config.MonitorsConfig) []monitor.Task {
	var tasks []monitor.Task
	if cfg.StandardFare.Enabled {
		var opts []standardfare.Option
		if cfg.StandardFare.URL != "" {
			opts = append(opts, standardfare.WithURL(cfg.StandardFare.URL))
		}
		tasks = append(tasks, monitor.Bind[standardfare.Menu](standardfare.New(cfg.StandardFare.Keywords, opts...)))
	}
	if cfg.Arizmendi.Enabled {
		var opts []arizmendi.Option
		if cfg.Arizmendi.URL != "" {
			opts = append(opts, arizmendi.WithURL(cfg.Arizmendi.URL))
		}
		tasks = append(tasks, monitor.Bind[arizmendi.Forecast](arizmendi.New(cfg.Arizmendi.Keywords, opts...)))
	}
	return tasks
}

func (a *App) newFetcher() *collyfetcher.Fetcher {
	var opts []collyfetcher.Option
	if a.cfg.HTTP.RatePerHost > 0 {
		opts = append(opts, collyfetcher.WithWaiter(ratelimit.New(ratelimit.Config{
			DefaultRPS:   a.cfg.HTTP.RatePerHost,
			DefaultBurst: a.cfg.HTTP.Burst,
		})))
	}
	a.logger.Debug("using colly fetcher",
		zap.String("user_agent", a.cfg.HTTP.UserAgent),
		zap.Bool("respect_robots", a.cfg.HTTP.RespectRobots),
		zap.Float64("rate_per_host", a.cfg.HTTP.RatePerHost),
	)
	return collyfetcher.New(collyfetcher.Config{
		UserAgent:     a.cfg.HTTP.UserAgent,
		RespectRobots: a.cfg.HTTP.RespectRobots,
		Timeout:       a.cfg.FetchTimeout(),
	}, opts...)
}

func (a *App) setupSnapshots(ctx context.Context) (*snapshot.Store, error) {
	var blobs snapshot.BlobStore
	switch a.cfg.Snapshot.Backend {
	case config.SnapshotGCS:
		store, err := gcsstorage.Open(ctx, gcsstorage.Config{Bucket: a.cfg.Snapshot.GCSBucket})
		if err != nil {
			return nil, fmt.Errorf("gcs snapshot store init failed: %w", err)
		}
		a.closers = append(a.closers, store)
		blobs = store
		a.logger.Info("using GCS snapshot backend", zap.String("bucket", a.cfg.Snapshot.GCSBucket))
	case config.SnapshotLocal:
		store, err := localstorage.New(localstorage.Config{BaseDir: a.cfg.Snapshot.Dir})
		if err != nil {
			return nil, fmt.Errorf("local snapshot store init failed: %w", err)
		}
		blobs = store
		a.logger.Info("using local snapshot backend", zap.String("dir", a.cfg.Snapshot.Dir))
	case config.SnapshotMemory:
		blobs = memorystorage.NewBlobStore()
		a.logger.Info("using in-memory snapshot backend")
	default:
		a.logger.Debug("page snapshots disabled")
		return nil, nil
	}
	store, err := snapshot.New(blobs, a.cfg.Snapshot.Prefix)
	if err != nil {
		return nil, fmt.Errorf("snapshot store init failed: %w", err)
	}
	return store, nil
}

func (a *App) setupNotifiers(ctx context.Context) error {
	if ps := a.cfg.Notify.PubSub; ps.Enabled() {
		n, err := pubsub.New(ctx, pubsub.Config{ProjectID: ps.ProjectID, Topic: ps.Topic})
		if err != nil {
			return fmt.Errorf("pubsub notifier init failed: %w", err)
		}
		a.notifiers = append(a.notifiers, n)
		a.logger.Info("Pub/Sub notifier initialized",
			zap.String("project", ps.ProjectID),
			zap.String("topic", ps.Topic),
		)
	}
	if d := a.cfg.Notify.Discord; d.Enabled() {
		n, err := discord.New(discord.Config{Token: d.Token, ChannelID: d.ChannelID})
		if err != nil {
			return fmt.Errorf("discord notifier init failed: %w", err)
		}
		a.notifiers = append(a.notifiers, n)
		a.logger.Info("Discord notifier initialized", zap.String("channel_id", d.ChannelID))
	}
	return nil
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Tasks returns the configured monitors in execution order.
func (a *App) Tasks() []monitor.Task {
	return a.tasks
}

// RunOnce runs every monitor a single time and pushes metrics if a
// Pushgateway is configured.
func (a *App) RunOnce(ctx context.Context) scheduler.Report {
	report := a.pool.Run(ctx, a.tasks)
	a.pushMetrics(ctx)
	return report
}

func (a *App) pushMetrics(ctx context.Context) {
	if a.cfg.Metrics.PushURL == "" {
		return
	}
	if err := metrics.Push(ctx, a.cfg.Metrics.PushURL, a.cfg.Metrics.Job); err != nil {
		a.logger.Warn("metrics push failed", zap.Error(err))
	}
}

// Watch runs passes every watch.interval and serves the HTTP API until ctx ends.
func (a *App) Watch(ctx context.Context) error {
	addr := ":" + strconv.Itoa(a.cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	watcher, err := scheduler.NewWatcher(a.pool, a.tasks, a.cfg.Watch.Interval)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("watcher init failed: %w", err)
	}
	srv := &http.Server{
		Handler:           api.NewServer(watcher, a.tasks, a.logger.Named("api")).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			cancel()
		}
		close(serveErr)
	}()

	a.logger.Info("watching", zap.Duration("interval", a.cfg.Watch.Interval))
	watcher.Start(ctx)

	a.logger.Info("shutdown initiated")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	if err := <-serveErr; err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Close releases notifiers, storage clients and the tracer provider.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, n := range a.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s notifier: %w", n.Kind(), err))
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
