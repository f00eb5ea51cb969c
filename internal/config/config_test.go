package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 10, cfg.Scheduler.MaxWorkers)
	require.Equal(t, 64, cfg.Scheduler.QueueDepth)
	require.Equal(t, 15*time.Second, cfg.FetchTimeout())
	require.Equal(t, "menu-monitor/1.0", cfg.HTTP.UserAgent)
	require.Equal(t, "America/Los_Angeles", cfg.Clock.Timezone)
	require.True(t, cfg.Monitors.StandardFare.Enabled)
	require.Equal(t, []string{"pork", "beet", "beets", "roast beef", "roastbeef", "sausage"}, cfg.Monitors.StandardFare.Keywords)
	require.True(t, cfg.Monitors.Arizmendi.Enabled)
	require.Equal(t, [][]string{{"roasted yellow potato", "leek", "parmesan", "garlic oil"}}, cfg.Monitors.Arizmendi.Keywords)
	require.Equal(t, 6*time.Hour, cfg.Watch.Interval)
	require.Equal(t, SnapshotNone, cfg.Snapshot.Backend)
	require.Equal(t, "pages", cfg.Snapshot.Prefix)
	require.Equal(t, "menu-monitor", cfg.Metrics.Job)
	require.False(t, cfg.Notify.PubSub.Enabled())
	require.False(t, cfg.Notify.Discord.Enabled())
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	configYAML := `
scheduler:
  max_workers: 4
http:
  timeout_seconds: 30
  rate_per_host: 0.5
  burst: 2
clock:
  timezone: UTC
monitors:
  standard_fare:
    keywords: [brisket]
  arizmendi:
    enabled: false
    url: https://example.com/pizza
    keywords:
      - [corn, basil]
      - [mushroom]
watch:
  interval: 30m
snapshot:
  backend: local
  dir: /tmp/snapshots
notify:
  pubsub:
    project_id: proj
    topic: menu-alerts
logging:
  development: false
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 4, cfg.Scheduler.MaxWorkers)
	require.Equal(t, 30*time.Second, cfg.FetchTimeout())
	require.InDelta(t, 0.5, cfg.HTTP.RatePerHost, 1e-9)
	require.Equal(t, 2, cfg.HTTP.Burst)
	require.Equal(t, "UTC", cfg.Clock.Timezone)
	require.Equal(t, []string{"brisket"}, cfg.Monitors.StandardFare.Keywords)
	require.False(t, cfg.Monitors.Arizmendi.Enabled)
	require.Equal(t, "https://example.com/pizza", cfg.Monitors.Arizmendi.URL)
	require.Equal(t, [][]string{{"corn", "basil"}, {"mushroom"}}, cfg.Monitors.Arizmendi.Keywords)
	require.Equal(t, 30*time.Minute, cfg.Watch.Interval)
	require.Equal(t, SnapshotLocal, cfg.Snapshot.Backend)
	require.True(t, cfg.Notify.PubSub.Enabled())
	require.False(t, cfg.Logging.Development)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MENUMON_SCHEDULER_MAX_WORKERS", "2")
	t.Setenv("MENUMON_CLOCK_TIMEZONE", "UTC")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Scheduler.MaxWorkers)
	require.Equal(t, "UTC", cfg.Clock.Timezone)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config")
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Scheduler: SchedulerConfig{MaxWorkers: 10},
		HTTP:      HTTPConfig{TimeoutSeconds: 10},
		Clock:     ClockConfig{Timezone: "UTC"},
		Watch:     WatchConfig{Interval: time.Hour},
		Server:    ServerConfig{Port: 8080},
		Snapshot:  SnapshotConfig{Backend: SnapshotNone},
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"workers", func(c *Config) { c.Scheduler.MaxWorkers = 0 }, "scheduler.max_workers"},
		{"timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, "http.timeout_seconds"},
		{"rate", func(c *Config) { c.HTTP.RatePerHost = -1 }, "http.rate_per_host"},
		{"interval", func(c *Config) { c.Watch.Interval = 0 }, "watch.interval"},
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"timezone", func(c *Config) { c.Clock.Timezone = "Nowhere/Special" }, "clock.timezone"},
		{"backend", func(c *Config) { c.Snapshot.Backend = "s3" }, "snapshot.backend"},
		{"local dir", func(c *Config) { c.Snapshot.Backend = SnapshotLocal }, "snapshot.dir"},
		{"gcs bucket", func(c *Config) { c.Snapshot.Backend = SnapshotGCS }, "snapshot.gcs_bucket"},
		{"pubsub half", func(c *Config) { c.Notify.PubSub.Topic = "alerts" }, "notify.pubsub"},
		{"discord half", func(c *Config) { c.Notify.Discord.Token = "t" }, "notify.discord"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
