// Package config loads and validates menu-monitor configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Snapshot backends.
const (
	SnapshotNone   = "none"
	SnapshotMemory = "memory"
	SnapshotLocal  = "local"
	SnapshotGCS    = "gcs"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Clock     ClockConfig     `mapstructure:"clock"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Monitors  MonitorsConfig  `mapstructure:"monitors"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Server    ServerConfig    `mapstructure:"server"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// SchedulerConfig sizes the worker pool.
type SchedulerConfig struct {
	MaxWorkers int `mapstructure:"max_workers"`
	QueueDepth int `mapstructure:"queue_depth"`
}

// HTTPConfig configures the page fetcher.
type HTTPConfig struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	UserAgent      string  `mapstructure:"user_agent"`
	RespectRobots  bool    `mapstructure:"respect_robots"`
	RatePerHost    float64 `mapstructure:"rate_per_host"`
	Burst          int     `mapstructure:"burst"`
}

// ClockConfig sets the zone used for "today" when gating alerts.
type ClockConfig struct {
	Timezone string `mapstructure:"timezone"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// MonitorsConfig holds per-variant settings.
type MonitorsConfig struct {
	StandardFare StandardFareConfig `mapstructure:"standard_fare"`
	Arizmendi    ArizmendiConfig    `mapstructure:"arizmendi"`
}

// StandardFareConfig configures the sandwich monitor.
type StandardFareConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	URL      string   `mapstructure:"url"`
	Keywords []string `mapstructure:"keywords"`
}

// ArizmendiConfig configures the pizza monitor. Each inner list is an
// all-of group; a pizza matches when any group matches.
type ArizmendiConfig struct {
	Enabled  bool       `mapstructure:"enabled"`
	URL      string     `mapstructure:"url"`
	Keywords [][]string `mapstructure:"keywords"`
}

// WatchConfig controls periodic runs.
type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// ServerConfig controls the watch-mode HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SnapshotConfig selects where fetched pages are archived.
type SnapshotConfig struct {
	Backend   string `mapstructure:"backend"`
	Dir       string `mapstructure:"dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Prefix    string `mapstructure:"prefix"`
}

// NotifyConfig lists optional alert fan-out targets.
type NotifyConfig struct {
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Discord DiscordConfig `mapstructure:"discord"`
}

// PubSubConfig holds the alert topic.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// Enabled reports whether any Pub/Sub field is set.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != "" || c.Topic != ""
}

// DiscordConfig holds the bot credentials and target channel.
type DiscordConfig struct {
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
}

// Enabled reports whether any Discord field is set.
func (c DiscordConfig) Enabled() bool {
	return c.Token != "" || c.ChannelID != ""
}

// MetricsConfig configures Pushgateway delivery for one-shot runs.
type MetricsConfig struct {
	PushURL string `mapstructure:"push_url"`
	Job     string `mapstructure:"job"`
}

// TracingConfig toggles OTLP trace export.
type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MENUMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.max_workers", 10)
	v.SetDefault("scheduler.queue_depth", 64)
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.user_agent", "menu-monitor/1.0")
	v.SetDefault("http.respect_robots", false)
	v.SetDefault("http.rate_per_host", 0)
	v.SetDefault("http.burst", 1)
	v.SetDefault("clock.timezone", "America/Los_Angeles")
	v.SetDefault("logging.development", true)
	v.SetDefault("monitors.standard_fare.enabled", true)
	v.SetDefault("monitors.standard_fare.url", "")
	v.SetDefault("monitors.standard_fare.keywords", []string{"pork", "beet", "beets", "roast beef", "roastbeef", "sausage"})
	v.SetDefault("monitors.arizmendi.enabled", true)
	v.SetDefault("monitors.arizmendi.url", "")
	v.SetDefault("monitors.arizmendi.keywords", [][]string{{"roasted yellow potato", "leek", "parmesan", "garlic oil"}})
	v.SetDefault("watch.interval", "6h")
	v.SetDefault("server.port", 8080)
	v.SetDefault("snapshot.backend", SnapshotNone)
	v.SetDefault("snapshot.dir", "")
	v.SetDefault("snapshot.gcs_bucket", "")
	v.SetDefault("snapshot.prefix", "pages")
	v.SetDefault("notify.pubsub.project_id", "")
	v.SetDefault("notify.pubsub.topic", "")
	v.SetDefault("notify.discord.token", "")
	v.SetDefault("notify.discord.channel_id", "")
	v.SetDefault("metrics.push_url", "")
	v.SetDefault("metrics.job", "menu-monitor")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "menu-monitor")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	var errs []error
	if c.Scheduler.MaxWorkers <= 0 {
		errs = append(errs, errors.New("scheduler.max_workers must be > 0"))
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("http.timeout_seconds must be > 0"))
	}
	if c.HTTP.RatePerHost < 0 {
		errs = append(errs, errors.New("http.rate_per_host must be >= 0"))
	}
	if c.Watch.Interval <= 0 {
		errs = append(errs, errors.New("watch.interval must be > 0"))
	}
	if c.Server.Port <= 0 {
		errs = append(errs, errors.New("server.port must be > 0"))
	}
	if _, err := time.LoadLocation(c.Clock.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("clock.timezone %q: %w", c.Clock.Timezone, err))
	}

	switch c.Snapshot.Backend {
	case SnapshotNone, SnapshotMemory:
	case SnapshotLocal:
		if strings.TrimSpace(c.Snapshot.Dir) == "" {
			errs = append(errs, errors.New("snapshot.dir must be set for the local backend"))
		}
	case SnapshotGCS:
		if strings.TrimSpace(c.Snapshot.GCSBucket) == "" {
			errs = append(errs, errors.New("snapshot.gcs_bucket must be set for the gcs backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("snapshot.backend %q is not one of none, memory, local, gcs", c.Snapshot.Backend))
	}

	if p := c.Notify.PubSub; p.Enabled() && (p.ProjectID == "" || p.Topic == "") {
		errs = append(errs, errors.New("notify.pubsub needs both project_id and topic"))
	}
	if d := c.Notify.Discord; d.Enabled() && (d.Token == "" || d.ChannelID == "") {
		errs = append(errs, errors.New("notify.discord needs both token and channel_id"))
	}
	return errors.Join(errs...)
}

// FetchTimeout converts the HTTP timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
