// Package notify defines the alert delivery channels that run alongside the
// alert stream.
package notify

import (
	"context"
	"time"
)

// Alert is one delivered alert line.
type Alert struct {
	Monitor   string    `json:"monitor"`
	Message   string    `json:"message"`
	RunID     string    `json:"run_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier delivers alerts to an external channel.
type Notifier interface {
	// Kind names the channel for logs, e.g. "pubsub".
	Kind() string
	Notify(ctx context.Context, alert Alert) error
	Close() error
}
