// Package pubsub delivers alerts as Google Cloud Pub/Sub messages.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"go.opentelemetry.io/otel"

	"github.com/JakeFAU/menu-monitor/internal/notify"
)

// Config identifies the destination topic.
type Config struct {
	ProjectID string
	Topic     string
}

// publisher is the subset of *pubsub.Publisher used here.
type publisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
	Stop()
}

// Notifier publishes each alert as a JSON message.
type Notifier struct {
	client    *pubsub.Client
	publisher publisher
}

// New dials Pub/Sub and returns a Notifier for cfg.Topic.
func New(ctx context.Context, cfg Config) (*Notifier, error) {
	if cfg.ProjectID == "" || cfg.Topic == "" {
		return nil, fmt.Errorf("pubsub project_id and topic are required")
	}
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &Notifier{
		client:    client,
		publisher: client.Publisher(cfg.Topic),
	}, nil
}

// Kind implements notify.Notifier.
func (n *Notifier) Kind() string {
	return "pubsub"
}

// Notify marshals the alert to JSON and publishes it, waiting for the server ID.
func (n *Notifier) Notify(ctx context.Context, alert notify.Alert) error {
	if n.publisher == nil {
		return fmt.Errorf("pubsub publisher is not configured")
	}
	msg, err := newMessage(ctx, alert)
	if err != nil {
		return err
	}
	if _, err := n.publisher.Publish(ctx, msg).Get(ctx); err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the client.
func (n *Notifier) Close() error {
	if n.publisher != nil {
		n.publisher.Stop()
	}
	if n.client == nil {
		return nil
	}
	if err := n.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}

func newMessage(ctx context.Context, alert notify.Alert) (*pubsub.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("marshal alert: %w", err)
	}
	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"monitor": alert.Monitor,
		},
	}
	otel.GetTextMapPropagator().Inject(ctx, &carrier{attrs: msg.Attributes})
	return msg, nil
}

// carrier implements propagation.TextMapCarrier for Pub/Sub attributes.
type carrier struct {
	attrs map[string]string
}

func (c *carrier) Get(key string) string {
	return c.attrs[key]
}

func (c *carrier) Set(key, value string) {
	c.attrs[key] = value
}

func (c *carrier) Keys() []string {
	keys := make([]string, 0, len(c.attrs))
	for k := range c.attrs {
		keys = append(keys, k)
	}
	return keys
}
