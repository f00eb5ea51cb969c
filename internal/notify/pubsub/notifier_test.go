package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/JakeFAU/menu-monitor/internal/notify"
)

func TestNewMessageEncodesAlert(t *testing.T) {
	t.Parallel()

	alert := notify.Alert{
		Monitor:   "ArizmendiMonitor",
		Message:   "WEDNESDAY - leek",
		RunID:     "run-1",
		Timestamp: time.Date(2026, time.October, 15, 8, 0, 0, 0, time.UTC),
	}

	msg, err := newMessage(context.Background(), alert)
	require.NoError(t, err)
	require.Equal(t, "ArizmendiMonitor", msg.Attributes["monitor"])

	var decoded notify.Alert
	require.NoError(t, json.Unmarshal(msg.Data, &decoded))
	require.Equal(t, alert, decoded)
}

func TestCarrierRoundTripsTraceContext(t *testing.T) {
	t.Parallel()

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	c := &carrier{attrs: map[string]string{}}
	propagation.TraceContext{}.Inject(ctx, c)
	require.Contains(t, c.Keys(), "traceparent")

	extracted := trace.SpanContextFromContext(propagation.TraceContext{}.Extract(context.Background(), c))
	require.Equal(t, traceID, extracted.TraceID())
}

func TestNewRequiresTopic(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{ProjectID: "proj"})
	require.Error(t, err)
}

func TestNotifyWithoutPublisher(t *testing.T) {
	t.Parallel()

	err := (&Notifier{}).Notify(context.Background(), notify.Alert{Monitor: "m"})
	require.Error(t, err)
	require.NoError(t, (&Notifier{}).Close())
}
