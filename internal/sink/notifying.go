package sink

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/menu-monitor/internal/monitor"
	"github.com/JakeFAU/menu-monitor/internal/notify"
)

// Notifying writes every line through base and additionally delivers alerts
// to each notifier. Notifier failures are logged and never fail the alert.
type Notifying struct {
	base      monitor.Reporter
	notifiers []notify.Notifier
	clock     monitor.Clock
	logger    *zap.Logger
}

// NewNotifying wraps base. With no notifiers it behaves exactly like base.
func NewNotifying(base monitor.Reporter, notifiers []notify.Notifier, clock monitor.Clock, logger *zap.Logger) *Notifying {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifying{
		base:      base,
		notifiers: notifiers,
		clock:     clock,
		logger:    logger,
	}
}

// Alert implements monitor.Reporter.
func (n *Notifying) Alert(ctx context.Context, monitorName, message string) error {
	if err := n.base.Alert(ctx, monitorName, message); err != nil {
		return err
	}
	alert := notify.Alert{
		Monitor:   monitorName,
		Message:   message,
		RunID:     monitor.RunIDFromContext(ctx),
		Timestamp: n.now(),
	}
	for _, notifier := range n.notifiers {
		if err := notifier.Notify(ctx, alert); err != nil {
			n.logger.Warn("alert notification failed",
				zap.String("notifier", notifier.Kind()),
				zap.String("monitor", monitorName),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (n *Notifying) now() time.Time {
	if n.clock == nil {
		return time.Now()
	}
	return n.clock.Now()
}

// Error implements monitor.Reporter.
func (n *Notifying) Error(ctx context.Context, monitorName, message string) error {
	return n.base.Error(ctx, monitorName, message)
}
