// Package memory contains an in-memory notifier for tests and dry runs.
package memory

import (
	"context"
	"sync"

	"github.com/JakeFAU/menu-monitor/internal/notify"
)

// Notifier stores delivered alerts for inspection.
type Notifier struct {
	mu     sync.RWMutex
	alerts []notify.Alert
}

// New returns a memory Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Kind implements notify.Notifier.
func (n *Notifier) Kind() string {
	return "memory"
}

// Notify records the alert.
func (n *Notifier) Notify(_ context.Context, alert notify.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

// Alerts returns the recorded alerts in delivery order.
func (n *Notifier) Alerts() []notify.Alert {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]notify.Alert, len(n.alerts))
	copy(out, n.alerts)
	return out
}

// Close implements notify.Notifier.
func (n *Notifier) Close() error {
	return nil
}
