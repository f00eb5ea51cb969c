// Package sink writes the user-facing alert and error streams.
package sink

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Lines writes one line per alert or error to two separate writers:
//
//	<Monitor> - [ALERT]: <message>
//	<Monitor> - [ERROR]: <message>
//
// It is safe for concurrent use; lines from different monitors never interleave.
type Lines struct {
	mu     sync.Mutex
	alerts io.Writer
	errs   io.Writer
}

// NewLines returns a Lines writing alerts to alerts and errors to errs.
func NewLines(alerts, errs io.Writer) *Lines {
	return &Lines{alerts: alerts, errs: errs}
}

// Alert implements monitor.Reporter.
func (l *Lines) Alert(_ context.Context, monitor, message string) error {
	return l.write(l.alerts, monitor, "ALERT", message)
}

// Error implements monitor.Reporter.
func (l *Lines) Error(_ context.Context, monitor, message string) error {
	return l.write(l.errs, monitor, "ERROR", message)
}

func (l *Lines) write(w io.Writer, monitor, level, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := fmt.Fprintf(w, "%s - [%s]: %s\n", monitor, level, message); err != nil {
		return fmt.Errorf("write %s line: %w", level, err)
	}
	return nil
}
