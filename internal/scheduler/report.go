package scheduler

import (
	"fmt"
	"time"

	"github.com/JakeFAU/menu-monitor/internal/monitor"
)

// TaskResult records how one monitor fared in a run.
type TaskResult struct {
	Monitor  string          `json:"monitor"`
	Outcome  monitor.Outcome `json:"outcome"`
	Alerts   int             `json:"alerts"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration_ns"`
	Err      error           `json:"-"`
}

// Report summarizes one pass over every configured monitor.
type Report struct {
	RunID    string       `json:"run_id"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished"`
	Results  []TaskResult `json:"results"`
}

// Count returns how many results ended with outcome.
func (r Report) Count(outcome monitor.Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

// Alerts returns the total number of alert lines written.
func (r Report) Alerts() int {
	n := 0
	for _, res := range r.Results {
		n += res.Alerts
	}
	return n
}

// Failed reports whether any monitor hit an unexpected failure.
func (r Report) Failed() bool {
	return r.Count(monitor.OutcomeFailed) > 0
}

// PanicError wraps a value recovered from a monitor that panicked.
type PanicError struct {
	Monitor string
	Value   any
	Stack   []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("monitor %s panicked: %v", e.Monitor, e.Value)
}
