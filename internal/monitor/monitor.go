package monitor

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Monitor is a single watched web resource. P is the variant's parsed result
// and is never inspected by the pipeline beyond presence.
type Monitor[P any] interface {
	// Name identifies the variant in alert and error lines.
	Name() string
	// URL returns the absolute page URL, or false when the monitor is misconfigured.
	URL() (string, bool)
	// Parse extracts facts from the page. It returns false when the expected
	// structure is missing.
	Parse(doc *goquery.Document) (P, bool)
	// AlertIf decides whether parsed warrants an alert as of now.
	AlertIf(parsed P, now time.Time) bool
	// AlertMessage formats zero or more alert lines. Only called when AlertIf is true.
	AlertMessage(parsed P) []string
}

// Task is a monitor with its parsed type erased so heterogeneous monitors can
// share one scheduler.
type Task interface {
	Name() string
	URL() (string, bool)
	Run(ctx context.Context, deps Deps) (Result, error)
}

// Bind adapts m into a Task.
func Bind[P any](m Monitor[P]) Task {
	return boundTask[P]{monitor: m}
}

type boundTask[P any] struct {
	monitor Monitor[P]
}

func (b boundTask[P]) Name() string {
	return b.monitor.Name()
}

func (b boundTask[P]) URL() (string, bool) {
	return b.monitor.URL()
}

func (b boundTask[P]) Run(ctx context.Context, deps Deps) (Result, error) {
	return Process(ctx, b.monitor, deps)
}
