package monitor

import (
	"net/http"
	"time"
)

// Outcome classifies how one Process call ended.
type Outcome string

// Process outcomes.
const (
	// OutcomeAlerted means the predicate held; Alerts may still be zero.
	OutcomeAlerted Outcome = "alerted"
	// OutcomeSilent means the page was read and nothing was interesting.
	OutcomeSilent Outcome = "silent"
	// OutcomeReported means an expected failure was written to the error sink.
	OutcomeReported Outcome = "reported_error"
	// OutcomeFailed means an unexpected failure (transport error, panic).
	OutcomeFailed Outcome = "failed"
)

// Result summarizes one Process call.
type Result struct {
	Monitor string
	Outcome Outcome
	Alerts  int
}

// FetchRequest captures everything needed to fetch a monitor's page.
type FetchRequest struct {
	Monitor string
	URL     string
	Headers http.Header
}

// FetchResponse is the result returned by a Fetcher implementation.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// Successful reports whether the status code is in the 2xx range.
func (r FetchResponse) Successful() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}
