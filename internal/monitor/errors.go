package monitor

import (
	"errors"
	"fmt"
)

// Expected per-monitor failures. Each one is written to the error sink by
// Process before it is returned.
var (
	ErrNoURL           = errors.New("no url provided")
	ErrEmptyExtraction = errors.New("nothing returned from parsing")
)

// FetchUnsuccessfulError is returned when the page answered with a non-2xx status.
type FetchUnsuccessfulError struct {
	Status int
	URL    string
}

func (e *FetchUnsuccessfulError) Error() string {
	return fmt.Sprintf("fetch %s: unsuccessful status %d", e.URL, e.Status)
}

// IsReported reports whether err already produced an error-sink line.
func IsReported(err error) bool {
	if errors.Is(err, ErrNoURL) || errors.Is(err, ErrEmptyExtraction) {
		return true
	}
	var fetchErr *FetchUnsuccessfulError
	return errors.As(err, &fetchErr)
}

// sinkMessage renders the error-sink text for a reported error.
func sinkMessage(err error) string {
	var fetchErr *FetchUnsuccessfulError
	switch {
	case errors.Is(err, ErrNoURL):
		return "No URL provided."
	case errors.As(err, &fetchErr):
		return fmt.Sprintf("Response from url:%s was not successful.", fetchErr.URL)
	case errors.Is(err, ErrEmptyExtraction):
		return "Nothing returned from parsing."
	default:
		return err.Error()
	}
}
