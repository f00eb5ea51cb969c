package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Fetcher retrieves a page. Implementations must be safe for concurrent use;
// a returned error means the transport failed, not that the status was bad.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Reporter receives user-facing alert and error lines, tagged with the
// monitor name. The two streams are distinct.
type Reporter interface {
	Alert(ctx context.Context, monitor string, message string) error
	Error(ctx context.Context, monitor string, message string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Snapshotter keeps a copy of a fetched page for later inspection.
type Snapshotter interface {
	Save(ctx context.Context, monitor string, fetchedAt time.Time, body []byte) (string, error)
}

// Deps bundles the collaborators shared by every Process call.
type Deps struct {
	Fetcher  Fetcher
	Reporter Reporter
	Clock    Clock
	// Snapshots is optional.
	Snapshots Snapshotter
	Logger    *zap.Logger
}
