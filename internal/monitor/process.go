package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/menu-monitor/internal/htmlquery"
)

var tracer = otel.Tracer("github.com/JakeFAU/menu-monitor/internal/monitor")

var errNoFetcher = errors.New("no fetcher configured")

// Process runs one monitor through locate, fetch, extract, decide and format.
//
// Expected failures (no URL, non-2xx status, empty extraction) are written to
// the error sink exactly once and returned; IsReported identifies them.
// Transport errors from the Fetcher are returned without a sink line. No alert
// is ever emitted in the same call as an error.
func Process[P any](ctx context.Context, m Monitor[P], deps Deps) (Result, error) {
	name := m.Name()
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("monitor", name))

	ctx, span := tracer.Start(ctx, "monitor.Process", trace.WithAttributes(attribute.String("monitor", name)))
	defer span.End()

	result := Result{Monitor: name}

	url, ok := m.URL()
	if !ok || url == "" {
		return reportFailure(ctx, deps, span, result, ErrNoURL)
	}
	span.SetAttributes(attribute.String("url", url))

	resp, err := fetch(ctx, deps.Fetcher, name, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result.Outcome = OutcomeFailed
		return result, err
	}
	if !resp.Successful() {
		return reportFailure(ctx, deps, span, result, &FetchUnsuccessfulError{Status: resp.StatusCode, URL: url})
	}
	logger.Debug("page fetched",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("duration", resp.Duration),
	)

	now := currentTime(deps.Clock)
	saveSnapshot(ctx, deps.Snapshots, name, now, resp.Body, logger)

	parsed, err := extract(ctx, m, resp.Body)
	if err != nil {
		return reportFailure(ctx, deps, span, result, err)
	}

	if !m.AlertIf(parsed, now) {
		logger.Debug("nothing to alert")
		result.Outcome = OutcomeSilent
		return result, nil
	}

	result.Outcome = OutcomeAlerted
	for _, message := range m.AlertMessage(parsed) {
		if deps.Reporter == nil {
			logger.Warn("no reporter configured, alert dropped", zap.String("message", message))
			continue
		}
		if err := deps.Reporter.Alert(ctx, name, message); err != nil {
			logger.Warn("alert sink write failed", zap.Error(err))
			continue
		}
		result.Alerts++
	}
	span.SetAttributes(attribute.Int("alerts", result.Alerts))
	return result, nil
}

func fetch(ctx context.Context, fetcher Fetcher, name, url string) (FetchResponse, error) {
	if fetcher == nil {
		return FetchResponse{}, errNoFetcher
	}
	ctx, span := tracer.Start(ctx, "monitor.fetch")
	defer span.End()

	resp, err := fetcher.Fetch(ctx, FetchRequest{Monitor: name, URL: url})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return FetchResponse{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func extract[P any](ctx context.Context, m Monitor[P], body []byte) (P, error) {
	_, span := tracer.Start(ctx, "monitor.extract")
	defer span.End()

	var zero P
	doc, err := htmlquery.Parse(body)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrEmptyExtraction, err)
	}
	parsed, ok := m.Parse(doc)
	if !ok {
		return zero, ErrEmptyExtraction
	}
	return parsed, nil
}

func reportFailure(ctx context.Context, deps Deps, span trace.Span, result Result, cause error) (Result, error) {
	span.RecordError(cause)
	span.SetStatus(codes.Error, cause.Error())
	result.Outcome = OutcomeReported
	if deps.Reporter != nil {
		if err := deps.Reporter.Error(ctx, result.Monitor, sinkMessage(cause)); err != nil {
			return result, errors.Join(cause, fmt.Errorf("write error sink: %w", err))
		}
	}
	return result, cause
}

func saveSnapshot(ctx context.Context, store Snapshotter, name string, now time.Time, body []byte, logger *zap.Logger) {
	if store == nil {
		return
	}
	uri, err := store.Save(ctx, name, now, body)
	if err != nil {
		logger.Warn("snapshot failed", zap.Error(err))
		return
	}
	logger.Debug("snapshot saved", zap.String("uri", uri))
}

func currentTime(clock Clock) time.Time {
	if clock == nil {
		return time.Now()
	}
	return clock.Now()
}
