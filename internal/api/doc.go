// Package api hosts the watch-mode HTTP server. Routes:
//   - GET /healthz and /readyz for probes; readyz turns 200 after the first run.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/monitors lists configured monitors.
//   - GET /v1/runs/last returns the most recent run report.
//   - POST /v1/runs triggers an immediate run, 409 if one is in progress.
package api
