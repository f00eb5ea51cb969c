package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/menu-monitor/internal/metrics"
	"github.com/JakeFAU/menu-monitor/internal/monitor"
	"github.com/JakeFAU/menu-monitor/internal/scheduler"
)

const requestTimeout = 2 * time.Minute

// Runner is the part of scheduler.Watcher the API drives.
type Runner interface {
	Trigger(ctx context.Context) (scheduler.Report, error)
	Last() (scheduler.Report, bool)
	Running() bool
}

// Server wires HTTP handlers to the watcher.
type Server struct {
	router   chi.Router
	runner   Runner
	monitors []monitor.Task
	logger   *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(runner Runner, monitors []monitor.Task, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		runner:   runner,
		monitors: monitors,
		logger:   logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(metricsMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/monitors", s.listMonitors)
		r.Get("/runs/last", s.lastRun)
		r.Post("/runs", s.triggerRun)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	if _, ok := s.runner.Last(); !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "waiting for first run"}, s.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, s.logger)
}

type monitorDTO struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

func (s *Server) listMonitors(w http.ResponseWriter, _ *http.Request) {
	out := make([]monitorDTO, 0, len(s.monitors))
	for _, m := range s.monitors {
		u, _ := m.URL()
		out = append(out, monitorDTO{Name: m.Name(), URL: u})
	}
	writeJSON(w, http.StatusOK, map[string]any{"monitors": out}, s.logger)
}

func (s *Server) lastRun(w http.ResponseWriter, _ *http.Request) {
	report, ok := s.runner.Last()
	if !ok {
		writeError(w, http.StatusNotFound, "no run has finished yet", s.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"running": s.runner.Running(),
		"report":  report,
	}, s.logger)
}

func (s *Server) triggerRun(w http.ResponseWriter, r *http.Request) {
	// The pass outlives a client that disconnects mid-run.
	ctx := context.WithoutCancel(r.Context())
	report, err := s.runner.Trigger(ctx)
	if err != nil {
		if errors.Is(err, scheduler.ErrRunInProgress) {
			writeError(w, http.StatusConflict, err.Error(), s.logger)
			return
		}
		s.logger.Error("triggered run failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "run failed", s.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"report": report}, s.logger)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		reqID, _ := r.Context().Value(requestIDKey{}).(string)
		s.logger.Info("request completed",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.ObserveHTTPRequest(r.Method, route, ww.status, time.Since(start))
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec), zap.String("path", r.URL.Path))
				writeError(w, http.StatusInternalServerError, "internal server error", s.logger)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, logger *zap.Logger) {
	writeJSON(w, status, map[string]string{"error": msg}, logger)
}
