package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	applog "gagyebu/internal/log"
)

// handleCreateErrorReport stores a user-submitted problem report.
func (s *Server) handleCreateErrorReport(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rep, err := s.reports.Submit(r.Context(), p.Get("content"))
	if err != nil {
		s.fail(w, r, applog.OpCreate, err)
		return
	}
	s.logger.WithComponent(applog.ComponentReport).InfoContext(r.Context(), "Error report stored",
		"report_id", rep.ID, applog.FieldOperation, applog.OpCreate)
	NewJSONResponse().Status(http.StatusCreated).Body(map[string]any{
		"id":         rep.ID,
		"created_at": rep.CreatedAt.Format(time.RFC3339),
	}).Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.startedAt).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks that storage answers within a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"storage": "ok", "queue": "disabled"}
	status, code := "ready", http.StatusOK

	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			checks["storage"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}
	if s.ledger.Queued() {
		checks["queue"] = "enabled"
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides request, cache and security counters in the
// Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	views := s.ledger.ViewStats()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, help, typ string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, typ, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_response_time_avg_microseconds", "Moving average response time", "gauge", traceMetrics.AverageResponseTime)
	metric("ledger_view_cache_hits_total", "Derived view cache hits", "counter", views.Hits)
	metric("ledger_view_cache_misses_total", "Derived view cache misses", "counter", views.Misses)
	metric("ledger_view_cache_entries", "Derived views currently cached", "gauge", views.Size)
	metric("rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "Suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(s.now().Sub(s.startedAt).Seconds()))
}
