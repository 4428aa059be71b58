package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"gagyebu/internal/core"
	applog "gagyebu/internal/log"
	"gagyebu/internal/middleware/ratelimit"
	"gagyebu/internal/middleware/security"
	"gagyebu/internal/middleware/trace"
	"gagyebu/internal/services"
	"gagyebu/internal/store"
)

// Dependencies are the collaborators the API serves.
type Dependencies struct {
	Ledger        *services.LedgerService
	FixedExpenses store.FixedExpenseRepository
	Reports       *services.ReportService
	Formatter     *core.AmountFormatter
	Logger        *applog.Logger

	// Ready reports whether storage is reachable; nil means always ready.
	Ready func(ctx context.Context) error
	// Now defaults to time.Now; its location decides what "today" is.
	Now       func() time.Time
	RateLimit ratelimit.Config
}

// Server is the JSON API server.
type Server struct {
	http.Server

	ledger    *services.LedgerService
	fixed     store.FixedExpenseRepository
	reports   *services.ReportService
	formatter *core.AmountFormatter
	logger    *applog.Logger
	events    *applog.StructuredLogger
	ready     func(ctx context.Context) error
	now       func() time.Time
	startedAt time.Time

	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware

	shutdownOnce sync.Once
}

// defaultFormatter is used when Dependencies.Formatter is nil.
var defaultFormatter = func() *core.AmountFormatter {
	f, err := core.NewAmountFormatter("ko-KR")
	if err != nil {
		panic(err)
	}
	return f
}()

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	formatter := deps.Formatter
	if formatter == nil {
		formatter = defaultFormatter
	}

	s := &Server{
		ledger:      deps.Ledger,
		fixed:       deps.FixedExpenses,
		reports:     deps.Reports,
		formatter:   formatter,
		logger:      logger,
		events:      applog.NewStructuredLogger(logger),
		ready:       deps.Ready,
		now:         now,
		startedAt:   now(),
		detector:    security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/days/{date}", s.handleDayDetail)
	mux.HandleFunc("POST /api/entries", s.handleCreateEntry)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/export", s.handleExport)

	mux.HandleFunc("GET /api/fixed-expenses", s.handleListFixedExpenses)
	mux.HandleFunc("POST /api/fixed-expenses", s.handleCreateFixedExpense)

	mux.HandleFunc("POST /api/error-reports", s.handleCreateErrorReport)

	limit := s.rateLimiter.Middleware(s.detector.ExtractClientIP,
		func(w http.ResponseWriter, r *http.Request) { TooManyRequestsError().Write(w) },
		http.MethodPost)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = limit(handler)
	handler = s.detector.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// today is the calendar date of now in the server's clock location.
func (s *Server) today() (core.Date, *time.Location) {
	now := s.now()
	return core.DateOf(now), now.Location()
}

// fail writes the mapped error response and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := ErrorFromDomain(err)
	if resp.statusCode >= http.StatusInternalServerError {
		s.events.LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op,
			applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
	}
	resp.Write(w)
}
