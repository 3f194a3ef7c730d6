package http

import (
	"context"
	"net/http"
	"time"

	"gofinances/internal/core"
	applog "gofinances/internal/log"
	"gofinances/internal/middleware/ratelimit"
	"gofinances/internal/middleware/security"
	"gofinances/internal/middleware/trace"
	"gofinances/internal/repository"
	"gofinances/internal/services"
)

// SummaryProvider serves the dashboard and resume screens.
type SummaryProvider interface {
	Dashboard(ctx context.Context, userID string) (services.Dashboard, error)
	Resume(ctx context.Context, userID string, year, month int) (services.Resume, error)
	Catalog() core.Catalog
}

// TransactionCreator serves the register screen.
type TransactionCreator interface {
	Create(ctx context.Context, userID string, in services.CreateTransactionInput) (core.Transaction, error)
}

// SnapshotReader returns precomputed resume snapshots.
type SnapshotReader interface {
	LoadResume(ctx context.Context, userID string, year, month int) (repository.ResumeSnapshot, bool, error)
}

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server routes to. Snapshots and Checks are optional.
type Deps struct {
	Summary   SummaryProvider
	Register  TransactionCreator
	Snapshots SnapshotReader
	Checks    map[string]Pinger
	Logger    *applog.Logger
	Location  *time.Location
	// RequestsPerMinute limits POST requests per client IP.
	RequestsPerMinute int
}

type Server struct {
	http.Server
	summary   SummaryProvider
	register  TransactionCreator
	snapshots SnapshotReader
	checks    map[string]Pinger
	loc       *time.Location
	now       func() time.Time
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &Server{
		summary:   deps.Summary,
		register:  deps.Register,
		snapshots: deps.Snapshots,
		checks:    deps.Checks,
		loc:       loc,
		now:       time.Now,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RequestsPerMinute}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /statsz", s.handleStats)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/users/{userID}/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/users/{userID}/resume", s.handleResume)
	mux.HandleFunc("GET /api/users/{userID}/resume/snapshot", s.handleResumeSnapshot)
	mux.HandleFunc("POST /api/users/{userID}/transactions", s.handleCreateTransaction)

	detector := security.NewDetector()
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(logger, detector.ExtractClientIP)
	s.detector = detector
	s.tracer = tracer

	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	}, http.MethodPost)(h)
	h = detector.Middleware(h)
	h = headers.Middleware(h)
	h = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = applog.Middleware(logger)(h)
	h = tracer.Middleware(h)

	s.Addr = addr
	s.Handler = h
	s.ReadHeaderTimeout = 5 * time.Second
	s.ReadTimeout = 15 * time.Second
	s.WriteTimeout = 15 * time.Second
	s.IdleTimeout = 60 * time.Second
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	return s.Server.Shutdown(ctx)
}
