package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"salesreport/internal/auth"
	"salesreport/internal/core"
	applog "salesreport/internal/log"
	"salesreport/internal/middleware/ratelimit"
	"salesreport/internal/middleware/security"
	"salesreport/internal/middleware/trace"
)

type (
	// Authenticator registers users and issues and checks bearer tokens.
	Authenticator interface {
		Signup(ctx context.Context, username, password string) (string, error)
		Login(ctx context.Context, username, password string) (string, error)
		Verify(token string) (*auth.Claims, error)
	}

	// ReportSource computes the category summary on demand and exposes the
	// data behind it.
	ReportSource interface {
		Summary(ctx context.Context) ([]core.CategorySummary, error)
		CSV(ctx context.Context) ([]byte, error)
		Products(ctx context.Context) ([]core.ProductAggregate, error)
		Records(ctx context.Context) ([]core.ProductRecord, error)
	}

	// Pinger checks that the backing store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Deps wires the server to its collaborators.
type Deps struct {
	Auth    Authenticator
	Reports ReportSource
	Ready   Pinger
	Logger  *applog.Logger

	// RequireReportAuth protects the CSV download with a bearer token.
	RequireReportAuth bool
	RateLimitRPM      int
	// TrustedProxies lists CIDRs whose X-Forwarded-For headers are honored.
	TrustedProxies []string
}

type Server struct {
	http.Server
	auth        Authenticator
	reports     ReportSource
	ready       Pinger
	logger      *applog.Logger
	requireAuth bool

	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		auth:        deps.Auth,
		reports:     deps.Reports,
		ready:       deps.Ready,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		requireAuth: deps.RequireReportAuth,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitRPM}),
		detector:    security.NewDetector(),
	}
	for _, cidr := range deps.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", applog.FieldError, err.Error())
		}
	}

	limited := s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(),
			"Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldPath, r.URL.Path)
		TooManyRequestsError("rate limit exceeded, try again later").Write(w)
	})

	mux := http.NewServeMux()
	mux.Handle("POST /api/signup/{$}", limited(http.HandlerFunc(s.handleSignup)))
	mux.Handle("POST /api/login/{$}", limited(http.HandlerFunc(s.handleLogin)))

	csv := http.Handler(http.HandlerFunc(s.handleSummaryCSV))
	if s.requireAuth {
		csv = s.requireBearer(csv)
	}
	mux.Handle("GET /api/get-summary-report/{$}", limited(csv))
	mux.Handle("GET /api/summary/{$}", limited(s.requireBearer(http.HandlerFunc(s.handleSummaryJSON))))
	mux.Handle("GET /api/products/{$}", limited(s.requireBearer(http.HandlerFunc(s.handleProducts))))
	mux.Handle("GET /api/records/{$}", limited(s.requireBearer(http.HandlerFunc(s.handleRecords))))

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(s.detector.Middleware(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err.Error())
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics reports the middleware counters as JSON.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]interface{}{
		"requests":   s.tracer.GetMetrics(),
		"rate_limit": s.rateLimiter.GetMetrics(),
		"security":   s.detector.GetMetrics(),
	}).Write(w)
}
