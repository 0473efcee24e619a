package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"outlay/internal/cache"
	applog "outlay/internal/log"
	"outlay/internal/report"
	"outlay/internal/services"
	"outlay/internal/storage"
	appweb "outlay/web"
)

// ctxKey is the type for request context keys.
type ctxKey string

const requestIDKey ctxKey = "request_id"

// Deps carries everything the server needs to answer requests.
type Deps struct {
	Repo     *storage.Repository
	Reports  *report.Engine
	Expenses *services.ExpenseService
	Budgets  *services.BudgetService
	UserID   int64
	CacheTTL time.Duration
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *applog.Logger
	structLog *applog.StructuredLogger

	repo     *storage.Repository
	reports  *report.Engine
	expenses *services.ExpenseService
	budgets  *services.BudgetService
	userID   int64

	rateLimiter *rateLimiter
	metrics     *securityMetrics

	// View caches with TTL and write invalidation.
	dashboardCache *cache.LRUCache[dashboardView]
	reportCache    *cache.LRUCache[reportView]
	cacheManager   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	cacheTTL := deps.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	logger := applog.New(applog.Config{Component: applog.ComponentHTTP})

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger:         logger,
		structLog:      applog.NewStructuredLogger(logger),
		repo:           deps.Repo,
		reports:        deps.Reports,
		expenses:       deps.Expenses,
		budgets:        deps.Budgets,
		userID:         deps.UserID,
		rateLimiter:    newRateLimiter(),
		metrics:        &securityMetrics{},
		dashboardCache: cache.NewLRUCache[dashboardView](100, cacheTTL),
		reportCache:    cache.NewLRUCache[reportView](100, cacheTTL),
		cacheManager:   cache.NewManager(),
	}

	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/expenses/new", s.withSecurityHeaders(s.handleExpenses))
	mux.HandleFunc("/budgets", s.withSecurityHeaders(s.handleBudgets))
	mux.HandleFunc("/reports", s.withSecurityHeaders(s.handleReports))
	mux.HandleFunc("/reports/download", s.withSecurityHeaders(s.handleReportDownload))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	return s
}

// withSecurityHeaders adds security headers, rate limiting, request tracing,
// and request logging to a handler.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		s.structLog.LogHTTPStart(ctx, r, clientIP)

		if detectSuspiciousRequest(r, s.metrics) {
			s.logger.WarnContext(ctx, "Suspicious request pattern",
				applog.FieldRequestID, requestID,
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
		}

		// Rate limit writes only; the dashboard polls freely.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldRequestID, requestID,
				applog.FieldClientIP, clientIP,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.structLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Readiness probe failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// viewCacheKey scopes cached views to one user and period.
func (s *Server) viewCacheKey(month, year int) string {
	return strconv.FormatInt(s.userID, 10) + "-" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// invalidateViews flushes both view caches after a write. Cached views carry
// cross-period data (monthly summaries, period selectors, recent expenses),
// so a backdated write can make any cached period stale, not just its own.
func (s *Server) invalidateViews() {
	s.dashboardCache.Clear()
	s.reportCache.Clear()
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
