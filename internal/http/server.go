package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"financeiro/internal/cache"
	"financeiro/internal/core"
	applog "financeiro/internal/log"
	"financeiro/internal/services"
)

// SummaryReader provides aggregated totals for a period. The SQLite
// repository satisfies it.
type SummaryReader interface {
	ReadSummary(ctx context.Context, year, month int) (core.Summary, error)
}

type Server struct {
	http.Server

	registry *services.Registry
	ledger   *services.Ledger
	summary  SummaryReader
	sessions SessionValidator

	rateLimiter *rateLimiter

	// Summary responses are cached per year-month and invalidated on
	// every ledger write.
	summaryCache *cache.LRUCache[core.Summary]

	now func() time.Time

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// The now func is injectable for tests; nil means time.Now.
func NewServer(addr string, registry *services.Registry, ledger *services.Ledger, summary SummaryReader, sessions SessionValidator, now func() time.Time) *Server {
	mux := http.NewServeMux()

	if now == nil {
		now = time.Now
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		registry:         registry,
		ledger:           ledger,
		summary:          summary,
		sessions:         sessions,
		rateLimiter:      newRateLimiter(),
		summaryCache:     cache.NewLRUCache[core.Summary](100, 5*time.Minute),
		now:              now,
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	// The recurring obligation list is public; every other operation
	// requires a back office session.
	mux.HandleFunc("GET /contas", s.withSecurityHeaders(s.handleListRecurring))
	mux.HandleFunc("POST /contas", s.withSecurityHeaders(s.requireSession(s.handleCreateRecurring)))
	mux.HandleFunc("PUT /contas/{id}", s.withSecurityHeaders(s.requireSession(s.handleUpdateRecurring)))
	mux.HandleFunc("DELETE /contas/{id}", s.withSecurityHeaders(s.requireSession(s.handleDeleteRecurring)))

	mux.HandleFunc("GET /financeiro/entradas", s.withSecurityHeaders(s.requireSession(s.handleListEntries)))
	mux.HandleFunc("POST /financeiro/entradas", s.withSecurityHeaders(s.requireSession(s.handleCreateEntry)))
	mux.HandleFunc("PUT /financeiro/entradas/{id}", s.withSecurityHeaders(s.requireSession(s.handleSettleEntry)))

	mux.HandleFunc("GET /financeiro/resumo", s.withSecurityHeaders(s.requireSession(s.handleSummary)))

	return s
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldClientIP, clientIP,
			applog.FieldUserAgent, r.Header.Get("User-Agent"))

		// Rate limit mutating requests only
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			applog.FieldRequestID, requestID,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, duration.Milliseconds(),
			applog.FieldClientIP, clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// startCacheCleanup runs periodic cleanup for the summary cache.
func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := s.summaryCache.CleanExpired()
			if cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func (s *Server) summaryCacheKey(year, month int) string {
	return strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

// invalidateSummaries drops every cached summary. Ledger writes can shift
// totals for any window, so the whole cache goes.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Purge()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
