// Package web serves a table session over HTTP: a JSON API for every table
// operation plus a server-rendered HTML view.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/gridkit/internal/config"
	"github.com/JonMunkholm/gridkit/internal/web/middleware"
)

// Server is the HTTP server for one table session.
type Server struct {
	session *Session
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	imports *ImportLimiter

	limiters []*rateLimiter
}

// NewServer creates a Server for session configured by cfg.
func NewServer(session *Session, cfg *config.Config) *Server {
	s := &Server{
		session: session,
		cfg:     cfg,
		router:  chi.NewRouter(),
		imports: NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		// View
		r.Get("/view", s.handleGetView)
		r.Put("/view", s.handlePutView)

		// Rows
		r.Post("/rows", s.handleAddRow)
		r.Patch("/rows/{id}", s.handleUpdateRow)
		r.Delete("/rows/{id}", s.handleDeleteRow)
		r.Post("/rows/delete", s.handleDeleteRows)

		// Editing
		r.Post("/rows/{id}/edit", s.handleStartEditing)
		r.Patch("/rows/{id}/draft", s.handleSetDraft)
		r.Post("/rows/{id}/commit", s.handleCommitEditing)
		r.Delete("/rows/{id}/edit", s.handleCancelEditing)
		r.Post("/edits/commit", s.handleCommitAll)
		r.Delete("/edits", s.handleCancelAll)

		// Selection
		r.Put("/selection", s.handleSetSelection)
		r.Post("/selection/{id}/toggle", s.handleToggleSelection)
		r.Post("/selection/all", s.handleSelectAll)
		r.Post("/selection/page", s.handleSelectPage)
		r.Delete("/selection", s.handleClearSelection)

		// Columns
		r.Get("/columns", s.handleListColumns)
		r.Post("/columns", s.handleAddColumn)
		r.Patch("/columns/{id}", s.handleUpdateColumn)
		r.Delete("/columns/{id}", s.handleDeleteColumn)
		r.Post("/columns/{id}/visibility", s.handleToggleVisibility)
		r.Post("/columns/reorder", s.handleReorderColumns)
		r.Get("/field-name", s.handleFieldName)

		// Confirmation
		r.Post("/confirm/propose", s.handlePropose)
		r.Post("/confirm", s.handleConfirm)
		r.Delete("/confirm", s.handleDismiss)

		// Import, throttled separately
		r.Group(func(r chi.Router) {
			if s.cfg.Rate.Enabled {
				r.Use(s.newRateLimiter(s.cfg.Rate.ImportLimit, time.Minute).middleware)
			}
			r.Post("/import/preview", s.handleImportPreview)
			r.Post("/import", s.handleImport)
		})
		r.Get("/import/status", s.handleImportStatus)

		// Export and snapshot
		r.Get("/export", s.handleExport)
		r.Get("/sample.csv", s.handleSample)
		r.Get("/snapshot", s.handleGetSnapshot)
		r.Put("/snapshot", s.handlePutSnapshot)
	})
}

// Start begins listening for HTTP requests. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests, waits for running imports and stops
// the rate limiter janitors.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	if drainErr := s.imports.WaitForDrain(ctx); drainErr != nil && err == nil {
		err = drainErr
	}
	s.Close()
	return err
}

// Close stops background goroutines without touching the listener. Safe
// to call more than once.
func (s *Server) Close() {
	for _, l := range s.limiters {
		l.stop()
	}
}

// ImportStatus reports how many imports are being parsed.
func (s *Server) ImportStatus() ImportLimiterStatus {
	return s.imports.Status()
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				h.Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter is a fixed-window request counter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func (s *Server) newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := newRateLimiter(rate, window)
	s.limiters = append(s.limiters, rl)
	return rl
}

// newRateLimiter creates a limiter and starts its janitor; call stop to end it.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup drops visitors idle for two windows.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists || time.Since(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: time.Now()}
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

var errRateLimited = errors.New("rate limit exceeded")

// middleware rate limits by the (already trusted) remote address.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, ok := cutPort(ip); ok {
			ip = host
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
