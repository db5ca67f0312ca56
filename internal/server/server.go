package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/folioapp/folio/internal/handler"
	"github.com/folioapp/folio/internal/server/middleware"
	"github.com/folioapp/folio/internal/service"
)

// RateLimits holds the per-endpoint request budgets, each applied per
// client IP over its window.
type RateLimits struct {
	LoginRequests  int
	LoginWindow    time.Duration
	SetupRequests  int
	SetupWindow    time.Duration
	UpdateRequests int
	UpdateWindow   time.Duration
}

// DefaultRateLimits returns the production request budgets.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		LoginRequests:  5,
		LoginWindow:    15 * time.Minute,
		SetupRequests:  3,
		SetupWindow:    time.Hour,
		UpdateRequests: 10,
		UpdateWindow:   time.Minute,
	}
}

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	Environment     string // "production" or anything else
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	MaxBodySize     int64 // bytes
	RateLimits      RateLimits
}

// DefaultConfig returns a Config with sensible development defaults. The
// CORS origins list the usual local frontend dev servers; a wildcard would
// be useless here because the session cookie requires credentialed CORS,
// which browsers refuse to pair with "*". Production deployments must set
// their real frontend origin explicitly.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		Environment:     "development",
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		MaxBodySize:     10 * 1024 * 1024, // 10MB
		RateLimits:      DefaultRateLimits(),
	}
}

// Server is the top-level HTTP server for folio. It owns the Chi router and
// the auth, session, and content services behind the API.
type Server struct {
	cfg        Config
	router     chi.Router
	auth       *service.AuthService
	sessions   *service.SessionService
	content    *service.ContentService
	httpServer *http.Server
	logger     *slog.Logger
	startTime  time.Time
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, auth *service.AuthService, sessions *service.SessionService, content *service.ContentService, logger *slog.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		auth:      auth,
		sessions:  sessions,
		content:   content,
		logger:    logger,
		startTime: time.Now(),
	}
	s.setupRouter()
	return s
}

// cookieConfig derives the session cookie policy from the environment. In
// production the frontend is usually served from a different origin, so the
// cookie must be Secure with SameSite=None; local development runs over
// plain HTTP and needs Lax.
func (s *Server) cookieConfig() handler.CookieConfig {
	if s.cfg.Environment == "production" {
		return handler.CookieConfig{Secure: true, SameSite: http.SameSiteNoneMode}
	}
	return handler.CookieConfig{Secure: false, SameSite: http.SameSiteLaxMode}
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))
	r.Use(chimw.RequestSize(s.cfg.MaxBodySize))

	exposeErrors := s.cfg.Environment != "production"
	adminHandler := handler.NewAdminHandler(s.auth, s.sessions, s.cookieConfig(), exposeErrors, s.logger)
	contentHandler := handler.NewContentHandler(s.content, exposeErrors, s.logger)
	limits := s.cfg.RateLimits

	// --- Health check (no auth required) ---
	r.Get("/health", s.handleHealth)

	// --- API routes ---
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SessionAuth(s.sessions, s.logger))

		r.Route("/admin", func(r chi.Router) {
			r.Get("/exists", adminHandler.Exists)
			r.With(middleware.RateLimit(limits.SetupRequests, limits.SetupWindow)).
				Post("/setup", adminHandler.Setup)
			r.With(middleware.RateLimit(limits.LoginRequests, limits.LoginWindow)).
				Post("/login", adminHandler.Login)
			r.Post("/logout", adminHandler.Logout)
		})

		r.Route("/site-data", func(r chi.Router) {
			r.Get("/", contentHandler.GetSiteData)
			r.With(
				middleware.RequireAdmin(),
				middleware.RateLimit(limits.UpdateRequests, limits.UpdateWindow),
			).Post("/", contentHandler.UpdateSiteData)
		})
	})

	// --- JSON 404 for unknown routes ---
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":404,"message":"Not found"}}`))
	})

	s.router = r
}

// handleHealth reports process liveness plus the environment name and uptime.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","environment":%q,"timestamp":%q,"uptime":%.0f}`,
		s.cfg.Environment,
		time.Now().UTC().Format(time.RFC3339),
		time.Since(s.startTime).Seconds(),
	)
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before returning.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Listen for shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in background goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr, "environment", s.cfg.Environment)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
