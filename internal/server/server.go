// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects stores, services, handlers,
// middleware and routes, and decides:
//   - Which URL patterns map to which handler functions
//   - What middleware runs on which routes
//   - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go builds Config from the environment → server.New(cfg, logger)
//	server.New creates: jsonfile stores → services → handlers → routes
//
// This is the "composition root" pattern: all dependencies are wired in one
// place instead of being scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/event-manager/internal/auth"
	"github.com/sakif/event-manager/internal/handler"
	"github.com/sakif/event-manager/internal/metrics"
	"github.com/sakif/event-manager/internal/middleware"
	"github.com/sakif/event-manager/internal/repository/jsonfile"
	"github.com/sakif/event-manager/internal/service"
)

// Data file names inside Config.DataDir.
const (
	UsersFile     = "users.json"
	BlacklistFile = "blacklistToken.json"
	EventsFile    = "events.json"
)

// Config holds server configuration.
type Config struct {
	Port      int
	DataDir   string // directory holding the three JSON data files
	JWTSecret string // HMAC key for access tokens, at least 16 characters

	// AuthRateLimitPerMinute limits register/login per client IP. 0 disables.
	AuthRateLimitPerMinute int

	// CORSAllowedOrigins lists browser origins allowed to call the API.
	// Empty means "*".
	CORSAllowedOrigins []string

	// BcryptCost overrides the password hashing cost. 0 means the default.
	// Tests set it to bcrypt.MinCost.
	BcryptCost int
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
}

// New wires the dependency graph:
//  1. One jsonfile store per data file
//  2. TokenService and PasswordService
//  3. AuthService and EventService over the stores
//  4. Handlers over the services, mounted on routes
//
// Nothing touches the disk here; the data files are created on first write.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	passwords := auth.NewPasswordService()
	if cfg.BcryptCost > 0 {
		passwords = auth.NewPasswordServiceForTest(cfg.BcryptCost)
	}

	users := jsonfile.NewUserStore(filepath.Join(cfg.DataDir, UsersFile), logger)
	blacklist := jsonfile.NewBlacklistStore(filepath.Join(cfg.DataDir, BlacklistFile), logger)
	events := jsonfile.NewEventStore(filepath.Join(cfg.DataDir, EventsFile), logger)

	authService := service.NewAuthService(users, blacklist, tokens, passwords, logger)
	eventService := service.NewEventService(events, logger)

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
	}
	s.setupRoutes(authService, eventService)

	return s, nil
}

// Handler returns the root http.Handler. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /health                    → liveness probe
//	GET    /metrics                   → Prometheus metrics
//	POST   /api/user/register         → create account        (rate limited)
//	POST   /api/user/login            → issue access token    (rate limited)
//	POST   /api/user/logout           → revoke access token   (auth guard)
//	POST   /api/event/events          → create event          (auth guard)
//	GET    /api/event/events          → list events           (auth guard)
//	POST   /api/event/events/filter   → search events         (auth guard)
//	GET    /api/event/events/{id}     → get event             (auth guard)
//	PUT    /api/event/events/{id}     → replace event         (auth guard)
//	DELETE /api/event/events/{id}     → delete event          (auth guard)
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns a unique ID to each request (for tracing)
// 2. RealIP: extracts the client IP from proxy headers (the rate limiter keys on it)
// 3. Logger: logs each request with timing info
// 4. Recoverer: catches panics and returns 500 instead of crashing
// 5. CORS: answers browser preflights before any auth check
// 6. HTTPMiddleware: request count and latency per route pattern
func (s *Server) setupRoutes(authService *service.AuthService, eventService *service.EventService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(s.corsOptions()))
	s.router.Use(metrics.HTTPMiddleware)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	authHandler := handler.NewAuthHandler(authService, s.logger)
	eventHandler := handler.NewEventHandler(eventService, s.logger)
	requireAuth := auth.RequireAuth(authService)

	s.router.Route("/api/user", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.config.AuthRateLimitPerMinute))
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
		})
		r.With(requireAuth).Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api/event/events", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", eventHandler.HandleCreate)
		r.Get("/", eventHandler.HandleList)
		r.Post("/filter", eventHandler.HandleFilter)
		r.Get("/{id}", eventHandler.HandleGetByID)
		r.Put("/{id}", eventHandler.HandleUpdate)
		r.Delete("/{id}", eventHandler.HandleDelete)
	})
}

func (s *Server) corsOptions() cors.Options {
	origins := s.config.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}
}

// Start starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
//
// Every store write completes (temp file + rename) inside its request, so
// there is nothing left to flush after Shutdown returns.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("dataDir", s.config.DataDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
