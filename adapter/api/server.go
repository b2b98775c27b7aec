// Package api serves the calmbox inbox and task list over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/calmbox/adapter/cli"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is the HTTP API server.
type Server struct {
	app        *cli.App
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           ":8080",
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    60 * time.Second,
		RequestTimeout: 45 * time.Second,
		AllowedOrigins: []string{"*"},
	}
}

// NewServer creates a new API server around the application handlers.
func NewServer(cfg ServerConfig, app *cli.App, logger *slog.Logger) (*Server, error) {
	if app == nil {
		return nil, errors.New("app is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultServerConfig().RequestTimeout
	}

	s := &Server{
		app:    app,
		logger: observability.OrDefault(logger),
	}
	s.setupRouter(cfg)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// setupRouter configures all routes
func (s *Server) setupRouter(cfg ServerConfig) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		// Inbox
		r.Post("/inbox/sync", s.handleSyncInbox)
		r.Get("/stats", s.handleGetStats)
		r.Get("/stress", s.handleGetStress)
		r.Post("/analyze", s.handleAnalyze)

		// Emails
		r.Get("/emails", s.handleListEmails)
		r.Post("/emails/process", s.handleProcessEmails)
		r.Get("/emails/{emailID}", s.handleGetEmail)
		r.Post("/emails/{emailID}/read", s.handleMarkRead)
		r.Post("/emails/{emailID}/flag", s.handleFlag)
		r.Delete("/emails/{emailID}/flag", s.handleUnflag)
		r.Post("/emails/{emailID}/tasks", s.handleExtractTasks)

		// Tasks
		r.Get("/tasks", s.handleListTasks)
		r.Post("/tasks", s.handleCreateTask)
		r.Get("/tasks/{taskID}", s.handleGetTask)
		r.Patch("/tasks/{taskID}/status", s.handleUpdateTaskStatus)
	})

	s.router = r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs each request through slog with the chi request ID
// attached to the context.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		ctx := observability.WithRequestID(r.Context(), reqID)
		if reqID != "" {
			w.Header().Set(middleware.RequestIDHeader, reqID)
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		s.logger.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// saveSession keeps the inbox snapshot current after a mutation. A failure
// only costs the saved state, so it is logged.
func (s *Server) saveSession(ctx context.Context, source string) {
	if err := s.app.SaveSession(ctx, source); err != nil {
		s.logger.WarnContext(ctx, "failed to save inbox session", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.app.Health == nil {
		s.respondJSON(w, http.StatusOK, map[string]string{"status": string(observability.HealthStatusHealthy)})
		return
	}
	report := s.app.Health.Check(r.Context())
	status := http.StatusOK
	if report.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, report)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	counters := map[string]int64{}
	if s.app.Metrics != nil {
		counters = s.app.Metrics.Counters()
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"counters": counters})
}

// --- Response helpers ---

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &badRequestError{err: err}
	}
	return nil
}
