// Package api exposes the moderation pipeline over HTTP: analyze,
// review workflow, trust metrics, and runtime configuration.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/cynthialmy/llm-decision-flow/internal/governance"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
	"github.com/cynthialmy/llm-decision-flow/internal/orchestrator"
)

// Analyzer runs one transcript through the pipeline
type Analyzer interface {
	Analyze(ctx context.Context, transcript string, progress orchestrator.ProgressFunc) *model.AnalysisResult
}

// Governance is the persistence surface the server needs
type Governance interface {
	SaveDecision(ctx context.Context, transcript string, result *model.AnalysisResult) (string, error)
	CreateReview(ctx context.Context, transcript string, result *model.AnalysisResult) (string, error)
	ListReviews(ctx context.Context, status string, limit int) ([]model.ReviewRequest, error)
	SubmitReview(ctx context.Context, id string, action model.DecisionAction, rationale string) error
	SaveConfigVersion(ctx context.Context, thresholds map[string]float64, prompts map[string]string, rationale string, activate bool) (string, error)
	Metrics(ctx context.Context, windowDays int) (*governance.Metrics, error)
}

// Server serves the moderation REST API
type Server struct {
	router   chi.Router
	analyzer Analyzer
	store    Governance
	logger   *slog.Logger
}

// ServerOption configures the server
type ServerOption func(*Server)

// WithLogger sets the server logger
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the API server. store may be nil, in which case
// the review and metrics endpoints report the feature as disabled.
func NewServer(analyzer Analyzer, store Governance, opts ...ServerOption) *Server {
	s := &Server{
		analyzer: analyzer,
		store:    store,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(s.loggingMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", s.handleListReviews)
			r.Post("/{reviewID}/decision", s.handleSubmitReview)
		})

		r.Post("/config", s.handleSaveConfig)
	})

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
