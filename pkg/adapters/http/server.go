package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aretw0/hotelbot/internal/logging"
	"github.com/aretw0/hotelbot/pkg/domain"
	"github.com/aretw0/hotelbot/pkg/session"
)

// Server is the web front-end: chat page, JSON API and SSE updates.
type Server struct {
	manager *session.Manager
	streams *StreamManager
	limits  *limiterStore
	router  chi.Router
	unwatch func()

	logger         *slog.Logger
	allowedOrigins []string
	metrics        http.Handler
	version        string
	backendURL     string
	ratePerSecond  float64
	rateBurst      int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAllowedOrigins sets the CORS origins. Defaults to "*".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithRateLimit bounds message submissions per session. A zero rate disables the limit.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(s *Server) {
		s.ratePerSecond = perSecond
		s.rateBurst = burst
	}
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithInfo sets the values reported by /info.
func WithInfo(version, backendURL string) Option {
	return func(s *Server) {
		s.version = version
		s.backendURL = backendURL
	}
}

// NewServer creates the web front-end over manager. Call Close to detach it.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:        manager,
		streams:        NewStreamManager(),
		logger:         logging.NewNop(),
		allowedOrigins: []string{"*"},
		version:        "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams.logger = s.logger
	s.limits = newLimiterStore(s.ratePerSecond, s.rateBurst)
	s.unwatch = manager.Watch(s.broadcast)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/", s.handlePage)
	r.Get("/health", s.handleHealth)
	r.Get("/info", s.handleInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/sessions", func(r chi.Router) {
		r.Get("/", s.handleListSessions)
		r.Post("/", s.handleCreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/messages", s.handlePostMessage)
			r.Post("/reset", s.handleReset)
			r.Get("/events", s.handleEvents)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops forwarding conversation updates to SSE clients.
func (s *Server) Close() {
	s.unwatch()
}

// NewHTTPServer wraps handler in an http.Server with conservative timeouts.
// WriteTimeout stays unset so SSE streams are not cut.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

// broadcast forwards every persisted change as a diff to the session's subscribers.
func (s *Server) broadcast(_ context.Context, old, next *domain.Conversation) {
	diff := domain.Diff(old, next)
	if diff == nil {
		return
	}
	payload, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error("Failed to encode diff", "session_id", next.SessionID, "err", err)
		return
	}
	s.streams.Broadcast(next.SessionID, string(payload))
}
