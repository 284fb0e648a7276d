package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"manasim/internal/mana"
	"manasim/internal/storage"
)

// RunStore is the run history used by the server. A nil store disables the
// history endpoints.
type RunStore interface {
	SaveRun(ctx context.Context, run *storage.Run) error
	ListRuns(ctx context.Context, limit int) ([]*storage.Run, error)
	GetRun(ctx context.Context, id string) (*storage.Run, error)
}

// Config holds configuration for the API server.
type Config struct {
	Addr string

	// Upper bounds for a single simulation request.
	MaxSimulations  int
	MaxTurns        int
	MaxTraceSamples int

	// Used when a request leaves simulations or turns unset.
	DefaultSimulations int
	DefaultTurns       int

	Workers    int
	MultiColor mana.Policy

	// RequestsPerSecond limits simulation requests. Zero disables the limit.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:               ":8080",
		MaxSimulations:     100_000,
		MaxTurns:           30,
		MaxTraceSamples:    20,
		DefaultSimulations: 10_000,
		DefaultTurns:       12,
		MultiColor:         mana.PolicyGeneric,
		RequestsPerSecond:  2,
		Burst:              4,
	}
}

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	cfg        *Config
	store      RunStore
	limiter    *rate.Limiter
}

// NewServer creates a new API server.
func NewServer(cfg *Config, store RunStore) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	s := &Server{
		router:  chi.NewRouter(),
		cfg:     cfg,
		store:   store,
		limiter: rate.NewLimiter(limit, burst),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(5 * time.Minute))
	s.router.Use(jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json for requests with bodies.
func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.ContentLength != 0 {
			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.With(s.rateLimit).Post("/simulations", s.handleSimulate)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server in a goroutine.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("API server starting on %s", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("API server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}
	log.Println("API server stopped")
	return nil
}
