// Package api serves the combinations search API over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cmcmaster/rheum-biologics/internal/logging"
	"github.com/cmcmaster/rheum-biologics/internal/metrics"
	"github.com/cmcmaster/rheum-biologics/internal/notify"
)

// Server is the HTTP front end.
type Server struct {
	httpServer *http.Server
	router     chi.Router
	store      CombinationStore
	notifier   *notify.Notifier
	runIngest  IngestFunc
	log        zerolog.Logger
}

// NewServer wires routes and middleware. notifier and runIngest may be nil;
// the corresponding endpoints then degrade (log-only feedback, 503 ingest).
func NewServer(addr string, st CombinationStore, notifier *notify.Notifier, runIngest IngestFunc, log zerolog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Handler:      router,
			Addr:         addr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:    router,
		store:     st,
		notifier:  notifier,
		runIngest: runIngest,
		log:       log,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logging.RequestLogger(s.log))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metrics.Middleware)
	s.router.Use(newRateLimiter().middleware)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/combinations", s.handleCombinations)
		r.Get("/schedules", s.handleSchedules)
		r.Post("/feedback", s.handleFeedback)
		r.Post("/ingest", s.handleIngest)

		r.Route("/lookups", func(r chi.Router) {
			for segment := range lookupRoutes {
				r.Get("/"+segment, s.handleLookup(segment))
			}
		})
	})

	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.httpServer.Shutdown(ctx)
}
