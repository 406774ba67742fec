// Package httpapi is the HTTP driving adapter: a chi router over the
// mission service, the live-update registry and the metrics registry.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/example/orbita/internal/ctxutil"
	"github.com/example/orbita/internal/live"
	"github.com/example/orbita/internal/metrics"
	"github.com/example/orbita/internal/ports/primary"
)

// LiveRegistry is the subscription side of the live-update fan-out.
type LiveRegistry interface {
	Subscribe(missionID string, sub live.Subscriber) live.Handle
	Unsubscribe(h live.Handle)
}

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string
	Buffer         int           // per-stream update buffer
	SendTimeout    time.Duration // how long a full stream may stall a tick
	Heartbeat      time.Duration // comment frame interval on idle streams
}

// Server serves the mission API.
type Server struct {
	missions primary.MissionService
	registry LiveRegistry
	metrics  *metrics.Metrics
	logger   *slog.Logger
	opts     Options
}

// NewServer creates a Server. m may be nil, in which case /metrics is not
// mounted.
func NewServer(missions primary.MissionService, registry LiveRegistry, m *metrics.Metrics, logger *slog.Logger, opts Options) *Server {
	if opts.Buffer <= 0 {
		opts.Buffer = 100
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 100 * time.Millisecond
	}
	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 15 * time.Second
	}
	return &Server{
		missions: missions,
		registry: registry,
		metrics:  m,
		logger:   logger,
		opts:     opts,
	}
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Get("/", s.handleRoot)

	r.Route("/mission", func(r chi.Router) {
		r.Post("/create", s.handleCreateMission)
		r.Get("/live/{missionID}", s.handleLive)
		r.Get("/{missionID}", s.handleGetMission)
		r.Post("/{missionID}/start", s.handleStartMission)
		r.Post("/{missionID}/stop", s.handleStopMission)
		r.Get("/{missionID}/report", s.handleReport)
		r.Get("/{missionID}/forecast", s.handleForecast)
		r.Post("/{missionID}/decisions/{decisionID}/verify", s.handleVerifyDecision)
	})

	r.Route("/ai", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
	})

	return r
}

// logRequests logs one line per request once the handler returns.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(ww, r.WithContext(ctxutil.WithLogger(r.Context(), logger)))

		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
