// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/opdusage/internal/chart"
	"github.com/theirongolddev/opdusage/internal/pipeline"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr            string
	EventsBuffer    int
	ShutdownTimeout time.Duration
	Chart           chart.Options
}

// Status is served at /v1/status.
type Status struct {
	SessionID     string             `json:"session_id"`
	Source        string             `json:"source"`
	LoadedAt      time.Time          `json:"loaded_at"`
	StartedAt     time.Time          `json:"started_at"`
	Load          pipeline.LoadStats `json:"load"`
	AnalysisCount int64              `json:"analysis_count"`
	EventCount    int                `json:"event_count"`
	Subscribers   int                `json:"subscriber_count"`
}

// Service serves one loaded session. The session is read-only, so handlers
// share it without locking; mu guards only the event log and subscribers.
type Service struct {
	cfg       Config
	session   *pipeline.Session
	metrics   *metrics
	startedAt time.Time

	mu            sync.RWMutex
	analysisCount int64
	nextEventID   int64
	events        []Event
	nextSubID     int
	subs          map[int]chan Event
}

// New returns a service for session with defaults applied to cfg.
func New(cfg Config, session *pipeline.Session) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.Chart.Width == 0 && cfg.Chart.Height == 0 {
		cfg.Chart = chart.DefaultOptions()
	}

	s := &Service{
		cfg:       cfg,
		session:   session,
		metrics:   newMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.metrics.sessionRecords.Set(float64(session.Len()))
	return s
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.metrics.instrument)
		r.Get("/status", s.handleStatus)
		r.Get("/dimensions", s.handleDimensions)
		r.Get("/analyze", s.handleAnalyzeQuery)
		r.Post("/analyze", s.handleAnalyzeBody)
		r.Get("/chart.png", s.handleChart)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(log.Fields{
			"addr":       s.cfg.Addr,
			"session_id": s.session.ID,
			"records":    s.session.Len(),
		}).Info("serving")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		SessionID:     s.session.ID,
		Source:        s.session.Source,
		LoadedAt:      s.session.LoadedAt,
		StartedAt:     s.startedAt,
		Load:          s.session.Stats,
		AnalysisCount: s.analysisCount,
		EventCount:    len(s.events),
		Subscribers:   len(s.subs),
	}
}
