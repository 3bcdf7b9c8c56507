// Package api exposes feedback processing and trend queries over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spacesedan/steamnoodles/internal/ingest"
	"github.com/spacesedan/steamnoodles/internal/models"
	"github.com/spacesedan/steamnoodles/internal/visualization"
)

const maxBodyBytes = 1 << 20

type Ingester interface {
	Ingest(ctx context.Context, texts []string) (ingest.Report, error)
}

type TrendService interface {
	HandleQuery(ctx context.Context, query string, now time.Time, kind models.ChartKind) (*visualization.Response, error)
	Summarize(ctx context.Context, query string, now time.Time) (*visualization.Response, error)
}

type Server struct {
	ingester Ingester
	trends   TrendService
	healthy  *atomic.Bool
	gatherer prometheus.Gatherer
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*Server)

// WithHealth reports the backend as unhealthy on /healthz when healthy is
// false.
func WithHealth(healthy *atomic.Bool) Option {
	return func(s *Server) { s.healthy = healthy }
}

func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

func NewServer(ingester Ingester, trends TrendService, opts ...Option) *Server {
	s := &Server{
		ingester: ingester,
		trends:   trends,
		gatherer: prometheus.DefaultGatherer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		if s.timeout > 0 {
			r.Use(middleware.Timeout(s.timeout))
		}
		r.Post("/feedback", s.processFeedback)
		r.Post("/feedback/batch", s.processFeedbackBatch)
		r.Post("/trends", s.trendChart)
		r.Get("/trends/summary", s.trendSummary)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		slog.Info("[API] Request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Duration("elapsed", time.Since(start)))
	})
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("[API] Listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("[API] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
