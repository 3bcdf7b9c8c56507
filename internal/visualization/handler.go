// Package visualization answers natural-language trend queries with an
// aggregated series and a rendered chart.
package visualization

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/steamnoodles/internal/apperrors"
	"github.com/spacesedan/steamnoodles/internal/metrics"
	"github.com/spacesedan/steamnoodles/internal/models"
	"github.com/spacesedan/steamnoodles/internal/trends"
)

// Renderer draws a series and returns a handle to the artifact, typically
// a file path.
type Renderer interface {
	Render(ctx context.Context, series []models.DailyAggregate, kind models.ChartKind) (string, error)
}

// RangeReader reads the stored records that fall inside [start, end).
type RangeReader interface {
	ReadRange(ctx context.Context, start, end time.Time) ([]models.ReviewRecord, error)
}

type RangeResolver interface {
	Resolve(query string, now time.Time) (models.ResolvedRange, error)
}

// Response is what a trend query produces.
type Response struct {
	Range    models.ResolvedRange    `json:"range"`
	Series   []models.DailyAggregate `json:"series"`
	Artifact string                  `json:"artifact"`
	Summary  trends.Summary          `json:"summary"`
}

type Handler struct {
	resolver RangeResolver
	renderer Renderer
	store    RangeReader
	kind     models.ChartKind
}

// NewHandler wires a handler. store may be nil when callers always pass
// records to Handle directly.
func NewHandler(resolver RangeResolver, renderer Renderer, store RangeReader, kind models.ChartKind) *Handler {
	if !kind.Valid() {
		kind = models.ChartTrendLine
	}
	return &Handler{
		resolver: resolver,
		renderer: renderer,
		store:    store,
		kind:     kind,
	}
}

// Handle resolves query against now, aggregates records over the resolved
// range and renders the result.
func (h *Handler) Handle(ctx context.Context, query string, records []models.ReviewRecord, now time.Time) (*Response, error) {
	return h.handle(ctx, query, now, h.kind, func(models.ResolvedRange) ([]models.ReviewRecord, error) {
		return records, nil
	})
}

// HandleQuery is Handle with the records read from the store for the
// resolved range.
func (h *Handler) HandleQuery(ctx context.Context, query string, now time.Time, kind models.ChartKind) (*Response, error) {
	if h.store == nil {
		return nil, fmt.Errorf("visualization handler has no store")
	}
	if !kind.Valid() {
		kind = h.kind
	}
	return h.handle(ctx, query, now, kind, func(rng models.ResolvedRange) ([]models.ReviewRecord, error) {
		records, err := h.store.ReadRange(ctx, rng.Start, rng.End)
		if err != nil {
			return nil, fmt.Errorf("read records: %w", err)
		}
		return records, nil
	})
}

// Summarize resolves and aggregates like HandleQuery without rendering.
func (h *Handler) Summarize(ctx context.Context, query string, now time.Time) (*Response, error) {
	if h.store == nil {
		return nil, fmt.Errorf("visualization handler has no store")
	}
	rng, series, err := h.aggregate(query, now, func(rng models.ResolvedRange) ([]models.ReviewRecord, error) {
		return h.store.ReadRange(ctx, rng.Start, rng.End)
	})
	if err != nil {
		return nil, err
	}
	return &Response{Range: rng, Series: series, Summary: trends.Summarize(series)}, nil
}

func (h *Handler) handle(ctx context.Context, query string, now time.Time, kind models.ChartKind, load func(models.ResolvedRange) ([]models.ReviewRecord, error)) (*Response, error) {
	start := time.Now()

	rng, series, err := h.aggregate(query, now, load)
	if err != nil {
		metrics.ObserveTrendRequest(metrics.OutcomeError)
		return nil, err
	}

	artifact, err := h.renderer.Render(ctx, series, kind)
	if err != nil {
		metrics.ObserveTrendRequest(metrics.OutcomeError)
		slog.Error("[VisualizationHandler] Render failed",
			slog.String("query", query),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("render %s chart: %w", kind, err)
	}

	metrics.ObserveTrendRequest(metrics.OutcomeSuccess)
	slog.Info("[VisualizationHandler] Chart rendered",
		slog.String("query", query),
		slog.String("artifact", artifact),
		slog.Int("days", len(series)),
		slog.Duration("elapsed", time.Since(start)))

	return &Response{
		Range:    rng,
		Series:   series,
		Artifact: artifact,
		Summary:  trends.Summarize(series),
	}, nil
}

func (h *Handler) aggregate(query string, now time.Time, load func(models.ResolvedRange) ([]models.ReviewRecord, error)) (models.ResolvedRange, []models.DailyAggregate, error) {
	rng, err := h.resolver.Resolve(query, now)
	if err != nil {
		return models.ResolvedRange{}, nil, err
	}
	if len(trends.Days(rng)) == 0 {
		return rng, nil, apperrors.EmptyRange(rng.Start, rng.End)
	}

	records, err := load(rng)
	if err != nil {
		return rng, nil, err
	}

	return rng, trends.Aggregate(records, rng), nil
}
