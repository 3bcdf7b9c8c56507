// Package ingest runs raw feedback through the pipeline, stores what came
// out and fans it out to subscribers. Reviews already seen are skipped.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spacesedan/steamnoodles/internal/feedback"
	"github.com/spacesedan/steamnoodles/internal/metrics"
	"github.com/spacesedan/steamnoodles/internal/models"
	"github.com/spacesedan/steamnoodles/internal/utils"
)

// ErrDuplicate marks a position whose text was already ingested.
var ErrDuplicate = errors.New("review already processed")

const (
	resultStored    = "stored"
	resultDuplicate = "duplicate"
	resultFailed    = "failed"
)

type Processor interface {
	ProcessBatch(ctx context.Context, texts []string) []feedback.Result
}

type Appender interface {
	Append(ctx context.Context, records ...models.ReviewRecord) error
}

type Deduplicator interface {
	IsProcessed(ctx context.Context, key string) bool
	MarkProcessed(ctx context.Context, key string) error
}

type Publisher interface {
	PublishReviews(ctx context.Context, records []models.ReviewRecord) error
}

// Report has one result per input text, in input order.
type Report struct {
	Results    []feedback.Result
	Stored     int
	Duplicates int
	Failed     int
}

type Service struct {
	processor Processor
	store     Appender
	dedup     Deduplicator
	publisher Publisher
	batchSize int
}

type Option func(*Service)

func WithDeduplicator(d Deduplicator) Option {
	return func(s *Service) { s.dedup = d }
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithBatchSize sets how many records are written per store call.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func NewService(processor Processor, store Appender, opts ...Option) *Service {
	s := &Service{
		processor: processor,
		store:     store,
		batchSize: utils.DYNAMODB_BATCH_SIZE,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ContentKey identifies a review by its normalized text.
func ContentKey(text string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Ingest processes texts and stores every record the pipeline produced,
// including those whose reply failed. A storage failure aborts the call;
// per-item failures are reported in the Report.
func (s *Service) Ingest(ctx context.Context, texts []string) (Report, error) {
	report := Report{Results: make([]feedback.Result, len(texts))}

	keys := make([]string, len(texts))
	seen := make(map[string]bool, len(texts))
	var (
		fresh    []string
		freshPos []int
	)
	for i, text := range texts {
		keys[i] = ContentKey(text)
		blank := strings.TrimSpace(text) == ""
		if !blank && (seen[keys[i]] || (s.dedup != nil && s.dedup.IsProcessed(ctx, keys[i]))) {
			report.Results[i] = feedback.Result{Err: ErrDuplicate}
			report.Duplicates++
			continue
		}
		seen[keys[i]] = true
		fresh = append(fresh, text)
		freshPos = append(freshPos, i)
	}

	var produced []int
	for j, res := range s.processor.ProcessBatch(ctx, fresh) {
		pos := freshPos[j]
		report.Results[pos] = res
		if res.Record == nil {
			report.Failed++
			continue
		}
		produced = append(produced, pos)
	}

	buffer := utils.NewBatchBuffer[int](s.batchSize)
	for _, pos := range produced {
		if buffer.Add(pos) {
			if err := s.flush(ctx, buffer.GetAndClear(), keys, report.Results); err != nil {
				return report, err
			}
		}
	}
	if buffer.HasData() {
		if err := s.flush(ctx, buffer.GetAndClear(), keys, report.Results); err != nil {
			return report, err
		}
	}
	report.Stored = len(produced)

	metrics.ObserveIngested(resultStored, report.Stored)
	metrics.ObserveIngested(resultDuplicate, report.Duplicates)
	metrics.ObserveIngested(resultFailed, report.Failed)

	slog.Info("[Ingest] Batch ingested",
		slog.Int("received", len(texts)),
		slog.Int("stored", report.Stored),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("failed", report.Failed))
	return report, nil
}

func (s *Service) flush(ctx context.Context, positions []int, keys []string, results []feedback.Result) error {
	if len(positions) == 0 {
		return nil
	}

	records := make([]models.ReviewRecord, 0, len(positions))
	for _, pos := range positions {
		records = append(records, *results[pos].Record)
	}

	if err := s.store.Append(ctx, records...); err != nil {
		slog.Error("[Ingest] Failed to store reviews",
			slog.Int("count", len(records)),
			slog.String("error", err.Error()))
		return fmt.Errorf("[Ingest] storing %d reviews: %w", len(records), err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReviews(ctx, records); err != nil {
			slog.Warn("[Ingest] Failed to publish reviews, continuing",
				slog.Int("count", len(records)),
				slog.String("error", err.Error()))
		}
	}

	if s.dedup != nil {
		for _, pos := range positions {
			if err := s.dedup.MarkProcessed(ctx, keys[pos]); err != nil {
				slog.Warn("[Ingest] Failed to mark review as processed",
					slog.String("id", results[pos].Record.ID),
					slog.String("error", err.Error()))
			}
		}
	}
	return nil
}
