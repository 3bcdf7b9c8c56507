// Package feedback turns raw customer feedback into classified, replied
// review records.
package feedback

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/steamnoodles/internal/apperrors"
	"github.com/spacesedan/steamnoodles/internal/metrics"
	"github.com/spacesedan/steamnoodles/internal/models"
)

const DefaultConcurrency = 4

// Result is the outcome for one position of a batch. Record is set on
// success and also when only the reply failed.
type Result struct {
	Record *models.ReviewRecord
	Err    error
}

func (r Result) OK() bool {
	return r.Err == nil
}

type Pipeline struct {
	backend     Backend
	concurrency int
	now         func() time.Time
	newID       func() string
}

type Option func(*Pipeline)

// WithConcurrency bounds how many items of a batch are in flight at once.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithClock overrides the timestamp source for new records.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithIDGenerator overrides how record IDs are minted. It is called
// concurrently during a batch.
func WithIDGenerator(newID func() string) Option {
	return func(p *Pipeline) {
		p.newID = newID
	}
}

func NewPipeline(backend Backend, opts ...Option) *Pipeline {
	p := &Pipeline{
		backend:     backend,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessOne classifies text and then generates a reply for it.
//
// A classification failure returns no record. A reply failure returns the
// classified record without a reply together with a ReplyUnavailable error.
func (p *Pipeline) ProcessOne(ctx context.Context, text string) (*models.ReviewRecord, error) {
	if strings.TrimSpace(text) == "" {
		metrics.ObserveFailure(apperrors.CodeInvalidInput)
		return nil, apperrors.InvalidInput("feedback text is empty")
	}

	sentiment, err := p.classify(ctx, text)
	if err != nil {
		metrics.ObserveFailure(apperrors.Code(err))
		slog.Warn("[FeedbackPipeline] Classification failed",
			slog.String("error", err.Error()))
		return nil, err
	}

	record := &models.ReviewRecord{
		ID:        p.newID(),
		Timestamp: p.now(),
		Text:      text,
		Sentiment: sentiment,
	}
	metrics.ObserveProcessed(sentiment)

	reply, err := p.generate(ctx, text, sentiment)
	if err != nil {
		replyErr := apperrors.ReplyUnavailable(err)
		metrics.ObserveFailure(replyErr.Code)
		slog.Warn("[FeedbackPipeline] Reply generation failed, keeping sentiment",
			slog.String("id", record.ID),
			slog.String("sentiment", sentiment.String()),
			slog.String("error", err.Error()))
		return record, replyErr
	}
	record.Reply = reply

	return record, nil
}

// ProcessBatch runs ProcessOne for every text. The returned slice has the
// same length and order as texts; each position reports its own outcome.
// Once ctx is done no further items are dispatched and the remaining
// positions carry the context error.
func (p *Pipeline) ProcessBatch(ctx context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	slog.Info("[FeedbackPipeline] Processing batch",
		slog.Int("batch_size", len(texts)),
		slog.Int("concurrency", p.concurrency))

dispatch:
	for i, text := range texts {
		select {
		case <-ctx.Done():
			for j := i; j < len(texts); j++ {
				results[j] = Result{Err: ctx.Err()}
			}
			slog.Warn("[FeedbackPipeline] Context canceled, remaining items not dispatched",
				slog.Int("remaining", len(texts)-i))
			break dispatch
		case sem <- struct{}{}:
		}

		// the semaphore may win the select against an already closed ctx
		if err := ctx.Err(); err != nil {
			<-sem
			for j := i; j < len(texts); j++ {
				results[j] = Result{Err: err}
			}
			break dispatch
		}

		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()

			record, err := p.ProcessOne(ctx, text)
			results[i] = Result{Record: record, Err: err}
		}(i, text)
	}

	wg.Wait()
	return results
}

func (p *Pipeline) classify(ctx context.Context, text string) (models.Sentiment, error) {
	start := time.Now()
	sentiment, err := p.backend.Classify(ctx, text)
	metrics.ObserveBackendCall("classify", time.Since(start))
	if err != nil {
		return "", asServiceError("classifier", err)
	}
	if !sentiment.Valid() {
		return "", apperrors.ServiceUnavailable("classifier",
			errors.New("label outside taxonomy: "+string(sentiment)))
	}
	return sentiment, nil
}

func (p *Pipeline) generate(ctx context.Context, text string, sentiment models.Sentiment) (string, error) {
	start := time.Now()
	reply, err := p.backend.Generate(ctx, text, sentiment)
	metrics.ObserveBackendCall("generate", time.Since(start))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(reply) == "" {
		return "", errors.New("generator returned an empty reply")
	}
	return reply, nil
}

// asServiceError keeps typed failures as they are and files everything else
// under ServiceUnavailable.
func asServiceError(service string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.ServiceUnavailable(service, err)
}
