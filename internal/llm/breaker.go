package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/spacesedan/steamnoodles/internal/apperrors"
	"github.com/spacesedan/steamnoodles/internal/feedback"
	"github.com/spacesedan/steamnoodles/internal/metrics"
	"github.com/spacesedan/steamnoodles/internal/models"
)

type BreakerConfig struct {
	Name string
	// MaxRequests allowed while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counts. Zero never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

// Breaker stops calling a failing backend for a while. Classification and
// reply generation trip independently, so a reply outage never rejects
// classification. Rejected calls fail with ServiceUnavailable without
// reaching the backend.
type Breaker struct {
	next     feedback.Backend
	classify *gobreaker.CircuitBreaker[string]
	generate *gobreaker.CircuitBreaker[string]
	name     string
}

func NewBreaker(next feedback.Backend, cfg BreakerConfig) *Breaker {
	return &Breaker{
		next:     next,
		classify: newCircuitBreaker(cfg, cfg.Name+"-classify"),
		generate: newCircuitBreaker(cfg, cfg.Name+"-generate"),
		name:     cfg.Name,
	}
}

func newCircuitBreaker(cfg BreakerConfig, name string) *gobreaker.CircuitBreaker[string] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureRatio
		},
		IsSuccessful: isBackendHealthy,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("[Breaker] Circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.SetBreakerState(name, stateToFloat(to))
		},
	}

	metrics.SetBreakerState(name, 0)
	return gobreaker.NewCircuitBreaker[string](settings)
}

func (b *Breaker) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	label, err := b.classify.Execute(func() (string, error) {
		s, err := b.next.Classify(ctx, text)
		return string(s), err
	})
	if err != nil {
		return "", b.wrap(err)
	}
	return models.Sentiment(label), nil
}

func (b *Breaker) Generate(ctx context.Context, text string, sentiment models.Sentiment) (string, error) {
	reply, err := b.generate.Execute(func() (string, error) {
		return b.next.Generate(ctx, text, sentiment)
	})
	if err != nil {
		return "", b.wrap(err)
	}
	return reply, nil
}

func (b *Breaker) ClassifyState() gobreaker.State {
	return b.classify.State()
}

func (b *Breaker) GenerateState() gobreaker.State {
	return b.generate.State()
}

func (b *Breaker) wrap(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.ServiceUnavailable(b.name, err)
	}
	return err
}

// Caller mistakes and cancellations say nothing about backend health.
func isBackendHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, apperrors.ErrInvalidInput) ||
		errors.Is(err, context.Canceled)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
