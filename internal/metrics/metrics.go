package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spacesedan/steamnoodles/internal/models"
)

const namespace = "steamnoodles"

const (
	// OutcomeSuccess labels trend requests that produced an artifact.
	OutcomeSuccess = "success"
	// OutcomeError labels trend requests that failed for any reason.
	OutcomeError = "error"
)

var (
	reviewsProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_processed_total",
			Help:      "Reviews classified by the feedback pipeline, partitioned by sentiment.",
		},
		[]string{"sentiment"},
	)

	feedbackFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_failures_total",
			Help:      "Feedback pipeline failures, partitioned by error code.",
		},
		[]string{"code"},
	)

	backendCallSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_call_seconds",
			Help:      "Latency of text-generation backend calls in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"operation"},
	)

	trendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trend_requests_total",
			Help:      "Visualization requests handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Backend circuit breaker state (0=closed, 1=half-open, 2=open).",
		},
		[]string{"name"},
	)

	ingestedReviewsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_reviews_total",
			Help:      "Reviews seen by the ingest service, partitioned by result.",
		},
		[]string{"result"},
	)
)

// Register attaches the collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		reviewsProcessedTotal,
		feedbackFailuresTotal,
		backendCallSeconds,
		trendRequestsTotal,
		breakerState,
		ingestedReviewsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func ObserveProcessed(sentiment models.Sentiment) {
	reviewsProcessedTotal.WithLabelValues(sentiment.String()).Inc()
}

func ObserveFailure(code string) {
	feedbackFailuresTotal.WithLabelValues(code).Inc()
}

func ObserveBackendCall(operation string, elapsed time.Duration) {
	backendCallSeconds.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveTrendRequest records a visualization request outcome.
func ObserveTrendRequest(outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	trendRequestsTotal.WithLabelValues(label).Inc()
}

func SetBreakerState(name string, state float64) {
	breakerState.WithLabelValues(name).Set(state)
}

// ObserveIngested counts ingest outcomes: stored, duplicate or failed.
func ObserveIngested(result string, n int) {
	if n <= 0 {
		return
	}
	ingestedReviewsTotal.WithLabelValues(result).Add(float64(n))
}
