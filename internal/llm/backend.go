package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/steamnoodles/config"
	"github.com/spacesedan/steamnoodles/internal/clients"
	"github.com/spacesedan/steamnoodles/internal/feedback"
	"github.com/spacesedan/steamnoodles/internal/models"
	"github.com/spacesedan/steamnoodles/internal/sentiment"
)

type Classifier interface {
	Classify(ctx context.Context, text string) (models.Sentiment, error)
}

type Generator interface {
	Generate(ctx context.Context, text string, sentiment models.Sentiment) (string, error)
}

// HealthChecker is implemented by backends that can probe their service.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

type combined struct {
	Classifier
	Generator
}

// Combine pairs a classifier and a generator into one feedback.Backend.
func Combine(c Classifier, g Generator) feedback.Backend {
	return combined{Classifier: c, Generator: g}
}

// New builds the backend selected by settings. Remote backends sit behind
// a circuit breaker. The returned checker is nil when nothing remote is
// probeable.
func New(cfg config.Settings) (feedback.Backend, HealthChecker, error) {
	var (
		openAI  *OpenAIBackend
		checker HealthChecker
	)
	getOpenAI := func() *OpenAIBackend {
		if openAI == nil {
			client := clients.GetOpenAIClient(clients.OpenAIConfig{
				APIKey:  cfg.OpenAIAPIKey,
				BaseURL: cfg.OpenAIBaseURL,
				Timeout: cfg.ServiceTimeout,
			})
			openAI = NewOpenAIBackend(client, OpenAIOptions{
				Model:       cfg.OpenAIModel,
				Temperature: cfg.OpenAITemperature,
				MaxTokens:   cfg.OpenAIMaxTokens,
			})
		}
		return openAI
	}

	var classifier Classifier
	switch cfg.ClassifierBackend {
	case config.BackendOpenAI:
		classifier = getOpenAI()
	case config.BackendHuggingFace:
		hf := NewHuggingFaceClassifier(clients.NewHuggingFaceClient(cfg.HFSentimentEndpoint, cfg.ServiceTimeout))
		classifier = hf
		checker = hf
	case config.BackendVader:
		classifier = sentiment.NewVaderClassifier()
	default:
		return nil, nil, fmt.Errorf("[LLM] unknown classifier backend %q", cfg.ClassifierBackend)
	}

	var generator Generator
	switch cfg.GeneratorBackend {
	case config.BackendOpenAI:
		generator = getOpenAI()
	case config.BackendTemplate:
		generator = NewTemplateGenerator()
	default:
		return nil, nil, fmt.Errorf("[LLM] unknown generator backend %q", cfg.GeneratorBackend)
	}

	slog.Info("[LLM] Feedback backend configured",
		slog.String("classifier", cfg.ClassifierBackend),
		slog.String("generator", cfg.GeneratorBackend))

	backend := Combine(classifier, generator)
	if cfg.ClassifierBackend == config.BackendVader && cfg.GeneratorBackend == config.BackendTemplate {
		return backend, checker, nil
	}
	return NewBreaker(backend, DefaultBreakerConfig("feedback-backend")), checker, nil
}
