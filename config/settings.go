package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	BackendOpenAI      = "openai"
	BackendHuggingFace = "huggingface"
	BackendVader       = "vader"
	BackendTemplate    = "template"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
)

// Settings is every knob the service reads from the environment.
type Settings struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	OpenAIAPIKey      string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string  `env:"OPENAI_BASE_URL"`
	OpenAIModel       string  `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAITemperature float32 `env:"OPENAI_TEMPERATURE" envDefault:"0.7"`
	OpenAIMaxTokens   int     `env:"OPENAI_MAX_TOKENS" envDefault:"200"`

	HFSentimentEndpoint string `env:"HF_SENTIMENT_ENDPOINT" envDefault:"http://localhost:7000/analyze_batch"`

	ClassifierBackend   string        `env:"CLASSIFIER_BACKEND" envDefault:"openai"`
	GeneratorBackend    string        `env:"GENERATOR_BACKEND" envDefault:"openai"`
	FeedbackConcurrency int           `env:"FEEDBACK_CONCURRENCY" envDefault:"4"`
	ServiceTimeout      time.Duration `env:"SERVICE_TIMEOUT" envDefault:"60s"`

	StoreDriver   string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"data/reviews.db"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
	DynamoDBTable string `env:"DYNAMODB_TABLE" envDefault:"Reviews"`
	AWSRegion     string `env:"AWS_REGION" envDefault:"us-west-2"`
	AWSEndpoint   string `env:"AWS_ENDPOINT"`

	ValkeyAddress  string `env:"VALKEY_ADDRESS"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`
	ValkeyTLS      bool   `env:"VALKEY_TLS" envDefault:"false"`

	KafkaBroker string `env:"KAFKA_BROKER"`
	KafkaTopic  string `env:"KAFKA_TOPIC" envDefault:"review-results"`

	OutputDir   string `env:"OUTPUT_DIR" envDefault:"outputs"`
	MaxDaysBack int    `env:"MAX_DAYS_BACK" envDefault:"365"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
}

// Load parses the environment into Settings. It does not validate.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}
	return s, nil
}

// MaxSpan is the longest range a trend query may cover.
func (s Settings) MaxSpan() time.Duration {
	return time.Duration(s.MaxDaysBack) * 24 * time.Hour
}

func (s Settings) usesOpenAI() bool {
	return s.ClassifierBackend == BackendOpenAI || s.GeneratorBackend == BackendOpenAI
}

// Validate reports every inconsistent setting at once.
func (s Settings) Validate() error {
	var errs []error

	switch s.ClassifierBackend {
	case BackendOpenAI, BackendHuggingFace, BackendVader:
	default:
		errs = append(errs, fmt.Errorf("unknown CLASSIFIER_BACKEND %q", s.ClassifierBackend))
	}
	switch s.GeneratorBackend {
	case BackendOpenAI, BackendTemplate:
	default:
		errs = append(errs, fmt.Errorf("unknown GENERATOR_BACKEND %q", s.GeneratorBackend))
	}
	if s.usesOpenAI() && s.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai backend"))
	}
	if s.ClassifierBackend == BackendHuggingFace && s.HFSentimentEndpoint == "" {
		errs = append(errs, errors.New("HF_SENTIMENT_ENDPOINT is required for the huggingface backend"))
	}

	switch s.StoreDriver {
	case DriverSQLite:
		if s.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	case DriverPostgres:
		if s.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres store"))
		}
	case DriverDynamoDB:
		if s.DynamoDBTable == "" {
			errs = append(errs, errors.New("DYNAMODB_TABLE is required for the dynamodb store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", s.StoreDriver))
	}

	if s.FeedbackConcurrency < 1 {
		errs = append(errs, fmt.Errorf("FEEDBACK_CONCURRENCY must be positive, got %d", s.FeedbackConcurrency))
	}
	if s.MaxDaysBack < 1 {
		errs = append(errs, fmt.Errorf("MAX_DAYS_BACK must be positive, got %d", s.MaxDaysBack))
	}
	if s.ServiceTimeout <= 0 {
		errs = append(errs, errors.New("SERVICE_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
