package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() Settings {
	return Settings{
		OpenAIAPIKey:        "sk-test",
		ClassifierBackend:   BackendOpenAI,
		GeneratorBackend:    BackendOpenAI,
		FeedbackConcurrency: 4,
		ServiceTimeout:      time.Minute,
		StoreDriver:         DriverSQLite,
		SQLitePath:          "data/reviews.db",
		MaxDaysBack:         365,
	}
}

func TestLoad_Defaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", s.OpenAIModel)
	assert.InDelta(t, 0.7, s.OpenAITemperature, 1e-6)
	assert.Equal(t, 200, s.OpenAIMaxTokens)
	assert.Equal(t, 4, s.FeedbackConcurrency)
	assert.Equal(t, DriverSQLite, s.StoreDriver)
	assert.Equal(t, 365, s.MaxDaysBack)
	assert.Equal(t, 60*time.Second, s.ServiceTimeout)
	assert.Equal(t, "review-results", s.KafkaTopic)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/reviews")
	t.Setenv("MAX_DAYS_BACK", "90")
	t.Setenv("SERVICE_TIMEOUT", "5s")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, s.StoreDriver)
	assert.Equal(t, "postgres://localhost/reviews", s.PostgresDSN)
	assert.Equal(t, 90*24*time.Hour, s.MaxSpan())
	assert.Equal(t, 5*time.Second, s.ServiceTimeout)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("FEEDBACK_CONCURRENCY", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validSettings().Validate())
}

func TestValidate_MissingAPIKey(t *testing.T) {
	s := validSettings()
	s.OpenAIAPIKey = ""

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestValidate_OfflineBackendsNeedNoKey(t *testing.T) {
	s := validSettings()
	s.OpenAIAPIKey = ""
	s.ClassifierBackend = BackendVader
	s.GeneratorBackend = BackendTemplate

	assert.NoError(t, s.Validate())
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	s := validSettings()
	s.StoreDriver = "mongo"
	s.FeedbackConcurrency = 0
	s.MaxDaysBack = -1

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "FEEDBACK_CONCURRENCY")
	assert.Contains(t, err.Error(), "MAX_DAYS_BACK")
}

func TestValidate_PostgresNeedsDSN(t *testing.T) {
	s := validSettings()
	s.StoreDriver = DriverPostgres

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POSTGRES_DSN")
}
