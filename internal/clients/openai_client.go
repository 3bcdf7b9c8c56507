package clients

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAIRequestTimeout = 60 * time.Second // Timeout for individual OpenAI API requests
)

var (
	openAIClientInstance *OpenAIClient
	openAIOnce           sync.Once
)

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type OpenAIClient struct {
	Client *openai.Client
}

// NewOpenAIClient builds a client with its own HTTP timeout. BaseURL is
// only needed for proxies and compatible gateways.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = openAIRequestTimeout
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = &http.Client{
		Timeout: timeout,
	}

	slog.Info("[OpenAIClient] OpenAI client initialized with custom HTTP timeout", slog.Duration("timeout", timeout))
	return &OpenAIClient{
		Client: openai.NewClientWithConfig(config),
	}
}

// GetOpenAIClient returns the process wide client, creating it on first use.
func GetOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.APIKey == "" {
		slog.Error("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
		panic("[OpenAIClient] Missing OPENAI_API_KEY in environment variables")
	}
	openAIOnce.Do(func() {
		openAIClientInstance = NewOpenAIClient(cfg)
	})
	return openAIClientInstance
}
