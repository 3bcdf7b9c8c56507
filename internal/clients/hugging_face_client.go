package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spacesedan/steamnoodles/internal/models"
)

const (
	HF_SENTIMENT_ANALYSIS_ENDPOINT = "https://spacesedan-sentiment-analyzer.hf.space/analyze_batch"
)

type HuggingFaceClient struct {
	Client         *http.Client
	Endpoint       string
	MaxRetries     int
	InitialBackoff time.Duration
}

func NewHuggingFaceClient(endpoint string, timeout time.Duration) *HuggingFaceClient {
	if endpoint == "" {
		endpoint = HF_SENTIMENT_ANALYSIS_ENDPOINT
	}
	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.Duration("timeout", timeout),
		slog.String("endpoint", endpoint))
	return &HuggingFaceClient{
		Client: &http.Client{
			Timeout: timeout,
		},
		Endpoint:       endpoint,
		MaxRetries:     MAX_RETRIES,
		InitialBackoff: INITIAL_BACKOFF,
	}
}

// DoWithRetry retries transport errors and 5xx responses with exponential
// backoff. newReq is called per attempt so the body can be replayed.
func (h *HuggingFaceClient) DoWithRetry(ctx context.Context, newReq func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.InitialBackoff
	retries := max(h.MaxRetries, 1)

	for attempt := 0; attempt < retries; attempt++ {
		req, buildErr := newReq()
		if buildErr != nil {
			return nil, buildErr
		}

		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		if attempt == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}

	if err == nil {
		err = fmt.Errorf("%s", errMsg(nil, resp))
	}
	return nil, err
}

// GetBatchedSentimentAnalysis classifies every request item in one call.
func (h *HuggingFaceClient) GetBatchedSentimentAnalysis(ctx context.Context, input models.SentimentAnalysisBatchRequest) (models.SentimentAnalysisBatchResponse, error) {
	var result models.SentimentAnalysisBatchResponse
	slog.Debug("[HuggingFaceClient] Requesting sentiment analysis from sentiment analysis service",
		slog.Int("batch_size", len(input)))
	start := time.Now()

	err := h.postJSON(ctx, h.Endpoint, input, &result)
	if err != nil {
		slog.Error("[HuggingFaceClient] Sentiment Analysis request failed",
			slog.Duration("elapsed", time.Since(start)))
		return result, err
	}

	slog.Debug("[HuggingFaceClient] Sentiment Analysis request successful",
		slog.Duration("elapsed", time.Since(start)))
	return result, nil
}

// HealthCheck reports whether the service root answers below 500.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) bool {
	root := strings.TrimSuffix(h.Endpoint, "/analyze_batch")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, root, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := h.Client.Do(req)
	if err != nil {
		slog.Warn("[HuggingFaceClient] Health check failed",
			slog.String("error", err.Error()))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// helper function for posting data to the AI services
func (h *HuggingFaceClient) postJSON(ctx context.Context, endpoint string, input interface{}, output interface{}) error {
	body, err := json.Marshal(input)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed to marshal input",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := h.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", USER_AGENT)
		return req, nil
	})
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))

		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed to read response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, getPreview(respBody).Value.String())
	}

	if err := json.Unmarshal(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(string(respBody))))

		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
