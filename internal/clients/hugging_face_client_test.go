package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/steamnoodles/internal/models"
)

func testHuggingFaceClient(endpoint string) *HuggingFaceClient {
	c := NewHuggingFaceClient(endpoint, 5*time.Second)
	c.MaxRetries = 3
	c.InitialBackoff = time.Millisecond
	return c
}

func TestGetBatchedSentimentAnalysisRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var req models.SentimentAnalysisBatchRequest
		if !assert.NoError(t, json.Unmarshal(body, &req), "body must be replayed on retry") {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, USER_AGENT, r.Header.Get("User-Agent"))

		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		resp := models.SentimentAnalysisBatchResponse{{
			ContentID:      req[0].ContentID,
			SentimentLabel: "positive",
			Confidence:     0.98,
		}}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testHuggingFaceClient(srv.URL + "/analyze_batch")
	out, err := c.GetBatchedSentimentAnalysis(context.Background(), models.SentimentAnalysisBatchRequest{
		{ContentID: "r1", Text: "great noodles"},
	})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "positive", out[0].SentimentLabel)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGetBatchedSentimentAnalysisGivesUp(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testHuggingFaceClient(srv.URL)
	_, err := c.GetBatchedSentimentAnalysis(context.Background(), models.SentimentAnalysisBatchRequest{{ContentID: "r1", Text: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 503")
	assert.Equal(t, int32(3), attempts.Load())
}

func TestGetBatchedSentimentAnalysisClientErrorIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testHuggingFaceClient(srv.URL)
	_, err := c.GetBatchedSentimentAnalysis(context.Background(), models.SentimentAnalysisBatchRequest{{ContentID: "r1", Text: "x"}})
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestGetBatchedSentimentAnalysisMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	c := testHuggingFaceClient(srv.URL)
	_, err := c.GetBatchedSentimentAnalysis(context.Background(), models.SentimentAnalysisBatchRequest{{ContentID: "r1", Text: "x"}})
	assert.ErrorContains(t, err, "failed to unmarshal response")
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.True(t, testHuggingFaceClient(srv.URL+"/analyze_batch").HealthCheck(context.Background()))

	srv.Close()
	assert.False(t, testHuggingFaceClient(srv.URL+"/analyze_batch").HealthCheck(context.Background()))
}
