package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/steamnoodles/internal/clients"
	"github.com/spacesedan/steamnoodles/internal/models"
)

// chatServer answers every chat completion with content(request).
func chatServer(t *testing.T, content func(req openai.ChatCompletionRequest) string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.Equal(t, "/v1/chat/completions", r.URL.Path) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req openai.ChatCompletionRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content(req)},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestBackend(srv *httptest.Server) *OpenAIBackend {
	client := clients.NewOpenAIClient(clients.OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	return NewOpenAIBackend(client, OpenAIOptions{Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: 200})
}

func TestOpenAIBackend_Classify(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := chatServer(t, func(req openai.ChatCompletionRequest) string {
		got = req
		return `{"sentiment": "Negative"}`
	})

	sentiment, err := newTestBackend(srv).Classify(context.Background(), "The broth was cold.")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNegative, sentiment)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "The broth was cold.", got.Messages[1].Content)
	assert.Equal(t, 200, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
}

func TestOpenAIBackend_ClassifyRejectsNovelLabel(t *testing.T) {
	srv := chatServer(t, func(openai.ChatCompletionRequest) string {
		return `{"sentiment": "ecstatic"}`
	})

	_, err := newTestBackend(srv).Classify(context.Background(), "wow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ecstatic")
}

func TestOpenAIBackend_ClassifyMalformedOutput(t *testing.T) {
	srv := chatServer(t, func(openai.ChatCompletionRequest) string {
		return "I think this is positive"
	})

	_, err := newTestBackend(srv).Classify(context.Background(), "nice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object")
}

func TestOpenAIBackend_GenerateConditionsOnSentiment(t *testing.T) {
	srv := chatServer(t, func(req openai.ChatCompletionRequest) string {
		if strings.Contains(req.Messages[0].Content, "classified as negative") {
			return "```json\n{\"reply\": \"We're so sorry about the wait.\"}\n```"
		}
		return `{"reply": "wrong branch"}`
	})

	reply, err := newTestBackend(srv).Generate(context.Background(), "Slow service", models.SentimentNegative)
	require.NoError(t, err)
	assert.Equal(t, "We're so sorry about the wait.", reply)
}

func TestOpenAIBackend_GenerateEmptyReply(t *testing.T) {
	srv := chatServer(t, func(openai.ChatCompletionRequest) string {
		return `{"reply": "   "}`
	})

	_, err := newTestBackend(srv).Generate(context.Background(), "ok", models.SentimentNeutral)
	assert.Error(t, err)
}

func TestOpenAIBackend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": {"message": "boom", "type": "server_error"}}`)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestBackend(srv).Classify(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat completion failed")
}

func TestDecodeJSON_ChattyOutput(t *testing.T) {
	var out models.OpenAIClassification
	err := decodeJSON("Sure! Here you go:\n{“sentiment”: “positive”}\nThanks", &out)
	require.NoError(t, err)
	assert.Equal(t, "positive", out.Sentiment)
}
