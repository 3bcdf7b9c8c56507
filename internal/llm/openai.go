package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/spacesedan/steamnoodles/internal/clients"
	"github.com/spacesedan/steamnoodles/internal/models"
)

const classifyPrompt = `You are a customer service AI for SteamNoodles restaurant.
Classify the sentiment of the customer feedback you are given.

Respond with JSON only, in exactly this format:
{"sentiment": "positive" | "negative" | "neutral"}

Use "neutral" for feedback that is mixed or carries no clear opinion.`

const replyPrompt = `You are a customer service AI for SteamNoodles restaurant.
Write a professional, empathetic reply to the customer feedback you are given.
The feedback has already been classified as %s.

Guidelines:
- For positive feedback: thank them warmly, express appreciation, invite them back.
- For negative feedback: apologize sincerely, acknowledge their concerns, offer to make it right.
- For neutral feedback: thank them politely, encourage future visits.

Keep the reply to one or two sentences and personalize it to their feedback.

Respond with JSON only, in exactly this format:
{"reply": "your reply here"}`

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type OpenAIOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// OpenAIBackend classifies and replies through the chat completions API.
type OpenAIBackend struct {
	client *openai.Client
	opts   OpenAIOptions
}

func NewOpenAIBackend(client *clients.OpenAIClient, opts OpenAIOptions) *OpenAIBackend {
	if opts.Model == "" {
		opts.Model = openai.GPT4oMini
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 200
	}
	return &OpenAIBackend{client: client.Client, opts: opts}
}

func (b *OpenAIBackend) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	raw, err := b.complete(ctx, classifyPrompt, text)
	if err != nil {
		return "", err
	}

	var out models.OpenAIClassification
	if err := decodeJSON(raw, &out); err != nil {
		return "", err
	}

	sentiment, ok := models.ParseSentiment(out.Sentiment)
	if !ok {
		return "", fmt.Errorf("[OpenAIBackend] unrecognized sentiment label %q", out.Sentiment)
	}
	return sentiment, nil
}

func (b *OpenAIBackend) Generate(ctx context.Context, text string, sentiment models.Sentiment) (string, error) {
	raw, err := b.complete(ctx, fmt.Sprintf(replyPrompt, sentiment), text)
	if err != nil {
		return "", err
	}

	var out models.OpenAIReply
	if err := decodeJSON(raw, &out); err != nil {
		return "", err
	}

	reply := strings.TrimSpace(out.Reply)
	if reply == "" {
		return "", errors.New("[OpenAIBackend] model returned an empty reply")
	}
	return reply, nil
}

func (b *OpenAIBackend) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: b.opts.Temperature,
		MaxTokens:   b.opts.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		slog.Warn("[OpenAIBackend] Chat completion failed",
			slog.String("model", b.opts.Model),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("[OpenAIBackend] chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("[OpenAIBackend] model returned no content")
	}
	return resp.Choices[0].Message.Content, nil
}

// decodeJSON accepts fenced or chatty output as long as one JSON object is
// in it.
func decodeJSON(raw string, v any) error {
	cleaned := cleanOpenAIResponse(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	match := jsonObjectPattern.FindString(cleaned)
	if match == "" {
		return fmt.Errorf("[OpenAIBackend] no JSON object in model output: %q", preview(raw))
	}
	if err := json.Unmarshal([]byte(match), v); err != nil {
		return fmt.Errorf("[OpenAIBackend] malformed JSON in model output: %w", err)
	}
	return nil
}

func cleanOpenAIResponse(response string) string {
	response = strings.TrimSpace(response)

	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	// Curly quotes break the decoder
	response = strings.ReplaceAll(response, "“", `"`)
	response = strings.ReplaceAll(response, "”", `"`)

	return strings.TrimSpace(response)
}

func preview(s string) string {
	const limit = 120
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
