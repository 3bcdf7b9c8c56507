package llm

import (
	"context"
	"fmt"

	"github.com/spacesedan/steamnoodles/internal/clients"
	"github.com/spacesedan/steamnoodles/internal/models"
)

const singleContentID = "review"

// HuggingFaceClassifier labels text through the sentiment analysis
// service behind clients.HuggingFaceClient.
type HuggingFaceClassifier struct {
	client *clients.HuggingFaceClient
}

func NewHuggingFaceClassifier(client *clients.HuggingFaceClient) *HuggingFaceClassifier {
	return &HuggingFaceClassifier{client: client}
}

func (h *HuggingFaceClassifier) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	resp, err := h.client.GetBatchedSentimentAnalysis(ctx, models.SentimentAnalysisBatchRequest{
		{ContentID: singleContentID, Text: text},
	})
	if err != nil {
		return "", err
	}

	for _, r := range resp {
		if r.ContentID != singleContentID {
			continue
		}
		sentiment, ok := models.ParseSentiment(r.SentimentLabel)
		if !ok {
			return "", fmt.Errorf("[HuggingFaceClassifier] unrecognized sentiment label %q", r.SentimentLabel)
		}
		return sentiment, nil
	}
	return "", fmt.Errorf("[HuggingFaceClassifier] no result for %q in response of %d items", singleContentID, len(resp))
}

func (h *HuggingFaceClassifier) HealthCheck(ctx context.Context) bool {
	return h.client.HealthCheck(ctx)
}
