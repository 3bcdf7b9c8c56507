package llm

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/spacesedan/steamnoodles/internal/models"
)

var templateReplies = map[models.Sentiment][]string{
	models.SentimentPositive: {
		"Thank you so much for the kind words! We're delighted you enjoyed your visit and can't wait to welcome you back to SteamNoodles.",
		"We really appreciate you taking the time to share this. It means a lot to our team, and we hope to see you again soon!",
	},
	models.SentimentNegative: {
		"We're truly sorry your experience fell short. Your concerns have been shared with our team, and we'd love the chance to make it right on your next visit.",
		"Thank you for letting us know, and please accept our sincere apologies. We're looking into this so it doesn't happen again.",
	},
	models.SentimentNeutral: {
		"Thank you for your feedback! We hope to see you again at SteamNoodles soon.",
		"We appreciate you sharing your thoughts and look forward to serving you again.",
	},
}

// TemplateGenerator replies from canned text per sentiment. The same
// review always gets the same reply.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

func (TemplateGenerator) Generate(ctx context.Context, text string, sentiment models.Sentiment) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	replies, ok := templateReplies[sentiment]
	if !ok {
		return "", fmt.Errorf("[TemplateGenerator] no replies for sentiment %q", sentiment)
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	return replies[h.Sum32()%uint32(len(replies))], nil
}
