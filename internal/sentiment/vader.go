package sentiment

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/steamnoodles/internal/apperrors"
	"github.com/spacesedan/steamnoodles/internal/models"
)

const (
	PositiveThreshold = 0.20
	NegativeThreshold = -0.20
)

var (
	analyzer    = govader.NewSentimentIntensityAnalyzer()
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText flattens markdown into a single line of text.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(stripTags(string(output))), " ")

	return strings.TrimSpace(RemoveLinks(plainText))
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(html string) string {
	return tagPattern.ReplaceAllString(html, " ")
}

func AnalyzeWithVADER(text string) (float64, models.Sentiment) {
	plainText := ConvertMarkdownToText(text)

	score := analyzer.PolarityScores(plainText).Compound

	switch {
	case score >= PositiveThreshold:
		return score, models.SentimentPositive
	case score <= NegativeThreshold:
		return score, models.SentimentNegative
	default:
		return score, models.SentimentNeutral
	}
}

// VaderClassifier labels text locally with the VADER lexicon. It never
// reaches the network, so it is the fallback when no model service is
// configured.
type VaderClassifier struct{}

func NewVaderClassifier() *VaderClassifier {
	return &VaderClassifier{}
}

func (VaderClassifier) Classify(ctx context.Context, text string) (models.Sentiment, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.InvalidInput("review text is empty")
	}
	_, label := AnalyzeWithVADER(text)
	return label, nil
}
