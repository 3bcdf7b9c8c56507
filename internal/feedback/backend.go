package feedback

import (
	"context"

	"github.com/spacesedan/steamnoodles/internal/models"
)

// Backend is the text-generation capability the pipeline depends on.
// Implementations talk to an external model; tests substitute a
// deterministic stand-in.
type Backend interface {
	// Classify maps review text onto exactly one taxonomy label.
	Classify(ctx context.Context, text string) (models.Sentiment, error)
	// Generate writes a reply for text whose sentiment is already known.
	Generate(ctx context.Context, text string, sentiment models.Sentiment) (string, error)
}
