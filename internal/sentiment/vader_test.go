package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/steamnoodles/internal/apperrors"
	"github.com/spacesedan/steamnoodles/internal/models"
)

func TestVaderClassifier_Labels(t *testing.T) {
	c := NewVaderClassifier()
	ctx := context.Background()

	got, err := c.Classify(ctx, "The noodles were amazing and the staff were wonderful!")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, got)

	got, err = c.Classify(ctx, "Terrible service, cold food, awful experience.")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNegative, got)

	got, err = c.Classify(ctx, "I ordered the ramen at noon.")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, got)
}

func TestVaderClassifier_EmptyText(t *testing.T) {
	_, err := NewVaderClassifier().Classify(context.Background(), "  \n ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestVaderClassifier_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewVaderClassifier().Classify(ctx, "great")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConvertMarkdownToText(t *testing.T) {
	in := "**Great** [menu](https://example.com/menu) see https://example.com"
	assert.Equal(t, "Great menu see", ConvertMarkdownToText(in))
}
