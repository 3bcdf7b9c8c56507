package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/steamnoodles/internal/models"
)

var testNow = time.Date(2024, 12, 31, 15, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	opts := Options{Count: 50, DaysBack: 7, Seed: 42, Now: testNow}

	assert.Equal(t, Generate(opts), Generate(opts))

	opts.Seed = 43
	assert.NotEqual(t, Generate(Options{Count: 50, DaysBack: 7, Seed: 42, Now: testNow}), Generate(opts))
}

func TestGenerate_WithinWindow(t *testing.T) {
	records := Generate(Options{Count: 300, DaysBack: 7, Seed: 1, Now: testNow})
	require.Len(t, records, 300)

	first := time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
	ids := map[string]bool{}
	for _, r := range records {
		assert.False(t, r.Timestamp.Before(first), "timestamp %s before window", r.Timestamp)
		assert.False(t, r.Timestamp.After(testNow), "timestamp %s after now", r.Timestamp)
		assert.True(t, r.Sentiment.Valid())
		assert.NotEmpty(t, r.Text)
		assert.False(t, r.HasReply())
		ids[r.ID] = true
	}
	assert.Len(t, ids, 300)
}

func TestGenerate_FollowsWeights(t *testing.T) {
	records := Generate(Options{Count: 5000, DaysBack: 30, Seed: 7, Now: testNow})

	counts := map[models.Sentiment]int{}
	for _, r := range records {
		counts[r.Sentiment]++
	}
	for s, w := range Weights {
		assert.InDelta(t, w, float64(counts[s])/float64(len(records)), 0.03, "share of %s", s)
	}
}

func TestGenerate_Defaults(t *testing.T) {
	records := Generate(Options{Now: testNow})
	assert.Len(t, records, DefaultCount)
}
