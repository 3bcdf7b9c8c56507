// Package seed generates sample review data for demos and local testing.
package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/steamnoodles/internal/models"
)

const (
	DefaultCount    = 200
	DefaultDaysBack = 30
	variationChance = 0.3
)

// Weights is the share of each label in generated data.
var Weights = map[models.Sentiment]float64{
	models.SentimentPositive: 0.5,
	models.SentimentNegative: 0.3,
	models.SentimentNeutral:  0.2,
}

var seedNamespace = uuid.MustParse("6f1c2b8e-4d0a-4e5b-9a43-2f3b1c7d9e10")

type Options struct {
	Count    int
	DaysBack int
	Seed     uint64
	Now      time.Time
}

// Generate returns Count reviews spread over the calendar days from
// DaysBack days before Now up to Now's day, in Now's location. The same
// Options always yield the same records.
func Generate(opts Options) []models.ReviewRecord {
	if opts.Count <= 0 {
		opts.Count = DefaultCount
	}
	if opts.DaysBack < 0 {
		opts.DaysBack = DefaultDaysBack
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	today := time.Date(opts.Now.Year(), opts.Now.Month(), opts.Now.Day(), 0, 0, 0, 0, opts.Now.Location())
	first := today.AddDate(0, 0, -opts.DaysBack)

	records := make([]models.ReviewRecord, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		day := first.AddDate(0, 0, rng.IntN(opts.DaysBack+1))
		ts := day.Add(time.Duration(rng.Int64N(int64(24 * time.Hour))))
		if ts.After(opts.Now) {
			ts = opts.Now
		}

		sentiment := pickSentiment(rng)
		texts := reviewTexts[sentiment]
		text := texts[rng.IntN(len(texts))]
		if rng.Float64() < variationChance {
			text += variations[rng.IntN(len(variations))]
		}

		records = append(records, models.ReviewRecord{
			ID:        uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("%d/%d", opts.Seed, i))).String(),
			Timestamp: ts,
			Text:      text,
			Sentiment: sentiment,
		})
	}
	return records
}

func pickSentiment(rng *rand.Rand) models.Sentiment {
	r := rng.Float64()
	var acc float64
	for _, s := range models.Sentiments {
		acc += Weights[s]
		if r < acc {
			return s
		}
	}
	return models.SentimentNeutral
}
