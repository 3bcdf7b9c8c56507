// Package trends buckets classified reviews into per-day sentiment counts.
package trends

import (
	"time"

	"github.com/spacesedan/steamnoodles/internal/models"
)

// Days lists the calendar days covered by rng in rng.Start's location: the
// day containing Start, then every following midnight before End. A range
// with Start >= End covers no days.
func Days(rng models.ResolvedRange) []time.Time {
	if !rng.Start.Before(rng.End) {
		return nil
	}

	var days []time.Time
	for d := startOfDay(rng.Start); d.Before(rng.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Aggregate counts records per day and sentiment over rng. Records outside
// rng or without a sentiment are skipped. Every day of rng gets an entry,
// in ascending order, even when nothing was recorded that day.
func Aggregate(records []models.ReviewRecord, rng models.ResolvedRange) []models.DailyAggregate {
	days := Days(rng)
	if len(days) == 0 {
		return nil
	}

	series := make([]models.DailyAggregate, len(days))
	index := make(map[dayKey]int, len(days))
	for i, d := range days {
		series[i] = models.DailyAggregate{Date: d, Counts: zeroCounts()}
		index[keyOf(d)] = i
	}

	loc := rng.Start.Location()
	for _, r := range records {
		if !r.HasSentiment() || !rng.Contains(r.Timestamp) {
			continue
		}
		i, ok := index[keyOf(r.Timestamp.In(loc))]
		if !ok {
			continue
		}
		series[i].Counts[r.Sentiment]++
		series[i].Total++
	}

	return series
}

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

func zeroCounts() map[models.Sentiment]int {
	counts := make(map[models.Sentiment]int, len(models.Sentiments))
	for _, label := range models.Sentiments {
		counts[label] = 0
	}
	return counts
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
