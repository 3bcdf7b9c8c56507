package models

import "time"

// ResolvedRange is the half-open interval [Start, End) a trend query covers.
type ResolvedRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside [Start, End).
func (r ResolvedRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

func (r ResolvedRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// DailyAggregate holds the sentiment counts for one calendar day. Counts
// always carries an entry for every label in Sentiments.
type DailyAggregate struct {
	Date   time.Time         `json:"date"`
	Counts map[Sentiment]int `json:"counts"`
	Total  int               `json:"total"`
}

// Percentage returns the share of label on this day in [0, 100]. Days
// without reviews report 0 for every label.
func (d DailyAggregate) Percentage(label Sentiment) float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Counts[label]) / float64(d.Total) * 100
}

func (d DailyAggregate) Percentages() map[Sentiment]float64 {
	out := make(map[Sentiment]float64, len(Sentiments))
	for _, label := range Sentiments {
		out[label] = d.Percentage(label)
	}
	return out
}

// ChartKind selects how the renderer draws a series.
type ChartKind string

const (
	ChartTrendLine  ChartKind = "trend-line"
	ChartStackedBar ChartKind = "stacked-bar"
)

func (k ChartKind) Valid() bool {
	return k == ChartTrendLine || k == ChartStackedBar
}
