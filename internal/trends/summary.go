package trends

import (
	"fmt"
	"strings"

	"github.com/spacesedan/steamnoodles/internal/models"
)

// Summary is the textual breakdown that accompanies a chart.
type Summary struct {
	Start   string                   `json:"start"`
	End     string                   `json:"end"`
	Total   int                      `json:"total"`
	Counts  map[models.Sentiment]int `json:"counts"`
	Days    int                      `json:"days"`
	Details string                   `json:"details"`
}

// Summarize totals a series and renders one line per day.
func Summarize(series []models.DailyAggregate) Summary {
	s := Summary{Counts: zeroCounts(), Days: len(series)}
	if len(series) == 0 {
		s.Details = "No data found"
		return s
	}

	s.Start = series[0].Date.Format("2006-01-02")
	s.End = series[len(series)-1].Date.Format("2006-01-02")

	var b strings.Builder
	fmt.Fprintf(&b, "%-10s", "date")
	for _, label := range models.Sentiments {
		fmt.Fprintf(&b, " %8s", label)
	}
	fmt.Fprintf(&b, " %8s\n", "total")

	for _, d := range series {
		fmt.Fprintf(&b, "%-10s", d.Date.Format("2006-01-02"))
		for _, label := range models.Sentiments {
			fmt.Fprintf(&b, " %8d", d.Counts[label])
			s.Counts[label] += d.Counts[label]
		}
		fmt.Fprintf(&b, " %8d\n", d.Total)
		s.Total += d.Total
	}

	s.Details = fmt.Sprintf("Date range: %s to %s\nTotal reviews: %d\nDaily sentiment breakdown:\n%s",
		s.Start, s.End, s.Total, b.String())
	return s
}
