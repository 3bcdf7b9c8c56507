// Package render draws aggregated sentiment series to PNG charts.
package render

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/spacesedan/steamnoodles/internal/models"
)

const (
	chartWidth  = 12 * vg.Inch
	chartHeight = 8 * vg.Inch
)

var sentimentColors = map[models.Sentiment]color.Color{
	models.SentimentPositive: color.RGBA{R: 46, G: 160, B: 67, A: 255},
	models.SentimentNegative: color.RGBA{R: 214, G: 39, B: 40, A: 255},
	models.SentimentNeutral:  color.RGBA{R: 127, G: 127, B: 127, A: 255},
}

// PlotRenderer writes one PNG per request into its output directory.
type PlotRenderer struct {
	outputDir string
	now       func() time.Time
}

func NewPlotRenderer(outputDir string) *PlotRenderer {
	return &PlotRenderer{outputDir: outputDir, now: time.Now}
}

// Render draws series as kind and returns the path of the saved chart.
func (r *PlotRenderer) Render(ctx context.Context, series []models.DailyAggregate, kind models.ChartKind) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("nothing to render")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Sentiment Trends (%s to %s)",
		series[0].Date.Format("2006-01-02"),
		series[len(series)-1].Date.Format("2006-01-02"))
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Number of Reviews"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	var err error
	switch kind {
	case models.ChartStackedBar:
		err = addStackedBars(p, series)
	default:
		kind = models.ChartTrendLine
		err = addTrendLines(p, series)
	}
	if err != nil {
		return "", fmt.Errorf("build %s chart: %w", kind, err)
	}

	labels := make([]string, len(series))
	for i, d := range series {
		labels[i] = d.Date.Format("01-02")
	}
	p.NominalX(labels...)

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", r.outputDir, err)
	}

	name := fmt.Sprintf("sentiment_analysis_%s_%s.png", r.now().Format("20060102_150405"), kind)
	path := filepath.Join(r.outputDir, name)
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}

	slog.Info("[PlotRenderer] Chart saved",
		slog.String("path", path),
		slog.String("kind", string(kind)),
		slog.Int("days", len(series)))
	return path, nil
}

func addTrendLines(p *plot.Plot, series []models.DailyAggregate) error {
	for _, label := range models.Sentiments {
		pts := make(plotter.XYs, len(series))
		for i, d := range series {
			pts[i].X = float64(i)
			pts[i].Y = float64(d.Counts[label])
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		line.Color = sentimentColors[label]
		points.Color = sentimentColors[label]

		p.Add(line, points)
		p.Legend.Add(label.String(), line, points)
	}
	return nil
}

func addStackedBars(p *plot.Plot, series []models.DailyAggregate) error {
	var below *plotter.BarChart
	for _, label := range models.Sentiments {
		values := make(plotter.Values, len(series))
		for i, d := range series {
			values[i] = float64(d.Counts[label])
		}

		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return err
		}
		bars.Color = sentimentColors[label]
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}

		p.Add(bars)
		p.Legend.Add(label.String(), bars)
		below = bars
	}
	return nil
}
