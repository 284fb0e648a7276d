package charts

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"manasim/internal/sim"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title  string // Page title
	Width  string // Chart width (e.g., "900px")
	Height string // Chart height (e.g., "500px")
	Theme  string // Chart theme
	Smooth bool   // Smooth lines
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:  "Mana Simulation",
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Smooth: true,
	}
}

// series is a named per-turn line.
type series struct {
	name  string
	color string
	data  []float64
}

// Render writes an HTML page with the rate, mana and hand charts for stats.
func Render(w io.Writer, stats *sim.Stats, config ChartConfig) error {
	if stats.Turns() == 0 {
		return fmt.Errorf("no turns to chart")
	}

	page := components.NewPage()
	page.PageTitle = config.Title
	page.AddCharts(
		lineChart(config, "Game State by Turn", "% of games", turnLabels(stats.Turns()),
			series{"Screw", "#EE6666", percent(stats.Screw)},
			series{"Flood", "#5470C6", percent(stats.Flood)},
			series{"OK", "#FAC858", percent(stats.OK)},
		),
		lineChart(config, "Mana by Turn", "mana", turnLabels(stats.Turns()),
			series{"Available", "#91CC75", stats.AvgManaAvailable},
			series{"Spent", "#3BA272", stats.AvgManaSpent},
		),
		lineChart(config, "Cards by Turn", "cards", turnLabels(stats.Turns()),
			series{"Cards Cast", "#9A60B4", stats.AvgCardsCast},
			series{"Hand Size", "#73C0DE", stats.AvgHandSize},
		),
	)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderFile writes the chart page to outputPath.
func RenderFile(stats *sim.Stats, config ChartConfig, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()

	return Render(f, stats, config)
}

func lineChart(config ChartConfig, title, yLabel string, xLabels []string, lines ...series) *charts.Line {
	line := charts.NewLine()

	colors := make(opts.Colors, len(lines))
	for i, s := range lines {
		colors[i] = s.color
	}

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Turn",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: yLabel,
		}),
		charts.WithColorsOpts(colors),
	)

	line.SetXAxis(xLabels)
	for _, s := range lines {
		data := make([]opts.LineData, len(s.data))
		for i, v := range s.data {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.name, data)
	}
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{
			Smooth: opts.Bool(config.Smooth),
		}),
		charts.WithLabelOpts(opts.Label{
			Show: opts.Bool(false),
		}),
	)
	return line
}

func turnLabels(turns int) []string {
	labels := make([]string, turns)
	for i := range labels {
		labels[i] = strconv.Itoa(i + 1)
	}
	return labels
}

func percent(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x * 100
	}
	return out
}
