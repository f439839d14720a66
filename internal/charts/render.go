// Package charts renders engine results to PNG server-side. The page can
// use these endpoints directly in <img> tags instead of shipping a
// client-side charting library.
package charts

import (
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"wellboard/internal/engine"
)

// RenderGroupBars draws one bar per aggregated group.
func RenderGroupBars(w io.Writer, title string, groups []engine.GroupResult) error {
	bars := make([]chart.Value, 0, len(groups))
	for _, g := range groups {
		bars = append(bars, chart.Value{Label: g.Key, Value: g.Value})
	}

	graph := chart.BarChart{
		Title:      title,
		Height:     420,
		BarWidth:   48,
		BarSpacing: 24,
		Background: chart.Style{Padding: chart.Box{Top: 44, Bottom: 24}},
		Bars:       bars,
	}
	return graph.Render(chart.PNG, w)
}

// RenderTrendScatter draws the filtered observations as dots with the OLS
// fit overlaid. Callers must pass the same point set the fit was computed
// from, so the chart and the reported parameters always agree.
func RenderTrendScatter(w io.Writer, title, xLabel, yLabel string, xs, ys []float64) error {
	scatter := chart.ContinuousSeries{
		Name: "observations",
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    4,
			DotColor:    drawing.ColorFromHex("4f46e5"),
		},
		XValues: xs,
		YValues: ys,
	}

	graph := chart.Chart{
		Title:  title,
		Height: 420,
		XAxis:  chart.XAxis{Name: xLabel},
		YAxis:  chart.YAxis{Name: yLabel},
		Series: []chart.Series{
			scatter,
			&chart.LinearRegressionSeries{
				Name:        "trend",
				InnerSeries: scatter,
				Style: chart.Style{
					StrokeColor: drawing.ColorBlack,
					StrokeWidth: 2,
				},
			},
		},
	}
	return graph.Render(chart.PNG, w)
}
