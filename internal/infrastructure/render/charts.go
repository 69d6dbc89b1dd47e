package render

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/domain/model"
)

const (
	chartWidth  = 1024
	chartHeight = 512
)

var (
	susceptibleColor = chart.ColorBlue
	infectedColor    = chart.ColorRed
	recoveredColor   = chart.ColorGreen
	dashed           = []float64{6.0, 4.0}
)

// SIRComparisonChart draws the baseline run as solid lines and the
// control-measures run as dashed lines, PNG encoded.
func SIRComparisonChart(w io.Writer, cmp model.Comparison) error {
	if len(cmp.Baseline) < 2 || len(cmp.Controlled) < 2 {
		return fmt.Errorf("need at least 2 days per run to draw a chart, got %d and %d",
			len(cmp.Baseline), len(cmp.Controlled))
	}

	series := make([]chart.Series, 0, 6)
	series = append(series, sirSeries("", cmp.Baseline, nil)...)
	series = append(series, sirSeries(" (controls)", cmp.Controlled, dashed)...)

	graph := chart.Chart{
		Title:  "SIR model: unmodified vs control measures",
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name: "Day",
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name: "People",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render SIR chart: %w", err)
	}
	return nil
}

func sirSeries(suffix string, states []model.CompartmentalState, dash []float64) []chart.Series {
	days := make([]float64, len(states))
	s := make([]float64, len(states))
	i := make([]float64, len(states))
	r := make([]float64, len(states))
	for k, st := range states {
		days[k] = float64(st.Day)
		s[k] = st.Susceptible
		i[k] = st.Infected
		r[k] = st.Recovered
	}

	line := func(name string, ys []float64, c drawing.Color) chart.Series {
		return chart.ContinuousSeries{
			Name:    name + suffix,
			XValues: days,
			YValues: ys,
			Style: chart.Style{
				StrokeColor:     c,
				StrokeWidth:     2.5,
				StrokeDashArray: dash,
			},
		}
	}
	return []chart.Series{
		line("Susceptible", s, susceptibleColor),
		line("Infected", i, infectedColor),
		line("Recovered", r, recoveredColor),
	}
}

// CumulativeChart plots the cumulative infected series against the
// diagnosis day, PNG encoded.
func CumulativeChart(w io.Writer, series []model.DailyCount) error {
	p := plot.New()
	p.Title.Text = "Cumulative infections"
	p.X.Label.Text = "Day"
	p.Y.Label.Text = "Infected cases"

	points := make(plotter.XYs, len(series))
	for k, c := range series {
		points[k].X = float64(c.Day)
		points[k].Y = float64(c.Cumulative)
	}
	if len(points) > 0 {
		if err := plotutil.AddLinePoints(p, "Infected", points); err != nil {
			return fmt.Errorf("failed to add cumulative points: %w", err)
		}
	}

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render cumulative chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write cumulative chart: %w", err)
	}
	return nil
}
