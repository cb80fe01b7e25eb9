package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/footmetricx/pitchctl/internal/adapters/repository"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// blueRed runs from full away control to full home control.
var blueRed = []string{"#3b4cc0", "#7b9ff9", "#c0d4f5", "#f2f2f2", "#f7c2a8", "#ee8468", "#b40426"} //nolint:gochecknoglobals // static palette

func axisLabels(vals []float64) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return out
}

// HeatmapHTML writes an interactive heatmap of g.
func HeatmapHTML(w io.Writer, g *pitchcontrol.Grid, options ...Option) error {
	if g == nil {
		return ErrEmptyGrid
	}
	s := newSettings(options)
	cols, rows := g.Dims()

	data := make([]opts.HeatMapData, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{c, r, g.At(c, r)}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: s.title, Width: "1050px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: s.title, Subtitle: s.subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "x (m)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "y (m)", Data: axisLabels(g.YCoords())}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(s.min),
			Max:        float32(s.max),
			InRange:    &opts.VisualMapInRange{Color: blueRed},
		}),
	)
	hm.SetXAxis(axisLabels(g.XCoords())).AddSeries("control", data)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("render: heatmap html: %w", err)
	}
	return nil
}

// DashboardHTML writes a match page: control share per frame and mean
// control per third for both teams.
func DashboardHTML(w io.Writer, summary repository.MatchSummary, timeline []repository.TimelinePoint) error {
	frames := make([]string, len(timeline))
	home := make([]opts.LineData, len(timeline))
	away := make([]opts.LineData, len(timeline))
	ball := make([]opts.LineData, len(timeline))
	for i, pt := range timeline {
		frames[i] = strconv.FormatInt(pt.FrameID, 10)
		home[i] = opts.LineData{Value: pt.HomePct}
		away[i] = opts.LineData{Value: pt.AwayPct}
		ball[i] = opts.LineData{Value: pt.BallControl}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Match " + summary.MatchID, Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Pitch share by frame",
			Subtitle: fmt.Sprintf("match=%s frames=%d invalid=%d", summary.MatchID, summary.Frames, summary.InvalidFrames),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "% of cells", Min: 0, Max: 100}),
	)
	line.SetXAxis(frames).
		AddSeries("home", home).
		AddSeries("away", away)

	ballLine := charts.NewLine()
	ballLine.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{Title: "Control at the ball"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Min: -1, Max: 1}),
	)
	ballLine.SetXAxis(frames).AddSeries("ball control", ball)

	thirds := []string{"defensive", "middle", "attacking"}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Mean control by third"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
	)
	bar.SetXAxis(thirds).
		AddSeries("home", thirdBars(summary.Home)).
		AddSeries("away", thirdBars(summary.Away))

	page := components.NewPage()
	page.PageTitle = "Match " + summary.MatchID
	page.AddCharts(line, ballLine, bar)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render: dashboard html: %w", err)
	}
	return nil
}

func thirdBars(t repository.ThirdMeans) []opts.BarData {
	return []opts.BarData{{Value: t.Defensive}, {Value: t.Middle}, {Value: t.Attacking}}
}
