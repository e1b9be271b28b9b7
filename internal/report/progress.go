// Package report renders session progress as an HTML dashboard using go-echarts.
package report

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/hmzi67/cervical-posture-detection/internal/session"
)

// ErrEmptyProgress is returned when there is nothing to plot.
var ErrEmptyProgress = errors.New("no measurements to plot")

const chartHeight = "360px"

// RenderProgress writes a page with four charts: the measurement trace with its
// target band, accuracy per exercise, the status distribution and the rolling
// accuracy trend.
func RenderProgress(w io.Writer, title string, p session.Progress) error {
	if len(p.Trace) == 0 {
		return ErrEmptyProgress
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		measurementChart(p.Trace),
		accuracyChart(p.AccuracyByExercise),
		statusChart(p.StatusShares),
		trendChart(p.RollingAccuracy, p.Window),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render progress: %w", err)
	}
	return nil
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func measurementChart(trace []session.TracePoint) *charts.Line {
	x := make([]string, len(trace))
	values := make([]opts.LineData, len(trace))
	lower := make([]opts.LineData, len(trace))
	upper := make([]opts.LineData, len(trace))
	for i, pt := range trace {
		x[i] = seconds(pt.Elapsed)
		values[i] = opts.LineData{Value: pt.Measurement, Name: pt.Exercise}
		lower[i] = opts.LineData{Value: pt.TargetMin}
		upper[i] = opts.LineData{Value: pt.TargetMax}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Measurements Over Time"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Measurement"}),
	)
	line.SetXAxis(x).
		AddSeries("measurement", values).
		AddSeries("target min", lower, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"})).
		AddSeries("target max", upper, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	return line
}

func accuracyChart(rows []session.ExerciseAccuracy) *charts.Bar {
	x := make([]string, len(rows))
	y := make([]opts.BarData, len(rows))
	for i, row := range rows {
		x[i] = row.Exercise
		y[i] = opts.BarData{Value: row.Accuracy}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Accuracy by Exercise"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Accuracy (%)", Min: 0, Max: 100}),
	)
	bar.SetXAxis(x).
		AddSeries("accuracy", y, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	return bar
}

func statusChart(shares []session.StatusShare) *charts.Pie {
	data := make([]opts.PieData, len(shares))
	for i, share := range shares {
		data[i] = opts.PieData{Name: string(share.Status), Value: share.Count}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Status Distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("status", data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	return pie
}

func trendChart(trend []session.TrendPoint, window int) *charts.Line {
	x := make([]string, len(trend))
	y := make([]opts.LineData, len(trend))
	for i, pt := range trend {
		x[i] = seconds(pt.Elapsed)
		y[i] = opts.LineData{Value: pt.Accuracy}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Accuracy Trend", Subtitle: fmt.Sprintf("rolling window of %d measurements", window)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Accuracy (%)", Min: 0, Max: 100}),
	)
	line.SetXAxis(x).AddSeries("rolling accuracy", y, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return line
}
