package robustforecast

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/aouyang1/go-robustforecast/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// echarts renders "-" as a gap
const missingValue = "-"

func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			data = append(data, opts.LineData{Value: missingValue})
			continue
		}
		data = append(data, opts.LineData{Value: v})
	}
	return data
}

func xAxis(t []time.Time) []string {
	res := make([]string, 0, len(t))
	for _, tPnt := range t {
		res = append(res, tPnt.Format(timedataset.TimeLayout))
	}
	return res
}

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. Each
// series in y must have the same length as the input time slice.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	line.SetXAxis(xAxis(t))
	for i, series := range seriesName {
		line.AddSeries(series, lineData(y[i]))
	}
	return line
}

// LineForecaster generates an echart line chart of the training tail followed by the forecast,
// upper and lower values over the horizon
func LineForecaster(trainingData *timedataset.TimeDataset, rows []ResultRow, loc *time.Location) *charts.Line {
	n := trainingData.Len() + len(rows)
	t := make([]time.Time, 0, n)
	actual := make([]float64, 0, n)
	forecast := make([]float64, 0, n)
	upper := make([]float64, 0, n)
	lower := make([]float64, 0, n)

	for i := 0; i < trainingData.Len(); i++ {
		t = append(t, trainingData.T[i])
		actual = append(actual, trainingData.Y[i])
		forecast = append(forecast, math.NaN())
		upper = append(upper, math.NaN())
		lower = append(lower, math.NaN())
	}
	for _, r := range rows {
		t = append(t, time.Unix(r.TS, 0).In(loc))
		actual = append(actual, math.NaN())
		forecast = append(forecast, r.Pred)
		upper = append(upper, r.Upper)
		lower = append(lower, r.Lower)
	}

	return LineTSeries(
		"Forecast Fit",
		[]string{"Actual", "Forecast", "Upper", "Lower"},
		t,
		[][]float64{actual, forecast, upper, lower},
	)
}

// PlotFit uses the Apache Echarts library to generate an html file showing the last cycles of
// training data followed by the forecast band
func (s *FitState) PlotFit(path string) error {
	if s == nil || s.training == nil {
		return ErrNotFitted
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create plot file, %w", err)
	}
	defer file.Close()

	return s.RenderPlot(file)
}

// RenderPlot writes the fit plot html to w
func (s *FitState) RenderPlot(w io.Writer) error {
	if s == nil || s.training == nil {
		return ErrNotFitted
	}
	loc := s.TrainingEnd.Location()
	tail := s.training.Tail(plotCycles * s.Resolved.Period)
	rows := s.Rows()

	width := make([]float64, len(rows))
	t := make([]time.Time, len(rows))
	for i, r := range rows {
		width[i] = r.Upper - r.Lower
		t[i] = time.Unix(r.TS, 0).In(loc)
	}

	page := components.NewPage()
	page.AddCharts(
		LineForecaster(tail, rows, loc),
		LineTSeries(
			"Forecast Band Width",
			[]string{"Upper - Lower"},
			t,
			[][]float64{width},
		),
	)
	return page.Render(w)
}

// number of trailing training cycles shown in the fit plot
const plotCycles = 3

// PlotFit plots the last fit
func (f *Forecaster) PlotFit(path string) error {
	if f.state == nil {
		return ErrNotFitted
	}
	return f.state.PlotFit(path)
}
