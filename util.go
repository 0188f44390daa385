package forecaster

import (
	"io"
	"math"
	"time"

	"github.com/aouyang1/go-probforecaster/timedataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineTSeries generates an echart multi-line chart for some arbitrary time/value combination. The input
// y is a slice of series that much have the same length as the input time slice. Missing values are
// rendered as gaps.
func LineTSeries(title string, seriesName []string, t []time.Time, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	line = line.SetXAxis(t)
	for i, series := range seriesName {
		if i >= len(y) {
			break
		}
		line = line.AddSeries(series, lineData(y[i]))
	}
	return line
}

// LineForecast generates an echart line chart for a forecast result plotting the actual values
// along with the forecasted, upper, lower values. Actual values are matched to the forecast by
// timestamp and may be nil.
func LineForecast(actual *timedataset.TimeDataset, res *Results) *charts.Line {
	actualY := make([]float64, len(res.T))
	for i := range actualY {
		actualY[i] = math.NaN()
	}
	if actual != nil {
		lookup := make(map[int64]float64, len(actual.T))
		for i, ct := range actual.T {
			lookup[ct.UnixNano()] = actual.Y[i]
		}
		for i, ct := range res.T {
			if val, exists := lookup[ct.UnixNano()]; exists {
				actualY[i] = val
			}
		}
	}

	return LineTSeries(
		"Forecast",
		[]string{"Actual", "Forecast", "Upper", "Lower"},
		res.T,
		[][]float64{actualY, res.Forecast, res.Upper, res.Lower},
	)
}

// PlotForecast renders the forecast chart as an html page
func PlotForecast(w io.Writer, res *Results, actual *timedataset.TimeDataset) error {
	if res == nil {
		return ErrNoResults
	}
	page := components.NewPage()
	page.AddCharts(LineForecast(actual, res))
	return page.Render(w)
}

func lineData(y []float64) []opts.LineData {
	data := make([]opts.LineData, 0, len(y))
	for _, val := range y {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			data = append(data, opts.LineData{Value: nil})
			continue
		}
		data = append(data, opts.LineData{Value: val})
	}
	return data
}
