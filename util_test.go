package forecaster

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-probforecaster/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResults(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour)}

	res, err := NewResults(tSeries, []float64{1, 2, 3}, []float64{0.5, 1, 0}, 2.0)
	require.Nil(t, err)
	assert.Equal(t, []float64{2, 4, 3}, res.Upper)
	assert.Equal(t, []float64{0, 0, 3}, res.Lower)

	sliced := res.Slice(start.Add(time.Hour), start.Add(3*time.Hour))
	assert.Equal(t, []float64{2, 3}, sliced.Forecast)
	assert.Equal(t, []float64{1, 0}, sliced.Std)

	_, err = NewResults(tSeries, []float64{1}, []float64{1, 2, 3}, 1.0)
	assert.ErrorIs(t, err, ErrResultsLenMismatch)
}

func TestPlotForecast(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour)}

	res, err := NewResults(tSeries, []float64{1, 2, math.Inf(1)}, []float64{0.5, 1, 1}, 1.96)
	require.Nil(t, err)
	actual, err := timedataset.NewUnivariateDataset(tSeries[:2], []float64{1.1, 1.9})
	require.Nil(t, err)

	var buf bytes.Buffer
	require.Nil(t, PlotForecast(&buf, res, actual))
	out := buf.String()
	assert.Contains(t, out, "Forecast")
	assert.Contains(t, out, "Upper")
	assert.Contains(t, out, "Lower")
	assert.Contains(t, out, "Actual")

	assert.ErrorIs(t, PlotForecast(&buf, nil, nil), ErrNoResults)
}

func TestLineData(t *testing.T) {
	data := lineData([]float64{1, math.NaN(), math.Inf(-1), 2})
	require.Len(t, data, 4)
	assert.Equal(t, 1.0, data[0].Value)
	assert.Nil(t, data[1].Value)
	assert.Nil(t, data[2].Value)
	assert.Equal(t, 2.0, data[3].Value)
}

func TestResultsScore(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := []time.Time{start, start.Add(time.Hour), start.Add(2 * time.Hour)}

	res, err := NewResults(tSeries, []float64{1, 1, 1}, []float64{1, 1, 1}, 1.0)
	require.Nil(t, err)

	actual, err := timedataset.NewUnivariateDataset(
		[]time.Time{start.Add(-time.Hour), start.Add(time.Hour), start.Add(2 * time.Hour)},
		[]float64{100, 2, math.NaN()},
	)
	require.Nil(t, err)

	scores, err := res.Score(actual, 1.0)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, scores.NLL, 1e-12)
	assert.InDelta(t, 1.0, scores.MSE, 1e-12)
	assert.InDelta(t, 0.5, scores.MAPE, 1e-12)
	assert.InDelta(t, 1.0, scores.Coverage, 1e-12)

	noOverlap, err := timedataset.NewUnivariateDataset([]time.Time{start.Add(-time.Hour)}, []float64{1})
	require.Nil(t, err)
	_, err = res.Score(noOverlap, 1.0)
	assert.ErrorIs(t, err, ErrNoOverlap)
}
