package forecaster

import (
	"math"
	"testing"
	"time"

	"github.com/aouyang1/go-probforecaster/covariate"
	mat_ "github.com/aouyang1/go-probforecaster/mat"
	"github.com/aouyang1/go-probforecaster/timedataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictConstant(t *testing.T) {
	f := constantForecaster(t, &Options{HiddenDim: 3}, 0.25, 0.0)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := []time.Time{
		start,
		start.Add(1 * time.Minute),
		start.Add(2 * time.Minute),
		start.Add(3 * time.Minute),
		start.Add(4 * time.Minute),
	}
	y := []float64{1, 2, math.NaN(), 4, 5}

	res, err := f.Predict(tSeries, y, 3, 0)
	require.Nil(t, err)

	// one NaN dropped leaves 4 conditioning steps, plus 3 future steps
	require.Len(t, res.T, 7)
	expectedT := []time.Time{
		start.Add(1 * time.Minute),
		start.Add(3 * time.Minute),
		start.Add(4 * time.Minute),
		start.Add(5 * time.Minute),
		start.Add(6 * time.Minute),
		start.Add(7 * time.Minute),
		start.Add(8 * time.Minute),
	}
	for i := range expectedT {
		assert.True(t, expectedT[i].Equal(res.T[i]), "index %d expected %s got %s", i, expectedT[i], res.T[i])
	}

	for i := range res.T {
		assert.InDelta(t, 0.25, res.Forecast[i], 1e-12)
		assert.InDelta(t, math.Ln2, res.Std[i], 1e-12)
		assert.InDelta(t, 0.25+DefaultZscore*math.Ln2, res.Upper[i], 1e-12)
		assert.InDelta(t, 0.25-DefaultZscore*math.Ln2, res.Lower[i], 1e-12)
	}
}

func TestPredictWithCovariates(t *testing.T) {
	f := newTestForecaster(t, &Options{
		HiddenDim: 4,
		CovariateOptions: &covariate.Options{
			DailyOrders:  1,
			WeeklyOrders: 1,
			Holidays:     []string{"christmas"},
		},
	})
	assert.Equal(t, 6, f.Options().InputDim)

	start := time.Date(2024, 12, 24, 0, 0, 0, 0, time.UTC)
	n := 48
	tSeries := make([]time.Time, 0, n)
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		tSeries = append(tSeries, start.Add(time.Duration(i)*time.Hour))
		y = append(y, math.Sin(float64(i)/4.0))
	}

	res, err := f.Predict(tSeries, y, 6, time.Hour)
	require.Nil(t, err)
	require.Len(t, res.T, n+6)
	assert.True(t, res.T[len(res.T)-1].Equal(start.Add(time.Duration(n+6)*time.Hour)))

	// matches a direct forward pass over the same covariates
	covT := append(append([]time.Time{}, tSeries...), timedataset.TimeSlice(tSeries).Extend(6, time.Hour)...)
	cov, err := covariate.Generate([][]time.Time{covT}, f.Options().CovariateOptions)
	require.Nil(t, err)
	input, err := mat_.NewSequence(1, n, 1, y)
	require.Nil(t, err)
	dist, err := f.Forward(input, cov, 6)
	require.Nil(t, err)
	assert.Equal(t, dist.Means().Series(0, 0), res.Forecast)
	assert.Equal(t, dist.Stds().Series(0, 0), res.Std)
}

func TestPredictErrors(t *testing.T) {
	f := newTestForecaster(t, &Options{HiddenDim: 3})
	multi := newTestForecaster(t, &Options{OutputDim: 2, HiddenDim: 3})

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tSeries := []time.Time{start, start.Add(time.Minute), start.Add(2 * time.Minute)}

	testData := map[string]struct {
		f        *Forecaster
		t        []time.Time
		y        []float64
		horizon  int
		interval time.Duration
		err      error
	}{
		"uninitialized": {
			f:   &Forecaster{},
			err: ErrUninitializedForecaster,
		},
		"multivariate": {
			f:   multi,
			t:   tSeries,
			y:   []float64{1, 2, 3},
			err: ErrNotUnivariate,
		},
		"negative horizon": {
			f:       f,
			t:       tSeries,
			y:       []float64{1, 2, 3},
			horizon: -1,
			err:     ErrNegativeHorizon,
		},
		"length mismatch": {
			f:   f,
			t:   tSeries,
			y:   []float64{1, 2},
			err: timedataset.ErrDatasetLenMismatch,
		},
		"all missing": {
			f:   f,
			t:   tSeries,
			y:   []float64{math.NaN(), math.NaN(), math.NaN()},
			err: timedataset.ErrNoTrainingData,
		},
		"cannot infer interval": {
			f:   f,
			t:   tSeries[:1],
			y:   []float64{1},
			err: timedataset.ErrCannotInferFreq,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := td.f.Predict(td.t, td.y, td.horizon, td.interval)
			assert.ErrorIs(t, err, td.err)
		})
	}
}
