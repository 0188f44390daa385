package forecaster

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aouyang1/go-probforecaster/covariate"
	mat_ "github.com/aouyang1/go-probforecaster/mat"
	"github.com/aouyang1/go-probforecaster/timedataset"
)

var ErrNotUnivariate = errors.New("time indexed prediction requires a single output series")

// Predict conditions on the series y observed at t and forecasts horizon steps past the last
// observation spaced by interval. A zero interval is estimated from t. Missing values are dropped
// before conditioning. The result holds one entry per output step, each stamped with the time of
// the value it predicts: the conditioning outputs cover t[1:] and the remaining horizon + 1
// entries follow the end of t.
func (f *Forecaster) Predict(t []time.Time, y []float64, horizon int, interval time.Duration) (*Results, error) {
	if f == nil || f.opt == nil {
		return nil, ErrUninitializedForecaster
	}
	if f.opt.OutputDim != 1 {
		return nil, fmt.Errorf("model has %d outputs, %w", f.opt.OutputDim, ErrNotUnivariate)
	}
	if horizon < 0 {
		return nil, fmt.Errorf("got %d, %w", horizon, ErrNegativeHorizon)
	}

	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return nil, fmt.Errorf("unable to create dataset, %w", err)
	}
	td = td.DropNan()
	if len(td.Y) == 0 {
		return nil, timedataset.ErrNoTrainingData
	}

	if interval == 0 {
		interval, err = timedataset.TimeSlice(td.T).EstimateFreq()
		if err != nil {
			return nil, fmt.Errorf("unable to estimate forecast interval, %w", err)
		}
	}
	future := timedataset.TimeSlice(td.T).Extend(horizon+1, interval)

	n := len(td.Y)
	input, err := mat_.NewSequence(1, n, 1, td.Y)
	if err != nil {
		return nil, err
	}

	var covariates *mat_.Sequence
	if f.opt.CovariateOptions != nil {
		covT := make([]time.Time, 0, n+horizon)
		covT = append(covT, td.T...)
		covT = append(covT, future[:horizon]...)
		covariates, err = covariate.Generate([][]time.Time{covT}, f.opt.CovariateOptions)
		if err != nil {
			return nil, fmt.Errorf("unable to generate covariates, %w", err)
		}
	}

	dist, err := f.Forward(input, covariates, horizon)
	if err != nil {
		return nil, fmt.Errorf("unable to run forward pass, %w", err)
	}

	resT := make([]time.Time, 0, n+horizon)
	resT = append(resT, td.T[1:]...)
	resT = append(resT, future...)

	slog.Debug("predicted series",
		"conditioning", n,
		"horizon", horizon,
		"interval", interval.String(),
	)
	return NewResults(resT, dist.Means().Series(0, 0), dist.Stds().Series(0, 0), f.opt.Zscore)
}
