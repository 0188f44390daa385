package forecaster

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-probforecaster/timedataset"
)

var (
	ErrResultsLenMismatch = errors.New("result time and values have different lengths")
	ErrNoResults          = errors.New("no results")
	ErrNoOverlap          = errors.New("no observed values overlap the results")
)

// Results is a univariate forecast indexed by time. Upper and Lower are the mean offset by the
// configured z-score times the predicted standard deviation.
type Results struct {
	T        []time.Time `json:"time"`
	Forecast []float64   `json:"forecast"`
	Upper    []float64   `json:"upper"`
	Lower    []float64   `json:"lower"`
	Std      []float64   `json:"std"`
}

// NewResults builds the forecast bands from the predicted means and standard deviations
func NewResults(t []time.Time, mean, std []float64, z float64) (*Results, error) {
	if len(t) != len(mean) || len(t) != len(std) {
		return nil, fmt.Errorf(
			"%d times, %d means and %d stds, %w",
			len(t), len(mean), len(std), ErrResultsLenMismatch,
		)
	}
	res := &Results{
		T:        make([]time.Time, len(t)),
		Forecast: make([]float64, len(t)),
		Upper:    make([]float64, len(t)),
		Lower:    make([]float64, len(t)),
		Std:      make([]float64, len(t)),
	}
	copy(res.T, t)
	copy(res.Forecast, mean)
	copy(res.Std, std)
	for i := range t {
		res.Upper[i] = mean[i] + z*std[i]
		res.Lower[i] = mean[i] - z*std[i]
	}
	return res, nil
}

// Slice returns the results between the start (inclusive) and end (exclusive) times
func (r *Results) Slice(start, end time.Time) *Results {
	res := &Results{}
	for i, ct := range r.T {
		if ct.Before(start) || !ct.Before(end) {
			continue
		}
		res.T = append(res.T, ct)
		res.Forecast = append(res.Forecast, r.Forecast[i])
		res.Upper = append(res.Upper, r.Upper[i])
		res.Lower = append(res.Lower, r.Lower[i])
		res.Std = append(res.Std, r.Std[i])
	}
	return res
}

// Score compares the results against observed values sharing the same timestamps. Observations
// without a matching result time and missing values are ignored.
func (r *Results) Score(actual *timedataset.TimeDataset, z float64) (*Scores, error) {
	if r == nil {
		return nil, ErrNoResults
	}
	if actual == nil {
		return nil, ErrNoOverlap
	}
	lookup := make(map[int64]int, len(r.T))
	for i, ct := range r.T {
		lookup[ct.UnixNano()] = i
	}

	var means, stds, observed []float64
	for i, ct := range actual.T {
		idx, exists := lookup[ct.UnixNano()]
		if !exists || math.IsNaN(actual.Y[i]) {
			continue
		}
		means = append(means, r.Forecast[idx])
		stds = append(stds, r.Std[idx])
		observed = append(observed, actual.Y[i])
	}
	if len(observed) == 0 {
		return nil, ErrNoOverlap
	}

	scores, err := scoreSlices(means, stds, observed, z)
	if err != nil {
		return nil, err
	}
	scores.NLL = gaussianNLL(means, stds, observed)
	return scores, nil
}
