// Package timedataset holds univariate time series and slices them into the batched
// conditioning windows consumed by the forecaster.
package timedataset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-probforecaster/mat"
)

var (
	ErrNoTrainingData     = errors.New("no training data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrCannotInferFreq    = errors.New("cannot infer frequency from time data")
	ErrInvalidWindow      = errors.New("conditioning length must be positive, horizon non-negative and stride positive")
	ErrInsufficientData   = errors.New("insufficient data for a single window")
)

// TimeDataset represents a time series storing a slice of time points and values.
// Both must be of the same length.
type TimeDataset struct {
	T []time.Time
	Y []float64
}

// NewUnivariateDataset returns an instance of a TimeDataset given a time and value slice.
func NewUnivariateDataset(t []time.Time, y []float64) (*TimeDataset, error) {
	if len(y) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(t) != len(y) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but values has a length of %d, %w",
			len(t), len(y), ErrDatasetLenMismatch,
		)
	}

	var lastT time.Time
	for i := 0; i < len(t); i++ {
		currT := t[i]
		if i > 0 && !currT.After(lastT) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
		lastT = currT
	}

	tSeries := make([]time.Time, len(t))
	ySeries := make([]float64, len(t))
	copy(tSeries, t)
	copy(ySeries, y)
	td := &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}

	return td, nil
}

func (td *TimeDataset) Copy() *TimeDataset {
	tSeries := make([]time.Time, len(td.T))
	ySeries := make([]float64, len(td.T))
	copy(tSeries, td.T)
	copy(ySeries, td.Y)
	return &TimeDataset{
		T: tSeries,
		Y: ySeries,
	}
}

// DropNan returns a copy of the dataset without any NaN observations
func (td *TimeDataset) DropNan() *TimeDataset {
	if td == nil {
		return nil
	}
	res := &TimeDataset{
		T: make([]time.Time, 0, len(td.T)),
		Y: make([]float64, 0, len(td.Y)),
	}
	for i := 0; i < len(td.Y); i++ {
		if math.IsNaN(td.Y[i]) {
			continue
		}
		res.T = append(res.T, td.T[i])
		res.Y = append(res.Y, td.Y[i])
	}
	return res
}

// Windows is a batch of aligned conditioning windows cut from a single series
type Windows struct {
	// Input is batch × conditioning × 1 of observed values
	Input *mat.Sequence

	// Target is batch × (conditioning + horizon) × 1 where step k holds the observation that
	// follows input step k, i.e. the value every output step of the forecaster predicts.
	Target *mat.Sequence

	// T holds the timestamps of every input step including the fed back future steps, one
	// slice of conditioning + horizon per batch element. Use it to generate covariates.
	T [][]time.Time

	// Start is the index into the dataset of the first observation of each window
	Start []int
}

// Windows slices the series into windows of condLen observed inputs followed by horizon future
// steps, advancing stride points between windows. A window spans condLen + horizon + 1
// observations. Windows containing NaN are skipped.
func (td *TimeDataset) Windows(condLen, horizon, stride int) (*Windows, error) {
	if condLen <= 0 || horizon < 0 || stride <= 0 {
		return nil, fmt.Errorf("got conditioning %d, horizon %d, stride %d, %w", condLen, horizon, stride, ErrInvalidWindow)
	}
	span := condLen + horizon + 1
	if len(td.Y) < span {
		return nil, fmt.Errorf("window spans %d points but only %d available, %w", span, len(td.Y), ErrInsufficientData)
	}

	var starts []int
	for s := 0; s+span <= len(td.Y); s += stride {
		if hasNaN(td.Y[s : s+span]) {
			continue
		}
		starts = append(starts, s)
	}
	if len(starts) == 0 {
		return nil, fmt.Errorf("all windows contain NaNs, %w", ErrInsufficientData)
	}

	steps := condLen + horizon
	input, err := mat.NewSequence(len(starts), condLen, 1, nil)
	if err != nil {
		return nil, err
	}
	target, err := mat.NewSequence(len(starts), steps, 1, nil)
	if err != nil {
		return nil, err
	}
	w := &Windows{
		Input:  input,
		Target: target,
		T:      make([][]time.Time, len(starts)),
		Start:  starts,
	}
	for b, s := range starts {
		for i := 0; i < condLen; i++ {
			input.Set(b, i, 0, td.Y[s+i])
		}
		for k := 0; k < steps; k++ {
			target.Set(b, k, 0, td.Y[s+k+1])
		}
		w.T[b] = append([]time.Time(nil), td.T[s:s+steps]...)
	}
	return w, nil
}

func hasNaN(y []float64) bool {
	for _, v := range y {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
