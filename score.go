package forecaster

import (
	"errors"
	"fmt"
	"io"
	"math"

	mat_ "github.com/aouyang1/go-probforecaster/mat"

	"gonum.org/v1/gonum/stat"
)

var ErrResLenMismatch = errors.New("predicted and actual have different lengths")

// Scores tracks how well a predicted distribution explains the observed values
type Scores struct {
	NLL      float64 `json:"negative_log_likelihood"`
	MSE      float64 `json:"mean_squared_error"`
	MAPE     float64 `json:"mean_average_percent_error"`
	R2       float64 `json:"r_squared"`
	Coverage float64 `json:"coverage"`
}

// NewScores scores the distribution against the truth sequence of the same shape. Coverage is
// the fraction of observed values falling inside mean ± z·std.
func NewScores(dist *Distribution, truth *mat_.Sequence, z float64) (*Scores, error) {
	nll, err := NLL(dist, truth)
	if err != nil {
		return nil, fmt.Errorf("unable to compute negative log likelihood, %w", err)
	}

	scores, err := scoreSlices(dist.Means().RawData(), dist.Stds().RawData(), truth.RawData(), z)
	if err != nil {
		return nil, err
	}
	scores.NLL = nll
	return scores, nil
}

func scoreSlices(means, stds, actual []float64, z float64) (*Scores, error) {
	mse, err := MSE(means, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mape, err := MAPE(means, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}
	rs, err := RSquared(means, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}
	coverage, err := Coverage(means, stds, actual, z)
	if err != nil {
		return nil, fmt.Errorf("unable to compute coverage, %w", err)
	}

	return &Scores{
		MSE:      mse,
		MAPE:     mape,
		R2:       rs,
		Coverage: coverage,
	}, nil
}

// TablePrint writes the scores on a single line
func (s *Scores) TablePrint(w io.Writer, prefix, indent string) error {
	_, err := fmt.Fprintf(w, "%s%sNLL: %.3f    MSE: %.3f    MAPE: %.3f    R2: %.3f    Coverage: %.3f\n",
		prefix, indent, s.NLL, s.MSE, s.MAPE, s.R2, s.Coverage)
	return err
}

// MSE computes the mean squared error. This is the same as sum((y-yhat)^2).
// A score of 0 means a perfect match with no errors.
func MSE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	mse := 0.0
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		mse += math.Pow(actual[i]-predicted[i], 2.0)
	}
	mse /= float64(len(actual))
	return mse, nil
}

// MAPE calculates the mean average percent error. This is the same as sum(abs((y-yhat)/y)).
// A score of 0 means a perfect match with no errors.
func MAPE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	mape := 0.0
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) || actual[i] == 0 {
			continue
		}
		mape += math.Abs((actual[i] - predicted[i]) / actual[i])
	}
	mape /= float64(len(actual))
	return mape, nil
}

// RSquared computes the r squared value between the predicted and actual where 1.0 means perfect
// fit and 0 represents no relationship
func RSquared(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	predictCopy := make([]float64, 0, len(predicted))
	actualCopy := make([]float64, 0, len(actual))
	for i := 0; i < len(predicted); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		predictCopy = append(predictCopy, predicted[i])
		actualCopy = append(actualCopy, actual[i])
	}
	r2 := stat.RSquaredFrom(predictCopy, actualCopy, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}

// Coverage returns the fraction of actual values within predicted ± z·std. Missing values are
// skipped and NaN is returned when nothing is left to score.
func Coverage(predicted, std, actual []float64, z float64) (float64, error) {
	if len(predicted) != len(actual) || len(std) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d and %d, %w", len(actual), len(predicted), len(std), ErrResLenMismatch)
	}

	var inside, total int
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) || math.IsNaN(std[i]) {
			continue
		}
		total++
		if math.Abs(actual[i]-predicted[i]) <= z*std[i] {
			inside++
		}
	}
	if total == 0 {
		return math.NaN(), nil
	}
	return float64(inside) / float64(total), nil
}
