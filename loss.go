package forecaster

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	mat_ "github.com/aouyang1/go-probforecaster/mat"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrTruthShape     = errors.New("truth shape does not match the distribution")
	ErrSampleShape    = errors.New("mean and std have different shapes")
	ErrNoDistribution = errors.New("no distribution")
)

// NLL computes the gaussian negative log likelihood of truth (batch × steps × outputs) under the
// distribution, up to constants and a factor of two:
//
//	mean((truth - mean)² / std²) + 2·mean(log(std))
//
// No positivity check is made on the std, a zero or negative value yields Inf or NaN.
func NLL(dist *Distribution, truth *mat_.Sequence) (float64, error) {
	if dist == nil {
		return 0, ErrNoDistribution
	}
	if truth == nil {
		return 0, ErrTruthShape
	}
	batch, steps, outputs, _ := dist.Dims()
	tb, ts, to := truth.Dims()
	if tb != batch || ts != steps || to != outputs {
		return 0, fmt.Errorf(
			"distribution is %dx%dx%d and truth is %dx%dx%d, %w",
			batch, steps, outputs, tb, ts, to, ErrTruthShape,
		)
	}

	return gaussianNLL(dist.Means().RawData(), dist.Stds().RawData(), truth.RawData()), nil
}

func gaussianNLL(mean, std, truth []float64) float64 {
	sqErr := make([]float64, len(truth))
	logStd := make([]float64, len(truth))
	for i := range truth {
		diff := truth[i] - mean[i]
		sqErr[i] = diff * diff / (std[i] * std[i])
		logStd[i] = math.Log(std[i])
	}
	return stat.Mean(sqErr, nil) + 2*stat.Mean(logStd, nil)
}

// Sample draws one value per element from independent gaussians parameterized elementwise by
// mean and std. A nil rnd falls back to the global source.
func Sample(mean, std mat.Matrix, rnd *rand.Rand) (*mat.Dense, error) {
	mr, mc := mean.Dims()
	sr, sc := std.Dims()
	if mr != sr || mc != sc {
		return nil, fmt.Errorf("mean is %dx%d and std is %dx%d, %w", mr, mc, sr, sc, ErrSampleShape)
	}

	normFloat := rand.NormFloat64
	if rnd != nil {
		normFloat = rnd.NormFloat64
	}

	res := mat.NewDense(mr, mc, nil)
	res.Apply(func(i, j int, _ float64) float64 {
		return mean.At(i, j) + std.At(i, j)*normFloat()
	}, res)
	return res, nil
}
