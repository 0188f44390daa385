package forecaster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/mat"
)

func TestNewDistribution(t *testing.T) {
	means := []mat.Matrix{
		mat.NewDense(2, 1, []float64{1, 2}),
		mat.NewDense(2, 1, []float64{3, 4}),
	}
	stds := []mat.Matrix{
		mat.NewDense(2, 1, []float64{0.1, 0.2}),
		mat.NewDense(2, 1, []float64{0.3, 0.4}),
	}

	dist, err := newDistribution(2, 1, means, stds)
	require.Nil(t, err)

	batch, steps, outputs, params := dist.Dims()
	assert.Equal(t, []int{2, 2, 1, 2}, []int{batch, steps, outputs, params})
	assert.Equal(t, []float64{1, 0.1, 3, 0.3, 2, 0.2, 4, 0.4}, dist.RawData())
	assert.Equal(t, [][][][NumParams]float64{
		{{{1, 0.1}}, {{3, 0.3}}},
		{{{2, 0.2}}, {{4, 0.4}}},
	}, dist.Array())
	assert.Equal(t, []float64{1, 3, 2, 4}, dist.Means().RawData())
	assert.Equal(t, []float64{0.1, 0.3, 0.2, 0.4}, dist.Stds().RawData())
	assert.Equal(t, 4.0, dist.At(1, 1, 0, MeanIdx))
	assert.Equal(t, 0.4, dist.At(1, 1, 0, StdIdx))
}

func TestNewDistributionErrors(t *testing.T) {
	testData := map[string]struct {
		means []mat.Matrix
		stds  []mat.Matrix
	}{
		"step count": {
			means: []mat.Matrix{mat.NewDense(1, 1, nil)},
		},
		"batch": {
			means: []mat.Matrix{mat.NewDense(2, 1, nil)},
			stds:  []mat.Matrix{mat.NewDense(1, 1, nil)},
		},
		"outputs": {
			means: []mat.Matrix{mat.NewDense(1, 1, nil)},
			stds:  []mat.Matrix{mat.NewDense(1, 2, nil)},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, err := newDistribution(1, 1, td.means, td.stds)
			assert.ErrorIs(t, err, ErrStepShapeMismatch)
		})
	}
}
