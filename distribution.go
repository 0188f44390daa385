package forecaster

import (
	"errors"
	"fmt"

	mat_ "github.com/aouyang1/go-probforecaster/mat"

	"gonum.org/v1/gonum/mat"
)

const (
	// MeanIdx is the index of the mean on the trailing axis of a Distribution
	MeanIdx = 0

	// StdIdx is the index of the standard deviation on the trailing axis of a Distribution
	StdIdx = 1

	// NumParams is the size of the trailing axis of a Distribution
	NumParams = 2
)

var ErrStepShapeMismatch = errors.New("mean and std steps have different shapes")

// Distribution is the forecaster output, a batch × steps × outputs × 2 tensor where the trailing
// axis pairs the mean and standard deviation of an independent gaussian per element.
type Distribution struct {
	batch   int
	steps   int
	outputs int
	data    []float64
}

// newDistribution stacks per-step batch × outputs means and stds along a trailing axis
func newDistribution(batch, outputs int, means, stds []mat.Matrix) (*Distribution, error) {
	if len(means) != len(stds) {
		return nil, fmt.Errorf("%d mean steps and %d std steps, %w", len(means), len(stds), ErrStepShapeMismatch)
	}
	d := &Distribution{
		batch:   batch,
		steps:   len(means),
		outputs: outputs,
		data:    make([]float64, batch*len(means)*outputs*NumParams),
	}
	for t := range means {
		mr, mc := means[t].Dims()
		sr, sc := stds[t].Dims()
		if mr != batch || sr != batch || mc != outputs || sc != outputs {
			return nil, fmt.Errorf("step %d has mean %dx%d and std %dx%d, %w", t, mr, mc, sr, sc, ErrStepShapeMismatch)
		}
		for b := 0; b < batch; b++ {
			for o := 0; o < outputs; o++ {
				idx := d.index(b, t, o)
				d.data[idx+MeanIdx] = means[t].At(b, o)
				d.data[idx+StdIdx] = stds[t].At(b, o)
			}
		}
	}
	return d, nil
}

func (d *Distribution) index(b, t, o int) int {
	return ((b*d.steps+t)*d.outputs + o) * NumParams
}

// Dims returns the batch, step, output and parameter sizes
func (d *Distribution) Dims() (int, int, int, int) {
	return d.batch, d.steps, d.outputs, NumParams
}

// At returns parameter k (MeanIdx or StdIdx) of batch element b, step t and output o
func (d *Distribution) At(b, t, o, k int) float64 {
	return d.data[d.index(b, t, o)+k]
}

// Mean returns the predicted mean of batch element b, step t and output o
func (d *Distribution) Mean(b, t, o int) float64 {
	return d.At(b, t, o, MeanIdx)
}

// Std returns the predicted standard deviation of batch element b, step t and output o
func (d *Distribution) Std(b, t, o int) float64 {
	return d.At(b, t, o, StdIdx)
}

// Means splits out the means as a batch × steps × outputs sequence
func (d *Distribution) Means() *mat_.Sequence {
	return d.split(MeanIdx)
}

// Stds splits out the standard deviations as a batch × steps × outputs sequence
func (d *Distribution) Stds() *mat_.Sequence {
	return d.split(StdIdx)
}

func (d *Distribution) split(k int) *mat_.Sequence {
	data := make([]float64, 0, d.batch*d.steps*d.outputs)
	for i := k; i < len(d.data); i += NumParams {
		data = append(data, d.data[i])
	}
	// dimensions are non-negative and data is sized to match
	seq, _ := mat_.NewSequence(d.batch, d.steps, d.outputs, data)
	return seq
}

// Array converts the distribution into a [batch][step][output][mean, std] slice
func (d *Distribution) Array() [][][][NumParams]float64 {
	res := make([][][][NumParams]float64, d.batch)
	for b := 0; b < d.batch; b++ {
		res[b] = make([][][NumParams]float64, d.steps)
		for t := 0; t < d.steps; t++ {
			res[b][t] = make([][NumParams]float64, d.outputs)
			for o := 0; o < d.outputs; o++ {
				res[b][t][o] = [NumParams]float64{d.Mean(b, t, o), d.Std(b, t, o)}
			}
		}
	}
	return res
}

// RawData returns the row-major backing slice
func (d *Distribution) RawData() []float64 {
	return d.data
}
