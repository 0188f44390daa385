package nn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// LSTMCell is a single long short-term memory cell. Gate pre-activations are laid out as
// input, forget, candidate, output blocks of hiddenSize columns each:
//
//	i = σ(x·Wiᵀ + h·Uiᵀ + b)
//	f = σ(x·Wfᵀ + h·Ufᵀ + b)
//	g = tanh(x·Wgᵀ + h·Ugᵀ + b)
//	o = σ(x·Woᵀ + h·Uoᵀ + b)
//	c' = f⊙c + i⊙g
//	h' = o⊙tanh(c')
type LSTMCell struct {
	inputSize  int
	hiddenSize int

	weightIH *mat.Dense // 4h × in
	weightHH *mat.Dense // 4h × h
	biasIH   *mat.Dense // 1 × 4h
	biasHH   *mat.Dense // 1 × 4h
}

// NewLSTMCell creates a cell with all weights drawn from U(-1/sqrt(hidden), 1/sqrt(hidden))
func NewLSTMCell(inputSize, hiddenSize int, rnd *rand.Rand) (*LSTMCell, error) {
	if inputSize <= 0 || hiddenSize <= 0 {
		return nil, fmt.Errorf("lstm got input=%d hidden=%d, %w", inputSize, hiddenSize, ErrInvalidSize)
	}
	bound := initBound(hiddenSize)
	gates := 4 * hiddenSize
	return &LSTMCell{
		inputSize:  inputSize,
		hiddenSize: hiddenSize,
		weightIH:   uniform(gates, inputSize, bound, rnd),
		weightHH:   uniform(gates, hiddenSize, bound, rnd),
		biasIH:     uniform(1, gates, bound, rnd),
		biasHH:     uniform(1, gates, bound, rnd),
	}, nil
}

// Dims returns the input and hidden widths
func (c *LSTMCell) Dims() (int, int) {
	return c.inputSize, c.hiddenSize
}

// Forward advances the cell by one step given a batch × input matrix and the previous
// batch × hidden hidden and cell states. New state matrices are returned, the inputs are
// left untouched.
func (c *LSTMCell) Forward(x, h, cell mat.Matrix) (*mat.Dense, *mat.Dense, error) {
	batch, in := x.Dims()
	if in != c.inputSize {
		return nil, nil, fmt.Errorf("lstm expected %d features but got %d, %w", c.inputSize, in, ErrInputMismatch)
	}
	hb, _ := h.Dims()
	cb, _ := cell.Dims()
	if hb != batch || cb != batch {
		return nil, nil, fmt.Errorf("input batch %d, hidden batch %d, cell batch %d, %w", batch, hb, cb, ErrBatchMismatch)
	}

	var gates, recurrent mat.Dense
	gates.Mul(x, c.weightIH.T())
	recurrent.Mul(h, c.weightHH.T())
	gates.Add(&gates, &recurrent)
	addRowVec(&gates, c.biasIH)
	addRowVec(&gates, c.biasHH)

	n := c.hiddenSize
	hNext := mat.NewDense(batch, n, nil)
	cNext := mat.NewDense(batch, n, nil)
	for b := 0; b < batch; b++ {
		g := gates.RawRowView(b)
		hRow := hNext.RawRowView(b)
		cRow := cNext.RawRowView(b)
		for j := 0; j < n; j++ {
			ig := Sigmoid(g[j])
			fg := Sigmoid(g[n+j])
			cg := math.Tanh(g[2*n+j])
			og := Sigmoid(g[3*n+j])

			cRow[j] = fg*cell.At(b, j) + ig*cg
			hRow[j] = og * math.Tanh(cRow[j])
		}
	}
	return hNext, cNext, nil
}

// Parameters returns the input and recurrent weights and biases
func (c *LSTMCell) Parameters() []Parameter {
	return []Parameter{
		{Name: "weight_ih", Value: c.weightIH},
		{Name: "weight_hh", Value: c.weightHH},
		{Name: "bias_ih", Value: c.biasIH},
		{Name: "bias_hh", Value: c.biasHH},
	}
}
