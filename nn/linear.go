package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Linear is an affine map y = x·Wᵀ + b applied to every row of a batch
type Linear struct {
	in  int
	out int

	weight *mat.Dense // out × in
	bias   *mat.Dense // 1 × out
}

// NewLinear creates a Linear layer with weights and bias drawn from U(-1/sqrt(in), 1/sqrt(in))
func NewLinear(in, out int, rnd *rand.Rand) (*Linear, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("linear got in=%d out=%d, %w", in, out, ErrInvalidSize)
	}
	bound := initBound(in)
	return &Linear{
		in:     in,
		out:    out,
		weight: uniform(out, in, bound, rnd),
		bias:   uniform(1, out, bound, rnd),
	}, nil
}

// Dims returns the input and output widths
func (l *Linear) Dims() (int, int) {
	return l.in, l.out
}

// Forward maps a batch × in matrix to a batch × out matrix
func (l *Linear) Forward(x mat.Matrix) (*mat.Dense, error) {
	_, c := x.Dims()
	if c != l.in {
		return nil, fmt.Errorf("linear expected %d features but got %d, %w", l.in, c, ErrInputMismatch)
	}
	var res mat.Dense
	res.Mul(x, l.weight.T())
	addRowVec(&res, l.bias)
	return &res, nil
}

// Parameters returns the weight and bias
func (l *Linear) Parameters() []Parameter {
	return []Parameter{
		{Name: "weight", Value: l.weight},
		{Name: "bias", Value: l.bias},
	}
}
