// Package mat holds the tensor helpers used by the forecaster on top of gonum matrices.
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNegativeDim        = errors.New("negative dimensions not allowed")
	ErrColMismatch        = errors.New("column size mismatch")
	ErrRowMismatch        = errors.New("row size mismatch")
	ErrDataLenMismatch    = errors.New("data length does not match dimensions")
	ErrUninitializedArray = errors.New("uninitialized array")
	ErrStepOutOfBounds    = errors.New("step is out of bounds")
)

// NewDenseFromArray converts a row-major 2d slice into a gonum Dense matrix. Every row must
// have the same length.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return nil, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n < 0 {
		n = 0
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// Augment returns a new matrix with the columns of b appended to the columns of a. Either
// side may be nil in which case a copy of the other is returned.
func Augment(a, b mat.Matrix) *mat.Dense {
	switch {
	case a == nil && b == nil:
		return nil
	case b == nil:
		return mat.DenseCopyOf(a)
	case a == nil:
		return mat.DenseCopyOf(b)
	}

	var res mat.Dense
	res.Augment(a, b)
	return &res
}
