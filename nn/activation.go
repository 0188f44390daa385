package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sigmoid is the logistic function 1 / (1 + exp(-x))
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// Softplus maps x to log(1 + exp(x)), a strictly positive value for any finite input. When
// exp(x) overflows the result would be +Inf, so x itself is returned since softplus(x)
// approaches x for large x.
func Softplus(x float64) float64 {
	res := math.Log1p(math.Exp(x))
	if math.IsInf(res, 1) {
		return x
	}
	return res
}

// SoftplusDense applies Softplus elementwise to src and stores the result in dst in a single
// pass over the matrix. dst and src may be the same matrix.
func SoftplusDense(dst *mat.Dense, src mat.Matrix) {
	dst.Apply(func(_, _ int, v float64) float64 {
		return Softplus(v)
	}, src)
}
