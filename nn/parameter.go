// Package nn contains the recurrent and affine building blocks of the probabilistic forecaster
// along with the elementwise activations they use. All learnable values are gonum Dense matrices
// exposed through Parameter so an external optimizer can update them in place.
package nn

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidSize   = errors.New("layer sizes must be positive")
	ErrInputMismatch = errors.New("input width does not match layer input size")
	ErrBatchMismatch = errors.New("batch size mismatch between input and state")
)

// Parameter is a named learnable matrix. Value is shared with the owning layer.
type Parameter struct {
	Name  string
	Value *mat.Dense
}

// Module is anything exposing learnable parameters
type Module interface {
	Parameters() []Parameter
}

// NumParameters counts the scalar weights across all parameters of a module
func NumParameters(m Module) int {
	var n int
	for _, p := range m.Parameters() {
		r, c := p.Value.Dims()
		n += r * c
	}
	return n
}

// WithPrefix namespaces parameter names as "<prefix>.<name>"
func WithPrefix(prefix string, params []Parameter) []Parameter {
	for i := range params {
		params[i].Name = fmt.Sprintf("%s.%s", prefix, params[i].Name)
	}
	return params
}

// uniform creates a rows × cols matrix drawn from U(-bound, bound)
func uniform(rows, cols int, bound float64, rnd *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (2.0*rnd.Float64() - 1.0) * bound
	}
	return mat.NewDense(rows, cols, data)
}

func initBound(fan int) float64 {
	return 1.0 / math.Sqrt(float64(fan))
}

// addRowVec adds the single row bias to every row of m
func addRowVec(m *mat.Dense, bias *mat.Dense) {
	b := bias.RawRowView(0)
	r, _ := m.Dims()
	for i := 0; i < r; i++ {
		row := m.RawRowView(i)
		for j := range row {
			row[j] += b[j]
		}
	}
}
