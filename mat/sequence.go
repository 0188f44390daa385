package mat

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sequence is a batch of multivariate sequences stored row-major as batch × steps × features.
// A zero feature width is allowed and represents the absence of any values per step, e.g. no
// covariates.
type Sequence struct {
	batch    int
	steps    int
	features int
	data     []float64
}

// NewSequence creates a Sequence of the given dimensions. If data is nil a zeroed backing
// slice is allocated, otherwise it must have exactly batch*steps*features values and is used
// without copying.
func NewSequence(batch, steps, features int, data []float64) (*Sequence, error) {
	if batch < 0 || steps < 0 || features < 0 {
		return nil, fmt.Errorf("got (%d, %d, %d), %w", batch, steps, features, ErrNegativeDim)
	}
	n := batch * steps * features
	if data == nil {
		data = make([]float64, n)
	}
	if len(data) != n {
		return nil, fmt.Errorf("expected %d values but got %d, %w", n, len(data), ErrDataLenMismatch)
	}
	return &Sequence{
		batch:    batch,
		steps:    steps,
		features: features,
		data:     data,
	}, nil
}

// NewSequenceFromArray converts a [batch][step][feature] slice into a Sequence. Every batch
// element must have the same number of steps and every step the same number of features.
func NewSequenceFromArray(x [][][]float64) (*Sequence, error) {
	if x == nil {
		return nil, ErrUninitializedArray
	}
	batch := len(x)
	steps, features := -1, -1
	for b, seq := range x {
		if steps >= 0 && len(seq) != steps {
			return nil, fmt.Errorf("at batch %d, %w", b, ErrRowMismatch)
		}
		steps = len(seq)
		for t, row := range seq {
			if features >= 0 && len(row) != features {
				return nil, fmt.Errorf("at batch %d step %d, %w", b, t, ErrColMismatch)
			}
			features = len(row)
		}
	}
	steps = max(steps, 0)
	features = max(features, 0)

	data := make([]float64, 0, batch*steps*features)
	for _, seq := range x {
		for _, row := range seq {
			data = append(data, row...)
		}
	}
	return NewSequence(batch, steps, features, data)
}

// NewSequenceFromSteps stacks batch × features matrices along the time axis.
func NewSequenceFromSteps(steps []mat.Matrix) (*Sequence, error) {
	if len(steps) == 0 {
		return nil, ErrUninitializedArray
	}
	batch, features := steps[0].Dims()
	s, err := NewSequence(batch, len(steps), features, nil)
	if err != nil {
		return nil, err
	}
	for t, m := range steps {
		if err := s.SetStep(t, m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Dims returns the batch, step and feature sizes
func (s *Sequence) Dims() (int, int, int) {
	return s.batch, s.steps, s.features
}

func (s *Sequence) index(b, t, f int) int {
	return (b*s.steps+t)*s.features + f
}

// At returns the value for batch element b at step t and feature f
func (s *Sequence) At(b, t, f int) float64 {
	return s.data[s.index(b, t, f)]
}

// Set stores v for batch element b at step t and feature f
func (s *Sequence) Set(b, t, f int, v float64) {
	s.data[s.index(b, t, f)] = v
}

// Step copies time step t out as a batch × features matrix. Returns nil if the sequence has
// no features since gonum does not allow empty matrices.
func (s *Sequence) Step(t int) (*mat.Dense, error) {
	if t < 0 || t >= s.steps {
		return nil, fmt.Errorf("step %d of %d, %w", t, s.steps, ErrStepOutOfBounds)
	}
	if s.features == 0 || s.batch == 0 {
		return nil, nil
	}
	data := make([]float64, 0, s.batch*s.features)
	for b := 0; b < s.batch; b++ {
		start := s.index(b, t, 0)
		data = append(data, s.data[start:start+s.features]...)
	}
	return mat.NewDense(s.batch, s.features, data), nil
}

// SetStep overwrites time step t with the values of a batch × features matrix
func (s *Sequence) SetStep(t int, m mat.Matrix) error {
	if t < 0 || t >= s.steps {
		return fmt.Errorf("step %d of %d, %w", t, s.steps, ErrStepOutOfBounds)
	}
	r, c := m.Dims()
	if r != s.batch {
		return fmt.Errorf("expected %d rows but got %d, %w", s.batch, r, ErrRowMismatch)
	}
	if c != s.features {
		return fmt.Errorf("expected %d columns but got %d, %w", s.features, c, ErrColMismatch)
	}
	for b := 0; b < r; b++ {
		for f := 0; f < c; f++ {
			s.Set(b, t, f, m.At(b, f))
		}
	}
	return nil
}

// Slice returns a copy of steps [start, end)
func (s *Sequence) Slice(start, end int) (*Sequence, error) {
	if start < 0 || end > s.steps || start > end {
		return nil, fmt.Errorf("slice [%d, %d) of %d steps, %w", start, end, s.steps, ErrStepOutOfBounds)
	}
	res, err := NewSequence(s.batch, end-start, s.features, nil)
	if err != nil {
		return nil, err
	}
	for b := 0; b < s.batch; b++ {
		src := s.data[s.index(b, start, 0):s.index(b, end, 0)]
		copy(res.data[res.index(b, 0, 0):], src)
	}
	return res, nil
}

// Series returns the values of feature f for batch element b across all steps
func (s *Sequence) Series(b, f int) []float64 {
	res := make([]float64, s.steps)
	for t := 0; t < s.steps; t++ {
		res[t] = s.At(b, t, f)
	}
	return res
}

// Array converts the sequence into a [batch][step][feature] slice
func (s *Sequence) Array() [][][]float64 {
	res := make([][][]float64, s.batch)
	for b := 0; b < s.batch; b++ {
		res[b] = make([][]float64, s.steps)
		for t := 0; t < s.steps; t++ {
			row := make([]float64, s.features)
			copy(row, s.data[s.index(b, t, 0):s.index(b, t, 0)+s.features])
			res[b][t] = row
		}
	}
	return res
}

// RawData returns the row-major backing slice
func (s *Sequence) RawData() []float64 {
	return s.data
}
