package forecaster

import (
	"errors"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoOptionsInModel = errors.New("no options set in model")
	ErrMissingWeight    = errors.New("model is missing a weight")
	ErrUnknownWeight    = errors.New("model has a weight the forecaster does not use")
	ErrWeightShape      = errors.New("weight shape does not match the forecaster")
)

// Model is a serializeable representation of a forecaster storing its options and every
// learnable weight by name
type Model struct {
	Options *Options `json:"options"`
	Weights []Weight `json:"weights"`
}

// Weight is a named row-major matrix
type Weight struct {
	Name   string    `json:"name"`
	Rows   int       `json:"rows"`
	Cols   int       `json:"cols"`
	Values []float64 `json:"values"`
}

// Model captures the current parameters of the forecaster. It can be used to initialize a new
// Forecaster with NewFromModel.
func (f *Forecaster) Model() (Model, error) {
	if f == nil || f.opt == nil {
		return Model{}, ErrUninitializedForecaster
	}
	opt := *f.opt
	params := f.Parameters()
	m := Model{
		Options: &opt,
		Weights: make([]Weight, 0, len(params)),
	}
	for _, p := range params {
		r, c := p.Value.Dims()
		values := make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			values = append(values, p.Value.RawRowView(i)...)
		}
		m.Weights = append(m.Weights, Weight{
			Name:   p.Name,
			Rows:   r,
			Cols:   c,
			Values: values,
		})
	}
	return m, nil
}

// NewFromModel creates a forecaster from a model generated by a previous call to Model(). The
// weights must match the shapes implied by the model options exactly.
func NewFromModel(model Model) (*Forecaster, error) {
	if model.Options == nil {
		return nil, ErrNoOptionsInModel
	}
	opt := *model.Options
	f, err := New(&opt)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize forecaster from model options, %w", err)
	}

	weights := make(map[string]Weight, len(model.Weights))
	for _, w := range model.Weights {
		weights[w.Name] = w
	}

	params := f.Parameters()
	for _, p := range params {
		w, exists := weights[p.Name]
		if !exists {
			return nil, fmt.Errorf("%s, %w", p.Name, ErrMissingWeight)
		}
		r, c := p.Value.Dims()
		if w.Rows != r || w.Cols != c || len(w.Values) != r*c {
			return nil, fmt.Errorf(
				"%s expected %dx%d but got %dx%d with %d values, %w",
				p.Name, r, c, w.Rows, w.Cols, len(w.Values), ErrWeightShape,
			)
		}
		p.Value.Copy(mat.NewDense(r, c, w.Values))
	}
	if len(weights) != len(params) {
		for _, p := range params {
			delete(weights, p.Name)
		}
		for name := range weights {
			return nil, fmt.Errorf("%s, %w", name, ErrUnknownWeight)
		}
	}
	return f, nil
}

// TablePrint writes the model options and a summary of every weight
func (m Model) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%sForecaster:\n", prefix); err != nil {
		return err
	}
	if m.Options != nil {
		if err := m.Options.TablePrint(w, prefix, indent); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%sWeights:\n", prefix); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sName\tShape\tMin\tMax\tL2\t\n", prefix, indent); err != nil {
		return err
	}
	for _, weight := range m.Weights {
		minVal, maxVal, l2 := math.NaN(), math.NaN(), 0.0
		if len(weight.Values) > 0 {
			minVal = floats.Min(weight.Values)
			maxVal = floats.Max(weight.Values)
			l2 = floats.Norm(weight.Values, 2)
		}
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%dx%d\t%.4f\t%.4f\t%.4f\t\n",
			prefix, indent, weight.Name, weight.Rows, weight.Cols, minVal, maxVal, l2); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
