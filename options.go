package forecaster

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/aouyang1/go-probforecaster/covariate"
)

const (
	DefaultNumLayers = 1
	DefaultOutputDim = 1
	DefaultHiddenDim = 64
	DefaultZscore    = 1.96
)

var (
	ErrNumLayers        = errors.New("number of recurrent layers must be at least 1")
	ErrNegativeDim      = errors.New("negative dimension")
	ErrCovariateInput   = errors.New("input dimension must cover the series and covariate features")
	ErrNegativeParallel = errors.New("negative parallelization")
	ErrNegativeZscore   = errors.New("negative z-score")
)

// Options configures the shape of the recurrent gaussian forecaster
type Options struct {
	// NumLayers is the number of stacked recurrent cells
	NumLayers int `json:"num_layers"`

	// InputDim is the width of the input to the first cell, the number of series features plus
	// the number of covariates concatenated onto them. Zero derives it from OutputDim and
	// CovariateOptions.
	InputDim int `json:"input_dim"`

	// OutputDim is the number of series predicted, each with a mean and standard deviation
	OutputDim int `json:"output_dim"`

	// HiddenDim is the width of the hidden and cell state of every layer
	HiddenDim int `json:"hidden_dim"`

	// Seed drives parameter initialization. Zero picks a random seed which is written back.
	Seed uint64 `json:"seed"`

	// Zscore scales the predicted standard deviation into the upper and lower bands of Predict
	Zscore float64 `json:"zscore"`

	// Parallelization bounds how many requests ForwardBatches evaluates at once
	Parallelization int `json:"parallelization"`

	// CovariateOptions describes how covariates are generated from timestamps when predicting a
	// series with Predict. Nil means the model takes no covariates.
	CovariateOptions *covariate.Options `json:"covariate_options,omitempty"`
}

// NewDefaultOptions returns a single layer univariate forecaster with no covariates
func NewDefaultOptions() *Options {
	return &Options{
		NumLayers:       DefaultNumLayers,
		OutputDim:       DefaultOutputDim,
		HiddenDim:       DefaultHiddenDim,
		Zscore:          DefaultZscore,
		Parallelization: 1,
	}
}

// Validate fills in unset dimensions with defaults and checks the remaining values
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		o = NewDefaultOptions()
	}

	if o.NumLayers == 0 {
		o.NumLayers = DefaultNumLayers
	}
	if o.NumLayers < 1 {
		return nil, fmt.Errorf("got %d layers, %w", o.NumLayers, ErrNumLayers)
	}
	if o.InputDim < 0 || o.OutputDim < 0 || o.HiddenDim < 0 {
		return nil, fmt.Errorf("input %d, output %d, hidden %d, %w", o.InputDim, o.OutputDim, o.HiddenDim, ErrNegativeDim)
	}
	if o.Parallelization < 0 {
		return nil, ErrNegativeParallel
	}
	if o.Zscore < 0 {
		return nil, fmt.Errorf("got %.3f, %w", o.Zscore, ErrNegativeZscore)
	}

	if o.OutputDim == 0 {
		o.OutputDim = DefaultOutputDim
	}
	if o.HiddenDim == 0 {
		o.HiddenDim = DefaultHiddenDim
	}
	if o.Parallelization == 0 {
		o.Parallelization = 1
	}
	if o.Zscore == 0 {
		o.Zscore = DefaultZscore
	}

	if o.CovariateOptions != nil {
		covOpt, err := o.CovariateOptions.Validate()
		if err != nil {
			return nil, fmt.Errorf("invalid covariate options, %w", err)
		}
		o.CovariateOptions = covOpt
	}
	if o.InputDim == 0 {
		o.InputDim = o.OutputDim + o.CovariateOptions.NumFeatures()
	}
	if o.CovariateOptions != nil && o.InputDim != o.OutputDim+o.CovariateOptions.NumFeatures() {
		return nil, fmt.Errorf(
			"input dimension %d but %d series and %d covariates, %w",
			o.InputDim, o.OutputDim, o.CovariateOptions.NumFeatures(), ErrCovariateInput,
		)
	}

	if o.Seed == 0 {
		o.Seed = rand.Uint64()
	}
	return o, nil
}

// TablePrint writes a readable summary of the options
func (o *Options) TablePrint(w io.Writer, prefix, indent string) error {
	if _, err := fmt.Fprintf(w, "%s%sLayers: %d    Hidden: %d\n", prefix, indent, o.NumLayers, o.HiddenDim); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sInput: %d    Output: %d\n", prefix, indent, o.InputDim, o.OutputDim); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sSeed: %d    Zscore: %.2f\n", prefix, indent, o.Seed, o.Zscore); err != nil {
		return err
	}
	if o.CovariateOptions == nil {
		_, err := fmt.Fprintf(w, "%s%sCovariates: None\n", prefix, indent)
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sCovariates:\n", prefix, indent); err != nil {
		return err
	}
	for _, label := range o.CovariateOptions.Labels() {
		if _, err := fmt.Fprintf(w, "%s%s%s%s\n", prefix, indent, indent, label); err != nil {
			return err
		}
	}
	return nil
}
