// Package forecaster implements a probabilistic sequence forecaster. A stack of recurrent cells
// reads a conditioning window of observations and emits a gaussian mean and standard deviation
// per step, then rolls forward over a horizon by feeding its own predictions back as input.
package forecaster

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	mat_ "github.com/aouyang1/go-probforecaster/mat"
	"github.com/aouyang1/go-probforecaster/nn"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrUninitializedForecaster = errors.New("uninitialized forecaster")
	ErrNoInput                 = errors.New("no input sequence")
	ErrEmptyBatch              = errors.New("input batch is empty")
	ErrNegativeHorizon         = errors.New("negative horizon")
	ErrInputFeatures           = errors.New("input and covariate features do not match the model input dimension")
	ErrFeedbackDim             = errors.New("fed back predictions and covariates do not match the model input dimension")
	ErrCovariateBatch          = errors.New("covariate batch size does not match input")
	ErrCovariateSteps          = errors.New("covariates do not cover the conditioning window and horizon")
)

// Forecaster is a recurrent gaussian forecaster. The cells and heads are created once by New
// and never replaced, so a single Forecaster can serve concurrent forward passes.
type Forecaster struct {
	opt *Options

	// cells[0] reads the input, cells[k] reads the hidden state of cells[k-1]
	cells []*nn.LSTMCell
	mean  *nn.Linear
	std   *nn.Linear
}

// New creates a forecaster with freshly initialized parameters. If no options are provided a
// default is used.
func New(opt *Options) (*Forecaster, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}

	rnd := rand.New(rand.NewPCG(opt.Seed, opt.Seed))

	cells := make([]*nn.LSTMCell, opt.NumLayers)
	for k := range cells {
		in := opt.HiddenDim
		if k == 0 {
			in = opt.InputDim
		}
		cells[k], err = nn.NewLSTMCell(in, opt.HiddenDim, rnd)
		if err != nil {
			return nil, fmt.Errorf("unable to initialize recurrent layer %d, %w", k, err)
		}
	}

	mean, err := nn.NewLinear(opt.HiddenDim, opt.OutputDim, rnd)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize mean head, %w", err)
	}
	std, err := nn.NewLinear(opt.HiddenDim, opt.OutputDim, rnd)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize std head, %w", err)
	}

	f := &Forecaster{
		opt:   opt,
		cells: cells,
		mean:  mean,
		std:   std,
	}
	slog.Debug("initialized forecaster",
		"layers", opt.NumLayers,
		"input_dim", opt.InputDim,
		"output_dim", opt.OutputDim,
		"hidden_dim", opt.HiddenDim,
		"parameters", nn.NumParameters(f),
	)
	return f, nil
}

// Options returns a copy of the options the forecaster was built with
func (f *Forecaster) Options() Options {
	return *f.opt
}

// Parameters lists every learnable matrix by name. The matrices are shared with the forecaster so
// an optimizer may update them in place between forward passes.
func (f *Forecaster) Parameters() []nn.Parameter {
	var params []nn.Parameter
	for k, cell := range f.cells {
		params = append(params, nn.WithPrefix(fmt.Sprintf("lstm.%d", k), cell.Parameters())...)
	}
	params = append(params, nn.WithPrefix("mean", f.mean.Parameters())...)
	params = append(params, nn.WithPrefix("std", f.std.Parameters())...)
	return params
}

// state holds the per layer hidden and cell states of a single forward pass
type state struct {
	h []*mat.Dense
	c []*mat.Dense
}

func (f *Forecaster) newState(batch int) *state {
	s := &state{
		h: make([]*mat.Dense, len(f.cells)),
		c: make([]*mat.Dense, len(f.cells)),
	}
	for k := range f.cells {
		s.h[k] = mat.NewDense(batch, f.opt.HiddenDim, nil)
		s.c[k] = mat.NewDense(batch, f.opt.HiddenDim, nil)
	}
	return s
}

// step runs x through every layer in order and returns the top hidden state
func (f *Forecaster) step(s *state, x mat.Matrix) (*mat.Dense, error) {
	var err error
	for k, cell := range f.cells {
		if k > 0 {
			x = s.h[k-1]
		}
		s.h[k], s.c[k], err = cell.Forward(x, s.h[k], s.c[k])
		if err != nil {
			return nil, fmt.Errorf("layer %d, %w", k, err)
		}
	}
	return s.h[len(f.cells)-1], nil
}

// heads projects the top hidden state to the mean and raw std pre-activation
func (f *Forecaster) heads(top mat.Matrix) (*mat.Dense, *mat.Dense, error) {
	mean, err := f.mean.Forward(top)
	if err != nil {
		return nil, nil, fmt.Errorf("mean head, %w", err)
	}
	std, err := f.std.Forward(top)
	if err != nil {
		return nil, nil, fmt.Errorf("std head, %w", err)
	}
	return mean, std, nil
}

// feedFunc picks the next series input from the previous step's predicted distribution
type feedFunc func(mean, std *mat.Dense) (*mat.Dense, error)

func feedMean(mean, _ *mat.Dense) (*mat.Dense, error) {
	return mean, nil
}

// Forward conditions on input (batch × conditioning × series features) and predicts horizon
// further steps by feeding back the predicted mean. covariates is batch × (conditioning + horizon)
// × covariate features and may be nil when the model takes no covariates. The result covers all
// conditioning + horizon steps and is deterministic for identical inputs.
func (f *Forecaster) Forward(input, covariates *mat_.Sequence, horizon int) (*Distribution, error) {
	return f.rollout(input, covariates, horizon, feedMean)
}

// ForwardSampled behaves like Forward except that each future step is fed a sample drawn from
// the previous step's predicted distribution. The rng is only used by this call; sharing one
// across goroutines is not safe.
func (f *Forecaster) ForwardSampled(input, covariates *mat_.Sequence, horizon int, rnd *rand.Rand) (*Distribution, error) {
	return f.rollout(input, covariates, horizon, func(mean, std *mat.Dense) (*mat.Dense, error) {
		return Sample(mean, std, rnd)
	})
}

func (f *Forecaster) validate(input, covariates *mat_.Sequence, horizon int) (int, error) {
	if f == nil || len(f.cells) == 0 {
		return 0, ErrUninitializedForecaster
	}
	if input == nil {
		return 0, ErrNoInput
	}
	if horizon < 0 {
		return 0, fmt.Errorf("got %d, %w", horizon, ErrNegativeHorizon)
	}

	batch, condLen, inFeat := input.Dims()
	if batch == 0 {
		return 0, ErrEmptyBatch
	}

	var covFeat int
	if covariates != nil {
		var covBatch, covSteps int
		covBatch, covSteps, covFeat = covariates.Dims()
		if covFeat > 0 {
			if covBatch != batch {
				return 0, fmt.Errorf("input batch %d, covariate batch %d, %w", batch, covBatch, ErrCovariateBatch)
			}
			if covSteps < condLen+horizon {
				return 0, fmt.Errorf(
					"need %d covariate steps for conditioning %d and horizon %d but got %d, %w",
					condLen+horizon, condLen, horizon, covSteps, ErrCovariateSteps,
				)
			}
		}
	}

	if condLen > 0 && inFeat+covFeat != f.opt.InputDim {
		return 0, fmt.Errorf(
			"%d series and %d covariate features for input dimension %d, %w",
			inFeat, covFeat, f.opt.InputDim, ErrInputFeatures,
		)
	}
	if horizon > 0 && f.opt.OutputDim+covFeat != f.opt.InputDim {
		return 0, fmt.Errorf(
			"%d outputs and %d covariate features for input dimension %d, %w",
			f.opt.OutputDim, covFeat, f.opt.InputDim, ErrFeedbackDim,
		)
	}
	return covFeat, nil
}

func (f *Forecaster) rollout(input, covariates *mat_.Sequence, horizon int, feed feedFunc) (*Distribution, error) {
	covFeat, err := f.validate(input, covariates, horizon)
	if err != nil {
		return nil, err
	}
	batch, condLen, _ := input.Dims()
	outputs := f.opt.OutputDim

	stepInput := func(x *mat.Dense, t int) (*mat.Dense, error) {
		if covFeat == 0 {
			return x, nil
		}
		cov, err := covariates.Step(t)
		if err != nil {
			return nil, err
		}
		if x == nil {
			return cov, nil
		}
		return mat_.Augment(x, cov), nil
	}

	s := f.newState(batch)
	means := make([]mat.Matrix, 0, condLen+horizon)
	stds := make([]*mat.Dense, 0, condLen+horizon)

	for t := 0; t < condLen; t++ {
		obs, err := input.Step(t)
		if err != nil {
			return nil, err
		}
		x, err := stepInput(obs, t)
		if err != nil {
			return nil, err
		}
		top, err := f.step(s, x)
		if err != nil {
			return nil, fmt.Errorf("conditioning step %d, %w", t, err)
		}
		mean, std, err := f.heads(top)
		if err != nil {
			return nil, fmt.Errorf("conditioning step %d, %w", t, err)
		}
		means = append(means, mean)
		stds = append(stds, std)
	}

	// the last predicted distribution seeds the horizon, zeros when nothing was conditioned on
	lastMean := mat.NewDense(batch, outputs, nil)
	lastStd := mat.NewDense(batch, outputs, nil)
	if condLen > 0 {
		stds = softplusSteps(stds, batch, outputs)
		lastMean = means[condLen-1].(*mat.Dense)
		lastStd = stds[condLen-1]
	}

	for i := 0; i < horizon; i++ {
		next, err := feed(lastMean, lastStd)
		if err != nil {
			return nil, fmt.Errorf("future step %d, %w", i, err)
		}
		x, err := stepInput(next, condLen+i)
		if err != nil {
			return nil, err
		}
		top, err := f.step(s, x)
		if err != nil {
			return nil, fmt.Errorf("future step %d, %w", i, err)
		}
		mean, std, err := f.heads(top)
		if err != nil {
			return nil, fmt.Errorf("future step %d, %w", i, err)
		}
		// each future std has to be positive before it can parameterize the next feed
		nn.SoftplusDense(std, std)

		means = append(means, mean)
		stds = append(stds, std)
		lastMean, lastStd = mean, std
	}

	stdSteps := make([]mat.Matrix, len(stds))
	for t, std := range stds {
		stdSteps[t] = std
	}
	return newDistribution(batch, outputs, means, stdSteps)
}

// softplusSteps stacks the raw std of every conditioning step and applies the positivity
// transform in one pass over the stacked matrix. The returned steps are views into it.
func softplusSteps(stds []*mat.Dense, batch, outputs int) []*mat.Dense {
	data := make([]float64, 0, len(stds)*batch*outputs)
	for _, std := range stds {
		for b := 0; b < batch; b++ {
			data = append(data, std.RawRowView(b)...)
		}
	}
	stacked := mat.NewDense(len(stds)*batch, outputs, data)
	nn.SoftplusDense(stacked, stacked)

	res := make([]*mat.Dense, len(stds))
	for t := range stds {
		res[t] = stacked.Slice(t*batch, (t+1)*batch, 0, outputs).(*mat.Dense)
	}
	return res
}

// Request is a single forward pass evaluated by ForwardBatches
type Request struct {
	Input      *mat_.Sequence
	Covariates *mat_.Sequence
	Horizon    int
}

// ForwardBatches runs Forward on every request, evaluating up to Options.Parallelization requests
// at once. Results are returned in request order; a failed request leaves a nil entry and its
// error is joined into the returned error.
func (f *Forecaster) ForwardBatches(reqs []Request) ([]*Distribution, error) {
	if f == nil || f.opt == nil {
		return nil, ErrUninitializedForecaster
	}
	res := make([]*Distribution, len(reqs))
	errs := make([]error, len(reqs))

	sem := make(chan struct{}, f.opt.Parallelization)
	var wg sync.WaitGroup
	for i := range reqs {
		sem <- struct{}{}
		wg.Add(1)

		go f.runRequest(i, reqs[i], res, errs, &wg, sem)
	}
	wg.Wait()

	return res, errors.Join(errs...)
}

func (f *Forecaster) runRequest(i int, req Request, res []*Distribution, errs []error, wg *sync.WaitGroup, sem chan struct{}) {
	defer func() {
		wg.Done()
		<-sem
	}()

	dist, err := f.Forward(req.Input, req.Covariates, req.Horizon)
	if err != nil {
		slog.Error("unable to run forward pass", "request", i, "error", err.Error())
		errs[i] = fmt.Errorf("request %d, %w", i, err)
		return
	}
	res[i] = dist
}
