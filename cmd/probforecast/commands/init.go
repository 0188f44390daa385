package commands

import (
	"log/slog"
	"time"

	forecaster "github.com/aouyang1/go-probforecaster"
	"github.com/aouyang1/go-probforecaster/covariate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type InitOptions struct {
	OutputFile      string
	NumLayers       int
	HiddenDim       int
	Seed            uint64
	Zscore          float64
	Parallelization int
	DailyOrders     int
	WeeklyOrders    int
	Holidays        []string
	HolidayBefore   time.Duration
	HolidayAfter    time.Duration
}

func NewInitCmd() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a freshly initialized model file",
		Long: `Create a univariate forecaster with randomly initialized weights and write it as json.
Every flag may also be set in the config file under the model key or through the
PROBFORECAST_MODEL_<FLAG> environment variables.`,
		Example: `  # Two layer model with daily and weekly covariates
  probforecast init --layers 2 --hidden 32 --daily-orders 3 --weekly-orders 2 -o model.json

  # Include christmas and thanksgiving indicators
  probforecast init --holidays christmas,thanksgiving -o model.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.loadConfig()
			return runInit(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "model.json", "Output model file (- for stdout)")
	cmd.Flags().Int("layers", forecaster.DefaultNumLayers, "Number of stacked recurrent layers")
	cmd.Flags().Int("hidden", forecaster.DefaultHiddenDim, "Hidden state width of every layer")
	cmd.Flags().Uint64("seed", 0, "Initialization seed, 0 picks a random seed")
	cmd.Flags().Float64("zscore", forecaster.DefaultZscore, "Z-score of the forecast bands")
	cmd.Flags().Int("parallelization", 1, "Number of batches evaluated at once")
	cmd.Flags().Int("daily-orders", 0, "Number of daily fourier covariate orders")
	cmd.Flags().Int("weekly-orders", 0, "Number of weekly fourier covariate orders")
	cmd.Flags().StringSlice("holidays", nil, "US holidays to add as covariates")
	cmd.Flags().Duration("holiday-before", 0, "Duration before each holiday included in its window")
	cmd.Flags().Duration("holiday-after", 0, "Duration after each holiday included in its window")

	for _, name := range []string{
		"layers", "hidden", "seed", "zscore", "parallelization", "daily-orders", "weekly-orders",
		"holidays", "holiday-before", "holiday-after",
	} {
		cobra.CheckErr(viper.BindPFlag("model."+name, cmd.Flags().Lookup(name)))
	}

	return cmd
}

func (o *InitOptions) loadConfig() {
	o.NumLayers = viper.GetInt("model.layers")
	o.HiddenDim = viper.GetInt("model.hidden")
	o.Seed = viper.GetUint64("model.seed")
	o.Zscore = viper.GetFloat64("model.zscore")
	o.Parallelization = viper.GetInt("model.parallelization")
	o.DailyOrders = viper.GetInt("model.daily-orders")
	o.WeeklyOrders = viper.GetInt("model.weekly-orders")
	o.Holidays = viper.GetStringSlice("model.holidays")
	o.HolidayBefore = viper.GetDuration("model.holiday-before")
	o.HolidayAfter = viper.GetDuration("model.holiday-after")
}

func (o *InitOptions) forecasterOptions() *forecaster.Options {
	opt := &forecaster.Options{
		NumLayers:       o.NumLayers,
		OutputDim:       1,
		HiddenDim:       o.HiddenDim,
		Seed:            o.Seed,
		Zscore:          o.Zscore,
		Parallelization: o.Parallelization,
	}
	if o.DailyOrders > 0 || o.WeeklyOrders > 0 || len(o.Holidays) > 0 {
		opt.CovariateOptions = &covariate.Options{
			DailyOrders:   o.DailyOrders,
			WeeklyOrders:  o.WeeklyOrders,
			Holidays:      o.Holidays,
			HolidayBefore: o.HolidayBefore,
			HolidayAfter:  o.HolidayAfter,
		}
	}
	return opt
}

func runInit(opts *InitOptions) error {
	f, err := forecaster.New(opts.forecasterOptions())
	if err != nil {
		return err
	}
	m, err := f.Model()
	if err != nil {
		return err
	}
	if err := writeJSON(opts.OutputFile, m); err != nil {
		return err
	}

	slog.Info("wrote model",
		"path", opts.OutputFile,
		"layers", m.Options.NumLayers,
		"input_dim", m.Options.InputDim,
		"hidden_dim", m.Options.HiddenDim,
		"seed", m.Options.Seed,
	)
	return nil
}
