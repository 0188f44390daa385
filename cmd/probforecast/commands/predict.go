package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	forecaster "github.com/aouyang1/go-probforecaster"
	"github.com/aouyang1/go-probforecaster/timedataset"
	"github.com/spf13/cobra"
)

type PredictOptions struct {
	ModelFile  string
	InputFile  string
	Horizon    int
	Interval   time.Duration
	OutputFile string
	PlotFile   string

	MaskOutliers bool
	OutlierLower float64
	OutlierUpper float64
	TukeyFactor  float64
}

// PredictOutput is the json document written by the predict command
type PredictOutput struct {
	Results *forecaster.Results `json:"results"`
	Scores  *forecaster.Scores  `json:"scores,omitempty"`
}

func NewPredictCmd() *cobra.Command {
	opts := &PredictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast a csv series with a model file",
		Long: `Condition a model on a csv series of timestamp,value rows and forecast past the last
observation. The output holds the one step ahead forecast for every observation after the first
followed by the horizon, and scores of the forecast against the observed values.`,
		Example: `  # Forecast the next 24 hours of an hourly series
  probforecast predict --model model.json --input series.csv --horizon 24

  # Write the forecast and an html chart
  probforecast predict -m model.json -i series.csv --horizon 60 -o forecast.json --plot forecast.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ModelFile, "model", "m", "model.json", "Model file")
	cmd.Flags().StringVarP(&opts.InputFile, "input", "i", "", "Input csv of timestamp,value rows (required)")
	cmd.Flags().IntVar(&opts.Horizon, "horizon", 10, "Number of steps to forecast past the last observation")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "Spacing of forecast steps, 0 infers it from the input")
	cmd.Flags().StringVarP(&opts.OutputFile, "output", "o", "-", "Output json file (- for stdout)")
	cmd.Flags().StringVar(&opts.PlotFile, "plot", "", "Optional html chart output file")

	cmd.Flags().BoolVar(&opts.MaskOutliers, "mask-outliers", false, "Drop tukey outliers before conditioning")
	cmd.Flags().Float64Var(&opts.OutlierLower, "outlier-lower", 0.25, "Lower percentile of the outlier fence")
	cmd.Flags().Float64Var(&opts.OutlierUpper, "outlier-upper", 0.75, "Upper percentile of the outlier fence")
	cmd.Flags().Float64Var(&opts.TukeyFactor, "tukey-factor", 1.5, "Multiple of the percentile range added to the outlier fence")

	cmd.MarkFlagRequired("input")

	return cmd
}

func runPredict(opts *PredictOptions) error {
	f, _, err := readModel(opts.ModelFile)
	if err != nil {
		return err
	}

	file, err := os.Open(opts.InputFile)
	if err != nil {
		return fmt.Errorf("unable to open input, %w", err)
	}
	defer file.Close()

	t, y, err := readSeries(file)
	if err != nil {
		return err
	}
	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}

	condition := td
	if opts.MaskOutliers {
		condition, err = td.MaskOutliers(opts.OutlierLower, opts.OutlierUpper, opts.TukeyFactor)
		if err != nil {
			return err
		}
		slog.Debug("masked outliers", "dropped", len(td.DropNan().Y)-len(condition.DropNan().Y))
	}

	res, err := f.Predict(condition.T, condition.Y, opts.Horizon, opts.Interval)
	if err != nil {
		return err
	}

	out := PredictOutput{Results: res}
	scores, err := res.Score(td, f.Options().Zscore)
	if err != nil {
		slog.Warn("unable to score forecast", "error", err.Error())
	} else {
		out.Scores = scores
		slog.Info("scored forecast",
			"nll", scores.NLL,
			"mse", scores.MSE,
			"mape", scores.MAPE,
			"r2", scores.R2,
			"coverage", scores.Coverage,
		)
	}

	if err := writeJSON(opts.OutputFile, out); err != nil {
		return err
	}

	if opts.PlotFile == "" {
		return nil
	}
	plot, err := os.Create(opts.PlotFile)
	if err != nil {
		return fmt.Errorf("unable to create plot file, %w", err)
	}
	defer plot.Close()
	return forecaster.PlotForecast(plot, res, td)
}
