package forecaster

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"
	"time"

	"github.com/aouyang1/go-probforecaster/covariate"
	"github.com/aouyang1/go-probforecaster/timedataset"
	"github.com/stretchr/testify/require"
)

func generateExampleSeries(minutes int) ([]time.Time, []float64) {
	// daily sine waves at minutely resolution
	t := timedataset.GenerateT(minutes, time.Minute, time.Now)
	y := make(timedataset.Series, minutes)

	period := 86400.0
	y.Add(timedataset.GenerateConstY(minutes, 98.3)).
		Add(timedataset.GenerateWaveY(t, 10.5, period, 1.0, 2*60*60)).
		Add(timedataset.GenerateWaveY(t, 10.5, period, 3.0, 2.0*60*60+period/2.0/2.0/3.0)).
		Add(timedataset.GenerateWaveY(t, -7.3, period, 3.0, 2*60*60+period/2.0/2.0/3.0).MaskWithWeekend(t)).
		Add(timedataset.GenerateNoise(t, 3.2, 3.2, period, 5.0, 0.0, rand.New(rand.NewPCG(1, 2)))).
		SetConst(t, 2.7, t[minutes/3], t[minutes/3+minutes/20])

	return t, y
}

func exampleOptions() *Options {
	return &Options{
		NumLayers:        2,
		HiddenDim:        16,
		Seed:             42,
		Parallelization:  4,
		CovariateOptions: covariate.NewDefaultOptions(),
	}
}

func runForecastExample(opt *Options, t []time.Time, y []float64, horizon int, filename string) error {
	f, err := New(opt)
	if err != nil {
		return err
	}

	m, err := f.Model()
	if err != nil {
		return err
	}
	if err := m.Options.TablePrint(os.Stderr, "", "  "); err != nil {
		return err
	}

	res, err := f.Predict(t, y, horizon, 0)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	td, err := timedataset.NewUnivariateDataset(t, y)
	if err != nil {
		return err
	}
	return PlotForecast(file, res, td)
}

func recoverForecastPanic(t *testing.T) {
	if r := recover(); r != nil {
		if t != nil {
			t.Errorf("panic: %v\n", r)
		} else {
			fmt.Printf("panic: %v\n", r)
		}
		debug.PrintStack()
	}
}

func TestForecasterExample(t *testing.T) {
	defer recoverForecastPanic(t)

	tSeries, y := generateExampleSeries(6 * 60)
	filename := filepath.Join(t.TempDir(), "forecast.html")
	require.Nil(t, runForecastExample(exampleOptions(), tSeries, y, 60, filename))

	info, err := os.Stat(filename)
	require.Nil(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func ExampleForecaster_Predict() {
	defer recoverForecastPanic(nil)

	t, y := generateExampleSeries(2 * 60)
	f, err := New(exampleOptions())
	if err != nil {
		panic(err)
	}
	res, err := f.Predict(t, y, 30, time.Minute)
	if err != nil {
		panic(err)
	}
	fmt.Println(len(res.T))
	// Output:
	// 150
}
