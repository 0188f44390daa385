package commands

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	forecaster "github.com/aouyang1/go-probforecaster"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestSeries(t *testing.T, dir string, n int) string {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var sb strings.Builder
	sb.WriteString("time,value\n")
	for i := 0; i < n; i++ {
		ct := start.Add(time.Duration(i) * time.Hour)
		fmt.Fprintf(&sb, "%s,%.4f\n", ct.Format(time.RFC3339), 10+math.Sin(float64(i)/3.0))
	}
	path := filepath.Join(dir, "series.csv")
	require.Nil(t, os.WriteFile(path, []byte(sb.String()), 0o644))
	return path
}

func TestInitDescribePredict(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")

	initOpts := &InitOptions{
		OutputFile:   modelPath,
		NumLayers:    2,
		HiddenDim:    8,
		Seed:         3,
		DailyOrders:  1,
		WeeklyOrders: 1,
		Holidays:     []string{"labor"},
	}
	require.Nil(t, runInit(initOpts))

	_, m, err := readModel(modelPath)
	require.Nil(t, err)
	assert.Equal(t, 2, m.Options.NumLayers)
	assert.Equal(t, 6, m.Options.InputDim)
	assert.Equal(t, uint64(3), m.Options.Seed)

	var buf bytes.Buffer
	require.Nil(t, runDescribe(&DescribeOptions{ModelFile: modelPath, Indent: "  "}, &buf))
	assert.Contains(t, buf.String(), "Layers: 2    Hidden: 8")
	assert.Contains(t, buf.String(), "holiday_labor")
	assert.Contains(t, buf.String(), "lstm.1.weight_hh")

	outPath := filepath.Join(dir, "forecast.json")
	plotPath := filepath.Join(dir, "forecast.html")
	predictOpts := &PredictOptions{
		ModelFile:  modelPath,
		InputFile:  writeTestSeries(t, dir, 48),
		Horizon:    12,
		OutputFile: outPath,
		PlotFile:   plotPath,

		MaskOutliers: true,
		OutlierLower: 0.25,
		OutlierUpper: 0.75,
		TukeyFactor:  1.5,
	}
	require.Nil(t, runPredict(predictOpts))

	data, err := os.ReadFile(outPath)
	require.Nil(t, err)
	var out PredictOutput
	require.Nil(t, json.Unmarshal(data, &out))
	require.NotNil(t, out.Results)
	assert.Len(t, out.Results.T, 48+12)
	require.NotNil(t, out.Scores)

	info, err := os.Stat(plotPath)
	require.Nil(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestForecasterOptions(t *testing.T) {
	opts := &InitOptions{NumLayers: 1, HiddenDim: 4}
	opt := opts.forecasterOptions()
	assert.Nil(t, opt.CovariateOptions)
	assert.Equal(t, 1, opt.OutputDim)

	opts.WeeklyOrders = 2
	opt = opts.forecasterOptions()
	require.NotNil(t, opt.CovariateOptions)
	assert.Equal(t, 2, opt.CovariateOptions.WeeklyOrders)

	_, err := forecaster.New(opt)
	assert.Nil(t, err)
}

func TestReadModelErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := readModel(filepath.Join(dir, "missing.json"))
	assert.NotNil(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.Nil(t, os.WriteFile(bad, []byte(`{"weights": []}`), 0o644))
	_, _, err = readModel(bad)
	assert.ErrorIs(t, err, forecaster.ErrNoOptionsInModel)
}
