package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/go-robustforecast"
	"github.com/aouyang1/go-robustforecast/timedataset"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, name string, start time.Time, values []float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("ts,kpi\n")
	for i, v := range values {
		fmt.Fprintf(&b, "%s,%g\n", start.Add(time.Duration(i)*time.Minute).Format(timedataset.TimeLayout), v)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func wave(n int, offset int) []float64 {
	y := make([]float64, n)
	for i := range y {
		y[i] = 100 + 20*math.Sin(2*math.Pi*float64(i+offset)/60)
	}
	return y
}

func TestForecastCmd(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data := writeCSV(t, dir, "train.csv", start, wave(120, 0))

	// the next 10 minutes with actual values
	known := writeCSV(t, dir, "known.csv", start.Add(120*time.Minute), wave(10, 120))

	config := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte(`
period: 60
interval: 60
colname: kpi
forecast_horizon: 1800
non_zero_lower_interval: true
`), 0o644))

	plot := filepath.Join(dir, "fit.html")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"forecast",
		"--config", config,
		"--data", data,
		"--known", known,
		"--plot", plot,
		"--log-level", "debug",
	})
	require.NoError(t, cmd.Execute())

	var res struct {
		Rows     []robustforecast.Row          `json:"rows"`
		Resolved robustforecast.ResolvedConfig `json:"resolved"`
		Path     robustforecast.Path           `json:"path"`
		Scores   map[string]float64            `json:"scores"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))

	assert.Equal(t, robustforecast.PathShortHistory, res.Path)
	assert.Equal(t, 30, res.Resolved.ForecastHorizonCnt)
	require.Len(t, res.Rows, 10)
	assert.Equal(t, start.Add(120*time.Minute).Unix(), res.Rows[0].TS)
	assert.Equal(t, 10.0, res.Scores["n"])
	assert.FileExists(t, plot)
	assert.Contains(t, stderr.String(), "fit forecast")
}

func TestForecastCmdErrors(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data := writeCSV(t, dir, "train.csv", start, wave(120, 0))

	badConfig := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("interval: 60\ncolname: kpi\n"), 0o644))

	testData := map[string]struct {
		args []string
	}{
		"missing data flag": {
			args: []string{"forecast", "--config", badConfig},
		},
		"missing period": {
			args: []string{"forecast", "--config", badConfig, "--data", data},
		},
		"missing config file": {
			args: []string{"forecast", "--config", filepath.Join(dir, "none.yaml"), "--data", data},
		},
		"bad log level": {
			args: []string{"forecast", "--config", badConfig, "--data", data, "--log-level", "loud"},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := newRootCmd()
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(td.args)
			assert.Error(t, cmd.Execute())
		})
	}
}

func TestListCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "acf_med")
	assert.Contains(t, out.String(), "harmonic")
	assert.Contains(t, out.String(), "classical")
}
