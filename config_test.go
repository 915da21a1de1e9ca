package robustforecast

import (
	"strings"
	"testing"

	"github.com/aouyang1/go-robustforecast/decomposition"
	"github.com/aouyang1/go-robustforecast/periodicity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig(1440, 60, "kpi")
	assert.Equal(t, 0.75, cfg.Quantile)
	assert.Equal(t, 2.0, cfg.IntervalSigma)
	assert.Equal(t, periodicity.NameACFMed, cfg.Detector)
	assert.Equal(t, decomposition.NameHarmonic, cfg.Decomposer)
	assert.Equal(t, 0.15, cfg.DetectorParams.ACFPeakThreshold)
	assert.Equal(t, 0.05, cfg.DetectorParams.RefineTolerance)
	assert.Equal(t, 6, cfg.DecomposerParams.Orders)
	assert.Equal(t, 2, cfg.DecomposerParams.MaxIterations)
	assert.Nil(t, cfg.ACFPeakThreshold)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	testData := map[string]struct {
		input    string
		expected func() *Config
		err      bool
	}{
		"defaults fill the rest": {
			input: `
period: 1440
interval: 60
colname: kpi
forecast_horizon: 86400
non_zero_lower_interval: true
`,
			expected: func() *Config {
				cfg := NewDefaultConfig(1440, 60, "kpi")
				cfg.ForecastHorizon = 86400
				cfg.NonZeroLowerInterval = true
				return cfg
			},
		},
		"overrides and nested params": {
			input: `
period: 288
interval: 300
colname: latency
quantile: 0.9
interval_sigma: 3
acf_peak_th: 0.3
refine_tolerance: 0.1
pd_detector: acf_med
pd_params:
  period_candidate: 300
  skip_refine: true
stl_detector: classical
stl_params:
  orders: 3
  disable_trend: true
`,
			expected: func() *Config {
				cfg := NewDefaultConfig(288, 300, "latency")
				cfg.Quantile = 0.9
				cfg.IntervalSigma = 3
				th, tol := 0.3, 0.1
				cfg.ACFPeakThreshold = &th
				cfg.RefineTolerance = &tol
				cfg.DetectorParams.PeriodCandidate = 300
				cfg.DetectorParams.SkipRefine = true
				cfg.Decomposer = decomposition.NameClassical
				cfg.DecomposerParams.Orders = 3
				cfg.DecomposerParams.DisableTrend = true
				return cfg
			},
		},
		"unknown field": {
			input: "period: 1440\nwindow: 10\n",
			err:   true,
		},
		"malformed": {
			input: "period: [1440\n",
			err:   true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadConfig(strings.NewReader(td.input))
			if td.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected(), cfg)
		})
	}
}

func TestResolve(t *testing.T) {
	cfg := NewDefaultConfig(1440, 60, "kpi")
	cfg.ForecastHorizon = 3630
	resolved := cfg.resolve()
	assert.Equal(t, 1440, resolved.DetectorParams.PeriodCandidate)
	assert.Equal(t, 0.15, resolved.DetectorParams.ACFPeakThreshold)
	assert.Equal(t, 60, resolved.ForecastHorizonCnt)

	th, tol := 0.4, 0.2
	cfg.ACFPeakThreshold = &th
	cfg.RefineTolerance = &tol
	cfg.DetectorParams.PeriodCandidate = 1000
	resolved = cfg.resolve()
	assert.Equal(t, 1000, resolved.DetectorParams.PeriodCandidate)
	assert.Equal(t, 0.4, resolved.DetectorParams.ACFPeakThreshold)
	assert.Equal(t, 0.2, resolved.DetectorParams.RefineTolerance)

	// resolving never writes back into the config
	assert.Equal(t, 0.15, cfg.DetectorParams.ACFPeakThreshold)
	assert.Equal(t, 0.05, cfg.DetectorParams.RefineTolerance)
}
