package decomposition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seasonal generates bias + slope*i + amp*sin(2*pi*i/cycle) for n points starting at index
// start
func seasonal(start, n, cycle int, bias, slope, amp float64) []float64 {
	y := make([]float64, 0, n)
	for i := start; i < start+n; i++ {
		y = append(y, bias+slope*float64(i)+amp*math.Sin(2.0*math.Pi*float64(i)/float64(cycle)))
	}
	return y
}

func TestLookup(t *testing.T) {
	testData := map[string]struct {
		name     string
		expected Estimator
		err      error
	}{
		"harmonic":  {name: NameHarmonic, expected: Harmonic{}},
		"classical": {name: NameClassical, expected: ClassicalEstimator{}},
		"unknown":   {name: "robust_stl", err: ErrUnknownEstimator},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			est, err := Lookup(td.name)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, td.expected, est)
		})
	}
	assert.Equal(t, []string{NameClassical, NameHarmonic}, Names())
}

func TestHarmonicDecompose(t *testing.T) {
	cycle := 24
	n := cycle * 5
	horizon := cycle
	values := seasonal(0, n, cycle, 10.0, 0.05, 3.0)

	p := Params{
		CycleLength:     cycle,
		Horizon:         horizon,
		Orders:          3,
		MaxIterations:   2,
		LowerPercentile: 0.1,
		UpperPercentile: 0.9,
		TukeyFactor:     1.0,
	}
	d, latest, err := Harmonic{}.Decompose(values, p)
	require.NoError(t, err)

	require.Len(t, d.Trend, n)
	require.Len(t, d.Season, n)
	require.Len(t, d.Residual, n)
	for i := range d.Residual {
		assert.InDelta(t, 0.0, d.Residual[i], 1e-6, "residual at %d", i)
	}

	expected := seasonal(n, horizon, cycle, 10.0, 0.05, 3.0)
	require.Len(t, latest.SeasonPlusTrend, horizon)
	require.Len(t, latest.Trend, horizon)
	require.Len(t, latest.Season, horizon)
	assert.InDeltaSlice(t, expected, latest.SeasonPlusTrend, 1e-6)
	assert.InDelta(t, 10.0+0.05*float64(n), latest.Trend[0], 1e-6)
}

func TestHarmonicDecomposeWithOutliers(t *testing.T) {
	cycle := 24
	n := cycle * 4
	values := seasonal(0, n, cycle, 5.0, 0.0, 2.0)
	values[10] = 500
	values[50] = -500
	values[70] = math.NaN()

	p := Params{
		CycleLength:     cycle,
		Horizon:         cycle,
		Orders:          2,
		DisableTrend:    true,
		MaxIterations:   3,
		LowerPercentile: 0.1,
		UpperPercentile: 0.9,
		TukeyFactor:     1.0,
	}
	d, latest, err := Harmonic{}.Decompose(values, p)
	require.NoError(t, err)

	assert.InDelta(t, 494.0, d.Residual[10], 1e-6)
	assert.True(t, math.IsNaN(d.Residual[70]))
	assert.InDeltaSlice(t, seasonal(n, cycle, cycle, 5.0, 0.0, 2.0), latest.SeasonPlusTrend, 1e-6)
}

func TestHarmonicDecomposeErrors(t *testing.T) {
	testData := map[string]struct {
		values []float64
		p      Params
		err    error
	}{
		"cycle too short": {
			values: make([]float64, 10),
			p:      Params{CycleLength: 2, Orders: 1},
			err:    ErrInvalidCycle,
		},
		"negative horizon": {
			values: make([]float64, 10),
			p:      Params{CycleLength: 4, Horizon: -1, Orders: 1},
			err:    ErrInvalidHorizon,
		},
		"less than two cycles": {
			values: make([]float64, 10),
			p:      Params{CycleLength: 6, Orders: 1},
			err:    ErrInsufficientData,
		},
		"too many missing values": {
			values: []float64{1, math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN(), 2},
			p:      Params{CycleLength: 4, Orders: 1},
			err:    ErrInsufficientData,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, _, err := Harmonic{}.Decompose(td.values, td.p)
			assert.ErrorIs(t, err, td.err)
		})
	}
}

func TestClassical(t *testing.T) {
	testData := map[string]struct {
		period int
	}{
		"odd period":  {period: 5},
		"even period": {period: 6},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			// repeating pattern with zero mean on a constant level
			pattern := make([]float64, td.period)
			for k := range pattern {
				pattern[k] = float64(k) - float64(td.period-1)/2.0
			}
			n := td.period * 4
			values := make([]float64, n)
			for i := range values {
				values[i] = 7.0 + pattern[i%td.period]
			}

			d, err := Classical(values, td.period)
			require.NoError(t, err)

			half := td.period / 2
			for i := 0; i < n; i++ {
				assert.InDelta(t, pattern[i%td.period], d.Season[i], 1e-9, "season at %d", i)
				if i < half || i >= n-half {
					assert.True(t, math.IsNaN(d.Trend[i]), "trend edge at %d", i)
					assert.True(t, math.IsNaN(d.Residual[i]), "residual edge at %d", i)
					continue
				}
				assert.InDelta(t, 7.0, d.Trend[i], 1e-9, "trend at %d", i)
				assert.InDelta(t, 0.0, d.Residual[i], 1e-9, "residual at %d", i)
			}
		})
	}
}

func TestClassicalErrors(t *testing.T) {
	_, err := Classical(make([]float64, 10), 1)
	assert.ErrorIs(t, err, ErrInvalidCycle)

	_, err = Classical(make([]float64, 10), 6)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestClassicalEstimatorDecompose(t *testing.T) {
	period := 4
	pattern := []float64{1, -1, 2, -2}
	values := make([]float64, period*3)
	for i := range values {
		values[i] = 3.0 + pattern[i%period]
	}

	_, latest, err := ClassicalEstimator{}.Decompose(values, Params{CycleLength: period, Horizon: 6})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 3, 3, 3, 3, 3}, latest.Trend, 1e-9)
	assert.InDeltaSlice(t, []float64{1, -1, 2, -2, 1, -1}, latest.Season, 1e-9)
	assert.InDeltaSlice(t, []float64{4, 2, 5, 1, 4, 2}, latest.SeasonPlusTrend, 1e-9)

	_, _, err = ClassicalEstimator{}.Decompose(values, Params{CycleLength: period, Horizon: -1})
	assert.ErrorIs(t, err, ErrInvalidHorizon)
}

func TestEstimatorFunc(t *testing.T) {
	called := false
	var est Estimator = EstimatorFunc(func(values []float64, p Params) (Decomposition, Latest, error) {
		called = true
		return Decomposition{}, Latest{SeasonPlusTrend: make([]float64, p.Horizon)}, nil
	})
	_, latest, err := est.Decompose(nil, Params{Horizon: 3})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Len(t, latest.SeasonPlusTrend, 3)
}
