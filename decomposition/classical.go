package decomposition

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Classical decomposes values with a centered moving average trend over one period and a
// mean seasonal index. The trend and residual are NaN for the half period at each edge.
func Classical(values []float64, period int) (Decomposition, error) {
	n := len(values)
	if err := validate(n, Params{CycleLength: period}, 2); err != nil {
		return Decomposition{}, err
	}

	trend := movingAverage(values, period)

	sums := make([]float64, period)
	cnts := make([]float64, period)
	for i := 0; i < n; i++ {
		detrended := values[i] - trend[i]
		if math.IsNaN(detrended) {
			continue
		}
		sums[i%period] += detrended
		cnts[i%period]++
	}
	index := make([]float64, period)
	for k := range index {
		if cnts[k] == 0 {
			return Decomposition{}, fmt.Errorf("no detrended values at cycle position %d, %w", k, ErrInsufficientData)
		}
		index[k] = sums[k] / cnts[k]
	}
	floats.AddConst(-floats.Sum(index)/float64(period), index)

	season := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		season[i] = index[i%period]
		residual[i] = values[i] - trend[i] - season[i]
	}
	return Decomposition{
		Trend:    trend,
		Season:   season,
		Residual: residual,
	}, nil
}

// movingAverage computes a centered moving average of width period. Even periods use a
// 2xperiod average so the window stays centered.
func movingAverage(values []float64, period int) []float64 {
	n := len(values)
	half := period / 2
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}
	for i := half; i < n-half; i++ {
		if period%2 == 1 {
			trend[i] = floats.Sum(values[i-half:i+half+1]) / float64(period)
			continue
		}
		sum := 0.5*values[i-half] + 0.5*values[i+half] + floats.Sum(values[i-half+1:i+half])
		trend[i] = sum / float64(period)
	}
	return trend
}

// ClassicalEstimator extrapolates the classical decomposition by holding the last defined
// trend value flat and repeating the seasonal index
type ClassicalEstimator struct{}

func (c ClassicalEstimator) Decompose(values []float64, p Params) (Decomposition, Latest, error) {
	if p.Horizon < 0 {
		return Decomposition{}, Latest{}, ErrInvalidHorizon
	}
	d, err := Classical(values, p.CycleLength)
	if err != nil {
		return Decomposition{}, Latest{}, err
	}

	lastTrend := math.NaN()
	for i := len(d.Trend) - 1; i >= 0; i-- {
		if !math.IsNaN(d.Trend[i]) {
			lastTrend = d.Trend[i]
			break
		}
	}
	if math.IsNaN(lastTrend) {
		return Decomposition{}, Latest{}, fmt.Errorf("undefined trend, %w", ErrInsufficientData)
	}

	n := len(values)
	trend := make([]float64, p.Horizon)
	season := make([]float64, p.Horizon)
	for j := 0; j < p.Horizon; j++ {
		trend[j] = lastTrend
		season[j] = d.Season[(n+j)%p.CycleLength]
	}
	return d, Latest{
		Trend:           trend,
		Season:          season,
		SeasonPlusTrend: seasonPlusTrend(trend, season),
	}, nil
}
