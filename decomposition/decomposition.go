// Package decomposition separates a regularly sampled series into trend, seasonal and
// residual components and extrapolates the trend and season over a forecast horizon.
package decomposition

import (
	"errors"
	"fmt"
	"sort"
)

const (
	NameHarmonic  = "harmonic"
	NameClassical = "classical"
)

var (
	ErrUnknownEstimator = errors.New("unknown decomposition estimator")
	ErrInvalidCycle     = errors.New("cycle length too short to decompose")
	ErrInvalidHorizon   = errors.New("horizon must be non-negative")
	ErrInsufficientData = errors.New("need at least two full cycles of data")
)

// Params configures a decomposition. CycleLength and Horizon are filled in by the caller
// from the detected period and the requested number of forecast points.
type Params struct {
	CycleLength int `json:"data_T" yaml:"cycle_length"`
	Horizon     int `json:"latest_decomp_length" yaml:"horizon"`

	// Orders is the number of fourier orders fit against the cycle by the harmonic estimator
	Orders       int  `json:"orders" yaml:"orders" default:"6" validate:"gte=1"`
	DisableTrend bool `json:"disable_trend" yaml:"disable_trend"`

	// MaxIterations bounds the number of outlier removal passes
	MaxIterations   int     `json:"max_iterations" yaml:"max_iterations" default:"2" validate:"gte=0"`
	LowerPercentile float64 `json:"lower_percentile" yaml:"lower_percentile" default:"0.1" validate:"gte=0,lte=1"`
	UpperPercentile float64 `json:"upper_percentile" yaml:"upper_percentile" default:"0.9" validate:"gte=0,lte=1,gtefield=LowerPercentile"`
	TukeyFactor     float64 `json:"tukey_factor" yaml:"tukey_factor" default:"1.0" validate:"gte=0"`
}

// Decomposition holds the components over the training window. Residual may contain NaNs
// where a component is undefined.
type Decomposition struct {
	Trend    []float64 `json:"trend"`
	Season   []float64 `json:"season"`
	Residual []float64 `json:"residual"`
}

// Latest holds the extrapolated components covering exactly Horizon future points
type Latest struct {
	Trend           []float64 `json:"trend"`
	Season          []float64 `json:"season"`
	SeasonPlusTrend []float64 `json:"season_plus_trend"`
}

// Estimator decomposes a series and forecasts the season plus trend
type Estimator interface {
	Decompose(values []float64, p Params) (Decomposition, Latest, error)
}

// EstimatorFunc adapts a function to the Estimator interface
type EstimatorFunc func(values []float64, p Params) (Decomposition, Latest, error)

func (f EstimatorFunc) Decompose(values []float64, p Params) (Decomposition, Latest, error) {
	return f(values, p)
}

var registry = map[string]Estimator{
	NameHarmonic:  Harmonic{},
	NameClassical: ClassicalEstimator{},
}

// Lookup returns the registered estimator by name
func Lookup(name string) (Estimator, error) {
	est, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownEstimator)
	}
	return est, nil
}

// Names returns the sorted registered estimator names
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validate(n int, p Params, minCycle int) error {
	if p.CycleLength < minCycle {
		return fmt.Errorf("cycle length %d below %d, %w", p.CycleLength, minCycle, ErrInvalidCycle)
	}
	if p.Horizon < 0 {
		return ErrInvalidHorizon
	}
	if n < 2*p.CycleLength {
		return fmt.Errorf("got %d points for cycle length %d, %w", n, p.CycleLength, ErrInsufficientData)
	}
	return nil
}

func seasonPlusTrend(trend, season []float64) []float64 {
	res := make([]float64, len(trend))
	for i := range trend {
		res[i] = trend[i] + season[i]
	}
	return res
}
