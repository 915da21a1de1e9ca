// Package robustforecast forecasts a single regularly sampled series with an upper and
// lower band. Short or aperiodic histories are forecast from per slot quantiles of recent
// cycles. Periodic histories are decomposed and the season plus trend is extrapolated.
package robustforecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aouyang1/go-robustforecast/decomposition"
	"github.com/aouyang1/go-robustforecast/periodicity"
	"github.com/aouyang1/go-robustforecast/quantile"
	"github.com/aouyang1/go-robustforecast/stats"
	"github.com/aouyang1/go-robustforecast/timedataset"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrNotFitted          = errors.New("forecaster has not been fit")
	ErrHorizonMismatch    = errors.New("decomposition forecast does not cover the horizon")
	ErrUndefinedResidual  = errors.New("decomposition residual has no finite values")
	ErrInvalidPeriodFound = errors.New("detector passed with an invalid period")
)

// Path identifies how a fit produced its forecast
type Path string

const (
	PathShortHistory        Path = "short_history"
	PathAperiodic           Path = "aperiodic"
	PathDecomposition       Path = "decomposition"
	PathDecompositionFailed Path = "decomposition_failed"
)

// Quantile returns true if the forecast came from the quantile forecaster
func (p Path) Quantile() bool {
	return p != PathDecomposition
}

// Option configures a Forecaster
type Option func(*Forecaster)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Forecaster) {
		f.logger = logger
	}
}

// WithDetector overrides the detector named in the config
func WithDetector(det periodicity.Detector) Option {
	return func(f *Forecaster) {
		f.detector = det
	}
}

// WithEstimator overrides the decomposition estimator named in the config
func WithEstimator(est decomposition.Estimator) Option {
	return func(f *Forecaster) {
		f.estimator = est
	}
}

// WithRegisterer registers the fit metrics
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(f *Forecaster) {
		f.registerer = reg
	}
}

// WithLocation sets the location the training timestamps are parsed in. The default is UTC.
func WithLocation(loc *time.Location) Option {
	return func(f *Forecaster) {
		f.loc = loc
	}
}

// Forecaster decides between the quantile and decomposition paths and holds the state of
// the last fit. It is not safe for concurrent calls to Fit.
type Forecaster struct {
	cfg        Config
	logger     zerolog.Logger
	loc        *time.Location
	detector   periodicity.Detector
	estimator  decomposition.Estimator
	registerer prometheus.Registerer
	metrics    *metrics

	state *FitState
}

// New validates a copy of the config and creates a Forecaster. The config is used as
// given, use NewDefaultConfig or LoadConfig to start from the defaults.
func New(cfg *Config, opts ...Option) (*Forecaster, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config, %w", ErrInvalidConfig)
	}
	f := &Forecaster{
		cfg:    cfg.clone(),
		logger: zerolog.Nop(),
		loc:    time.UTC,
	}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.cfg.Validate(); err != nil {
		return nil, err
	}

	if f.detector == nil {
		det, err := periodicity.Lookup(f.cfg.Detector)
		if err != nil {
			return nil, fmt.Errorf("%w, %w", ErrInvalidConfig, err)
		}
		f.detector = det
	}
	if f.estimator == nil {
		est, err := decomposition.Lookup(f.cfg.Decomposer)
		if err != nil {
			return nil, fmt.Errorf("%w, %w", ErrInvalidConfig, err)
		}
		f.estimator = est
	}

	f.logger = f.logger.With().Str("component", "robustforecast").Logger()
	m, err := newMetrics(f.registerer)
	if err != nil {
		return nil, err
	}
	f.metrics = m
	return f, nil
}

// Fit forecasts the configured column of the frame. A successful fit replaces any previous
// fit state.
func (f *Forecaster) Fit(frame *timedataset.Frame) (*FitState, error) {
	start := time.Now()
	id := uuid.New()
	logger := f.logger.With().Str("fit_id", id.String()).Logger()

	td, err := frame.Dataset(f.cfg.ColName, f.loc)
	if err != nil {
		if errors.Is(err, timedataset.ErrMissingColumn) {
			return nil, fmt.Errorf("%w, %w", ErrInvalidConfig, err)
		}
		return nil, fmt.Errorf("unable to create training dataset, %w", err)
	}

	interval := time.Duration(f.cfg.Interval) * time.Second
	if freq, err := timedataset.TimeSlice(td.T).EstimateFreq(); err == nil && freq != interval {
		logger.Warn().
			Dur("estimated", freq).
			Dur("configured", interval).
			Msg("training data sample interval does not match config")
	}

	resolved := f.cfg.resolve()
	state := &FitState{
		ID:          id,
		TrainingEnd: timedataset.TimeSlice(td.T).MaxTime(),
		Interval:    interval,
		HorizonCnt:  resolved.ForecastHorizonCnt,
		training:    td,
	}

	path := PathDecomposition
	if td.Len() < quantile.HistoryCycles*f.cfg.Period {
		path = PathShortHistory
	} else {
		det := f.detect(logger, td.Y, resolved.DetectorParams)
		resolved.PassedPeriodicity = &det.Passed
		if det.Passed {
			resolved.DetectedPeriod = det.Period
			resolved.DecomposerParams.CycleLength = det.Period
			resolved.DecomposerParams.Horizon = resolved.ForecastHorizonCnt
			if err := f.decompose(state, td.Y, resolved); err != nil {
				f.metrics.recordFailure(collaboratorEstimator)
				logger.Warn().Err(err).Int("period", det.Period).Msg("decomposition failed, falling back to quantile forecast")
				path = PathDecompositionFailed
			}
		} else {
			path = PathAperiodic
		}
	}

	if path.Quantile() {
		res, err := quantile.Forecast(td.Y, quantile.Options{
			Period:        resolved.Period,
			Interval:      resolved.Interval,
			Quantile:      resolved.Quantile,
			IntervalSigma: resolved.IntervalSigma,
			HorizonCnt:    resolved.ForecastHorizonCnt,
		})
		if err != nil {
			return nil, fmt.Errorf("unable to compute quantile forecast, %w", err)
		}
		logger.Debug().Str("dispersion", res.Dispersion).Msg("computed quantile forecast")
		state.Band = Band{Forecast: res.Forecast, Upper: res.Upper, Lower: res.Lower}
		state.RawInput = ""
		state.DecompOutput = ""
	}

	if resolved.NonZeroLowerInterval {
		state.Band.clampLower()
	}

	resolved.Path = path
	state.Path = path
	state.Resolved = resolved
	f.state = state

	elapsed := time.Since(start)
	f.metrics.recordFit(path, elapsed.Seconds())
	logger.Info().
		Str("path", string(path)).
		Int("points", td.Len()).
		Time("training_start", timedataset.TimeSlice(td.T).StartTime()).
		Time("training_end", state.TrainingEnd).
		Int("horizon_cnt", state.HorizonCnt).
		Dur("elapsed", elapsed).
		Msg("fit forecast")
	return state, nil
}

// detect runs the periodicity check treating any error as a negative detection
func (f *Forecaster) detect(logger zerolog.Logger, y []float64, p periodicity.Params) periodicity.Detection {
	det, err := f.detector.Detect(y, p)
	if err == nil && det.Passed && det.Period <= 0 {
		err = fmt.Errorf("period %d, %w", det.Period, ErrInvalidPeriodFound)
	}
	if err != nil {
		f.metrics.recordFailure(collaboratorDetector)
		logger.Warn().Err(err).Msg("periodicity detection failed, assuming aperiodic")
		return periodicity.Detection{}
	}
	logger.Debug().
		Bool("passed", det.Passed).
		Int("period", det.Period).
		Float64("score", det.Score).
		Msg("periodicity detection")
	return det
}

// decompose sets the state band from the season plus trend and the residual MAD
func (f *Forecaster) decompose(state *FitState, y []float64, resolved ResolvedConfig) error {
	dec, latest, err := f.estimator.Decompose(y, resolved.DecomposerParams)
	if err != nil {
		return err
	}
	if len(latest.SeasonPlusTrend) != resolved.ForecastHorizonCnt {
		return fmt.Errorf("expected %d points, but got %d, %w", resolved.ForecastHorizonCnt, len(latest.SeasonPlusTrend), ErrHorizonMismatch)
	}
	spread := stats.MAD(dec.Residual)
	if math.IsNaN(spread) {
		return ErrUndefinedResidual
	}

	band := Band{
		Forecast: append([]float64(nil), latest.SeasonPlusTrend...),
		Upper:    append([]float64(nil), latest.SeasonPlusTrend...),
		Lower:    append([]float64(nil), latest.SeasonPlusTrend...),
	}
	floats.AddConst(resolved.IntervalSigma*spread, band.Upper)
	floats.AddConst(-resolved.IntervalSigma*spread, band.Lower)
	if resolved.NonZeroLowerInterval {
		band.clampLower()
	}

	rawInput, err := json.Marshal(nullable(y))
	if err != nil {
		return fmt.Errorf("unable to encode raw input, %w", err)
	}
	decompOutput, err := json.Marshal(latestPayload{
		Trend:           nullable(latest.Trend),
		Season:          nullable(latest.Season),
		SeasonPlusTrend: nullable(latest.SeasonPlusTrend),
	})
	if err != nil {
		return fmt.Errorf("unable to encode decomposition output, %w", err)
	}

	state.Band = band
	state.RawInput = string(rawInput)
	state.DecompOutput = string(decompOutput)
	return nil
}

// Predict materializes the last fit. Known timestamps restrict the rows to those present
// in both; nil keeps every forecast point.
func (f *Forecaster) Predict(known []time.Time) (*Prediction, error) {
	if f.state == nil {
		return nil, ErrNotFitted
	}
	return f.state.Predict(known)
}

// State returns the last fit state or nil if never fit
func (f *Forecaster) State() *FitState {
	return f.state
}

// Config returns a copy of the forecaster config
func (f *Forecaster) Config() Config {
	return f.cfg.clone()
}
