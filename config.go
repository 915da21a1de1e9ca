package robustforecast

import (
	"errors"
	"fmt"
	"io"

	"github.com/aouyang1/go-robustforecast/decomposition"
	"github.com/aouyang1/go-robustforecast/periodicity"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the training configuration. It is copied by New and never modified.
type Config struct {
	// Period is the number of points in one cycle and Interval the seconds between points
	Period   int    `json:"period" yaml:"period" validate:"required,gt=0"`
	Interval int    `json:"interval" yaml:"interval" validate:"required,gt=0"`
	ColName  string `json:"colname" yaml:"colname" validate:"required"`

	Quantile      float64 `json:"quantile" yaml:"quantile" default:"0.75" validate:"gt=0,lt=1"`
	IntervalSigma float64 `json:"interval_sigma" yaml:"interval_sigma" default:"2" validate:"gte=0"`

	// ForecastHorizon is in seconds and is converted to a point count with Interval
	ForecastHorizon      int  `json:"forecast_horizon" yaml:"forecast_horizon" validate:"gte=0"`
	NonZeroLowerInterval bool `json:"non_zero_lower_interval" yaml:"non_zero_lower_interval"`

	// ACFPeakThreshold and RefineTolerance override the detector params when set
	ACFPeakThreshold *float64 `json:"acf_peak_th,omitempty" yaml:"acf_peak_th" validate:"omitnil,gte=-1,lte=1"`
	RefineTolerance  *float64 `json:"refine_tolerance,omitempty" yaml:"refine_tolerance" validate:"omitnil,gte=0,lt=1"`

	Detector         string               `json:"pd_detector" yaml:"pd_detector" default:"acf_med" validate:"required"`
	DetectorParams   periodicity.Params   `json:"pd_params" yaml:"pd_params"`
	Decomposer       string               `json:"stl_detector" yaml:"stl_detector" default:"harmonic" validate:"required"`
	DecomposerParams decomposition.Params `json:"stl_params" yaml:"stl_params"`
}

// NewDefaultConfig returns a config with defaults applied for the required fields
func NewDefaultConfig(period, interval int, colName string) *Config {
	cfg := &Config{
		Period:   period,
		Interval: interval,
		ColName:  colName,
	}
	// only fails on a non-pointer argument
	_ = defaults.Set(cfg)
	return cfg
}

// LoadConfig decodes a yaml config and applies defaults to any field left unset
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("unable to set config defaults, %w", err)
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config, %w", err)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the config domain without modifying it
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w, %w", ErrInvalidConfig, err)
	}
	return nil
}

// HorizonCnt returns the number of forecast points covering ForecastHorizon
func (c *Config) HorizonCnt() int {
	return c.ForecastHorizon / c.Interval
}

// resolve merges the top level fields into copies of the nested params
func (c *Config) resolve() ResolvedConfig {
	pd := c.DetectorParams
	if pd.PeriodCandidate == 0 {
		pd.PeriodCandidate = c.Period
	}
	if c.ACFPeakThreshold != nil {
		pd.ACFPeakThreshold = *c.ACFPeakThreshold
	}
	if c.RefineTolerance != nil {
		pd.RefineTolerance = *c.RefineTolerance
	}

	return ResolvedConfig{
		Period:               c.Period,
		Interval:             c.Interval,
		ColName:              c.ColName,
		Quantile:             c.Quantile,
		IntervalSigma:        c.IntervalSigma,
		ForecastHorizon:      c.ForecastHorizon,
		ForecastHorizonCnt:   c.HorizonCnt(),
		NonZeroLowerInterval: c.NonZeroLowerInterval,
		Detector:             c.Detector,
		DetectorParams:       pd,
		Decomposer:           c.Decomposer,
		DecomposerParams:     c.DecomposerParams,
	}
}

// ResolvedConfig echoes the effective configuration of a fit along with the periodicity
// outcome and the path taken
type ResolvedConfig struct {
	Period               int                  `json:"period"`
	Interval             int                  `json:"interval"`
	ColName              string               `json:"colname"`
	Quantile             float64              `json:"quantile"`
	IntervalSigma        float64              `json:"interval_sigma"`
	ForecastHorizon      int                  `json:"forecast_horizon"`
	ForecastHorizonCnt   int                  `json:"forecast_horizon_cnt"`
	NonZeroLowerInterval bool                 `json:"non_zero_lower_interval"`
	Detector             string               `json:"pd_detector"`
	DetectorParams       periodicity.Params   `json:"pd_params"`
	Decomposer           string               `json:"stl_detector"`
	DecomposerParams     decomposition.Params `json:"stl_params"`

	// PassedPeriodicity is nil when the detector was never run
	PassedPeriodicity *bool `json:"passed_check_acf,omitempty"`
	DetectedPeriod    int   `json:"period_output,omitempty"`
	Path              Path  `json:"path"`
}
