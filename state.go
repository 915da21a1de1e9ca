package robustforecast

import (
	"math"
	"time"

	"github.com/aouyang1/go-robustforecast/timedataset"
	"github.com/google/uuid"
)

// FitState is the result of a fit. It is read only once returned and safe to predict from
// concurrently.
type FitState struct {
	ID          uuid.UUID      `json:"id"`
	TrainingEnd time.Time      `json:"training_end"`
	Interval    time.Duration  `json:"interval"`
	HorizonCnt  int            `json:"horizon_cnt"`
	Band        Band           `json:"band"`
	Path        Path           `json:"path"`
	Resolved    ResolvedConfig `json:"resolved"`

	// RawInput and DecompOutput are json diagnostics only set on the decomposition path
	RawInput     string `json:"raw_input,omitempty"`
	DecompOutput string `json:"decomp_output,omitempty"`

	training *timedataset.TimeDataset
}

// Prediction is the projected forecast along with the fit diagnostics
type Prediction struct {
	Rows         []Row          `json:"rows"`
	Resolved     ResolvedConfig `json:"resolved"`
	RawInput     string         `json:"raw_input"`
	DecompOutput string         `json:"decomp_output"`
}

// Predict materializes the band and projects it onto the known timestamps
func (s *FitState) Predict(known []time.Time) (*Prediction, error) {
	if s == nil {
		return nil, ErrNotFitted
	}
	rows := Materialize(s.TrainingEnd, s.Interval, s.Band)
	return &Prediction{
		Rows:         Project(rows, known),
		Resolved:     s.Resolved,
		RawInput:     s.RawInput,
		DecompOutput: s.DecompOutput,
	}, nil
}

// Rows returns every materialized forecast point including the lower bound
func (s *FitState) Rows() []ResultRow {
	if s == nil {
		return nil
	}
	return Materialize(s.TrainingEnd, s.Interval, s.Band)
}

// TrainingData returns a copy of the fit training data
func (s *FitState) TrainingData() *timedataset.TimeDataset {
	if s == nil || s.training == nil {
		return nil
	}
	return s.training.Copy()
}

func (c Config) clone() Config {
	res := c
	if c.ACFPeakThreshold != nil {
		v := *c.ACFPeakThreshold
		res.ACFPeakThreshold = &v
	}
	if c.RefineTolerance != nil {
		v := *c.RefineTolerance
		res.RefineTolerance = &v
	}
	return res
}

type latestPayload struct {
	Trend           []*float64 `json:"trend"`
	Season          []*float64 `json:"season"`
	SeasonPlusTrend []*float64 `json:"season_plus_trend"`
}

// nullable maps NaN and infinities to nil so they encode as json null
func nullable(x []float64) []*float64 {
	res := make([]*float64, len(x))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) {
			continue
		}
		v := x[i]
		res[i] = &v
	}
	return res
}
