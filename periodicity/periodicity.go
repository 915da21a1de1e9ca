// Package periodicity decides whether a series repeats with a cycle near a candidate
// period and estimates the cycle length.
package periodicity

import (
	"errors"
	"fmt"
	"sort"
)

const NameACFMed = "acf_med"

var (
	ErrUnknownDetector  = errors.New("unknown periodicity detector")
	ErrInvalidCandidate = errors.New("period candidate must be at least 2")
	ErrInsufficientData = errors.New("need at least two cycles of the largest candidate lag")
)

// Params configures periodicity detection
type Params struct {
	PeriodCandidate int `json:"period_candi" yaml:"period_candidate"`

	// SkipRefine only evaluates the candidate lag instead of searching within the tolerance
	SkipRefine       bool    `json:"skip_refine" yaml:"skip_refine"`
	RefineTolerance  float64 `json:"refine_tolerance" yaml:"refine_tolerance" default:"0.05" validate:"gte=0,lt=1"`
	ACFPeakThreshold float64 `json:"acf_peak_th" yaml:"acf_peak_threshold" default:"0.15" validate:"gte=-1,lte=1"`

	// ClipFactor winsorizes values further than this many scaled MADs from the median
	ClipFactor float64 `json:"clip_factor" yaml:"clip_factor" default:"5" validate:"gte=0"`
}

// Detection is the outcome of a periodicity check. Period and Score are only meaningful
// when Passed is true.
type Detection struct {
	Passed bool    `json:"passed"`
	Period int     `json:"period"`
	Score  float64 `json:"score"`
}

// Detector checks a series for periodicity. An error means the check could not be run and
// is not the same as a negative detection.
type Detector interface {
	Detect(values []float64, p Params) (Detection, error)
}

// DetectorFunc adapts a function to the Detector interface
type DetectorFunc func(values []float64, p Params) (Detection, error)

func (f DetectorFunc) Detect(values []float64, p Params) (Detection, error) {
	return f(values, p)
}

var registry = map[string]Detector{
	NameACFMed: ACFMed{},
}

// Lookup returns the registered detector by name
func Lookup(name string) (Detector, error) {
	det, exists := registry[name]
	if !exists {
		return nil, fmt.Errorf("%q, %w", name, ErrUnknownDetector)
	}
	return det, nil
}

// Names returns the sorted registered detector names
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
