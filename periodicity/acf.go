package periodicity

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-robustforecast/stats"
)

// madScale converts a median absolute deviation into a standard deviation estimate for
// normally distributed data
const madScale = 1.4826

// ACFMed winsorizes the series around its median and looks for an autocorrelation peak
// within the refine tolerance of the candidate period
type ACFMed struct{}

func (a ACFMed) Detect(values []float64, p Params) (Detection, error) {
	cand := p.PeriodCandidate
	if cand < 2 {
		return Detection{}, fmt.Errorf("got %d, %w", cand, ErrInvalidCandidate)
	}

	lo, hi := cand, cand
	if !p.SkipRefine {
		lo = max(2, int(math.Floor(float64(cand)*(1.0-p.RefineTolerance))))
		hi = int(math.Ceil(float64(cand) * (1.0 + p.RefineTolerance)))
	}
	if len(values) < 2*(hi+1) {
		return Detection{}, fmt.Errorf("got %d points for max lag %d, %w", len(values), hi, ErrInsufficientData)
	}

	x := winsorize(values, p.ClipFactor)

	// evaluate one lag past each end so the edges can be checked as local peaks
	acf := make(map[int]float64, hi-lo+3)
	for lag := lo - 1; lag <= hi+1; lag++ {
		r, err := stats.Autocorrelation(x, lag)
		if err != nil {
			return Detection{}, err
		}
		acf[lag] = r
	}

	bestLag := -1
	bestScore := math.Inf(-1)
	for lag := lo; lag <= hi; lag++ {
		if math.IsNaN(acf[lag]) {
			continue
		}
		if acf[lag] > bestScore {
			bestLag = lag
			bestScore = acf[lag]
		}
	}
	if bestLag < 0 {
		// constant series have no defined autocorrelation
		return Detection{}, nil
	}

	isPeak := bestScore >= acf[bestLag-1] && bestScore >= acf[bestLag+1]
	if !isPeak || bestScore < p.ACFPeakThreshold {
		return Detection{Score: bestScore}, nil
	}
	return Detection{
		Passed: true,
		Period: bestLag,
		Score:  bestScore,
	}, nil
}

// winsorize fills NaNs with the median and clips values beyond clip scaled MADs
func winsorize(values []float64, clip float64) []float64 {
	med := stats.Median(values)
	mad := stats.MAD(values)
	lower, upper := math.Inf(-1), math.Inf(1)
	if clip > 0 && mad > 0 {
		lower = med - clip*madScale*mad
		upper = med + clip*madScale*mad
	}

	x := make([]float64, len(values))
	for i, v := range values {
		switch {
		case math.IsNaN(v):
			x[i] = med
		case v < lower:
			x[i] = lower
		case v > upper:
			x[i] = upper
		default:
			x[i] = v
		}
	}
	return x
}
