// Package stats contains the robust summary statistics used to build forecast bands
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrNegativeLag    = errors.New("lag must be non-negative")
	ErrLagTooLarge    = errors.New("lag leaves fewer than 2 overlapping points")
	ErrKeyLenMismatch = errors.New("group keys have a different length than values")
	ErrKeyOutOfRange  = errors.New("group key is out of range")
)

// DetectOutliers returns the indices of values lying outside the percentile range expanded
// by the tukey factor times the inner range
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := dropNaN(y)
	if len(yCopy) == 0 {
		return nil
	}
	sort.Float64s(yCopy)
	lowerIdx := int(math.Floor(float64(len(yCopy)) * lowerPerc))
	upperIdx := int(math.Ceil(float64(len(yCopy)) * upperPerc))
	lowerIdx = min(max(lowerIdx, 0), len(yCopy)-1)
	upperIdx = min(max(upperIdx, 0), len(yCopy)-1)

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if math.IsNaN(y[i]) {
			continue
		}
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// Quantile returns the p quantile of x using linear interpolation of the empirical
// distribution. NaNs are ignored and an empty input returns NaN.
func Quantile(p float64, x []float64) float64 {
	sorted := dropNaN(x)
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// Median returns the middle value of x, averaging the two middle values for an even number
// of observations. NaNs are ignored and an empty input returns NaN.
func Median(x []float64) float64 {
	sorted := dropNaN(x)
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}

// MAD computes the median absolute deviation from the median
func MAD(x []float64) float64 {
	med := Median(x)
	if math.IsNaN(med) {
		return med
	}
	dev := make([]float64, 0, len(x))
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		dev = append(dev, math.Abs(v-med))
	}
	return Median(dev)
}

// Group partitions x by the key at the same position. Keys must lie in [0, n).
func Group(x []float64, keys []int, n int) ([][]float64, error) {
	if len(x) != len(keys) {
		return nil, ErrKeyLenMismatch
	}
	groups := make([][]float64, n)
	for i, k := range keys {
		if k < 0 || k >= n {
			return nil, ErrKeyOutOfRange
		}
		groups[k] = append(groups[k], x[i])
	}
	return groups, nil
}

// Autocorrelation returns the pearson correlation between the series and itself shifted
// by lag points
func Autocorrelation(x []float64, lag int) (float64, error) {
	if lag < 0 {
		return 0, ErrNegativeLag
	}
	if len(x)-lag < 2 {
		return 0, ErrLagTooLarge
	}
	return stat.Correlation(x[:len(x)-lag], x[lag:], nil), nil
}

func dropNaN(x []float64) []float64 {
	res := make([]float64, 0, len(x))
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		res = append(res, v)
	}
	return res
}
