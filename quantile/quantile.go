// Package quantile forecasts a series from the empirical distribution of its own recent
// history. Samples are bucketed into sub-cycle slots, each slot forecasts a quantile of its
// values, and the band is the slot's median absolute deviation scaled by a sigma factor.
package quantile

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-robustforecast/decomposition"
	"github.com/aouyang1/go-robustforecast/stats"
)

// HistoryCycles is the number of most recent cycles kept for the slot statistics
const HistoryCycles = 3

const (
	DispersionResidual = "residual"
	DispersionRaw      = "raw"
)

var (
	ErrNoTrainingData = errors.New("no training data")
	ErrInvalidOptions = errors.New("invalid quantile forecast options")
	ErrEmptySlot      = errors.New("slot has no samples, training data must cover a full cycle")
)

// Options configures a quantile forecast. Period is in points per cycle and Interval is
// both the sample spacing in seconds and the number of points sharing a slot.
type Options struct {
	Period        int
	Interval      int
	Quantile      float64
	IntervalSigma float64
	HorizonCnt    int
}

func (o Options) validate() error {
	switch {
	case o.Period <= 0:
		return fmt.Errorf("period %d, %w", o.Period, ErrInvalidOptions)
	case o.Interval <= 0:
		return fmt.Errorf("interval %d, %w", o.Interval, ErrInvalidOptions)
	case o.Quantile <= 0 || o.Quantile >= 1:
		return fmt.Errorf("quantile %.3f, %w", o.Quantile, ErrInvalidOptions)
	case o.IntervalSigma < 0 || math.IsNaN(o.IntervalSigma):
		return fmt.Errorf("interval sigma %.3f, %w", o.IntervalSigma, ErrInvalidOptions)
	case o.HorizonCnt < 0:
		return fmt.Errorf("horizon count %d, %w", o.HorizonCnt, ErrInvalidOptions)
	}
	return nil
}

// Slots returns the number of sub-cycle slots in a period
func (o Options) Slots() int {
	return (o.Period-1)/o.Interval + 1
}

// Result holds the forecast and band over HorizonCnt points
type Result struct {
	Forecast []float64
	Upper    []float64
	Lower    []float64

	// Dispersion records whether the band came from decomposition residuals or raw values
	Dispersion string
}

// Forecast computes the slot quantile forecast and band. The input is not modified.
func Forecast(values []float64, opt Options) (Result, error) {
	if err := opt.validate(); err != nil {
		return Result{}, err
	}
	if len(values) == 0 {
		return Result{}, ErrNoTrainingData
	}

	window := recent(values, HistoryCycles*opt.Period)
	slots := slotIndex(len(window), opt)
	nSlots := opt.Slots()

	groups, err := stats.Group(window, slots, nSlots)
	if err != nil {
		return Result{}, err
	}
	level := make([]float64, nSlots)
	for k, g := range groups {
		level[k] = stats.Quantile(opt.Quantile, g)
		if math.IsNaN(level[k]) {
			return Result{}, fmt.Errorf("slot %d of %d, %w", k, nSlots, ErrEmptySlot)
		}
	}

	spread, source := slotDispersion(window, slots, opt)

	cycleLen := nSlots * opt.Interval
	res := Result{
		Forecast:   make([]float64, opt.HorizonCnt),
		Upper:      make([]float64, opt.HorizonCnt),
		Lower:      make([]float64, opt.HorizonCnt),
		Dispersion: source,
	}
	for j := 0; j < opt.HorizonCnt; j++ {
		k := (j % cycleLen) / opt.Interval
		res.Forecast[j] = level[k]
		res.Upper[j] = level[k] + opt.IntervalSigma*spread[k]
		res.Lower[j] = level[k] - opt.IntervalSigma*spread[k]
	}
	return res, nil
}

// recent copies the last n values
func recent(values []float64, n int) []float64 {
	start := max(len(values)-n, 0)
	window := make([]float64, len(values)-start)
	copy(window, values[start:])
	return window
}

// slotIndex assigns every sample its slot. The most recent sample has offset 0 and earlier
// samples have negative offsets which wrap onto the cycle.
func slotIndex(n int, opt Options) []int {
	slots := make([]int, n)
	for i := range slots {
		offset := i - (n - 1)
		pos := ((offset % opt.Period) + opt.Period) % opt.Period
		slots[i] = pos / opt.Interval
	}
	return slots
}

// slotDispersion returns the per slot MAD of the classical decomposition residual, or of
// the raw values when the window cannot be decomposed
func slotDispersion(window []float64, slots []int, opt Options) ([]float64, string) {
	d, err := decomposition.Classical(window, opt.Period)
	if err == nil {
		if spread, ok := groupMAD(d.Residual, slots, opt.Slots()); ok {
			return spread, DispersionResidual
		}
	}
	spread, _ := groupMAD(window, slots, opt.Slots())
	return spread, DispersionRaw
}

func groupMAD(x []float64, slots []int, nSlots int) ([]float64, bool) {
	groups, err := stats.Group(x, slots, nSlots)
	if err != nil {
		return nil, false
	}
	spread := make([]float64, nSlots)
	ok := true
	for k, g := range groups {
		spread[k] = stats.MAD(g)
		if math.IsNaN(spread[k]) {
			ok = false
		}
	}
	return spread, ok
}
