// Package score evaluates forecasts against observed values for backtesting
package score

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoOverlap      = errors.New("no points with both predicted and actual values")
)

// Scores tracks the backtest scores
type Scores struct {
	N          int     `json:"n"`
	MSE        float64 `json:"mean_squared_error"`
	MAPE       float64 `json:"mean_average_percent_error"`
	R2         float64 `json:"r_squared"`
	Exceedance float64 `json:"upper_exceedance"`
}

// NewScores calculates the backtest scores given the predicted point forecast, upper bound
// and actual values. NaNs in either input are skipped.
func NewScores(predicted, upper, actual []float64) (*Scores, error) {
	n, err := overlap(predicted, actual)
	if err != nil {
		return nil, err
	}
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mape, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}
	rs, err := RSquared(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}
	exceed, err := Exceedance(upper, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute upper exceedance, %w", err)
	}

	return &Scores{
		N:          n,
		MSE:        mse,
		MAPE:       mape,
		R2:         rs,
		Exceedance: exceed,
	}, nil
}

func overlap(predicted, actual []float64) (int, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	var n int
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		n++
	}
	if n == 0 {
		return 0, ErrNoOverlap
	}
	return n, nil
}

// MSE computes the mean squared error, mean((y-yhat)^2). A score of 0 means a perfect match.
func MSE(predicted, actual []float64) (float64, error) {
	n, err := overlap(predicted, actual)
	if err != nil {
		return 0, err
	}

	mse := 0.0
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		mse += math.Pow(actual[i]-predicted[i], 2.0)
	}
	return mse / float64(n), nil
}

// MAPE calculates the mean average percent error, mean(abs((y-yhat)/y)). Zero actuals are
// skipped.
func MAPE(predicted, actual []float64) (float64, error) {
	if _, err := overlap(predicted, actual); err != nil {
		return 0, err
	}

	var mape float64
	var n int
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) || actual[i] == 0 {
			continue
		}
		mape += math.Abs((actual[i] - predicted[i]) / actual[i])
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return mape / float64(n), nil
}

// RSquared computes the r squared value between the predicted and actual where 1.0 means perfect
// fit and 0 represents no relationship
func RSquared(predicted, actual []float64) (float64, error) {
	if _, err := overlap(predicted, actual); err != nil {
		return 0, err
	}

	predictCopy := make([]float64, 0, len(predicted))
	actualCopy := make([]float64, 0, len(actual))
	for i := 0; i < len(predicted); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		predictCopy = append(predictCopy, predicted[i])
		actualCopy = append(actualCopy, actual[i])
	}
	r2 := stat.RSquaredFrom(predictCopy, actualCopy, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}

// Exceedance returns the fraction of actual values strictly above the upper bound
func Exceedance(upper, actual []float64) (float64, error) {
	n, err := overlap(upper, actual)
	if err != nil {
		return 0, err
	}

	var cnt int
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(upper[i]) {
			continue
		}
		if actual[i] > upper[i] {
			cnt++
		}
	}
	return float64(cnt) / float64(n), nil
}
