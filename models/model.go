// Package models is a collection of linear regression fitting implementations used by the
// decomposition estimators
package models

import (
	"gonum.org/v1/gonum/mat"
)

// Model is a linear regression fit on a design matrix
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Intercept() float64
	Coef() []float64
}
