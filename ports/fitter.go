package ports

import (
	"context"

	"aline/domain/frame"
)

// FittedModel is a fitted regression exposing its coefficients and
// logistic-link prediction. Implementations keep whatever internal
// state their covariance estimators need.
type FittedModel interface {
	Names() []string
	Coefficients() []float64
	StandardErrors() []float64
	PredictProba(design *frame.DesignMatrix) ([]float64, error)
	Converged() bool
}

// FitterPort abstracts the numerical routine behind the pipeline so
// the solver can be swapped without touching orchestration logic.
type FitterPort interface {
	// Fit runs a weighted binomial logistic regression. A nil weights
	// slice means unit weights.
	Fit(ctx context.Context, design *frame.DesignMatrix, response, weights []float64) (FittedModel, error)

	// RobustCovariance computes the HC0 sandwich covariance of a model
	// previously returned by Fit.
	RobustCovariance(model FittedModel) ([][]float64, error)
}
