package glm

import (
	"context"

	"aline/domain/core"
	"aline/domain/frame"
	"aline/ports"
)

// FitterAdapter exposes the IRLS solver through FitterPort so the
// pipeline never names the numerical routine directly.
type FitterAdapter struct {
	opts *Options
}

// NewFitterAdapter creates an adapter with default IRLS options.
func NewFitterAdapter() *FitterAdapter {
	return &FitterAdapter{}
}

// NewFitterAdapterWithOptions creates an adapter with explicit options.
func NewFitterAdapterWithOptions(opts Options) *FitterAdapter {
	return &FitterAdapter{opts: &opts}
}

// Fit implements ports.FitterPort.
func (a *FitterAdapter) Fit(ctx context.Context, design *frame.DesignMatrix, response, weights []float64) (ports.FittedModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return FitLogistic(design, response, weights, a.opts)
}

// RobustCovariance implements ports.FitterPort.
func (a *FitterAdapter) RobustCovariance(model ports.FittedModel) ([][]float64, error) {
	m, ok := model.(*Model)
	if !ok {
		return nil, core.NewValidationError("model", "not fitted by this adapter")
	}
	return RobustCovariance(m)
}
