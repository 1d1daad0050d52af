// Package balance audits covariate balance between exposure groups
// before and after inverse-probability weighting. Well-behaved weights
// shrink every standardized mean difference toward zero; a covariate
// that stays imbalanced flags residual confounding or a positivity
// problem.
package balance

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"aline/domain/core"
	"aline/domain/frame"
)

// CovariateBalance is the balance diagnostic for one design column.
type CovariateBalance struct {
	Key           string  `json:"key"`
	ExposedMean   float64 `json:"exposed_mean"`
	UnexposedMean float64 `json:"unexposed_mean"`
	UnweightedSMD float64 `json:"unweighted_smd"`
	WeightedSMD   float64 `json:"weighted_smd"`
}

// Compute derives standardized mean differences for every expanded
// covariate column, one goroutine per covariate. The weights slice is
// aligned to the frame's rows; rows with NaN weight are skipped,
// mirroring the estimation's case-wise exclusion.
func Compute(ctx context.Context, f *frame.Frame, exposure core.VariableKey, covariates []core.VariableKey, weights []float64) ([]CovariateBalance, error) {
	design, a, err := frame.BuildDesign(f, exposure, covariates)
	if err != nil {
		return nil, err
	}
	if len(weights) != f.RowCount() {
		return nil, core.NewValidationError("weights", "length mismatch with frame rows")
	}

	// Column 0 is the intercept.
	results := make([]CovariateBalance, design.ColumnCount()-1)
	g, ctx := errgroup.WithContext(ctx)
	for j := 1; j < design.ColumnCount(); j++ {
		j := j
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var exposed, unexposed, wExposed, wUnexposed []float64
			var weExposed, weUnexposed []float64
			for r, i := range design.Rows {
				v := design.X.At(r, j)
				w := weights[i]
				if a[r] == 1 {
					exposed = append(exposed, v)
					if !math.IsNaN(w) {
						wExposed = append(wExposed, v)
						weExposed = append(weExposed, w)
					}
				} else {
					unexposed = append(unexposed, v)
					if !math.IsNaN(w) {
						wUnexposed = append(wUnexposed, v)
						weUnexposed = append(weUnexposed, w)
					}
				}
			}
			cb, err := columnBalance(design.Names[j], exposed, unexposed, wExposed, weExposed, wUnexposed, weUnexposed)
			if err != nil {
				return err
			}
			results[j-1] = cb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func columnBalance(name string, exposed, unexposed, wExposed, weExposed, wUnexposed, weUnexposed []float64) (CovariateBalance, error) {
	m1, err := stats.Mean(exposed)
	if err != nil {
		return CovariateBalance{}, core.ErrInsufficientData
	}
	m0, err := stats.Mean(unexposed)
	if err != nil {
		return CovariateBalance{}, core.ErrInsufficientData
	}
	v1, err := stats.SampleVariance(exposed)
	if err != nil {
		return CovariateBalance{}, core.ErrInsufficientData
	}
	v0, err := stats.SampleVariance(unexposed)
	if err != nil {
		return CovariateBalance{}, core.ErrInsufficientData
	}

	wm1, wv1 := weightedMoments(wExposed, weExposed)
	wm0, wv0 := weightedMoments(wUnexposed, weUnexposed)

	return CovariateBalance{
		Key:           name,
		ExposedMean:   m1,
		UnexposedMean: m0,
		UnweightedSMD: smd(m1, m0, v1, v0),
		WeightedSMD:   smd(wm1, wm0, wv1, wv0),
	}, nil
}

// weightedMoments returns the weighted mean and variance.
func weightedMoments(values, weights []float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	var sw, swx float64
	for i, v := range values {
		sw += weights[i]
		swx += weights[i] * v
	}
	mean := swx / sw
	var ss float64
	for i, v := range values {
		d := v - mean
		ss += weights[i] * d * d
	}
	return mean, ss / sw
}

func smd(m1, m0, v1, v0 float64) float64 {
	denom := math.Sqrt((v1 + v0) / 2)
	if denom == 0 {
		return 0
	}
	return (m1 - m0) / denom
}
