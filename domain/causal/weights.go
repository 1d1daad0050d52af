// Package causal holds the inverse-probability-of-treatment weighting
// rules: the pure weight mapping, the positivity policy applied at the
// (0,1) boundary, and the effect estimate types.
package causal

import (
	"math"

	"aline/domain/core"
)

// PositivityPolicy decides what happens when a predicted propensity
// reaches the (0,1) boundary, where the inverse weight is undefined.
type PositivityPolicy string

const (
	// PositivityFail aborts the run on a boundary propensity.
	PositivityFail PositivityPolicy = "fail"
	// PositivityClip truncates propensities into [bound, 1-bound].
	PositivityClip PositivityPolicy = "clip"
)

// WeightConfig selects the positivity policy. ClipBound only applies
// under PositivityClip and must lie in (0, 0.5).
type WeightConfig struct {
	Policy    PositivityPolicy `json:"policy"`
	ClipBound float64          `json:"clip_bound"`
}

// DefaultWeightConfig fails hard on boundary propensities. Silent
// infinite weights were a latent defect in earlier renditions of this
// analysis; the default surfaces them instead.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{Policy: PositivityFail, ClipBound: 0.01}
}

// Validate checks the policy and bound.
func (c WeightConfig) Validate() error {
	switch c.Policy {
	case PositivityFail:
		return nil
	case PositivityClip:
		if c.ClipBound <= 0 || c.ClipBound >= 0.5 {
			return core.NewValidationError("clip_bound", "must lie in (0, 0.5)")
		}
		return nil
	default:
		return core.NewValidationError("policy", "must be fail or clip")
	}
}

// TreatmentWeight maps one record's observed exposure and predicted
// propensity to its inverse-probability weight: 1/p for the exposed,
// 1/(1-p) for the unexposed. Propensities at or beyond the (0,1)
// boundary trigger the configured policy. A NaN propensity (record
// excluded at fit time) yields a NaN weight.
func TreatmentWeight(exposed bool, propensity float64, cfg WeightConfig) (float64, error) {
	if math.IsNaN(propensity) {
		return math.NaN(), nil
	}
	p := propensity
	if p <= 0 || p >= 1 {
		if cfg.Policy == PositivityFail {
			return 0, core.NewDegenerateWeightError(-1, p)
		}
	}
	if cfg.Policy == PositivityClip {
		if p < cfg.ClipBound {
			p = cfg.ClipBound
		}
		if p > 1-cfg.ClipBound {
			p = 1 - cfg.ClipBound
		}
	}
	if exposed {
		return 1 / p, nil
	}
	return 1 / (1 - p), nil
}

// TreatmentWeights maps parallel exposure and propensity slices to
// weights, reporting the offending row on a policy failure.
func TreatmentWeights(exposure, propensity []float64, cfg WeightConfig) ([]float64, error) {
	if len(exposure) != len(propensity) {
		return nil, core.NewValidationError("propensity", "length mismatch with exposure")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	weights := make([]float64, len(exposure))
	for i := range exposure {
		if math.IsNaN(exposure[i]) || math.IsNaN(propensity[i]) {
			weights[i] = math.NaN()
			continue
		}
		w, err := TreatmentWeight(exposure[i] == 1, propensity[i], cfg)
		if err != nil {
			return nil, core.NewDegenerateWeightError(i, propensity[i])
		}
		weights[i] = w
	}
	return weights, nil
}
