// Package testkit generates seeded synthetic cohorts with known
// treatment-assignment and outcome mechanisms, for exercising the
// estimation pipeline end to end.
package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"aline/app"
	"aline/domain/core"
	"aline/domain/frame"
)

// CohortConfig describes the generating mechanism. Beta holds the
// treatment-assignment coefficients, intercept first, one slope per
// standard-normal covariate. Theta0 and Theta1 are the outcome
// intercept and the log odds ratio of treatment.
type CohortConfig struct {
	N      int
	Seed   int64
	Beta   []float64
	Theta0 float64
	Theta1 float64
}

// Cohort is a generated dataset with its true assignment probabilities.
type Cohort struct {
	Frame      *frame.Frame
	Covariates [][]float64
	Exposure   []float64
	Outcome    []float64
	Propensity []float64
}

// ExposureKey and OutcomeKey name the generated treatment and outcome
// columns.
const (
	ExposureKey = core.VariableKey("treated")
	OutcomeKey  = core.VariableKey("outcome")
)

// CovariateKeys returns the generated covariate column names for k
// covariates: x1 .. xk.
func CovariateKeys(k int) []core.VariableKey {
	keys := make([]core.VariableKey, k)
	for i := range keys {
		keys[i] = core.VariableKey(fmt.Sprintf("x%d", i+1))
	}
	return keys
}

// Study builds the study definition matching a cohort with k covariates.
func Study(k int) app.StudyDefinition {
	keys := CovariateKeys(k)
	cols := make([]frame.ColumnSpec, 0, k+2)
	for _, key := range keys {
		cols = append(cols, frame.ColumnSpec{Key: key, Kind: frame.KindContinuous})
	}
	cols = append(cols,
		frame.ColumnSpec{Key: ExposureKey, Kind: frame.KindBinary},
		frame.ColumnSpec{Key: OutcomeKey, Kind: frame.KindBinary},
	)
	return app.StudyDefinition{
		Schema:     frame.Schema{Columns: cols},
		Exposure:   ExposureKey,
		Outcome:    OutcomeKey,
		Covariates: keys,
	}
}

// Generate draws a cohort from the configured mechanism. Covariates
// are independent standard normals; treatment and outcome are
// Bernoulli draws from their logistic models.
func Generate(cfg CohortConfig) (*Cohort, error) {
	if cfg.N <= 0 {
		return nil, core.ErrInsufficientData
	}
	if len(cfg.Beta) < 1 {
		return nil, core.NewValidationError("beta", "needs at least an intercept")
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	k := len(cfg.Beta) - 1

	covariates := make([][]float64, k)
	for j := range covariates {
		covariates[j] = make([]float64, cfg.N)
	}
	exposure := make([]float64, cfg.N)
	outcome := make([]float64, cfg.N)
	propensity := make([]float64, cfg.N)

	for i := 0; i < cfg.N; i++ {
		eta := cfg.Beta[0]
		for j := 0; j < k; j++ {
			x := rng.NormFloat64()
			covariates[j][i] = x
			eta += cfg.Beta[j+1] * x
		}
		p := sigmoid(eta)
		propensity[i] = p
		if rng.Float64() < p {
			exposure[i] = 1
		}
		if rng.Float64() < sigmoid(cfg.Theta0+cfg.Theta1*exposure[i]) {
			outcome[i] = 1
		}
	}

	cols := make([]frame.Column, 0, k+2)
	for j, key := range CovariateKeys(k) {
		cols = append(cols, frame.NewContinuousColumn(key, covariates[j]))
	}
	expCol, err := frame.NewBinaryColumn(ExposureKey, exposure)
	if err != nil {
		return nil, err
	}
	outCol, err := frame.NewBinaryColumn(OutcomeKey, outcome)
	if err != nil {
		return nil, err
	}
	cols = append(cols, expCol, outCol)

	f, err := frame.New(cols...)
	if err != nil {
		return nil, err
	}
	return &Cohort{
		Frame:      f,
		Covariates: covariates,
		Exposure:   exposure,
		Outcome:    outcome,
		Propensity: propensity,
	}, nil
}

func sigmoid(eta float64) float64 {
	return 1 / (1 + math.Exp(-eta))
}
