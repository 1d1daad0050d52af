package causal

import (
	"aline/domain/core"
)

// Effect is the marginal causal estimand on the odds-ratio scale: the
// exposure coefficient of the weighted outcome model, exponentiated,
// with a two-sided Wald interval from the robust standard error.
type Effect struct {
	Term       string  `json:"term"`
	LogOdds    float64 `json:"log_odds"`
	RobustSE   float64 `json:"robust_se"`
	OddsRatio  float64 `json:"odds_ratio"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Confidence float64 `json:"confidence"`
}

// PropensitySummary describes the fitted propensity distribution, the
// positivity audit for the run.
type PropensitySummary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// Estimate is the complete output of one analysis run.
type Estimate struct {
	AnalysisID core.AnalysisID   `json:"analysis_id"`
	CreatedAt  core.Timestamp    `json:"created_at"`
	Effect     Effect            `json:"effect"`
	Propensity PropensitySummary `json:"propensity"`
	// PreparedRows counts records after schema preparation; FitRows
	// counts records surviving case-wise exclusion in the outcome fit.
	PreparedRows int `json:"prepared_rows"`
	FitRows      int `json:"fit_rows"`
}
