package app

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"aline/domain/causal"
	"aline/domain/core"
	"aline/domain/frame"
	"aline/ports"
)

// CausalEffectService runs the IPTW marginal-structural-model
// pipeline: covariate preparation, propensity fit, weight derivation,
// weighted outcome fit, robust variance. Each stage consumes the
// previous stage's artifact and produces a new one; nothing reads back
// from a downstream stage and no input is mutated.
type CausalEffectService struct {
	fitter ports.FitterPort
}

// NewCausalEffectService creates the pipeline service.
func NewCausalEffectService(fitter ports.FitterPort) *CausalEffectService {
	return &CausalEffectService{fitter: fitter}
}

// EffectRequest is one analysis run over a raw frame.
type EffectRequest struct {
	Data    *frame.Frame
	Study   StudyDefinition
	Weights causal.WeightConfig
	// Confidence is the two-sided interval level; 0 means 0.95.
	Confidence float64
}

// EffectResult carries the estimate plus the per-record artifacts the
// diagnostics need. Propensity and Weights are aligned to the prepared
// frame's rows, NaN where a record was excluded case-wise.
type EffectResult struct {
	Estimate   causal.Estimate
	Prepared   *frame.Frame
	Propensity []float64
	Weights    []float64

	PropensityModel ports.FittedModel
	OutcomeModel    ports.FittedModel
}

// EstimateEffect executes the full pipeline for one request.
func (s *CausalEffectService) EstimateEffect(ctx context.Context, req EffectRequest) (*EffectResult, error) {
	if err := req.Weights.Validate(); err != nil {
		return nil, err
	}
	confidence := req.Confidence
	if confidence == 0 {
		confidence = 0.95
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, core.NewValidationError("confidence", "must lie in (0, 1)")
	}

	// Stage 1: covariate preparation.
	prepared, err := req.Study.Schema.Prepare(req.Data, req.Study.Keep())
	if err != nil {
		return nil, err
	}

	// Stage 2: propensity model, exposure on every prepared covariate.
	psDesign, exposure, err := frame.BuildDesign(prepared, req.Study.Exposure, req.Study.Covariates)
	if err != nil {
		return nil, err
	}
	psModel, err := s.fitter.Fit(ctx, psDesign, exposure, nil)
	if err != nil {
		return nil, err
	}
	fitted, err := psModel.PredictProba(psDesign)
	if err != nil {
		return nil, err
	}

	// Scatter fitted propensities back to prepared-frame rows.
	propensity := nanSlice(prepared.RowCount())
	for r, i := range psDesign.Rows {
		propensity[i] = fitted[r]
	}

	// Stage 3: inverse-probability weights.
	exposureCol, _ := prepared.Column(req.Study.Exposure)
	weights, err := causal.TreatmentWeights(exposureCol.Floats, propensity, req.Weights)
	if err != nil {
		return nil, err
	}

	// Stage 4: weighted outcome model on exposure alone. The design
	// sees exactly two columns; the adjustment lives in the weights.
	msmDesign, outcome, err := frame.BuildDesign(prepared, req.Study.Outcome, []core.VariableKey{req.Study.Exposure})
	if err != nil {
		return nil, err
	}
	msmDesign, outcome = dropUnweighted(msmDesign, outcome, weights)
	msmWeights := make([]float64, len(msmDesign.Rows))
	for r, i := range msmDesign.Rows {
		msmWeights[r] = weights[i]
	}
	msmModel, err := s.fitter.Fit(ctx, msmDesign, outcome, msmWeights)
	if err != nil {
		return nil, err
	}

	// Stage 5: robust variance and the Wald interval.
	robust, err := s.fitter.RobustCovariance(msmModel)
	if err != nil {
		return nil, err
	}
	coef := msmModel.Coefficients()
	theta1 := coef[1]
	se := math.Sqrt(robust[1][1])
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)

	estimate := causal.Estimate{
		AnalysisID: core.AnalysisID(core.NewID()),
		CreatedAt:  core.Now(),
		Effect: causal.Effect{
			Term:       req.Study.Exposure.String(),
			LogOdds:    theta1,
			RobustSE:   se,
			OddsRatio:  math.Exp(theta1),
			Lower:      math.Exp(theta1 - z*se),
			Upper:      math.Exp(theta1 + z*se),
			Confidence: confidence,
		},
		Propensity:   summarize(fitted),
		PreparedRows: prepared.RowCount(),
		FitRows:      msmDesign.RowCount(),
	}

	return &EffectResult{
		Estimate:        estimate,
		Prepared:        prepared,
		Propensity:      propensity,
		Weights:         weights,
		PropensityModel: psModel,
		OutcomeModel:    msmModel,
	}, nil
}

// dropUnweighted removes outcome-design rows whose record has no
// weight (covariates missing at propensity time), keeping the
// case-wise exclusion consistent across both fits.
func dropUnweighted(d *frame.DesignMatrix, y []float64, weights []float64) (*frame.DesignMatrix, []float64) {
	keep := make([]int, 0, len(d.Rows))
	for r, i := range d.Rows {
		if !math.IsNaN(weights[i]) {
			keep = append(keep, r)
		}
	}
	if len(keep) == len(d.Rows) {
		return d, y
	}
	_, p := d.X.Dims()
	x := make([]float64, 0, len(keep)*p)
	rows := make([]int, 0, len(keep))
	yy := make([]float64, 0, len(keep))
	for _, r := range keep {
		for j := 0; j < p; j++ {
			x = append(x, d.X.At(r, j))
		}
		rows = append(rows, d.Rows[r])
		yy = append(yy, y[r])
	}
	trimmed := &frame.DesignMatrix{
		X:     mat.NewDense(len(keep), p, x),
		Names: d.Names,
		Rows:  rows,
	}
	return trimmed, yy
}

func summarize(fitted []float64) causal.PropensitySummary {
	if len(fitted) == 0 {
		return causal.PropensitySummary{}
	}
	min, max, sum := fitted[0], fitted[0], 0.0
	for _, p := range fitted {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
		sum += p
	}
	return causal.PropensitySummary{Min: min, Max: max, Mean: sum / float64(len(fitted))}
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
