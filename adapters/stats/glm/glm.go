// Package glm fits weighted binomial logistic regressions by
// iteratively reweighted least squares and estimates coefficient
// covariances, both model-based and robust (HC0 sandwich).
package glm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"aline/domain/core"
	"aline/domain/frame"
)

const (
	defaultMaxIter = 25
	defaultTol     = 1e-8

	// muFloor keeps the working weights finite; fitted probabilities
	// this close to the boundary indicate separation and show up as a
	// convergence failure rather than a silent degenerate fit.
	muFloor = 1e-10
)

// Options controls the IRLS iteration.
type Options struct {
	MaxIter int
	Tol     float64
}

// Model is a fitted weighted logistic regression.
type Model struct {
	names      []string
	coef       []float64
	cov        *mat.Dense // model-based (X'WX)^-1
	design     *mat.Dense
	response   []float64
	weights    []float64
	fitted     []float64 // mu at convergence
	iterations int
}

// FitLogistic fits logit(P(y=1)) = X beta by maximum likelihood with
// per-record prior weights. A nil weights slice means unit weights.
// Non-convergence (e.g. perfect separation) is an error; degenerate
// coefficients are never returned.
func FitLogistic(design *frame.DesignMatrix, response, weights []float64, opts *Options) (*Model, error) {
	n, p := design.X.Dims()
	if len(response) != n {
		return nil, core.NewValidationError("response", "length mismatch with design")
	}
	if weights == nil {
		weights = make([]float64, n)
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != n {
		return nil, core.NewValidationError("weights", "length mismatch with design")
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, core.NewValidationError("weights", fmt.Sprintf("row %d has invalid weight %g", i, w))
		}
	}
	if n <= p {
		return nil, core.ErrInsufficientData
	}

	maxIter := defaultMaxIter
	tol := defaultTol
	if opts != nil {
		if opts.MaxIter > 0 {
			maxIter = opts.MaxIter
		}
		if opts.Tol > 0 {
			tol = opts.Tol
		}
	}

	x := design.X
	beta := make([]float64, p)
	eta := make([]float64, n)
	mu := make([]float64, n)
	irls := make([]float64, n) // w * mu * (1-mu)
	z := make([]float64, n)    // working response

	converged := false
	iterations := 0
	for iter := 0; iter < maxIter; iter++ {
		iterations = iter + 1
		for i := 0; i < n; i++ {
			e := 0.0
			for j := 0; j < p; j++ {
				e += x.At(i, j) * beta[j]
			}
			eta[i] = e
			m := sigmoid(e)
			if m < muFloor {
				m = muFloor
			} else if m > 1-muFloor {
				m = 1 - muFloor
			}
			mu[i] = m
			v := m * (1 - m)
			irls[i] = weights[i] * v
			z[i] = e + (response[i]-m)/v
		}

		xtwx, xtwz := normalEquations(x, irls, z)
		next := mat.NewVecDense(p, nil)
		if err := next.SolveVec(xtwx, xtwz); err != nil {
			return nil, fmt.Errorf("%w: normal equations", core.ErrSingularMatrix)
		}

		delta := 0.0
		for j := 0; j < p; j++ {
			d := math.Abs(next.AtVec(j) - beta[j])
			if d > delta {
				delta = d
			}
			beta[j] = next.AtVec(j)
		}
		if delta < tol {
			converged = true
			break
		}
	}
	if !converged {
		return nil, core.NewConvergenceError("logistic regression", maxIter)
	}

	// Final pass at the converged coefficients.
	for i := 0; i < n; i++ {
		e := 0.0
		for j := 0; j < p; j++ {
			e += x.At(i, j) * beta[j]
		}
		eta[i] = e
		mu[i] = sigmoid(e)
		irls[i] = weights[i] * mu[i] * (1 - mu[i])
	}

	xtwx, _ := normalEquations(x, irls, nil)
	cov := mat.NewDense(p, p, nil)
	if err := cov.Inverse(xtwx); err != nil {
		return nil, fmt.Errorf("%w: information matrix", core.ErrSingularMatrix)
	}

	return &Model{
		names:      append([]string(nil), design.Names...),
		coef:       beta,
		cov:        cov,
		design:     x,
		response:   response,
		weights:    weights,
		fitted:     mu,
		iterations: iterations,
	}, nil
}

// normalEquations builds X'WX and, when z is non-nil, X'Wz.
func normalEquations(x *mat.Dense, w, z []float64) (*mat.Dense, *mat.VecDense) {
	n, p := x.Dims()
	xtwx := mat.NewDense(p, p, nil)
	var xtwz *mat.VecDense
	if z != nil {
		xtwz = mat.NewVecDense(p, nil)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			xij := x.At(i, j)
			if xij == 0 {
				continue
			}
			wx := w[i] * xij
			for k := j; k < p; k++ {
				xtwx.Set(j, k, xtwx.At(j, k)+wx*x.At(i, k))
			}
			if xtwz != nil {
				xtwz.SetVec(j, xtwz.AtVec(j)+wx*z[i])
			}
		}
	}
	for j := 0; j < p; j++ {
		for k := 0; k < j; k++ {
			xtwx.Set(j, k, xtwx.At(k, j))
		}
	}
	return xtwx, xtwz
}

func sigmoid(eta float64) float64 {
	return 1 / (1 + math.Exp(-eta))
}

// Names returns the regressor names, intercept first.
func (m *Model) Names() []string {
	return append([]string(nil), m.names...)
}

// Coefficients returns a copy of the fitted coefficient vector.
func (m *Model) Coefficients() []float64 {
	return append([]float64(nil), m.coef...)
}

// Covariance returns the model-based covariance (X'WX)^-1.
func (m *Model) Covariance() [][]float64 {
	return denseToRows(m.cov)
}

// StandardErrors returns model-based standard errors.
func (m *Model) StandardErrors() []float64 {
	se := make([]float64, len(m.coef))
	for j := range se {
		se[j] = math.Sqrt(m.cov.At(j, j))
	}
	return se
}

// Fitted returns the fitted probabilities, one per design row.
func (m *Model) Fitted() []float64 {
	return append([]float64(nil), m.fitted...)
}

// Iterations returns the IRLS iteration count.
func (m *Model) Iterations() int {
	return m.iterations
}

// Converged reports whether the fit converged. Fit never returns a
// non-converged model, so this is always true for a live Model.
func (m *Model) Converged() bool {
	return true
}

// PredictProba computes P(y=1) for each row of a design built the same
// way as the training design. A representation drift between fit and
// predict time is a schema error, not a silent coercion.
func (m *Model) PredictProba(design *frame.DesignMatrix) ([]float64, error) {
	if len(design.Names) != len(m.names) {
		return nil, core.NewColumnTypeError("design", "regressor count differs from fit time")
	}
	for j, name := range design.Names {
		if name != m.names[j] {
			return nil, core.NewColumnTypeError(name, "regressor differs from fit time")
		}
	}
	n, p := design.X.Dims()
	probs := make([]float64, n)
	for i := 0; i < n; i++ {
		e := 0.0
		for j := 0; j < p; j++ {
			e += design.X.At(i, j) * m.coef[j]
		}
		probs[i] = sigmoid(e)
	}
	return probs, nil
}

func denseToRows(d *mat.Dense) [][]float64 {
	r, c := d.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		rows[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			rows[i][j] = d.At(i, j)
		}
	}
	return rows
}
