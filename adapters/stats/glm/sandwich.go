package glm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"aline/domain/core"
)

// RobustCovariance computes the HC0 sandwich covariance of a fitted
// weighted logistic regression:
//
//	V = A^-1 B A^-1
//
// with bread A = X' diag(w mu (1-mu)) X, the weighted-GLM information,
// and meat B = sum_i (w_i (y_i - mu_i))^2 x_i x_i', the squared
// weighted score contributions. This is the weighted-least-squares
// analogue of the HC0 formula: the prior weights enter both the
// residual and the design side. IPTW weighting induces
// heteroskedasticity the model-based covariance ignores; the sandwich
// stays consistent without a correctly specified variance model.
func RobustCovariance(m *Model) ([][]float64, error) {
	n, p := m.design.Dims()

	irls := make([]float64, n)
	for i := 0; i < n; i++ {
		irls[i] = m.weights[i] * m.fitted[i] * (1 - m.fitted[i])
	}
	bread, _ := normalEquations(m.design, irls, nil)

	breadInv := mat.NewDense(p, p, nil)
	if err := breadInv.Inverse(bread); err != nil {
		return nil, fmt.Errorf("%w: sandwich bread", core.ErrSingularMatrix)
	}

	score := make([]float64, n)
	for i := 0; i < n; i++ {
		r := m.weights[i] * (m.response[i] - m.fitted[i])
		score[i] = r * r
	}
	meat, _ := normalEquations(m.design, score, nil)

	var v mat.Dense
	v.Mul(breadInv, meat)
	v.Mul(&v, breadInv)
	return denseToRows(&v), nil
}

// RobustStandardErrors returns the diagonal square roots of the HC0
// sandwich covariance.
func RobustStandardErrors(m *Model) ([]float64, error) {
	cov, err := RobustCovariance(m)
	if err != nil {
		return nil, err
	}
	se := make([]float64, len(cov))
	for j := range cov {
		se[j] = math.Sqrt(cov[j][j])
	}
	return se, nil
}
