package glm

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"aline/domain/core"
	"aline/domain/frame"
)

func binaryDesign(a []float64) *frame.DesignMatrix {
	n := len(a)
	x := mat.NewDense(n, 2, nil)
	rows := make([]int, n)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
		x.Set(i, 1, a[i])
		rows[i] = i
	}
	return &frame.DesignMatrix{X: x, Names: []string{"icept", "a"}, Rows: rows}
}

func TestFitLogistic_SaturatedBinaryModel(t *testing.T) {
	// Four records per arm: P(y=1|a=0) = 1/4, P(y=1|a=1) = 3/4. The
	// model is saturated, so the MLE reproduces the cell proportions
	// exactly: icept = logit(1/4), slope = logit(3/4) - logit(1/4).
	a := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	y := []float64{1, 0, 0, 0, 1, 1, 1, 0}

	model, err := FitLogistic(binaryDesign(a), y, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coef := model.Coefficients()
	wantIcept := math.Log(1.0 / 3.0)
	wantSlope := math.Log(3) - math.Log(1.0/3.0)
	if math.Abs(coef[0]-wantIcept) > 1e-6 {
		t.Errorf("icept = %g, want %g", coef[0], wantIcept)
	}
	if math.Abs(coef[1]-wantSlope) > 1e-6 {
		t.Errorf("slope = %g, want %g", coef[1], wantSlope)
	}

	fitted := model.Fitted()
	if math.Abs(fitted[0]-0.25) > 1e-6 || math.Abs(fitted[4]-0.75) > 1e-6 {
		t.Errorf("fitted = %v, want cell proportions 0.25 and 0.75", fitted)
	}
	if !model.Converged() {
		t.Error("live model must report convergence")
	}
}

func TestFitLogistic_WeightsMatchReplication(t *testing.T) {
	// A prior weight of 2 is the same evidence as the row appearing
	// twice.
	a := []float64{0, 0, 1, 1}
	y := []float64{0, 1, 1, 0}

	doubledA := append(append([]float64{}, a...), a...)
	doubledY := append(append([]float64{}, y...), y...)
	replicated, err := FitLogistic(binaryDesign(doubledA), doubledY, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	weighted, err := FitLogistic(binaryDesign(a), y, []float64{2, 2, 2, 2}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cr := replicated.Coefficients()
	cw := weighted.Coefficients()
	for j := range cr {
		if math.Abs(cr[j]-cw[j]) > 1e-8 {
			t.Errorf("coef[%d]: replicated %g vs weighted %g", j, cr[j], cw[j])
		}
	}
}

func TestFitLogistic_RejectsInvalidWeights(t *testing.T) {
	a := []float64{0, 0, 1, 1}
	y := []float64{0, 1, 1, 0}

	for _, w := range [][]float64{
		{1, 1, 1, math.NaN()},
		{1, 1, 1, -1},
		{1, 1, 1, math.Inf(1)},
		{1, 1},
	} {
		if _, err := FitLogistic(binaryDesign(a), y, w, nil); err == nil {
			t.Errorf("weights %v should be rejected", w)
		}
	}
}

func TestFitLogistic_InsufficientRows(t *testing.T) {
	_, err := FitLogistic(binaryDesign([]float64{0, 1}), []float64{0, 1}, nil, nil)
	if !errors.Is(err, core.ErrInsufficientData) {
		t.Errorf("expected insufficient-data error, got %v", err)
	}
}

func TestFitLogistic_ResponseLengthMismatch(t *testing.T) {
	if _, err := FitLogistic(binaryDesign([]float64{0, 0, 1, 1}), []float64{0, 1}, nil, nil); err == nil {
		t.Error("expected error for response length mismatch")
	}
}

func TestFitLogistic_SeparationNeverReturnsDegenerateFit(t *testing.T) {
	// Perfect separation has no finite MLE. The fit must error out, not
	// hand back exploding coefficients.
	x := mat.NewDense(6, 2, []float64{
		1, -3,
		1, -2,
		1, -1,
		1, 1,
		1, 2,
		1, 3,
	})
	design := &frame.DesignMatrix{X: x, Names: []string{"icept", "x"}, Rows: []int{0, 1, 2, 3, 4, 5}}
	y := []float64{0, 0, 0, 1, 1, 1}

	model, err := FitLogistic(design, y, nil, nil)
	if err == nil {
		t.Fatalf("expected error under separation, got coefficients %v", model.Coefficients())
	}
}

func TestFitLogistic_CollinearDesign(t *testing.T) {
	// Second regressor duplicates the intercept.
	x := mat.NewDense(6, 2, []float64{
		1, 1,
		1, 1,
		1, 1,
		1, 1,
		1, 1,
		1, 1,
	})
	design := &frame.DesignMatrix{X: x, Names: []string{"icept", "dup"}, Rows: []int{0, 1, 2, 3, 4, 5}}
	y := []float64{0, 1, 0, 1, 0, 1}

	_, err := FitLogistic(design, y, nil, nil)
	if !core.IsSingularMatrixError(err) {
		t.Errorf("expected singular-matrix error, got %v", err)
	}
}

func TestModel_PredictProba(t *testing.T) {
	a := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	y := []float64{1, 0, 0, 0, 1, 1, 1, 0}
	design := binaryDesign(a)

	model, err := FitLogistic(design, y, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	probs, err := model.PredictProba(design)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fitted := model.Fitted()
	for i := range probs {
		if math.Abs(probs[i]-fitted[i]) > 1e-9 {
			t.Errorf("probs[%d] = %g, fitted %g", i, probs[i], fitted[i])
		}
	}

	// A design built differently must be rejected, not coerced.
	renamed := binaryDesign(a)
	renamed.Names = []string{"icept", "b"}
	if _, err := model.PredictProba(renamed); !errors.Is(err, core.ErrColumnType) {
		t.Errorf("expected column-type error for drifted design, got %v", err)
	}
}

func TestModel_StandardErrorsPositive(t *testing.T) {
	a := []float64{0, 0, 0, 0, 1, 1, 1, 1}
	y := []float64{1, 0, 0, 0, 1, 1, 1, 0}

	model, err := FitLogistic(binaryDesign(a), y, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for j, se := range model.StandardErrors() {
		if !(se > 0) || math.IsInf(se, 0) {
			t.Errorf("se[%d] = %g, want finite positive", j, se)
		}
	}
}
