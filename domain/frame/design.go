package frame

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"aline/domain/core"
)

// DesignMatrix is a dense regression design with an intercept in the
// first column. Rows maps design rows back to frame rows: records with
// any missing value among the response or regressors are excluded
// case-wise, matching the regression default the analysis relies on.
type DesignMatrix struct {
	X     *mat.Dense
	Names []string
	Rows  []int
}

// BuildDesign assembles the design matrix and response vector for a
// regression of response on the given covariates. Continuous and
// binary covariates contribute one column each; categorical covariates
// contribute one indicator column per non-reference level, with the
// first declared level as the implicit reference.
func BuildDesign(f *Frame, response core.VariableKey, covariates []core.VariableKey) (*DesignMatrix, []float64, error) {
	yCol, ok := f.Column(response)
	if !ok {
		return nil, nil, core.NewMissingColumnError(response.String())
	}
	if yCol.Spec.Kind == KindCategorical {
		return nil, nil, core.NewColumnTypeError(response.String(), "categorical response is not supported")
	}

	cols := make([]Column, 0, len(covariates))
	for _, key := range covariates {
		c, ok := f.Column(key)
		if !ok {
			return nil, nil, core.NewMissingColumnError(key.String())
		}
		cols = append(cols, c)
	}

	// Case-wise exclusion over the response and every regressor.
	rows := make([]int, 0, f.RowCount())
	for i := 0; i < f.RowCount(); i++ {
		if yCol.IsMissing(i) {
			continue
		}
		complete := true
		for _, c := range cols {
			if c.IsMissing(i) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, i)
		}
	}
	if len(rows) == 0 {
		return nil, nil, core.ErrInsufficientData
	}

	names := []string{"icept"}
	for _, c := range cols {
		if c.Spec.Kind == KindCategorical {
			for _, level := range c.Spec.Levels[1:] {
				names = append(names, fmt.Sprintf("%s[%s]", c.Spec.Key, level))
			}
		} else {
			names = append(names, c.Spec.Key.String())
		}
	}

	x := mat.NewDense(len(rows), len(names), nil)
	y := make([]float64, len(rows))
	for r, i := range rows {
		y[r] = yCol.Floats[i]
		x.Set(r, 0, 1)
		j := 1
		for _, c := range cols {
			if c.Spec.Kind == KindCategorical {
				idx, err := c.LevelIndex(i)
				if err != nil {
					return nil, nil, err
				}
				for k := 1; k < len(c.Spec.Levels); k++ {
					if idx == k {
						x.Set(r, j, 1)
					}
					j++
				}
			} else {
				x.Set(r, j, c.Floats[i])
				j++
			}
		}
	}

	return &DesignMatrix{X: x, Names: names, Rows: rows}, y, nil
}

// RowCount returns the number of retained records.
func (d *DesignMatrix) RowCount() int {
	r, _ := d.X.Dims()
	return r
}

// ColumnCount returns the number of regressors including the intercept.
func (d *DesignMatrix) ColumnCount() int {
	_, c := d.X.Dims()
	return c
}
