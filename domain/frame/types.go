package frame

import (
	"math"

	"aline/domain/core"
)

// missing marks an absent numeric value.
var missing = math.NaN()

// ColumnKind defines variable types for analysis
type ColumnKind string

const (
	KindContinuous  ColumnKind = "continuous"
	KindBinary      ColumnKind = "binary"
	KindCategorical ColumnKind = "categorical"
)

// ColumnSpec declares how a single column is typed. Categorical columns
// carry an explicit, ordered level set; the first level is the reference
// for indicator coding.
type ColumnSpec struct {
	Key    core.VariableKey `json:"key"`
	Kind   ColumnKind       `json:"kind"`
	Levels []string         `json:"levels,omitempty"`
}

// Column holds one variable's values. Continuous and binary columns use
// Floats (NaN marks a missing value); categorical columns use Labels
// (the empty string marks a missing value).
type Column struct {
	Spec   ColumnSpec
	Floats []float64
	Labels []string
}

// NewContinuousColumn creates a continuous column from float values.
func NewContinuousColumn(key core.VariableKey, values []float64) Column {
	return Column{
		Spec:   ColumnSpec{Key: key, Kind: KindContinuous},
		Floats: values,
	}
}

// NewBinaryColumn creates a 0/1 column. Values other than 0, 1 and NaN
// are rejected.
func NewBinaryColumn(key core.VariableKey, values []float64) (Column, error) {
	for _, v := range values {
		if math.IsNaN(v) || v == 0 || v == 1 {
			continue
		}
		return Column{}, core.NewColumnTypeError(key.String(), "binary column requires 0/1 values")
	}
	return Column{
		Spec:   ColumnSpec{Key: key, Kind: KindBinary},
		Floats: values,
	}, nil
}

// NewCategoricalColumn creates a categorical column with an explicit
// level ordering. Labels outside the level set are rejected; empty
// labels pass through as missing.
func NewCategoricalColumn(key core.VariableKey, labels []string, levels []string) (Column, error) {
	levelSet := make(map[string]bool, len(levels))
	for _, l := range levels {
		levelSet[l] = true
	}
	for _, l := range labels {
		if l == "" || levelSet[l] {
			continue
		}
		return Column{}, core.NewUnknownLevelError(key.String(), l)
	}
	return Column{
		Spec:   ColumnSpec{Key: key, Kind: KindCategorical, Levels: levels},
		Labels: labels,
	}, nil
}

// Len returns the number of rows in the column.
func (c Column) Len() int {
	if c.Spec.Kind == KindCategorical {
		return len(c.Labels)
	}
	return len(c.Floats)
}

// IsMissing reports whether row i holds a missing value.
func (c Column) IsMissing(i int) bool {
	if c.Spec.Kind == KindCategorical {
		return c.Labels[i] == ""
	}
	return math.IsNaN(c.Floats[i])
}

// LevelIndex returns the position of row i's label in the declared
// level ordering, or -1 for a missing label.
func (c Column) LevelIndex(i int) (int, error) {
	if c.Spec.Kind != KindCategorical {
		return 0, core.NewColumnTypeError(c.Spec.Key.String(), "level lookup on non-categorical column")
	}
	label := c.Labels[i]
	if label == "" {
		return -1, nil
	}
	for j, l := range c.Spec.Levels {
		if l == label {
			return j, nil
		}
	}
	return 0, core.NewUnknownLevelError(c.Spec.Key.String(), label)
}
