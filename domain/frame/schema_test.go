package frame

import (
	"errors"
	"math"
	"testing"

	"aline/domain/core"
)

func testSchema() Schema {
	return Schema{
		Columns: []ColumnSpec{
			{Key: "exposed", Kind: KindBinary},
			{Key: "age", Kind: KindContinuous},
			{Key: "unit", Kind: KindCategorical, Levels: []string{"MICU", "SICU", "SURG"}},
			{Key: "died", Kind: KindBinary},
		},
		Derived: []DerivedFlag{
			{Key: "surgical", From: "unit", Level: "SURG"},
		},
	}
}

func testRawFrame(t *testing.T) *Frame {
	t.Helper()
	exposed, err := NewBinaryColumn("exposed", []float64{1, 0, 1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	died, err := NewBinaryColumn("died", []float64{0, 1, 0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unit, err := NewCategoricalColumn("unit", []string{"SURG", "MICU", "", "SICU"}, []string{"MICU", "SICU", "SURG"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := New(
		exposed,
		NewContinuousColumn("age", []float64{61, 72, math.NaN(), 55}),
		unit,
		died,
		NewContinuousColumn("ignored", []float64{1, 2, 3, 4}),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return f
}

func TestSchema_Prepare(t *testing.T) {
	raw := testRawFrame(t)
	keep := []core.VariableKey{"exposed", "age", "surgical", "died"}

	prepared, err := testSchema().Prepare(raw, keep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prepared.ColumnCount() != 4 {
		t.Fatalf("expected 4 columns, got %d", prepared.ColumnCount())
	}
	if prepared.Has("unit") || prepared.Has("ignored") {
		t.Error("unlisted columns must not survive preparation")
	}

	surgical, ok := prepared.Column("surgical")
	if !ok {
		t.Fatal("derived column missing")
	}
	want := []float64{1, 0, math.NaN(), 0}
	for i, w := range want {
		got := surgical.Floats[i]
		if math.IsNaN(w) != math.IsNaN(got) || (!math.IsNaN(w) && got != w) {
			t.Errorf("surgical[%d] = %g, want %g", i, got, w)
		}
	}

	// Preparation never touches the input frame.
	if !raw.Has("ignored") || raw.ColumnCount() != 5 {
		t.Error("input frame was modified")
	}
}

func TestSchema_PrepareMissingColumn(t *testing.T) {
	exposed, err := NewBinaryColumn("exposed", []float64{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := New(exposed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = testSchema().Prepare(raw, []core.VariableKey{"exposed", "age"})
	if !errors.Is(err, core.ErrMissingColumn) {
		t.Errorf("expected missing-column error, got %v", err)
	}

	_, err = testSchema().Prepare(raw, []core.VariableKey{"undeclared"})
	if !errors.Is(err, core.ErrMissingColumn) {
		t.Errorf("expected missing-column error for undeclared key, got %v", err)
	}
}

func TestSchema_PrepareUnknownLevel(t *testing.T) {
	unit := Column{
		Spec:   ColumnSpec{Key: "unit", Kind: KindCategorical, Levels: []string{"MICU", "SICU", "SURG", "CCU"}},
		Labels: []string{"CCU", "MICU"},
	}
	exposed, err := NewBinaryColumn("exposed", []float64{1, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := New(exposed, unit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The schema declares a narrower level set than the raw data holds.
	_, err = testSchema().Prepare(raw, []core.VariableKey{"unit"})
	if !errors.Is(err, core.ErrUnknownLevel) {
		t.Errorf("expected unknown-level error, got %v", err)
	}
}

func TestSchema_PrepareRejectsMistypedBinary(t *testing.T) {
	raw, err := New(NewContinuousColumn("exposed", []float64{0, 2}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = testSchema().Prepare(raw, []core.VariableKey{"exposed"})
	if !errors.Is(err, core.ErrColumnType) {
		t.Errorf("expected column-type error, got %v", err)
	}
}
