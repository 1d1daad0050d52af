package frame

import (
	"errors"
	"math"
	"testing"

	"aline/domain/core"
)

func TestNew_RejectsLengthMismatch(t *testing.T) {
	a := NewContinuousColumn("a", []float64{1, 2, 3})
	b := NewContinuousColumn("b", []float64{1, 2})

	if _, err := New(a, b); err == nil {
		t.Fatal("expected error for mismatched column lengths")
	}
}

func TestNew_RejectsDuplicateKeys(t *testing.T) {
	a := NewContinuousColumn("a", []float64{1, 2})
	b := NewContinuousColumn("a", []float64{3, 4})

	if _, err := New(a, b); err == nil {
		t.Fatal("expected error for duplicate column key")
	}
}

func TestFrame_Select(t *testing.T) {
	a := NewContinuousColumn("a", []float64{1, 2})
	b := NewContinuousColumn("b", []float64{3, 4})
	f, err := New(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sub, err := f.Select("b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.ColumnCount() != 1 || !sub.Has("b") {
		t.Errorf("expected single-column frame holding b, got keys %v", sub.Keys())
	}

	if _, err := f.Select("c"); !errors.Is(err, core.ErrMissingColumn) {
		t.Errorf("expected missing-column error, got %v", err)
	}
	// Original frame keeps both columns.
	if f.ColumnCount() != 2 {
		t.Errorf("source frame was modified: %d columns", f.ColumnCount())
	}
}

func TestFrame_WithColumn(t *testing.T) {
	a := NewContinuousColumn("a", []float64{1, 2})
	f, err := New(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g, err := f.WithColumn(NewContinuousColumn("b", []float64{3, 4}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ColumnCount() != 2 {
		t.Errorf("expected 2 columns after append, got %d", g.ColumnCount())
	}
	if f.ColumnCount() != 1 {
		t.Errorf("source frame was modified: %d columns", f.ColumnCount())
	}

	// Same key replaces in place.
	h, err := g.WithColumn(NewContinuousColumn("a", []float64{9, 9}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col, _ := h.Column("a")
	if col.Floats[0] != 9 {
		t.Errorf("expected replaced column value 9, got %g", col.Floats[0])
	}

	if _, err := g.WithColumn(NewContinuousColumn("c", []float64{1})); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestNewBinaryColumn_RejectsNonBinaryValues(t *testing.T) {
	if _, err := NewBinaryColumn("flag", []float64{0, 1, 2}); !errors.Is(err, core.ErrColumnType) {
		t.Errorf("expected column-type error, got %v", err)
	}
	if _, err := NewBinaryColumn("flag", []float64{0, 1, math.NaN()}); err != nil {
		t.Errorf("NaN should pass as missing, got %v", err)
	}
}

func TestNewCategoricalColumn_RejectsUnknownLevels(t *testing.T) {
	levels := []string{"MICU", "SICU"}
	if _, err := NewCategoricalColumn("unit", []string{"MICU", "CCU"}, levels); !errors.Is(err, core.ErrUnknownLevel) {
		t.Errorf("expected unknown-level error, got %v", err)
	}
	col, err := NewCategoricalColumn("unit", []string{"MICU", ""}, levels)
	if err != nil {
		t.Fatalf("empty label should pass as missing, got %v", err)
	}
	if !col.IsMissing(1) {
		t.Error("empty label should be missing")
	}
}

func TestColumn_LevelIndex(t *testing.T) {
	col, err := NewCategoricalColumn("unit", []string{"SICU", "", "MICU"}, []string{"MICU", "SICU"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idx, err := col.LevelIndex(0)
	if err != nil || idx != 1 {
		t.Errorf("expected level index 1, got %d (%v)", idx, err)
	}
	idx, err = col.LevelIndex(1)
	if err != nil || idx != -1 {
		t.Errorf("expected -1 for missing label, got %d (%v)", idx, err)
	}
}
