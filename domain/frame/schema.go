package frame

import (
	"aline/domain/core"
)

// DerivedFlag declares a binary indicator computed from a categorical
// source column: 1 when the source label equals Level, 0 otherwise,
// missing when the source label is missing.
type DerivedFlag struct {
	Key   core.VariableKey `json:"key"`
	From  core.VariableKey `json:"from"`
	Level string           `json:"level"`
}

// Schema is the declarative column typing for a study dataset: one
// spec per raw column plus the derived indicators. It replaces
// column-by-column recoding with a single mapping iterated once, so
// the level-ordering invariant lives in exactly one place.
type Schema struct {
	Columns []ColumnSpec  `json:"columns"`
	Derived []DerivedFlag `json:"derived,omitempty"`
}

// Spec returns the declared spec for a raw column key.
func (s Schema) Spec(key core.VariableKey) (ColumnSpec, bool) {
	for _, spec := range s.Columns {
		if spec.Key == key {
			return spec, true
		}
	}
	return ColumnSpec{}, false
}

func (s Schema) derived(key core.VariableKey) (DerivedFlag, bool) {
	for _, d := range s.Derived {
		if d.Key == key {
			return d, true
		}
	}
	return DerivedFlag{}, false
}

// Prepare projects a raw frame down to the keep list, recoding each
// kept column to its declared type and computing derived indicators.
// The input frame is not modified. A keep key that is neither declared
// nor derivable, or a raw column absent from the frame, is a schema
// error, as is a categorical value outside its declared level set.
func (s Schema) Prepare(f *Frame, keep []core.VariableKey) (*Frame, error) {
	cols := make([]Column, 0, len(keep))
	for _, key := range keep {
		if d, ok := s.derived(key); ok {
			col, err := s.deriveFlag(f, d)
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
			continue
		}
		spec, ok := s.Spec(key)
		if !ok {
			return nil, core.NewMissingColumnError(key.String())
		}
		raw, ok := f.Column(key)
		if !ok {
			return nil, core.NewMissingColumnError(key.String())
		}
		col, err := recode(raw, spec)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return New(cols...)
}

// deriveFlag computes a binary indicator from a categorical source.
func (s Schema) deriveFlag(f *Frame, d DerivedFlag) (Column, error) {
	spec, ok := s.Spec(d.From)
	if !ok || spec.Kind != KindCategorical {
		return Column{}, core.NewColumnTypeError(d.From.String(), "derived flag requires a declared categorical source")
	}
	raw, ok := f.Column(d.From)
	if !ok {
		return Column{}, core.NewMissingColumnError(d.From.String())
	}
	src, err := recode(raw, spec)
	if err != nil {
		return Column{}, err
	}
	values := make([]float64, src.Len())
	for i := range values {
		switch {
		case src.IsMissing(i):
			values[i] = missing
		case src.Labels[i] == d.Level:
			values[i] = 1
		default:
			values[i] = 0
		}
	}
	return NewBinaryColumn(d.Key, values)
}

// recode re-types a raw column against its declared spec without
// touching the raw storage.
func recode(raw Column, spec ColumnSpec) (Column, error) {
	switch spec.Kind {
	case KindContinuous:
		if raw.Floats == nil {
			return Column{}, core.NewColumnTypeError(spec.Key.String(), "continuous column requires numeric values")
		}
		return Column{Spec: spec, Floats: raw.Floats}, nil
	case KindBinary:
		if raw.Floats == nil {
			return Column{}, core.NewColumnTypeError(spec.Key.String(), "binary column requires numeric values")
		}
		return NewBinaryColumn(spec.Key, raw.Floats)
	case KindCategorical:
		if raw.Labels == nil {
			return Column{}, core.NewColumnTypeError(spec.Key.String(), "categorical column requires string labels")
		}
		return NewCategoricalColumn(spec.Key, raw.Labels, spec.Levels)
	default:
		return Column{}, core.NewColumnTypeError(spec.Key.String(), "unknown column kind")
	}
}
