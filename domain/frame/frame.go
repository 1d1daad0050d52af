package frame

import (
	"aline/domain/core"
)

// Frame is an immutable, ordered collection of equal-length columns.
// Every operation returns a new Frame; callers' frames are never
// mutated.
type Frame struct {
	columns []Column
	index   map[core.VariableKey]int
	rows    int
}

// New builds a frame from columns, validating equal lengths and unique
// keys.
func New(columns ...Column) (*Frame, error) {
	if len(columns) == 0 {
		return nil, core.ErrInsufficientData
	}
	rows := columns[0].Len()
	index := make(map[core.VariableKey]int, len(columns))
	for i, c := range columns {
		if c.Len() != rows {
			return nil, core.NewValidationError(c.Spec.Key.String(), "column length mismatch")
		}
		if _, dup := index[c.Spec.Key]; dup {
			return nil, core.NewValidationError(c.Spec.Key.String(), "duplicate column key")
		}
		index[c.Spec.Key] = i
	}
	return &Frame{columns: columns, index: index, rows: rows}, nil
}

// RowCount returns the number of records.
func (f *Frame) RowCount() int {
	return f.rows
}

// ColumnCount returns the number of variables.
func (f *Frame) ColumnCount() int {
	return len(f.columns)
}

// Keys returns the column keys in declaration order.
func (f *Frame) Keys() []core.VariableKey {
	keys := make([]core.VariableKey, len(f.columns))
	for i, c := range f.columns {
		keys[i] = c.Spec.Key
	}
	return keys
}

// Has reports whether a column exists.
func (f *Frame) Has(key core.VariableKey) bool {
	_, ok := f.index[key]
	return ok
}

// Column returns the named column.
func (f *Frame) Column(key core.VariableKey) (Column, bool) {
	i, ok := f.index[key]
	if !ok {
		return Column{}, false
	}
	return f.columns[i], true
}

// Select returns a new frame restricted to the given keys, in the
// given order. A missing key is a schema error.
func (f *Frame) Select(keys ...core.VariableKey) (*Frame, error) {
	cols := make([]Column, 0, len(keys))
	for _, key := range keys {
		c, ok := f.Column(key)
		if !ok {
			return nil, core.NewMissingColumnError(key.String())
		}
		cols = append(cols, c)
	}
	return New(cols...)
}

// WithColumn returns a new frame with the column appended, or replaced
// when a column with the same key already exists.
func (f *Frame) WithColumn(col Column) (*Frame, error) {
	if col.Len() != f.rows {
		return nil, core.NewValidationError(col.Spec.Key.String(), "column length mismatch")
	}
	cols := make([]Column, len(f.columns))
	copy(cols, f.columns)
	if i, ok := f.index[col.Spec.Key]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	return New(cols...)
}
