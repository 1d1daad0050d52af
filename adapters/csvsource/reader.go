// Package csvsource loads the clinical CSV into a typed frame using
// the study's declarative schema.
package csvsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"

	"aline/domain/core"
	"aline/domain/frame"
)

// Reader loads one CSV file.
type Reader struct {
	filePath string
}

// NewReader creates a reader for the given path.
func NewReader(filePath string) *Reader {
	return &Reader{filePath: filePath}
}

// Load reads the file and types every schema column. Empty cells and
// "NA" are missing values. A declared column absent from the header,
// or a cell that cannot be parsed to its declared type, is a schema
// error.
func (r *Reader) Load(schema frame.Schema) (*frame.Frame, error) {
	fid, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer fid.Close()

	rd := csv.NewReader(fid)
	header, err := rd.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIdx := make(map[core.VariableKey]int, len(schema.Columns))
	headerIdx := make(map[string]int, len(header))
	for i, name := range header {
		headerIdx[name] = i
	}
	for _, spec := range schema.Columns {
		i, ok := headerIdx[spec.Key.String()]
		if !ok {
			return nil, core.NewMissingColumnError(spec.Key.String())
		}
		colIdx[spec.Key] = i
	}

	floats := make(map[core.VariableKey][]float64)
	labels := make(map[core.VariableKey][]string)
	rows := 0
	for {
		record, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows++
		for _, spec := range schema.Columns {
			cell := record[colIdx[spec.Key]]
			if spec.Kind == frame.KindCategorical {
				if cell == "NA" {
					cell = ""
				}
				labels[spec.Key] = append(labels[spec.Key], cell)
				continue
			}
			v, err := parseCell(spec.Key, cell)
			if err != nil {
				return nil, err
			}
			floats[spec.Key] = append(floats[spec.Key], v)
		}
	}
	if rows == 0 {
		return nil, core.ErrInsufficientData
	}

	cols := make([]frame.Column, 0, len(schema.Columns))
	for _, spec := range schema.Columns {
		var col frame.Column
		var err error
		switch spec.Kind {
		case frame.KindCategorical:
			col, err = frame.NewCategoricalColumn(spec.Key, labels[spec.Key], spec.Levels)
		case frame.KindBinary:
			col, err = frame.NewBinaryColumn(spec.Key, floats[spec.Key])
		default:
			col = frame.NewContinuousColumn(spec.Key, floats[spec.Key])
		}
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}

	log.Printf("loaded %s: %d rows, %d columns", r.filePath, rows, len(cols))
	return frame.New(cols...)
}

func parseCell(key core.VariableKey, cell string) (float64, error) {
	if cell == "" || cell == "NA" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, core.NewColumnTypeError(key.String(), fmt.Sprintf("cannot parse %q as numeric", cell))
	}
	return v, nil
}
