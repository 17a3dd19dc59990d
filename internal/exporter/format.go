package exporter

import (
	"fmt"
	"math"

	"regionstats/internal/dataprocessing"
	"regionstats/internal/frame"
)

// StatisticsHeader is the header row of a statistics table.
var StatisticsHeader = []string{"column", "mean", "median", "std_dev", "min", "max"}

// Table is an output table independent of its destination format. Cells are
// string, float64 or nil; NaN and nil are both missing.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// StatisticsTable lays out one row per column statistic.
func StatisticsTable(name string, stats []dataprocessing.ColumnStats) Table {
	rows := make([][]any, len(stats))
	for i, s := range stats {
		rows[i] = []any{s.Column, s.Mean, s.Median, s.StdDev, s.Min, s.Max}
	}
	return Table{Name: name, Header: append([]string(nil), StatisticsHeader...), Rows: rows}
}

// CorrelationTable lays out a correlation matrix with an unnamed index
// column holding the row names.
func CorrelationTable(name string, m *dataprocessing.CorrelationMatrix) Table {
	header := append([]string{""}, m.Columns...)
	rows := make([][]any, len(m.Columns))
	for i, col := range m.Columns {
		row := make([]any, 0, len(m.Columns)+1)
		row = append(row, col)
		for _, v := range m.Values[i] {
			row = append(row, v)
		}
		rows[i] = row
	}
	return Table{Name: name, Header: header, Rows: rows}
}

// FrameTable copies a frame cell by cell. Missing strings become nil.
func FrameTable(name string, f *frame.Frame) Table {
	cols := f.Columns()
	rows := make([][]any, f.Len())
	for r := range rows {
		row := make([]any, len(cols))
		for c, col := range cols {
			switch {
			case col.IsNull(r):
				row[c] = nil
			case col.Kind() == frame.Number:
				row[c] = col.Number(r)
			default:
				row[c] = col.Text(r)
			}
		}
		rows[r] = row
	}
	return Table{Name: name, Header: f.Names(), Rows: rows}
}

// Records renders every row as text for CSV output.
func (t Table) Records() [][]string {
	records := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = formatCell(v)
		}
		records[i] = rec
	}
	return records
}

// formatCell renders floats in their shortest round-trip form and missing
// values as an empty string.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return frame.FormatFloat(x)
	default:
		return fmt.Sprint(x)
	}
}

// missing reports whether a cell holds no value.
func missing(v any) bool {
	if v == nil {
		return true
	}
	f, ok := v.(float64)
	return ok && math.IsNaN(f)
}
