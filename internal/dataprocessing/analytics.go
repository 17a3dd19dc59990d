package dataprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"regionstats/internal/frame"
)

// CalculateBasicStatistics returns mean, median, sample standard deviation,
// minimum and maximum for every numeric column, in column order. String
// columns are skipped, so a frame without numeric columns yields an empty
// slice.
func CalculateBasicStatistics(f *frame.Frame) []ColumnStats {
	out := make([]ColumnStats, 0, f.Width())
	for _, col := range f.Columns() {
		if col.Kind() != frame.Number {
			continue
		}
		out = append(out, describe(col.Name(), present(col.Numbers())))
	}
	return out
}

func describe(name string, values []float64) ColumnStats {
	s := ColumnStats{Column: name, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Mean, s.Median, s.StdDev, s.Min, s.Max = nan, nan, nan, nan, nan
		return s
	}
	s.Mean = stat.Mean(values, nil)
	s.StdDev = stat.StdDev(values, nil)
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	s.Median = median(values)
	return s
}

// median averages the two middle values when len(values) is even.
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// present drops NaN values.
func present(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// CalculateCorrelations returns the Pearson correlation matrix of the
// numeric columns of f. Each pair uses only rows where both values are
// present. A pair with fewer than two such rows, or with a constant column,
// gets NaN.
func CalculateCorrelations(f *frame.Frame) *CorrelationMatrix {
	var (
		names []string
		cols  [][]float64
	)
	for _, col := range f.Columns() {
		if col.Kind() == frame.Number {
			names = append(names, col.Name())
			cols = append(cols, col.Numbers())
		}
	}

	values := make([][]float64, len(cols))
	for i := range values {
		values[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pairwiseCorrelation(cols[i], cols[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			values[i][j], values[j][i] = r, r
		}
	}
	return &CorrelationMatrix{Columns: names, Values: values}
}

func pairwiseCorrelation(a, b []float64) float64 {
	x := make([]float64, 0, len(a))
	y := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	if len(x) < 2 || constant(x) || constant(y) {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	return math.Max(-1, math.Min(1, r))
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// CorrelateFrom correlates the numeric columns of f from column index skip
// onwards. The merged powiat table skips its two key columns and the
// voivodeship table skips one.
func CorrelateFrom(f *frame.Frame, skip int) *CorrelationMatrix {
	return CalculateCorrelations(f.Drop(skip))
}
