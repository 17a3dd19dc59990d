package dataprocessing

// ColumnStats holds descriptive statistics of one numeric column.
// Missing values are excluded; Count is the number of values used.
type ColumnStats struct {
	Column string
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	Count  int
}

// CorrelationMatrix is a square matrix of Pearson coefficients.
// Values[i][j] correlates Columns[i] with Columns[j].
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// Size returns the number of columns in the matrix.
func (m *CorrelationMatrix) Size() int { return len(m.Columns) }

// Get returns the coefficient of the named pair and whether both names exist.
func (m *CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}
