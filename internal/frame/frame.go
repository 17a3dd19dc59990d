package frame

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMissingColumn is returned when a named column does not exist.
	ErrMissingColumn = errors.New("missing column")
	// ErrLengthMismatch is returned when column lengths or name lists disagree.
	ErrLengthMismatch = errors.New("length mismatch")
	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrKindMismatch is returned when join keys have different kinds.
	ErrKindMismatch = errors.New("kind mismatch")
)

// Frame is an ordered set of equal-length columns.
type Frame struct {
	cols  []*Series
	index map[string]int
}

// New builds a frame from the given series.
func New(series ...*Series) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(series))}
	for i, s := range series {
		if i > 0 && s.Len() != series[0].Len() {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d",
				ErrLengthMismatch, s.Name(), s.Len(), series[0].Len())
		}
		if _, dup := f.index[s.Name()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, s.Name())
		}
		f.index[s.Name()] = i
		f.cols = append(f.cols, s)
	}
	return f, nil
}

// MustNew is like New but panics on error.
func MustNew(series ...*Series) *Frame {
	f, err := New(series...)
	if err != nil {
		panic(err)
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.cols) }

// Shape returns rows and columns.
func (f *Frame) Shape() (int, int) { return f.Len(), f.Width() }

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name()
	}
	return names
}

// Has reports whether a column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Col returns the named column.
func (f *Frame) Col(name string) (*Series, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
	}
	return f.cols[i], nil
}

// ColAt returns the i-th column.
func (f *Frame) ColAt(i int) *Series { return f.cols[i] }

// Columns returns the columns in order.
func (f *Frame) Columns() []*Series {
	return append([]*Series(nil), f.cols...)
}

// SelectIndex keeps the columns at the given positions.
func (f *Frame) SelectIndex(idx ...int) (*Frame, error) {
	out := make([]*Series, 0, len(idx))
	for _, i := range idx {
		if i < 0 || i >= len(f.cols) {
			return nil, fmt.Errorf("%w: column index %d out of range [0,%d)", ErrMissingColumn, i, len(f.cols))
		}
		out = append(out, f.cols[i])
	}
	return New(out...)
}

// Select keeps the named columns in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	out := make([]*Series, 0, len(names))
	for _, n := range names {
		c, err := f.Col(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return New(out...)
}

// Drop returns the frame without its first n columns.
func (f *Frame) Drop(n int) *Frame {
	if n > len(f.cols) {
		n = len(f.cols)
	}
	return MustNew(f.cols[n:]...)
}

// SetNames renames every column. len(names) must equal Width.
func (f *Frame) SetNames(names ...string) (*Frame, error) {
	if len(names) != len(f.cols) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrLengthMismatch, len(names), len(f.cols))
	}
	out := make([]*Series, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Rename(names[i])
	}
	return New(out...)
}

// Take returns the rows at the given positions.
func (f *Frame) Take(idx []int) *Frame {
	out := make([]*Series, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.take(idx)
	}
	return MustNew(out...)
}

// Filter keeps rows where keep[i] is true.
func (f *Frame) Filter(keep []bool) *Frame {
	idx := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	return f.Take(idx)
}

// DropNulls removes rows with a missing value in any of the named columns.
// With no names every column is checked.
func (f *Frame) DropNulls(names ...string) (*Frame, error) {
	cols := f.cols
	if len(names) > 0 {
		cols = make([]*Series, 0, len(names))
		for _, n := range names {
			c, err := f.Col(n)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c)
		}
	}
	keep := make([]bool, f.Len())
	for i := range keep {
		keep[i] = true
		for _, c := range cols {
			if c.IsNull(i) {
				keep[i] = false
				break
			}
		}
	}
	return f.Filter(keep), nil
}

// NullCount returns the number of missing cells in the frame.
func (f *Frame) NullCount() int {
	n := 0
	for _, c := range f.cols {
		n += c.NullCount()
	}
	return n
}

// Row returns row i formatted as text.
func (f *Frame) Row(i int) []string {
	row := make([]string, len(f.cols))
	for j, c := range f.cols {
		row[j] = c.Format(i)
	}
	return row
}

// Equal reports whether both frames have the same columns, kinds and values.
// Missing values compare equal to each other.
func (f *Frame) Equal(o *Frame) bool {
	if f.Width() != o.Width() || f.Len() != o.Len() {
		return false
	}
	for i, a := range f.cols {
		b := o.cols[i]
		if a.Name() != b.Name() || a.Kind() != b.Kind() {
			return false
		}
		for r := 0; r < a.Len(); r++ {
			an, bn := a.IsNull(r), b.IsNull(r)
			if an || bn {
				if an != bn {
					return false
				}
				continue
			}
			if a.Kind() == Number {
				if a.num[r] != b.num[r] && !(math.IsNaN(a.num[r]) && math.IsNaN(b.num[r])) {
					return false
				}
			} else if a.str[r] != b.str[r] {
				return false
			}
		}
	}
	return true
}
