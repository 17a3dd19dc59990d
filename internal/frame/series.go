package frame

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the element type of a Series.
type Kind int

const (
	// String columns hold text; missing cells are tracked with a null flag.
	String Kind = iota
	// Number columns hold float64; missing cells are NaN.
	Number
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Series is a named, typed column.
type Series struct {
	name string
	kind Kind
	str  []string
	null []bool
	num  []float64
}

// NewStrings creates a string series with no missing values.
func NewStrings(name string, values []string) *Series {
	s := &Series{
		name: name,
		kind: String,
		str:  append([]string(nil), values...),
		null: make([]bool, len(values)),
	}
	return s
}

// NewNullableStrings creates a string series; nulls[i] marks values[i] as missing.
func NewNullableStrings(name string, values []string, nulls []bool) *Series {
	s := NewStrings(name, values)
	copy(s.null, nulls)
	return s
}

// NewNumbers creates a numeric series. NaN marks a missing value.
func NewNumbers(name string, values []float64) *Series {
	return &Series{
		name: name,
		kind: Number,
		num:  append([]float64(nil), values...),
	}
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// Kind returns the element kind.
func (s *Series) Kind() Kind { return s.kind }

// Len returns the number of elements.
func (s *Series) Len() int {
	if s.kind == Number {
		return len(s.num)
	}
	return len(s.str)
}

// IsNull reports whether element i is missing.
func (s *Series) IsNull(i int) bool {
	if s.kind == Number {
		return math.IsNaN(s.num[i])
	}
	return s.null[i]
}

// NullCount returns the number of missing elements.
func (s *Series) NullCount() int {
	n := 0
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) {
			n++
		}
	}
	return n
}

// Strings returns a copy of the string values. Missing values are "".
// Numeric series are formatted.
func (s *Series) Strings() []string {
	out := make([]string, s.Len())
	for i := range out {
		out[i] = s.Format(i)
	}
	return out
}

// Numbers returns a copy of the numeric values. It panics on string series.
func (s *Series) Numbers() []float64 {
	if s.kind != Number {
		panic(fmt.Sprintf("frame: series %q is not numeric", s.name))
	}
	return append([]float64(nil), s.num...)
}

// Text returns element i of a string series.
func (s *Series) Text(i int) string {
	if s.kind == Number {
		return s.Format(i)
	}
	return s.str[i]
}

// Number returns element i of a numeric series.
func (s *Series) Number(i int) float64 {
	return s.num[i]
}

// Format renders element i as text; missing values render as "".
func (s *Series) Format(i int) string {
	if s.IsNull(i) {
		return ""
	}
	if s.kind == Number {
		return FormatFloat(s.num[i])
	}
	return s.str[i]
}

// Rename returns a copy of the series under a new name.
func (s *Series) Rename(name string) *Series {
	c := s.Copy()
	c.name = name
	return c
}

// Copy returns a deep copy.
func (s *Series) Copy() *Series {
	c := &Series{name: s.name, kind: s.kind}
	if s.kind == Number {
		c.num = append([]float64(nil), s.num...)
	} else {
		c.str = append([]string(nil), s.str...)
		c.null = append([]bool(nil), s.null...)
	}
	return c
}

// MapStrings applies fn to every non-null element of a string series.
func (s *Series) MapStrings(fn func(string) string) *Series {
	c := s.Copy()
	if c.kind != String {
		return c
	}
	for i, v := range c.str {
		if !c.null[i] {
			c.str[i] = fn(v)
		}
	}
	return c
}

// KeepStrings nulls out every element for which keep returns false.
func (s *Series) KeepStrings(keep func(string) bool) *Series {
	c := s.Copy()
	if c.kind != String {
		return c
	}
	for i, v := range c.str {
		if !c.null[i] && !keep(v) {
			c.str[i] = ""
			c.null[i] = true
		}
	}
	return c
}

// ForwardFill propagates the last non-null value into following nulls.
// Leading nulls stay null.
func (s *Series) ForwardFill() *Series {
	c := s.Copy()
	if c.kind == Number {
		last := math.NaN()
		for i, v := range c.num {
			if math.IsNaN(v) {
				c.num[i] = last
			} else {
				last = v
			}
		}
		return c
	}
	var last string
	seen := false
	for i := range c.str {
		if c.null[i] {
			if seen {
				c.str[i] = last
				c.null[i] = false
			}
			continue
		}
		last = c.str[i]
		seen = true
	}
	return c
}

func (s *Series) take(idx []int) *Series {
	c := &Series{name: s.name, kind: s.kind}
	if s.kind == Number {
		c.num = make([]float64, len(idx))
		for j, i := range idx {
			if i < 0 {
				c.num[j] = math.NaN()
				continue
			}
			c.num[j] = s.num[i]
		}
		return c
	}
	c.str = make([]string, len(idx))
	c.null = make([]bool, len(idx))
	for j, i := range idx {
		if i < 0 {
			c.null[j] = true
			continue
		}
		c.str[j] = s.str[i]
		c.null[j] = s.null[i]
	}
	return c
}

// compare orders element i of s against element j of o. Both must share a kind.
// Missing values sort last.
func (s *Series) compare(i int, o *Series, j int) int {
	an, bn := s.IsNull(i), o.IsNull(j)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	if s.kind == Number {
		a, b := s.num[i], o.num[j]
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	a, b := s.str[i], o.str[j]
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// keyString renders element i for use in a grouping key.
func (s *Series) keyString(i int) string {
	if s.IsNull(i) {
		return "\x00"
	}
	if s.kind == Number {
		return strconv.FormatFloat(s.num[i], 'g', -1, 64)
	}
	return s.str[i]
}

// FormatFloat renders f using the shortest representation that round-trips.
// NaN renders as "".
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
