package frame

import (
	"math"
	"sort"
	"strings"
)

const keySep = "\x1f"

// rowKey joins the key columns of row i into one comparable string.
func rowKey(cols []*Series, i int) string {
	if len(cols) == 1 {
		return cols[0].keyString(i)
	}
	parts := make([]string, len(cols))
	for k, c := range cols {
		parts[k] = c.keyString(i)
	}
	return strings.Join(parts, keySep)
}

func (f *Frame) keyColumns(keys []string) ([]*Series, error) {
	cols := make([]*Series, len(keys))
	for i, k := range keys {
		c, err := f.Col(k)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return cols, nil
}

// GroupBySum groups rows by the key columns and sums every numeric non-key
// column. Groups come out sorted by key. Rows with a missing key are dropped,
// NaN values are skipped, and non-numeric non-key columns are discarded.
func (f *Frame) GroupBySum(keys ...string) (*Frame, error) {
	keyCols, err := f.keyColumns(keys)
	if err != nil {
		return nil, err
	}
	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}

	var (
		firstRow []int
		members  [][]int
		groupOf  = make(map[string]int)
	)
	for i := 0; i < f.Len(); i++ {
		null := false
		for _, c := range keyCols {
			if c.IsNull(i) {
				null = true
				break
			}
		}
		if null {
			continue
		}
		k := rowKey(keyCols, i)
		g, ok := groupOf[k]
		if !ok {
			g = len(firstRow)
			groupOf[k] = g
			firstRow = append(firstRow, i)
			members = append(members, nil)
		}
		members[g] = append(members[g], i)
	}

	order := make([]int, len(firstRow))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := firstRow[order[a]], firstRow[order[b]]
		for _, c := range keyCols {
			if cmp := c.compare(ra, c, rb); cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})

	reps := make([]int, len(order))
	for i, g := range order {
		reps[i] = firstRow[g]
	}
	out := make([]*Series, 0, f.Width())
	for _, c := range keyCols {
		out = append(out, c.take(reps))
	}
	for _, c := range f.cols {
		if isKey[c.Name()] || c.Kind() != Number {
			continue
		}
		sums := make([]float64, len(order))
		for i, g := range order {
			var total float64
			for _, r := range members[g] {
				if v := c.num[r]; !math.IsNaN(v) {
					total += v
				}
			}
			sums[i] = total
		}
		out = append(out, NewNumbers(c.Name(), sums))
	}
	return New(out...)
}

// ValueCounts counts non-null values of a column. The result is ordered by
// count descending; ties keep first-seen order.
func (s *Series) ValueCounts() (values []string, counts []float64) {
	pos := make(map[string]int)
	for i := 0; i < s.Len(); i++ {
		if s.IsNull(i) {
			continue
		}
		v := s.Format(i)
		p, ok := pos[v]
		if !ok {
			p = len(values)
			pos[v] = p
			values = append(values, v)
			counts = append(counts, 0)
		}
		counts[p]++
	}
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return counts[idx[a]] > counts[idx[b]] })
	sortedValues := make([]string, len(idx))
	sortedCounts := make([]float64, len(idx))
	for i, j := range idx {
		sortedValues[i] = values[j]
		sortedCounts[i] = counts[j]
	}
	return sortedValues, sortedCounts
}
