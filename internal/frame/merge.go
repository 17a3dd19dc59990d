package frame

import (
	"fmt"
	"sort"
)

type keyRef struct {
	left bool
	row  int
}

// OuterMerge joins f and right on the key columns, keeping unmatched rows
// from both sides. Keys come out sorted; duplicate keys produce every pairing.
// Non-key columns present on both sides get "_x" and "_y" suffixes.
func (f *Frame) OuterMerge(right *Frame, keys ...string) (*Frame, error) {
	lk, err := f.keyColumns(keys)
	if err != nil {
		return nil, err
	}
	rk, err := right.keyColumns(keys)
	if err != nil {
		return nil, err
	}
	for i := range keys {
		if lk[i].Kind() != rk[i].Kind() {
			return nil, fmt.Errorf("%w: key %q is %s on the left and %s on the right",
				ErrKindMismatch, keys[i], lk[i].Kind(), rk[i].Kind())
		}
	}

	leftRows := make(map[string][]int)
	rightRows := make(map[string][]int)
	var uniq []string
	refs := make(map[string]keyRef)
	for i := 0; i < f.Len(); i++ {
		k := rowKey(lk, i)
		if _, ok := refs[k]; !ok {
			refs[k] = keyRef{left: true, row: i}
			uniq = append(uniq, k)
		}
		leftRows[k] = append(leftRows[k], i)
	}
	for i := 0; i < right.Len(); i++ {
		k := rowKey(rk, i)
		if _, ok := refs[k]; !ok {
			refs[k] = keyRef{left: false, row: i}
			uniq = append(uniq, k)
		}
		rightRows[k] = append(rightRows[k], i)
	}

	sort.SliceStable(uniq, func(a, b int) bool {
		ra, rb := refs[uniq[a]], refs[uniq[b]]
		for i := range keys {
			sa, sb := rk[i], rk[i]
			if ra.left {
				sa = lk[i]
			}
			if rb.left {
				sb = lk[i]
			}
			if cmp := sa.compare(ra.row, sb, rb.row); cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})

	var li, ri []int
	for _, k := range uniq {
		ls, rs := leftRows[k], rightRows[k]
		switch {
		case len(ls) > 0 && len(rs) > 0:
			for _, l := range ls {
				for _, r := range rs {
					li = append(li, l)
					ri = append(ri, r)
				}
			}
		case len(ls) > 0:
			for _, l := range ls {
				li = append(li, l)
				ri = append(ri, -1)
			}
		default:
			for _, r := range rs {
				li = append(li, -1)
				ri = append(ri, r)
			}
		}
	}

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	out := make([]*Series, 0, f.Width()+right.Width()-len(keys))
	for i := range keys {
		out = append(out, coalesce(lk[i].take(li), rk[i].take(ri)))
	}
	for _, c := range f.cols {
		if isKey[c.Name()] {
			continue
		}
		s := c.take(li)
		if right.Has(c.Name()) {
			s.name += "_x"
		}
		out = append(out, s)
	}
	for _, c := range right.cols {
		if isKey[c.Name()] {
			continue
		}
		s := c.take(ri)
		if f.Has(c.Name()) {
			s.name += "_y"
		}
		out = append(out, s)
	}
	return New(out...)
}

// coalesce fills missing elements of a from b. Both must share a kind and length.
func coalesce(a, b *Series) *Series {
	for i := 0; i < a.Len(); i++ {
		if !a.IsNull(i) || b.IsNull(i) {
			continue
		}
		if a.kind == Number {
			a.num[i] = b.num[i]
		} else {
			a.str[i] = b.str[i]
			a.null[i] = false
		}
	}
	return a
}
