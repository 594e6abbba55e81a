package impute

import (
	"context"
	"fmt"
	"sort"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// ForwardFill sorts rows by GroupBy then OrderBy and carries the last seen
// value of each column forward inside a group. A group's leading nulls stay
// null. Columns defaults to every numeric column outside GroupBy/OrderBy.
type ForwardFill struct {
	Columns []string
	GroupBy []string
	OrderBy string
}

func (t *ForwardFill) Name() string { return "forward_fill" }

func (t *ForwardFill) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	if err := f.Require(t.GroupBy...); err != nil {
		return nil, fmt.Errorf("forward_fill: %w", err)
	}
	var order ds.Column
	if t.OrderBy != "" {
		c, err := f.MustColumn(t.OrderBy)
		if err != nil {
			return nil, fmt.Errorf("forward_fill: %w", err)
		}
		order = c
	}
	groups := make([]ds.Column, len(t.GroupBy))
	skip := map[string]bool{t.OrderBy: true}
	for i, g := range t.GroupBy {
		groups[i], _ = f.ColumnByName(g)
		skip[g] = true
	}

	rows := make([]int, f.Rows())
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		ra, rb := rows[a], rows[b]
		for _, g := range groups {
			if c := ds.Compare(g, ra, rb); c != 0 {
				return c < 0
			}
		}
		if order != nil {
			return ds.Compare(order, ra, rb) < 0
		}
		return false
	})
	out := f.Take(rows)

	cols := t.Columns
	if len(cols) == 0 {
		for i := 0; i < out.Cols(); i++ {
			c := out.Column(i)
			if c.Kind().Numeric() && !skip[c.Name()] {
				cols = append(cols, c.Name())
			}
		}
	}
	sameGroup := func(a, b int) bool {
		for _, g := range t.GroupBy {
			c, _ := out.ColumnByName(g)
			if ds.Compare(c, a, b) != 0 {
				return false
			}
		}
		return true
	}
	for _, name := range cols {
		col, ok := out.ColumnByName(name)
		if !ok {
			continue
		}
		last := -1
		for r := 0; r < out.Rows(); r++ {
			if r > 0 && !sameGroup(r-1, r) {
				last = -1
			}
			if !col.IsNull(r) {
				last = r
				continue
			}
			if last >= 0 {
				if err := out.SetCell(r, name, col.Value(last)); err != nil {
					return nil, fmt.Errorf("forward_fill: %w", err)
				}
			}
		}
	}
	return out, nil
}
