// Package derive adds calendar features computed from existing columns.
// Output columns are added, or replaced when they already exist.
package derive

import (
	"context"
	"fmt"
	"math"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

func put(f *ds.Frame, c ds.Column) error {
	if _, ok := f.ColumnByName(c.Name()); ok {
		return f.ReplaceColumn(c)
	}
	return f.AddColumn(c)
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// month reads an integral month in 1..12.
func month(c ds.Column, i int) (int64, bool) {
	v, ok := ds.Float(c, i)
	if !ok || v != math.Trunc(v) || v < 1 || v > 12 {
		return 0, false
	}
	return int64(v), true
}

// Quarter maps month 1-12 to quarter 1-4; other values give null.
type Quarter struct {
	MonthColumn string // default "month"
	Output      string // default "quarter"
}

func (t *Quarter) Name() string { return "quarter" }

func (t *Quarter) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	mc, err := f.MustColumn(or(t.MonthColumn, "month"))
	if err != nil {
		return nil, fmt.Errorf("quarter: %w", err)
	}
	out := ds.NewIntColumn(or(t.Output, "quarter"), f.Rows())
	for i := 0; i < f.Rows(); i++ {
		if m, ok := month(mc, i); ok {
			out.Set(i, (m-1)/3+1)
		}
	}
	if err := put(f, out); err != nil {
		return nil, fmt.Errorf("quarter: %w", err)
	}
	return f, nil
}

// YearMonth renders "YYYY-MM"; null when either part is missing.
type YearMonth struct {
	YearColumn  string // default "year"
	MonthColumn string // default "month"
	Output      string // default "year_month"
}

func (t *YearMonth) Name() string { return "year_month" }

func (t *YearMonth) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	yc, err := f.MustColumn(or(t.YearColumn, "year"))
	if err != nil {
		return nil, fmt.Errorf("year_month: %w", err)
	}
	mc, err := f.MustColumn(or(t.MonthColumn, "month"))
	if err != nil {
		return nil, fmt.Errorf("year_month: %w", err)
	}
	out := ds.NewStringColumn(or(t.Output, "year_month"), f.Rows())
	for i := 0; i < f.Rows(); i++ {
		y, ok := ds.Float(yc, i)
		m, mok := month(mc, i)
		if !ok || !mok || y != math.Trunc(y) {
			continue
		}
		out.Set(i, fmt.Sprintf("%d-%02d", int64(y), m))
	}
	if err := put(f, out); err != nil {
		return nil, fmt.Errorf("year_month: %w", err)
	}
	return f, nil
}

// DaysSince counts whole days from the column's earliest time.
type DaysSince struct {
	Column string // default "DATES"
	Output string // default "days_since_start"
}

func (t *DaysSince) Name() string { return "days_since" }

func (t *DaysSince) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	c, err := f.MustColumn(or(t.Column, "DATES"))
	if err != nil {
		return nil, fmt.Errorf("days_since: %w", err)
	}
	tc, ok := c.(*ds.TimeColumn)
	if !ok {
		return nil, fmt.Errorf("days_since: column %s is %s, want time", c.Name(), c.Kind())
	}
	out := ds.NewIntColumn(or(t.Output, "days_since_start"), f.Rows())
	first := -1
	for i := 0; i < tc.Len(); i++ {
		if !tc.IsNull(i) && (first < 0 || ds.Compare(tc, i, first) < 0) {
			first = i
		}
	}
	if first >= 0 {
		start, _ := tc.Get(first)
		for i := 0; i < tc.Len(); i++ {
			if v, ok := tc.Get(i); ok {
				out.Set(i, int64(math.Floor(v.Sub(start).Hours()/24)))
			}
		}
	}
	if err := put(f, out); err != nil {
		return nil, fmt.Errorf("days_since: %w", err)
	}
	return f, nil
}
