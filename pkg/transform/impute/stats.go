package impute

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/stat"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// numeric returns the non-null values of an int or float column.
func numeric(c ds.Column) []float64 {
	vals := make([]float64, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		if v, ok := ds.Float(c, i); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// fillNumeric writes v into every null cell; int columns round to nearest.
func fillNumeric(c ds.Column, v float64) int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if !c.IsNull(i) {
			continue
		}
		switch col := c.(type) {
		case *ds.FloatColumn:
			col.Set(i, v)
		case *ds.IntColumn:
			if v < 0 {
				col.Set(i, int64(v-0.5))
			} else {
				col.Set(i, int64(v+0.5))
			}
		default:
			continue
		}
		n++
	}
	return n
}

type Mean struct{ Column string }

func (t *Mean) Name() string { return "impute_mean" }

func (t *Mean) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok || !col.Kind().Numeric() {
		return f, nil
	}
	vals := numeric(col)
	if len(vals) == 0 {
		return f, nil
	}
	fillNumeric(col, stat.Mean(vals, nil))
	return f, nil
}

type Median struct{ Column string }

func (t *Median) Name() string { return "impute_median" }

func (t *Median) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok || !col.Kind().Numeric() {
		return f, nil
	}
	vals := numeric(col)
	if len(vals) == 0 {
		return f, nil
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	med := vals[mid]
	if len(vals)%2 == 0 {
		med = (vals[mid-1] + vals[mid]) / 2
	}
	fillNumeric(col, med)
	return f, nil
}

// Mode fills nulls with the most frequent value. Ties go to the value that
// reached the winning count first.
type Mode struct{ Column string }

func (t *Mode) Name() string { return "impute_mode" }

func (t *Mode) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	counts := map[string]int{}
	best, bestc := -1, 0
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		k := ds.FormatCell(col, i)
		counts[k]++
		if counts[k] > bestc {
			bestc, best = counts[k], i
		}
	}
	if best < 0 {
		return f, nil
	}
	v := col.Value(best)
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			if err := f.SetCell(i, col.Name(), v); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
