// Package reshape turns wide tables, whose metric columns repeat once per
// year with a "(YEAR)" suffix, into long tables with an explicit year column.
package reshape

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// WideToLong reshapes "<Metric> (<Year>)" columns into one row per source
// row and year.
type WideToLong struct {
	Years      []int
	IDColumns  []string // default: every column without a year token
	YearColumn string   // default "Year"
	// Columns optionally restricts and reorders the output.
	Columns []string
}

func (t *WideToLong) Name() string { return "reshape_wide_to_long" }

func (t *WideToLong) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	return t.Reshape(f)
}

func yearToken(y int) string { return "(" + strconv.Itoa(y) + ")" }

// metricName removes " (YEAR)" from a tagged column name. A token without
// the leading space is left in place.
func metricName(col string, y int) string {
	return strings.Replace(col, " "+yearToken(y), "", 1)
}

// Reshape is the pure form of Apply.
func (t *WideToLong) Reshape(f *ds.Frame) (*ds.Frame, error) {
	if len(t.Years) == 0 {
		return nil, fmt.Errorf("reshape: no years configured")
	}
	years := append([]int(nil), t.Years...)
	sort.Ints(years)
	yearCol := t.YearColumn
	if yearCol == "" {
		yearCol = "Year"
	}

	// tagged[year][metric] = source column
	tagged := make(map[int]map[string]ds.Column, len(years))
	var metrics []string
	seen := map[string]bool{}
	var untagged []string
	for i := 0; i < f.Cols(); i++ {
		c := f.Column(i)
		matched := false
		for _, y := range years {
			if !strings.Contains(c.Name(), yearToken(y)) {
				continue
			}
			matched = true
			m := metricName(c.Name(), y)
			if tagged[y] == nil {
				tagged[y] = map[string]ds.Column{}
			}
			tagged[y][m] = c
			if !seen[m] {
				seen[m] = true
				metrics = append(metrics, m)
			}
			break
		}
		if !matched {
			untagged = append(untagged, c.Name())
		}
	}
	if len(metrics) == 0 {
		return nil, fmt.Errorf("reshape: %w: no column carries any of the year tokens %v", ds.ErrMissingColumn, years)
	}

	ids := t.IDColumns
	if len(ids) == 0 {
		ids = untagged
	}
	if err := f.Require(ids...); err != nil {
		return nil, fmt.Errorf("reshape: identifier %w", err)
	}
	if seen[yearCol] || containsName(ids, yearCol) {
		return nil, fmt.Errorf("reshape: year column %q collides with an existing column", yearCol)
	}

	schema := ds.Schema{}
	for _, id := range ids {
		c, _ := f.ColumnByName(id)
		schema.Columns = append(schema.Columns, ds.ColumnSchema{Name: id, Type: c.Kind(), Nullable: true})
	}
	kinds := make(map[string]ds.Kind, len(metrics))
	for _, m := range metrics {
		kinds[m] = unifyKind(m, years, tagged)
		schema.Columns = append(schema.Columns, ds.ColumnSchema{Name: m, Type: kinds[m], Nullable: true})
	}
	schema.Columns = append(schema.Columns, ds.ColumnSchema{Name: yearCol, Type: ds.KindInt})

	out := ds.NewFrame(schema)
	for _, y := range years {
		for r := 0; r < f.Rows(); r++ {
			out.AppendNullRow()
			row := out.Rows() - 1
			for _, id := range ids {
				c, _ := f.ColumnByName(id)
				if err := out.SetCell(row, id, c.Value(r)); err != nil {
					return nil, err
				}
			}
			for _, m := range metrics {
				src, ok := tagged[y][m]
				if !ok || src.IsNull(r) {
					continue
				}
				if err := out.SetCell(row, m, convertCell(src, r, kinds[m])); err != nil {
					return nil, err
				}
			}
			_ = out.SetCell(row, yearCol, int64(y))
		}
	}

	if len(t.Columns) > 0 {
		return out.Select(t.Columns...)
	}
	return out, nil
}

// unifyKind keeps the source kind when every year agrees, widens int/float
// mixes to float and falls back to string for anything else.
func unifyKind(metric string, years []int, tagged map[int]map[string]ds.Column) ds.Kind {
	k := ds.KindInvalid
	numeric := true
	for _, y := range years {
		c, ok := tagged[y][metric]
		if !ok {
			continue
		}
		if !c.Kind().Numeric() {
			numeric = false
		}
		if k == ds.KindInvalid {
			k = c.Kind()
		} else if k != c.Kind() {
			k = ds.KindString
		}
	}
	if k == ds.KindString && numeric {
		return ds.KindFloat
	}
	return k
}

func convertCell(c ds.Column, i int, k ds.Kind) any {
	if c.Kind() == k {
		return c.Value(i)
	}
	if k == ds.KindFloat {
		v, _ := ds.Float(c, i)
		return v
	}
	return ds.FormatCell(c, i)
}

func containsName(names []string, n string) bool {
	for _, s := range names {
		if s == n {
			return true
		}
	}
	return false
}
