// Package convert changes column kinds with coercion: cells that cannot be
// converted become null instead of failing the step.
package convert

import (
	"context"
	"math"
	"strings"
	"time"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	"github.com/wdm0006/socioprep/pkg/transform/clean"
)

// DefaultLayouts are tried in order by ToTime when Layouts is empty.
var DefaultLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006-01",
	"2006/01/02",
}

// ParseTime tries each layout in turn; all results are UTC.
func ParseTime(s string, layouts []string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type ToTime struct {
	Columns []string
	Layouts []string
}

func (t *ToTime) Name() string { return "to_time" }

func (t *ToTime) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	layouts := t.Layouts
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	for _, name := range t.Columns {
		c, ok := f.ColumnByName(name)
		if !ok || c.Kind() == ds.KindTime {
			continue
		}
		out := ds.NewTimeColumn(name, c.Len())
		for i := 0; i < c.Len(); i++ {
			if v, ok := ParseTime(ds.FormatCell(c, i), layouts); ok {
				out.Set(i, v)
			}
		}
		if err := f.ReplaceColumn(out); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ToInt parses numbers (thousands separators allowed) and keeps only
// integral values.
type ToInt struct{ Columns []string }

func (t *ToInt) Name() string { return "to_int" }

func (t *ToInt) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	for _, name := range t.Columns {
		c, ok := f.ColumnByName(name)
		if !ok || c.Kind() == ds.KindInt {
			continue
		}
		fc := clean.ToFloat(c, []string{","})
		out := ds.NewIntColumn(name, c.Len())
		for i := 0; i < fc.Len(); i++ {
			if v, ok := fc.Get(i); ok && v == math.Trunc(v) && !math.IsInf(v, 0) {
				out.Set(i, int64(v))
			}
		}
		if err := f.ReplaceColumn(out); err != nil {
			return nil, err
		}
	}
	return f, nil
}

type ToFloat struct{ Columns []string }

func (t *ToFloat) Name() string { return "to_float" }

func (t *ToFloat) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	for _, name := range t.Columns {
		c, ok := f.ColumnByName(name)
		if !ok || c.Kind() == ds.KindFloat {
			continue
		}
		if err := f.ReplaceColumn(clean.ToFloat(c, []string{","})); err != nil {
			return nil, err
		}
	}
	return f, nil
}
