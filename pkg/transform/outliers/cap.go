package outliers

import (
	"context"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// Cap clamps numeric cells into [Min, Max]; either bound may be nil.
type Cap struct {
	Column string
	Min    *float64
	Max    *float64
}

func (t *Cap) Name() string { return "cap_range" }

func (t *Cap) clamp(v float64) float64 {
	if t.Min != nil && v < *t.Min {
		v = *t.Min
	}
	if t.Max != nil && v > *t.Max {
		v = *t.Max
	}
	return v
}

func (t *Cap) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	switch c := col.(type) {
	case *ds.FloatColumn:
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				c.Set(i, t.clamp(v))
			}
		}
	case *ds.IntColumn:
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				c.Set(i, int64(t.clamp(float64(v))))
			}
		}
	}
	return f, nil
}
