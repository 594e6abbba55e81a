package validate

import (
	"context"
	"fmt"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

type Range struct {
	Column string
	Min    *float64
	Max    *float64
}

func (t *Range) Name() string { return "validate_range" }

func (t *Range) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	var bad int
	for i := 0; i < col.Len(); i++ {
		v, ok := ds.Float(col, i)
		if !ok {
			continue
		}
		if (t.Min != nil && v < *t.Min) || (t.Max != nil && v > *t.Max) {
			bad++
		}
	}
	if bad > 0 {
		return f, fmt.Errorf("validate_range: column %s has %d out-of-range values", t.Column, bad)
	}
	return f, nil
}
