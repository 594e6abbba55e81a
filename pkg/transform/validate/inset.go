package validate

import (
	"context"
	"fmt"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// InSet fails when a non-null cell, rendered as text, is outside Values.
type InSet struct {
	Column string
	Values map[string]struct{}
}

func NewInSet(col string, vals []string) *InSet {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return &InSet{Column: col, Values: m}
}

func (t *InSet) Name() string { return "validate_in" }

func (t *InSet) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok {
		return f, nil
	}
	var bad int
	first := ""
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			continue
		}
		v := ds.FormatCell(col, i)
		if _, ok := t.Values[v]; !ok {
			if bad == 0 {
				first = v
			}
			bad++
		}
	}
	if bad > 0 {
		return f, fmt.Errorf("validate_in: column %s has %d values outside allowed set (first %q)", t.Column, bad, first)
	}
	return f, nil
}
