package impute

import (
	"context"
	"fmt"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

type Constant struct {
	Column string
	// coerced to the column kind; numbers decoded from JSON arrive as float64
	Value any
}

func (t *Constant) Name() string { return "impute_constant" }

func (t *Constant) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	col, ok := f.ColumnByName(t.Column)
	if !ok || t.Value == nil {
		return f, nil
	}
	v := t.Value
	if col.Kind() == ds.KindString {
		if _, isStr := v.(string); !isStr {
			v = fmt.Sprint(v)
		}
	}
	for i := 0; i < col.Len(); i++ {
		if !col.IsNull(i) {
			continue
		}
		if err := f.SetCell(i, col.Name(), v); err != nil {
			return nil, fmt.Errorf("impute_constant: %w", err)
		}
	}
	return f, nil
}
