package impute

import (
	"context"
	"fmt"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// DropNull removes every row with a null in any of Columns.
type DropNull struct {
	Columns []string
	// Dropped is set by Apply.
	Dropped int
}

func (t *DropNull) Name() string { return "drop_null" }

func (t *DropNull) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	cols := make([]ds.Column, 0, len(t.Columns))
	for _, name := range t.Columns {
		c, err := f.MustColumn(name)
		if err != nil {
			return nil, fmt.Errorf("drop_null: %w", err)
		}
		cols = append(cols, c)
	}
	keep := make([]int, 0, f.Rows())
rows:
	for r := 0; r < f.Rows(); r++ {
		for _, c := range cols {
			if c.IsNull(r) {
				continue rows
			}
		}
		keep = append(keep, r)
	}
	t.Dropped = f.Rows() - len(keep)
	if t.Dropped == 0 {
		return f, nil
	}
	return f.Take(keep), nil
}
