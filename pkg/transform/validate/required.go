package validate

import (
	"context"
	"fmt"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// Required fails unless every column in Columns exists. Unlike the other
// validators a missing column is the error, not a no-op.
type Required struct{ Columns []string }

func (t *Required) Name() string { return "require_columns" }

func (t *Required) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	if err := f.Require(t.Columns...); err != nil {
		return nil, fmt.Errorf("require_columns: %w", err)
	}
	return f, nil
}
