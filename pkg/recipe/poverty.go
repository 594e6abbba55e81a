// Package recipe assembles the ready-made pipelines behind the CLI: the
// poverty incidence grid and the food price preprocessing.
package recipe

import (
	"log/slog"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	"github.com/wdm0006/socioprep/pkg/transform/clean"
	"github.com/wdm0006/socioprep/pkg/transform/grid"
	"github.com/wdm0006/socioprep/pkg/transform/reshape"
	"github.com/wdm0006/socioprep/pkg/transform/standardize"
	"github.com/wdm0006/socioprep/pkg/transform/validate"
)

var (
	DefaultPovertyYears = []int{2018, 2021, 2023}
	DefaultFrom         = 2015
	DefaultTo           = 2025
)

type PovertyOptions struct {
	// Years are the suffixes of the wide "<Metric> (<Year>)" columns.
	Years []int
	// From and To bound the output grid, inclusive. Both zero means
	// DefaultFrom..DefaultTo.
	From, To       int
	RegionColumn   string
	ProvinceColumn string
	YearColumn     string
	SinglePoint    grid.SinglePointPolicy
	OutOfRange     grid.OutOfRangePolicy
	Logger         *slog.Logger
}

func (o PovertyOptions) withDefaults() PovertyOptions {
	if len(o.Years) == 0 {
		o.Years = DefaultPovertyYears
	}
	if o.From == 0 && o.To == 0 {
		o.From, o.To = DefaultFrom, DefaultTo
	}
	if o.RegionColumn == "" {
		o.RegionColumn = "Region"
	}
	if o.ProvinceColumn == "" {
		o.ProvinceColumn = "Province"
	}
	if o.YearColumn == "" {
		o.YearColumn = "Year"
	}
	return o
}

// Poverty reshapes a wide poverty incidence table, cleans its numbers and
// fills the complete (Region, Province, Year) grid. The input should be
// loaded as raw text so thousands separators reach the cleaning step.
func Poverty(opt PovertyOptions) *ds.Pipeline {
	opt = opt.withDefaults()
	ids := []string{opt.RegionColumn, opt.ProvinceColumn}
	return ds.NewPipeline().
		WithLogger(opt.Logger).
		Add(&validate.Required{Columns: ids}).
		Add(&standardize.Trim{Columns: ids}).
		Add(&reshape.WideToLong{Years: opt.Years, IDColumns: ids, YearColumn: opt.YearColumn}).
		Add(&clean.Numeric{IDColumns: ids, IntColumns: []string{opt.YearColumn}}).
		Add(&grid.Interpolate{
			Options: grid.Options{
				RegionColumn:   opt.RegionColumn,
				ProvinceColumn: opt.ProvinceColumn,
				YearColumn:     opt.YearColumn,
				From:           opt.From,
				To:             opt.To,
				SinglePoint:    opt.SinglePoint,
				OutOfRange:     opt.OutOfRange,
			},
			Logger: opt.Logger,
		})
}
