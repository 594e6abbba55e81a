package recipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	"github.com/wdm0006/socioprep/pkg/groups"
	"github.com/wdm0006/socioprep/pkg/profile"
	"github.com/wdm0006/socioprep/pkg/transform/convert"
	"github.com/wdm0006/socioprep/pkg/transform/derive"
	"github.com/wdm0006/socioprep/pkg/transform/impute"
	"github.com/wdm0006/socioprep/pkg/transform/outliers"
	"github.com/wdm0006/socioprep/pkg/transform/standardize"
)

// MissingStrategy selects how the food recipe treats nulls.
type MissingStrategy int

const (
	// MissingAnalyze only reports null counts.
	MissingAnalyze MissingStrategy = iota
	// MissingDrop removes rows with a null in a critical column.
	MissingDrop
	// MissingImpute forward fills numeric columns per location over time.
	MissingImpute
)

func (s MissingStrategy) String() string {
	switch s {
	case MissingDrop:
		return "drop"
	case MissingImpute:
		return "impute"
	}
	return "analyze"
}

func ParseMissingStrategy(s string) (MissingStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "analyze":
		return MissingAnalyze, nil
	case "drop":
		return MissingDrop, nil
	case "impute":
		return MissingImpute, nil
	}
	return 0, fmt.Errorf("unknown missing-value strategy %q (want analyze|drop|impute)", s)
}

type FoodOptions struct {
	Groups      groups.Options
	DateColumn  string // default "DATES"
	YearColumn  string // default "year"
	MonthColumn string // default "month"
	// GroupColumn identifies one location's series for MissingImpute.
	GroupColumn string // default "geo_id"
	// CriticalColumns must be non-null under MissingDrop.
	CriticalColumns []string
	// Categories are trimmed identifier columns.
	Categories []string
	// FloatColumns are coerced to float (coordinates).
	FloatColumns []string
	Missing      MissingStrategy

	// OutlierColumns defaults to the first MaxOutlierColumns base food items.
	OutlierColumns    []string
	MaxOutlierColumns int // default 10
	OutlierMethod     outliers.Method
	Threshold         float64 // default outliers.DefaultThreshold
	FlagOutliers      bool

	// Report receives the human readable overview; nil discards it.
	Report io.Writer
	Logger *slog.Logger
}

func (o FoodOptions) withDefaults() FoodOptions {
	if o.DateColumn == "" {
		o.DateColumn = "DATES"
	}
	if o.YearColumn == "" {
		o.YearColumn = "year"
	}
	if o.MonthColumn == "" {
		o.MonthColumn = "month"
	}
	if o.GroupColumn == "" {
		o.GroupColumn = "geo_id"
	}
	if o.CriticalColumns == nil {
		o.CriticalColumns = []string{"ISO3", "country", o.DateColumn, o.YearColumn, o.MonthColumn}
	}
	if o.Categories == nil {
		o.Categories = []string{"ISO3", "country", "adm1_name", "adm2_name", "currency"}
	}
	if o.FloatColumns == nil {
		o.FloatColumns = []string{"lat", "lon"}
	}
	if o.MaxOutlierColumns <= 0 {
		o.MaxOutlierColumns = 10
	}
	if o.Report == nil {
		o.Report = io.Discard
	}
	return o
}

// FoodPrices builds the food price pipeline for a table with the given
// column names: overview, type conversion, missing values, outlier
// detection and calendar features. The returned groups are the ones the
// pipeline was planned from.
func FoodPrices(names []string, opt FoodOptions) (*ds.Pipeline, groups.Groups) {
	opt = opt.withDefaults()
	g := groups.Classify(names, opt.Groups)

	p := ds.NewPipeline().WithLogger(opt.Logger).
		Add(&explore{opt: opt, groups: g}).
		Add(&convert.ToTime{Columns: []string{opt.DateColumn}}).
		Add(&convert.ToInt{Columns: []string{opt.YearColumn, opt.MonthColumn}}).
		Add(&standardize.Trim{Columns: opt.Categories}).
		Add(&convert.ToFloat{Columns: opt.FloatColumns})

	switch opt.Missing {
	case MissingAnalyze:
		p.Add(&missingReport{w: opt.Report, groups: g})
	case MissingDrop:
		p.Add(&impute.DropNull{Columns: opt.CriticalColumns})
	case MissingImpute:
		p.Add(&impute.ForwardFill{GroupBy: []string{opt.GroupColumn}, OrderBy: opt.DateColumn})
	}

	cols := opt.OutlierColumns
	if len(cols) == 0 {
		cols = g.Food
		if len(cols) > opt.MaxOutlierColumns {
			cols = cols[:opt.MaxOutlierColumns]
		}
	}
	if len(cols) > 0 {
		p.Add(&outliers.Detect{
			Columns:   cols,
			Method:    opt.OutlierMethod,
			Threshold: opt.Threshold,
			Flag:      opt.FlagOutliers,
			Logger:    opt.Logger,
		})
	}

	return p.
		Add(&derive.Quarter{MonthColumn: opt.MonthColumn}).
		Add(&derive.YearMonth{YearColumn: opt.YearColumn, MonthColumn: opt.MonthColumn}).
		Add(&derive.DaysSince{Column: opt.DateColumn}), g
}

// explore writes the dataset overview and column groups; the frame passes
// through unchanged.
type explore struct {
	opt    FoodOptions
	groups groups.Groups
}

func (t *explore) Name() string { return "explore" }

func (t *explore) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	o := profile.NewOverview(f, profile.OverviewOptions{
		GeoColumns: []string{"country", "adm1_name", "mkt_name"},
		YearColumn: t.opt.YearColumn,
		DateColumn: t.opt.DateColumn,
	})
	if err := o.WriteText(t.opt.Report); err != nil {
		return nil, err
	}
	if err := t.groups.WriteText(t.opt.Report); err != nil {
		return nil, err
	}
	return f, nil
}

// missingReport tabulates nulls in the identifier, time and food columns.
type missingReport struct {
	w      io.Writer
	groups groups.Groups
}

func (t *missingReport) Name() string { return "missing_report" }

func (t *missingReport) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	want := map[string]bool{}
	for _, set := range [][]string{t.groups.Geographic, t.groups.Temporal, t.groups.Food} {
		for _, n := range set {
			want[n] = true
		}
	}
	var ms []profile.Missing
	for _, m := range profile.MissingByColumn(f) {
		if want[m.Column] {
			ms = append(ms, m)
		}
	}
	if _, err := io.WriteString(t.w, "Missing values:\n"); err != nil {
		return nil, err
	}
	profile.WriteMissing(t.w, ms)
	return f, nil
}
