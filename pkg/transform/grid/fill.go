// Package grid rebuilds a dense (Region, Province, Year) table from sparse
// long-format observations and fills each Province's numeric series by
// linear interpolation and extrapolation.
package grid

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// OutOfRangePolicy decides what happens to observations whose year falls
// outside the configured grid.
type OutOfRangePolicy int

const (
	OutOfRangeDrop OutOfRangePolicy = iota
	OutOfRangeFail
)

func ParseOutOfRange(s string) (OutOfRangePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return OutOfRangeDrop, nil
	case "fail":
		return OutOfRangeFail, nil
	}
	return 0, fmt.Errorf("unknown out-of-range policy %q (want drop|fail)", s)
}

type Options struct {
	RegionColumn   string // default "Region"
	ProvinceColumn string // default "Province"
	YearColumn     string // default "Year"
	// From and To bound the year range, both inclusive.
	From, To    int
	SinglePoint SinglePointPolicy
	OutOfRange  OutOfRangePolicy
}

func (o Options) withDefaults() Options {
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

// Gap is a (Province, metric) series that still has nulls after filling.
type Gap struct {
	Province string
	Metric   string
	Known    int
	Nulls    int
}

type Report struct {
	Keys         int
	Years        int
	Joined       int
	OutOfRange   int
	Duplicates   int
	Interpolated int
	Extrapolated int
	Held         int
	Unfilled     []Gap
}

type key struct{ region, province string }

// Fill builds the complete grid for long, left-joins the observations and
// fills every numeric metric per Province. The result is sorted by
// (Province, Year); long is not modified.
func Fill(long *ds.Frame, opt Options) (*ds.Frame, Report, error) {
	opt = opt.withDefaults()
	var rep Report
	if opt.To < opt.From {
		return nil, rep, fmt.Errorf("grid: empty year range %d..%d", opt.From, opt.To)
	}
	if err := long.Require(opt.RegionColumn, opt.ProvinceColumn, opt.YearColumn); err != nil {
		return nil, rep, fmt.Errorf("grid: key %w", err)
	}
	regCol, _ := long.ColumnByName(opt.RegionColumn)
	provCol, _ := long.ColumnByName(opt.ProvinceColumn)
	yearCol, _ := long.ColumnByName(opt.YearColumn)

	// 1. distinct keys; a province must map to exactly one region
	regionOf := map[string]string{}
	var keys []key
	for r := 0; r < long.Rows(); r++ {
		if provCol.IsNull(r) {
			return nil, rep, fmt.Errorf("grid: column %s row %d: missing key", opt.ProvinceColumn, r)
		}
		p, reg := ds.FormatCell(provCol, r), ds.FormatCell(regCol, r)
		if prev, ok := regionOf[p]; ok {
			if prev != reg {
				return nil, rep, fmt.Errorf("grid: province %q appears under regions %q and %q", p, prev, reg)
			}
			continue
		}
		regionOf[p] = reg
		keys = append(keys, key{region: reg, province: p})
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].province != keys[j].province {
			return keys[i].province < keys[j].province
		}
		return keys[i].region < keys[j].region
	})
	keyIdx := make(map[string]int, len(keys))
	for i, k := range keys {
		keyIdx[k.province] = i
	}

	// 2-3. complete grid, already in (Province, Year) order
	nYears := opt.To - opt.From + 1
	rep.Keys, rep.Years = len(keys), nYears
	schema := ds.Schema{Columns: []ds.ColumnSchema{
		{Name: opt.RegionColumn, Type: ds.KindString, Nullable: true},
		{Name: opt.ProvinceColumn, Type: ds.KindString},
		{Name: opt.YearColumn, Type: ds.KindInt},
	}}
	var metrics []string
	for i := 0; i < long.Cols(); i++ {
		c := long.Column(i)
		switch c.Name() {
		case opt.RegionColumn, opt.ProvinceColumn, opt.YearColumn:
			continue
		}
		k := c.Kind()
		if k.Numeric() {
			k = ds.KindFloat
			metrics = append(metrics, c.Name())
		}
		schema.Columns = append(schema.Columns, ds.ColumnSchema{Name: c.Name(), Type: k, Nullable: true})
	}
	out := ds.NewFrame(schema)
	for _, k := range keys {
		for y := opt.From; y <= opt.To; y++ {
			out.AppendNullRow()
			row := out.Rows() - 1
			if k.region != "" {
				_ = out.SetCell(row, opt.RegionColumn, k.region)
			}
			_ = out.SetCell(row, opt.ProvinceColumn, k.province)
			_ = out.SetCell(row, opt.YearColumn, int64(y))
		}
	}

	// 4. left join
	srcs := make([]ds.Column, out.Cols())
	for i := 3; i < out.Cols(); i++ {
		srcs[i], _ = long.ColumnByName(out.Column(i).Name())
	}
	filled := make([]bool, out.Rows())
	for r := 0; r < long.Rows(); r++ {
		yv, ok := ds.Float(yearCol, r)
		if !ok || yv != math.Trunc(yv) {
			return nil, rep, fmt.Errorf("grid: column %s row %d: %q is not an integer year", opt.YearColumn, r, ds.FormatCell(yearCol, r))
		}
		y := int(yv)
		if y < opt.From || y > opt.To {
			if opt.OutOfRange == OutOfRangeFail {
				return nil, rep, fmt.Errorf("grid: province %q year %d outside range %d..%d", ds.FormatCell(provCol, r), y, opt.From, opt.To)
			}
			rep.OutOfRange++
			continue
		}
		row := keyIdx[ds.FormatCell(provCol, r)]*nYears + (y - opt.From)
		if filled[row] {
			rep.Duplicates++
			continue
		}
		filled[row] = true
		rep.Joined++
		for i := 3; i < out.Cols(); i++ {
			dst, src := out.Column(i), srcs[i]
			if src.IsNull(r) {
				continue
			}
			v := src.Value(r)
			if dst.Kind() == ds.KindFloat {
				v, _ = ds.Float(src, r)
			}
			if err := out.SetCell(row, dst.Name(), v); err != nil {
				return nil, rep, err
			}
		}
	}

	// 5-6. per-province linear fill; rows are already sorted by (Province, Year)
	xs := make([]float64, nYears)
	for i := range xs {
		xs[i] = float64(opt.From + i)
	}
	ys := make([]float64, nYears)
	known := make([]bool, nYears)
	for ki, k := range keys {
		base := ki * nYears
		for _, m := range metrics {
			c, _ := out.ColumnByName(m)
			fc := c.(*ds.FloatColumn)
			for i := 0; i < nYears; i++ {
				ys[i], known[i] = fc.Get(base + i)
				if known[i] && (math.IsNaN(ys[i]) || math.IsInf(ys[i], 0)) {
					// non-finite values count as missing
					known[i] = false
					fc.SetNull(base + i)
				}
			}
			st := FillSeries(xs, ys, known, opt.SinglePoint)
			for i := 0; i < nYears; i++ {
				if known[i] {
					fc.Set(base+i, ys[i])
				}
			}
			rep.Interpolated += st.Interpolated
			rep.Extrapolated += st.Extrapolated
			rep.Held += st.Held
			if st.Remaining > 0 {
				rep.Unfilled = append(rep.Unfilled, Gap{Province: k.province, Metric: m, Known: st.Known, Nulls: st.Remaining})
			}
		}
	}
	return out, rep, nil
}

// Interpolate is the pipeline step around Fill.
type Interpolate struct {
	Options
	Logger *slog.Logger
}

func (t *Interpolate) Name() string { return "grid_fill" }

func (t *Interpolate) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	out, rep, err := Fill(f, t.Options)
	if err != nil {
		return nil, err
	}
	log := t.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("grid filled",
		"provinces", rep.Keys, "years", rep.Years, "rows", out.Rows(), "joined", rep.Joined,
		"interpolated", rep.Interpolated, "extrapolated", rep.Extrapolated, "held", rep.Held)
	if rep.OutOfRange > 0 {
		log.Warn("dropped observations outside the year range", "count", rep.OutOfRange, "from", t.From, "to", t.To)
	}
	if rep.Duplicates > 0 {
		log.Warn("ignored duplicate observations, first one kept", "count", rep.Duplicates)
	}
	for _, g := range rep.Unfilled {
		log.Warn("series left with nulls", "province", g.Province, "metric", g.Metric, "known", g.Known, "nulls", g.Nulls)
	}
	return out, nil
}
