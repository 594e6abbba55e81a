package grid

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

type obs struct {
	region, province string
	year             int64
	v                any
}

func longFrame(t *testing.T, rows ...obs) *ds.Frame {
	t.Helper()
	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "Region", Type: ds.KindString, Nullable: true},
		{Name: "Province", Type: ds.KindString, Nullable: true},
		{Name: "Incidence", Type: ds.KindFloat, Nullable: true},
		{Name: "Year", Type: ds.KindInt},
	}})
	for i, o := range rows {
		f.AppendNullRow()
		require.NoError(t, f.SetCell(i, "Region", o.region))
		require.NoError(t, f.SetCell(i, "Province", o.province))
		require.NoError(t, f.SetCell(i, "Incidence", o.v))
		require.NoError(t, f.SetCell(i, "Year", o.year))
	}
	return f
}

// series returns Incidence for one province keyed by year; nulls are absent.
func series(t *testing.T, f *ds.Frame, province string) map[int64]float64 {
	t.Helper()
	p, _ := f.ColumnByName("Province")
	y, _ := f.ColumnByName("Year")
	v, _ := f.ColumnByName("Incidence")
	out := map[int64]float64{}
	for r := 0; r < f.Rows(); r++ {
		if ds.FormatCell(p, r) != province {
			continue
		}
		yy, _ := y.(*ds.IntColumn).Get(r)
		if x, ok := v.(*ds.FloatColumn).Get(r); ok {
			out[yy] = x
		}
	}
	return out
}

func TestInterpolationExactness(t *testing.T) {
	f := longFrame(t, obs{"R", "P", 2018, 10.0}, obs{"R", "P", 2023, 20.0})
	out, rep, err := Fill(f, Options{From: 2015, To: 2025})
	require.NoError(t, err)
	s := series(t, out, "P")
	require.InDelta(t, 14.0, s[2020], 1e-9)
	require.InDelta(t, 12.0, s[2019], 1e-9)
	require.InDelta(t, 8.0, s[2017], 1e-9)
	require.InDelta(t, 22.0, s[2024], 1e-9)
	require.Len(t, s, 11)
	require.Equal(t, 4, rep.Interpolated)
	require.Equal(t, 5, rep.Extrapolated)
	require.Empty(t, rep.Unfilled)
}

func TestCompletenessAndOrdering(t *testing.T) {
	f := longFrame(t,
		obs{"R2", "Zeta", 2021, 1.0},
		obs{"R1", "Alpha", 2018, 2.0},
		obs{"R1", "Alpha", 2023, 4.0},
		obs{"R2", "Zeta", 2018, 3.0},
		obs{"R1", "Mid", 2021, nil},
	)
	out, rep, err := Fill(f, Options{From: 2015, To: 2025})
	require.NoError(t, err)
	require.Equal(t, 3*11, out.Rows())
	require.Equal(t, []string{"Region", "Province", "Year", "Incidence"}, out.Names())

	p, _ := out.ColumnByName("Province")
	y, _ := out.ColumnByName("Year")
	reg, _ := out.ColumnByName("Region")
	seen := map[string]bool{}
	for r := 0; r < out.Rows(); r++ {
		k := ds.FormatCell(p, r) + "/" + ds.FormatCell(y, r)
		require.False(t, seen[k], "duplicate %s", k)
		seen[k] = true
		if r > 0 {
			prevP, curP := ds.FormatCell(p, r-1), ds.FormatCell(p, r)
			require.True(t, prevP <= curP, "sorted by province")
			if prevP == curP {
				py, _ := y.(*ds.IntColumn).Get(r - 1)
				cy, _ := y.(*ds.IntColumn).Get(r)
				require.Equal(t, py+1, cy)
			}
		}
	}
	require.Equal(t, "Alpha", ds.FormatCell(p, 0))
	require.Equal(t, "R1", ds.FormatCell(reg, 0))
	require.Equal(t, "Zeta", ds.FormatCell(p, out.Rows()-1))
	require.Equal(t, "R2", ds.FormatCell(reg, out.Rows()-1))

	// Mid has no observation at all
	require.Empty(t, series(t, out, "Mid"))
	require.Contains(t, rep.Unfilled, Gap{Province: "Mid", Metric: "Incidence", Known: 0, Nulls: 11})
	require.Equal(t, 5, rep.Joined)
}

func TestSinglePointPolicies(t *testing.T) {
	f := longFrame(t, obs{"R", "Solo", 2021, 5.0})

	out, rep, err := Fill(f, Options{From: 2015, To: 2025})
	require.NoError(t, err)
	s := series(t, out, "Solo")
	require.Equal(t, map[int64]float64{2021: 5.0}, s)
	require.Equal(t, []Gap{{Province: "Solo", Metric: "Incidence", Known: 1, Nulls: 10}}, rep.Unfilled)

	out, rep, err = Fill(f, Options{From: 2015, To: 2025, SinglePoint: SinglePointHold})
	require.NoError(t, err)
	s = series(t, out, "Solo")
	require.Len(t, s, 11)
	for y := int64(2015); y <= 2025; y++ {
		require.Equal(t, 5.0, s[y])
	}
	require.Equal(t, 10, rep.Held)
	require.Empty(t, rep.Unfilled)
}

func TestNonFiniteValuesAreMissing(t *testing.T) {
	f := longFrame(t, obs{"R", "P", 2018, 5.0}, obs{"R", "P", 2021, math.Inf(1)}, obs{"R", "Q", 2018, math.NaN()})

	out, rep, err := Fill(f, Options{From: 2015, To: 2025})
	require.NoError(t, err)
	require.Equal(t, map[int64]float64{2018: 5.0}, series(t, out, "P"))
	require.Empty(t, series(t, out, "Q"))
	require.Equal(t, []Gap{
		{Province: "P", Metric: "Incidence", Known: 1, Nulls: 10},
		{Province: "Q", Metric: "Incidence", Known: 0, Nulls: 11},
	}, rep.Unfilled)
	require.Zero(t, rep.Interpolated+rep.Extrapolated)

	out, rep, err = Fill(f, Options{From: 2015, To: 2025, SinglePoint: SinglePointHold})
	require.NoError(t, err)
	s := series(t, out, "P")
	require.Len(t, s, 11)
	require.Equal(t, 5.0, s[2021])
	require.Equal(t, 10, rep.Held)
}

func TestOutOfRangeRows(t *testing.T) {
	f := longFrame(t, obs{"R", "P", 2010, 1.0}, obs{"R", "P", 2018, 2.0}, obs{"R", "P", 2021, 3.0})
	out, rep, err := Fill(f, Options{From: 2015, To: 2025})
	require.NoError(t, err)
	require.Equal(t, 1, rep.OutOfRange)
	require.Equal(t, 11, out.Rows())

	_, _, err = Fill(f, Options{From: 2015, To: 2025, OutOfRange: OutOfRangeFail})
	require.Error(t, err)
	require.Contains(t, err.Error(), "2010")
}

func TestDuplicatesFirstWins(t *testing.T) {
	f := longFrame(t, obs{"R", "P", 2018, 1.0}, obs{"R", "P", 2018, 9.0}, obs{"R", "P", 2019, 2.0})
	out, rep, err := Fill(f, Options{From: 2018, To: 2019})
	require.NoError(t, err)
	require.Equal(t, 1, rep.Duplicates)
	require.Equal(t, 1.0, series(t, out, "P")[2018])
}

func TestStructuralErrors(t *testing.T) {
	f := longFrame(t, obs{"R1", "P", 2018, 1.0}, obs{"R2", "P", 2021, 2.0})
	_, _, err := Fill(f, Options{From: 2015, To: 2025})
	require.Error(t, err)
	require.Contains(t, err.Error(), "P")

	_, _, err = Fill(f, Options{ProvinceColumn: "Municipality", From: 2015, To: 2025})
	require.True(t, errors.Is(err, ds.ErrMissingColumn))

	_, _, err = Fill(f, Options{From: 2025, To: 2015})
	require.Error(t, err)
}

func TestInterpolateStepLogsAndReturnsGrid(t *testing.T) {
	f := longFrame(t, obs{"R", "P", 2018, 10.0}, obs{"R", "P", 2023, 20.0})
	step := &Interpolate{Options: Options{From: 2015, To: 2025}, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	require.Equal(t, "grid_fill", step.Name())
	out, err := step.Apply(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, 11, out.Rows())
	require.Equal(t, 2, f.Rows(), "input untouched")
}

func TestParsePolicies(t *testing.T) {
	p, err := ParseSinglePoint("HOLD")
	require.NoError(t, err)
	require.Equal(t, SinglePointHold, p)
	_, err = ParseSinglePoint("mean")
	require.Error(t, err)

	o, err := ParseOutOfRange("fail")
	require.NoError(t, err)
	require.Equal(t, OutOfRangeFail, o)
	_, err = ParseOutOfRange("ignore")
	require.Error(t, err)
}
