package clean

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

func longFrame(t *testing.T, thresholds []any, years []any) *ds.Frame {
	t.Helper()
	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "Region", Type: ds.KindString, Nullable: true},
		{Name: "Province", Type: ds.KindString, Nullable: true},
		{Name: "Threshold", Type: ds.KindString, Nullable: true},
		{Name: "Year", Type: ds.KindString, Nullable: true},
	}})
	for i := range thresholds {
		f.AppendNullRow()
		require.NoError(t, f.SetCell(i, "Region", "A"))
		require.NoError(t, f.SetCell(i, "Province", "1,P"))
		require.NoError(t, f.SetCell(i, "Threshold", thresholds[i]))
		require.NoError(t, f.SetCell(i, "Year", years[i]))
	}
	return f
}

func TestNumericStripsSeparators(t *testing.T) {
	f := longFrame(t,
		[]any{"1,000", " 1,200.5 ", "n/a", nil, "inf", "-Infinity", "NaN"},
		[]any{"2018", "2,021", "2023", "2024", "2025", "2026", "2027"})
	out, err := (&Numeric{IDColumns: []string{"Region", "Province"}}).Apply(context.Background(), f)
	require.NoError(t, err)

	th, _ := out.ColumnByName("Threshold")
	fc := th.(*ds.FloatColumn)
	v, ok := fc.Get(0)
	require.True(t, ok)
	require.Equal(t, 1000.0, v)
	v, _ = fc.Get(1)
	require.Equal(t, 1200.5, v)
	require.True(t, fc.IsNull(2), "unparseable text becomes null")
	require.True(t, fc.IsNull(3))
	for i := 4; i < 7; i++ {
		require.True(t, fc.IsNull(i), "non-finite row %d becomes null", i)
	}

	yc, _ := out.ColumnByName("Year")
	y, _ := yc.(*ds.IntColumn).Get(1)
	require.Equal(t, int64(2021), y)

	// identifiers are never touched
	p, _ := out.ColumnByName("Province")
	require.Equal(t, "1,P", ds.FormatCell(p, 0))
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,000", 1000, true},
		{" -2.5 ", -2.5, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"+Inf", 0, false},
		{"-Infinity", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseFloat(tt.in, []string{","})
		require.Equal(t, tt.ok, ok, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestInfiniteYearIsFatal(t *testing.T) {
	f := longFrame(t, []any{"1"}, []any{"inf"})
	_, err := (&Numeric{IDColumns: []string{"Region", "Province"}}).Apply(context.Background(), f)
	require.Error(t, err)
}

func TestNumericIsIdempotent(t *testing.T) {
	f := longFrame(t, []any{"1,000", "2,500,000"}, []any{"2018", "2021"})
	tr := &Numeric{IDColumns: []string{"Region", "Province"}}
	once, err := tr.Apply(context.Background(), f)
	require.NoError(t, err)
	first := ds.FormatCell(mustCol(t, once, "Threshold"), 1)

	twice, err := tr.Apply(context.Background(), once.Clone())
	require.NoError(t, err)
	require.Equal(t, first, ds.FormatCell(mustCol(t, twice, "Threshold"), 1))
	require.Equal(t, "2.5e+06", first)
}

func TestNumericYearIsFatal(t *testing.T) {
	f := longFrame(t, []any{"1"}, []any{"twenty"})
	_, err := (&Numeric{IDColumns: []string{"Region", "Province"}}).Apply(context.Background(), f)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Year")

	f = longFrame(t, []any{"1"}, []any{nil})
	_, err = (&Numeric{IDColumns: []string{"Region", "Province"}}).Apply(context.Background(), f)
	require.Error(t, err)

	f = longFrame(t, []any{"1"}, []any{"2018.5"})
	_, err = (&Numeric{IDColumns: []string{"Region", "Province"}}).Apply(context.Background(), f)
	require.Error(t, err)
}

func TestNumericMissingColumns(t *testing.T) {
	f := longFrame(t, []any{"1"}, []any{"2018"})
	_, err := (&Numeric{IDColumns: []string{"Municipality"}}).Apply(context.Background(), f)
	require.True(t, errors.Is(err, ds.ErrMissingColumn))

	_, err = (&Numeric{IDColumns: []string{"Region", "Province"}, IntColumns: []string{"year"}}).Apply(context.Background(), f)
	require.True(t, errors.Is(err, ds.ErrMissingColumn))
}

func mustCol(t *testing.T, f *ds.Frame, name string) ds.Column {
	t.Helper()
	c, ok := f.ColumnByName(name)
	require.True(t, ok)
	return c
}

func TestNumericReplacesColumnsInPlace(t *testing.T) {
	f := longFrame(t, []any{"1,000"}, []any{"2018"})
	out, err := (&Numeric{IDColumns: []string{"Region", "Province"}}).Apply(context.Background(), f)
	require.NoError(t, err)
	require.Same(t, f, out)
	require.Equal(t, ds.KindFloat, mustCol(t, f, "Threshold").Kind())
}
