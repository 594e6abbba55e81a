package derive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

func calendar(t *testing.T) *ds.Frame {
	t.Helper()
	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "DATES", Type: ds.KindTime, Nullable: true},
		{Name: "year", Type: ds.KindInt, Nullable: true},
		{Name: "month", Type: ds.KindInt, Nullable: true},
	}})
	rows := []struct {
		d    any
		y, m any
	}{
		{time.Date(2020, 3, 15, 0, 0, 0, 0, time.UTC), 2020, 3},
		{time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), 2020, 12},
		{nil, nil, 13},
		{time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC), 2021, nil},
	}
	for i, r := range rows {
		f.AppendNullRow()
		require.NoError(t, f.SetCell(i, "DATES", r.d))
		require.NoError(t, f.SetCell(i, "year", r.y))
		require.NoError(t, f.SetCell(i, "month", r.m))
	}
	return f
}

func TestDerivedFeatures(t *testing.T) {
	out, err := ds.NewPipeline().
		Add(&Quarter{}).
		Add(&YearMonth{}).
		Add(&DaysSince{}).
		Run(context.Background(), calendar(t))
	require.NoError(t, err)
	require.Equal(t, []string{"DATES", "year", "month", "quarter", "year_month", "days_since_start"}, out.Names())

	col := func(name string) ds.Column {
		c, ok := out.ColumnByName(name)
		require.True(t, ok)
		return c
	}
	q, ym, days := col("quarter"), col("year_month"), col("days_since_start")
	require.Equal(t, []string{"1", "4", "", ""}, []string{ds.FormatCell(q, 0), ds.FormatCell(q, 1), ds.FormatCell(q, 2), ds.FormatCell(q, 3)})
	require.Equal(t, "2020-03", ds.FormatCell(ym, 0))
	require.Equal(t, "2020-12", ds.FormatCell(ym, 1))
	require.True(t, ym.IsNull(2))
	require.True(t, ym.IsNull(3))
	require.Equal(t, "60", ds.FormatCell(days, 0))
	require.Equal(t, "0", ds.FormatCell(days, 1))
	require.True(t, days.IsNull(2))
	require.Equal(t, "366", ds.FormatCell(days, 3))
}

func TestRerunReplacesOutput(t *testing.T) {
	f := calendar(t)
	_, err := (&Quarter{}).Apply(context.Background(), f)
	require.NoError(t, err)
	_, err = (&Quarter{}).Apply(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, 4, f.Cols())
}

func TestDeriveErrors(t *testing.T) {
	_, err := (&Quarter{MonthColumn: "mes"}).Apply(context.Background(), calendar(t))
	require.True(t, errors.Is(err, ds.ErrMissingColumn))

	_, err = (&DaysSince{Column: "year"}).Apply(context.Background(), calendar(t))
	require.ErrorContains(t, err, "want time")
}
