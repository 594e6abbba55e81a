package profile

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

func foodFrame(t *testing.T) *ds.Frame {
	t.Helper()
	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "country", Type: ds.KindString, Nullable: true},
		{Name: "mkt_name", Type: ds.KindString, Nullable: true},
		{Name: "year", Type: ds.KindInt, Nullable: true},
		{Name: "DATES", Type: ds.KindTime, Nullable: true},
		{Name: "rice", Type: ds.KindFloat, Nullable: true},
		{Name: "beans", Type: ds.KindFloat, Nullable: true},
		{Name: "spatially_interpolated", Type: ds.KindBool, Nullable: true},
	}})
	rows := []struct {
		mkt    string
		year   int64
		date   time.Time
		rice   any
		interp any
	}{
		{"Baguio", 2021, time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), 40.0, false},
		{"Manila", 2020, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 45.0, true},
		{"Baguio", 2020, time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), nil, nil},
		{"Cebu", 2022, time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC), 50.0, false},
	}
	for i, r := range rows {
		f.AppendNullRow()
		require.NoError(t, f.SetCell(i, "country", "Philippines"))
		require.NoError(t, f.SetCell(i, "mkt_name", r.mkt))
		require.NoError(t, f.SetCell(i, "year", r.year))
		require.NoError(t, f.SetCell(i, "DATES", r.date))
		require.NoError(t, f.SetCell(i, "rice", r.rice))
		require.NoError(t, f.SetCell(i, "spatially_interpolated", r.interp))
	}
	return f
}

func TestOverview(t *testing.T) {
	f := foodFrame(t)
	o := NewOverview(f, OverviewOptions{
		GeoColumns: []string{"country", "adm1_name", "mkt_name"},
		YearColumn: "year",
		DateColumn: "DATES",
	})
	require.Equal(t, 4, o.Rows)
	require.Equal(t, 7, o.Cols)
	require.Equal(t, []Count{{"country", 1}, {"mkt_name", 3}}, o.Geographic)
	require.Equal(t, []string{"2020", "2021", "2022"}, o.Years)
	require.Equal(t, "2020-01-01T00:00:00Z", o.DateMin)
	require.Equal(t, "2022-12-01T00:00:00Z", o.DateMax)
	// beans is fully missing, rice and the flag a quarter each
	require.Equal(t, 1, o.Over50)
	require.Equal(t, 1, o.Over90)
	require.Equal(t, "beans", o.Missing[0].Column)
	require.Equal(t, 100.0, o.Missing[0].Percent)
	require.Equal(t, "rice", o.Missing[1].Column)
	require.Greater(t, o.MemoryBytes, uint64(0))

	var buf bytes.Buffer
	require.NoError(t, o.WriteText(&buf))
	require.Contains(t, buf.String(), "Shape: (4, 7)")
	require.Contains(t, buf.String(), "  - mkt_name: 3")
	require.Contains(t, buf.String(), "Years: 2020, 2021, 2022")
	require.Contains(t, buf.String(), "Columns with >90% missing: 1")
}

func TestCollector(t *testing.T) {
	f := foodFrame(t)
	c := NewCollector(f.Schema(), 2)
	c.ConsumeFrame(f)
	c.ConsumeFrame(f)

	cols := c.Columns()
	require.Equal(t, 6, cols[4].Num.Count)
	require.Equal(t, 2, cols[4].Num.Nulls)
	require.Equal(t, 40.0, cols[4].Num.Min)
	require.Equal(t, 50.0, cols[4].Num.Max)
	require.InDelta(t, 45.0, cols[4].Num.Mean(), 1e-9)
	require.Equal(t, 2, cols[6].Bool.True)

	txt := c.ReportText()
	require.Contains(t, txt, "- rice (float): count=6 nulls=2 min=40 max=50 mean=45")
	require.Contains(t, txt, "- beans (float): count=0 nulls=8")
	require.Contains(t, txt, `  * "Baguio": 4`)

	b, err := json.Marshal(c.ReportJSON())
	require.NoError(t, err)
	var back JSONProfile
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, "mkt_name", back.Columns[1].Name)
	require.Len(t, back.Columns[1].Text.Freqs, 2)
}

func TestTables(t *testing.T) {
	f := foodFrame(t)
	var buf bytes.Buffer
	WriteSample(&buf, f, 2)
	out := buf.String()
	require.Contains(t, out, "mkt_name")
	require.Contains(t, out, "Manila")
	require.NotContains(t, out, "Cebu")

	buf.Reset()
	WriteMissing(&buf, MissingByColumn(f))
	out = buf.String()
	require.Contains(t, out, "beans")
	require.Contains(t, out, "100.0%")
	require.NotContains(t, out, "country")
}
