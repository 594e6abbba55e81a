package csvio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

func TestInferAndRead(t *testing.T) {
	p := filepath.FromSlash("testdata/food.csv")
	r, c, err := Open(p, ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	schema, names, err := r.InferSchema()
	require.NoError(t, err)
	require.Equal(t, []string{"mkt_name", "rice", "open"}, names)
	require.Equal(t, ds.KindString, schema.Columns[0].Type)
	require.Equal(t, ds.KindFloat, schema.Columns[1].Type)
	require.Equal(t, ds.KindBool, schema.Columns[2].Type)

	fr, err := r.ReadAll(schema)
	require.NoError(t, err)
	require.Equal(t, 3, fr.Rows())
	mkt, _ := fr.ColumnByName("mkt_name")
	require.Equal(t, "Baguio", ds.FormatCell(mkt, 0))
	rice, _ := fr.ColumnByName("rice")
	require.True(t, rice.IsNull(1))
	require.Equal(t, "42", ds.FormatCell(rice, 2))
	require.Empty(t, r.Warnings())
}

func TestThousandsSeparatorsNeedRaw(t *testing.T) {
	p := filepath.FromSlash("testdata/poverty.csv")
	fr, _, err := ReadFile(p, ReaderOptions{})
	require.NoError(t, err)
	// quoted thousands keep the column textual even without Raw
	th, _ := fr.ColumnByName("Threshold (2018)")
	require.Equal(t, ds.KindString, th.Kind())
	require.Equal(t, "1,000", ds.FormatCell(th, 0))
	inc, _ := fr.ColumnByName("Incidence (2018)")
	require.Equal(t, ds.KindString, inc.Kind(), "n/a keeps the column textual")

	fr, _, err = ReadFile(p, ReaderOptions{Raw: true})
	require.NoError(t, err)
	require.Equal(t, 3, fr.Rows())
	require.Equal(t, 8, fr.Cols())
	for i := 0; i < fr.Cols(); i++ {
		require.Equal(t, ds.KindString, fr.Column(i).Kind())
	}
	miss, _ := fr.ColumnByName("Threshold (2021)")
	require.True(t, miss.IsNull(1))
}

func TestShortAndLongRecords(t *testing.T) {
	in := "a,b\n1,2\n3\n4,5,6\n"
	r := NewReaderFrom(strings.NewReader(in), ReaderOptions{HasHeader: true})
	schema, _, err := r.InferSchema()
	require.NoError(t, err)
	fr, err := r.ReadAll(schema)
	require.NoError(t, err)
	require.Equal(t, 3, fr.Rows())
	require.Equal(t, "short_records=1, long_records=1", r.Warnings())

	r = NewReaderFrom(strings.NewReader(in), ReaderOptions{HasHeader: true, Strict: true})
	schema, _, err = r.InferSchema()
	require.NoError(t, err)
	_, err = r.ReadAll(schema)
	require.Error(t, err)
}

func TestDuplicateHeader(t *testing.T) {
	r := NewReaderFrom(strings.NewReader("a,a\n1,2\n"), ReaderOptions{HasHeader: true})
	_, _, err := r.InferSchema()
	require.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	p := filepath.FromSlash("testdata/food.csv")
	fr, _, err := ReadFile(p, ReaderOptions{})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "nested", "food_processed.csv")
	require.NoError(t, WriteAll(out, fr, WriterOptions{}))
	back, _, err := ReadFile(out, ReaderOptions{})
	require.NoError(t, err)
	require.Equal(t, fr.Names(), back.Names())
	for c := 0; c < fr.Cols(); c++ {
		for r := 0; r < fr.Rows(); r++ {
			require.Equal(t, ds.FormatCell(fr.Column(c), r), ds.FormatCell(back.Column(c), r))
		}
	}
}
