package ioutils

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProcessedPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"data/raw-data/poverty.csv", "data/processed-data/poverty_processed.csv"},
		{"/srv/in/food.jsonl.gz", "/srv/processed-data/food_processed.jsonl.gz"},
		{"raw/table.csv", "processed-data/table_processed.csv"},
	}
	for _, tt := range tests {
		require.Equal(t, filepath.FromSlash(tt.want), ProcessedPath(filepath.FromSlash(tt.in)), tt.in)
	}
}

func TestFormat(t *testing.T) {
	require.Equal(t, "csv", Format("a.csv.gz"))
	require.Equal(t, "jsonl", Format("a.NDJSON"))
	require.Equal(t, "parquet", Format("x/y.parquet"))
	require.Equal(t, "csv", Format("noext"))
}

func TestAtomicCommitAndDiscard(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "processed-data", "out.csv")

	w, err := CreateMaybeCompressed(dst)
	require.NoError(t, err)
	_, err = io.WriteString(w, "a,b\n")
	require.NoError(t, err)
	_, err = os.Stat(dst)
	require.True(t, os.IsNotExist(err), "nothing visible before close")
	require.NoError(t, w.Close())
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, "a,b\n", string(b))

	a, err := CreateAtomic(filepath.Join(dir, "discarded.csv"))
	require.NoError(t, err)
	_, _ = io.WriteString(a, "partial")
	require.NoError(t, a.Close())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only processed-data remains")
}

func TestWriteFileDiscardsOnError(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.csv")
	err := WriteFile(dst, func(w io.Writer) error {
		_, _ = io.WriteString(w, "half")
		return io.ErrUnexpectedEOF
	})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	_, err = os.Stat(dst)
	require.True(t, os.IsNotExist(err))
}

func TestGzipRoundTrip(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "x.csv.gz")
	w, err := CreateMaybeCompressed(dst)
	require.NoError(t, err)
	_, _ = io.WriteString(w, "hello")
	require.NoError(t, w.Close())

	raw, err := os.Open(dst)
	require.NoError(t, err)
	_, err = gzip.NewReader(raw)
	require.NoError(t, err)
	_ = raw.Close()

	r, err := OpenMaybeCompressed(dst)
	require.NoError(t, err)
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))
}
