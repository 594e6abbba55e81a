// Package parquetio moves frames in and out of Parquet files. Files are
// written with xitongsys/parquet-go and read with segmentio/parquet-go.
package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"

	parquet "github.com/segmentio/parquet-go"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

type Reader struct {
	file   *os.File
	pf     *parquet.File
	schema ds.Schema
}

// OpenReader maps the file's top-level leaf columns onto frame kinds:
// BOOLEAN to bool, INT32/INT64 to int, FLOAT/DOUBLE to float and
// everything else to string. Nested columns are not supported.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("parquet open %s: %w", path, err)
	}
	var schema ds.Schema
	for _, field := range pf.Schema().Fields() {
		if !field.Leaf() {
			_ = f.Close()
			return nil, fmt.Errorf("parquet %s: nested column %q not supported", path, field.Name())
		}
		schema.Columns = append(schema.Columns, ds.ColumnSchema{
			Name:     field.Name(),
			Type:     kindOf(field.Type().Kind()),
			Nullable: field.Optional(),
		})
	}
	return &Reader{file: f, pf: pf, schema: schema}, nil
}

func kindOf(k parquet.Kind) ds.Kind {
	switch k {
	case parquet.Boolean:
		return ds.KindBool
	case parquet.Int32, parquet.Int64:
		return ds.KindInt
	case parquet.Float, parquet.Double:
		return ds.KindFloat
	}
	return ds.KindString
}

func (r *Reader) Close() error { return r.file.Close() }

func (r *Reader) Schema() ds.Schema { return r.schema }

func (r *Reader) ReadAll() (*ds.Frame, error) {
	f := ds.NewFrame(r.schema)
	buf := make([]parquet.Row, 256)
	for _, rg := range r.pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for i := 0; i < n; i++ {
				setRow(f, buf[i])
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, err
			}
			if n == 0 {
				break
			}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func setRow(f *ds.Frame, row parquet.Row) {
	f.AppendNullRow()
	r := f.Rows() - 1
	for _, v := range row {
		ci := v.Column()
		if ci < 0 || ci >= f.Cols() || v.IsNull() {
			continue
		}
		name := f.Column(ci).Name()
		switch v.Kind() {
		case parquet.Boolean:
			_ = f.SetCell(r, name, v.Boolean())
		case parquet.Int32:
			_ = f.SetCell(r, name, int64(v.Int32()))
		case parquet.Int64:
			_ = f.SetCell(r, name, v.Int64())
		case parquet.Float:
			_ = f.SetCell(r, name, float64(v.Float()))
		case parquet.Double:
			_ = f.SetCell(r, name, v.Double())
		default:
			_ = f.SetCell(r, name, string(v.ByteArray()))
		}
	}
}

// ReadFile opens, loads and closes path.
func ReadFile(path string) (*ds.Frame, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadAll()
}
