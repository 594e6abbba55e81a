package parquetio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

type jsonField struct {
	Tag string `json:"Tag"`
}

type jsonSchema struct {
	Tag    string      `json:"Tag"`
	Fields []jsonField `json:"Fields"`
}

// schemaJSON describes s for the JSON writer. Time columns are stored as
// UTF8 text in ds.TimeLayout.
func schemaJSON(s ds.Schema) (string, error) {
	sc := jsonSchema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		if strings.ContainsAny(cs.Name, ",=") {
			return "", fmt.Errorf("parquet: column name %q cannot contain ',' or '='", cs.Name)
		}
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case ds.KindFloat:
			tag += "DOUBLE"
		case ds.KindInt:
			tag += "INT64"
		case ds.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, jsonField{Tag: tag})
	}
	b, err := json.Marshal(sc)
	return string(b), err
}

// WriteAll writes f to path through a temp file renamed on success.
func WriteAll(path string, f *ds.Frame) (err error) {
	schema, err := schemaJSON(f.Schema())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	writer, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, f.Cols())
		for c := 0; c < f.Cols(); c++ {
			col := f.Column(c)
			if col.IsNull(r) {
				continue
			}
			if col.Kind() == ds.KindTime {
				rec[col.Name()] = ds.FormatCell(col, r)
				continue
			}
			rec[col.Name()] = col.Value(r)
		}
		b, err := json.Marshal(rec)
		if err != nil {
			_ = fw.Close()
			return err
		}
		if err := writer.Write(string(b)); err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet finish: %w", err)
	}
	if err := fw.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
