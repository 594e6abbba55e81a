package jsonlio

import (
	"encoding/json"
	"io"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	iox "github.com/wdm0006/socioprep/pkg/io/ioutils"
)

// Write encodes one object per row. Null cells are omitted; times use
// ds.TimeLayout.
func Write(w io.Writer, f *ds.Frame) error {
	enc := json.NewEncoder(w)
	for r := 0; r < f.Rows(); r++ {
		m := make(map[string]any, f.Cols())
		for c := 0; c < f.Cols(); c++ {
			col := f.Column(c)
			if col.IsNull(r) {
				continue
			}
			if col.Kind() == ds.KindTime {
				m[col.Name()] = ds.FormatCell(col, r)
				continue
			}
			m[col.Name()] = col.Value(r)
		}
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

func WriteAll(path string, f *ds.Frame) error {
	return iox.WriteFile(path, func(w io.Writer) error { return Write(w, f) })
}
