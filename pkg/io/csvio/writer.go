package csvio

import (
	"encoding/csv"
	"io"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	iox "github.com/wdm0006/socioprep/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// Write renders f with a header row. Nulls are empty fields.
func Write(out io.Writer, f *ds.Frame, opt WriterOptions) error {
	w := csv.NewWriter(out)
	if opt.Delimiter != 0 {
		w.Comma = opt.Delimiter
	}
	if err := w.Write(f.Names()); err != nil {
		return err
	}
	row := make([]string, f.Cols())
	for r := 0; r < f.Rows(); r++ {
		for c := range row {
			row[c] = ds.FormatCell(f.Column(c), r)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteAll writes a Frame to path ("-" for stdout). The file only appears
// once every row has been written.
func WriteAll(path string, f *ds.Frame, opt WriterOptions) error {
	return iox.WriteFile(path, func(w io.Writer) error { return Write(w, f, opt) })
}
