package profile

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetBorder(true)
	t.SetHeader(header)
	return t
}

// WriteSample renders the first n rows of f; nulls print as empty cells.
func WriteSample(w io.Writer, f *ds.Frame, n int) {
	if n > f.Rows() || n < 0 {
		n = f.Rows()
	}
	t := newTable(w, f.Names())
	row := make([]string, f.Cols())
	for r := 0; r < n; r++ {
		for i := range row {
			row[i] = ds.FormatCell(f.Column(i), r)
		}
		t.Append(row)
	}
	t.Render()
}

// WriteMissing renders the columns that have at least one null.
func WriteMissing(w io.Writer, ms []Missing) {
	t := newTable(w, []string{"column", "missing", "percent"})
	for _, m := range ms {
		if m.Nulls == 0 {
			continue
		}
		t.Append([]string{m.Column, fmt.Sprint(m.Nulls), fmt.Sprintf("%.1f%%", m.Percent)})
	}
	t.Render()
}
