package profile

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// Missing is the null share of one column.
type Missing struct {
	Column  string
	Nulls   int
	Percent float64
}

// MissingByColumn lists every column's nulls, highest share first; ties keep
// column order.
func MissingByColumn(f *ds.Frame) []Missing {
	out := make([]Missing, 0, f.Cols())
	for i := 0; i < f.Cols(); i++ {
		c := f.Column(i)
		m := Missing{Column: c.Name()}
		for r := 0; r < c.Len(); r++ {
			if c.IsNull(r) {
				m.Nulls++
			}
		}
		if f.Rows() > 0 {
			m.Percent = float64(m.Nulls) / float64(f.Rows()) * 100
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percent > out[j].Percent })
	return out
}

// EstimateBytes approximates the in-memory size of f: fixed-width cells,
// string payloads and one byte of null mask per cell.
func EstimateBytes(f *ds.Frame) uint64 {
	var n uint64
	for i := 0; i < f.Cols(); i++ {
		c := f.Column(i)
		rows := uint64(c.Len())
		n += rows // null mask
		switch col := c.(type) {
		case *ds.BoolColumn:
			n += rows
		case *ds.IntColumn, *ds.FloatColumn:
			n += 8 * rows
		case *ds.TimeColumn:
			n += 24 * rows
		case *ds.StringColumn:
			n += 16 * rows
			for r := 0; r < col.Len(); r++ {
				if v, ok := col.Get(r); ok {
					n += uint64(len(v))
				}
			}
		}
	}
	return n
}

type OverviewOptions struct {
	// GeoColumns are reported with their distinct counts when present.
	GeoColumns []string
	YearColumn string
	DateColumn string
}

type Count struct {
	Column   string
	Distinct int
}

type Overview struct {
	Rows, Cols  int
	MemoryBytes uint64
	Geographic  []Count
	Years       []string
	DateMin     string
	DateMax     string
	Missing     []Missing
	Over50      int
	Over90      int
}

func NewOverview(f *ds.Frame, opt OverviewOptions) Overview {
	o := Overview{Rows: f.Rows(), Cols: f.Cols(), MemoryBytes: EstimateBytes(f)}
	for _, name := range opt.GeoColumns {
		if c, ok := f.ColumnByName(name); ok {
			o.Geographic = append(o.Geographic, Count{Column: name, Distinct: len(distinct(c))})
		}
	}
	if c, ok := f.ColumnByName(opt.YearColumn); ok {
		rows := distinct(c)
		sort.Slice(rows, func(i, j int) bool { return ds.Compare(c, rows[i], rows[j]) < 0 })
		for _, r := range rows {
			o.Years = append(o.Years, ds.FormatCell(c, r))
		}
	}
	if c, ok := f.ColumnByName(opt.DateColumn); ok {
		lo, hi := -1, -1
		for r := 0; r < c.Len(); r++ {
			if c.IsNull(r) {
				continue
			}
			if lo < 0 || ds.Compare(c, r, lo) < 0 {
				lo = r
			}
			if hi < 0 || ds.Compare(c, r, hi) > 0 {
				hi = r
			}
		}
		if lo >= 0 {
			o.DateMin, o.DateMax = ds.FormatCell(c, lo), ds.FormatCell(c, hi)
		}
	}
	o.Missing = MissingByColumn(f)
	for _, m := range o.Missing {
		if m.Percent > 50 {
			o.Over50++
		}
		if m.Percent > 90 {
			o.Over90++
		}
	}
	return o
}

// distinct returns the first row index of each distinct non-null value.
func distinct(c ds.Column) []int {
	seen := map[string]bool{}
	var rows []int
	for r := 0; r < c.Len(); r++ {
		if c.IsNull(r) {
			continue
		}
		k := ds.FormatCell(c, r)
		if !seen[k] {
			seen[k] = true
			rows = append(rows, r)
		}
	}
	return rows
}

func (o Overview) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Shape: (%d, %d)\n", o.Rows, o.Cols)
	fmt.Fprintf(&b, "Memory usage: %s\n", humanize.Bytes(o.MemoryBytes))
	if len(o.Geographic) > 0 {
		b.WriteString("Geographic coverage:\n")
		for _, g := range o.Geographic {
			fmt.Fprintf(&b, "  - %s: %s\n", g.Column, humanize.Comma(int64(g.Distinct)))
		}
	}
	if len(o.Years) > 0 || o.DateMin != "" {
		b.WriteString("Temporal coverage:\n")
		if len(o.Years) > 0 {
			fmt.Fprintf(&b, "  - Years: %s\n", strings.Join(o.Years, ", "))
		}
		if o.DateMin != "" {
			fmt.Fprintf(&b, "  - Date range: %s to %s\n", o.DateMin, o.DateMax)
		}
	}
	fmt.Fprintf(&b, "Columns with >50%% missing: %d\n", o.Over50)
	fmt.Fprintf(&b, "Columns with >90%% missing: %d\n", o.Over90)
	_, err := io.WriteString(w, b.String())
	return err
}
