// Package profile summarizes frames for console reports: per-column
// statistics, dataset overviews and missing-value tables.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

func (s *NumStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

type TextStats struct {
	Count int            `json:"count"`
	Nulls int            `json:"nulls"`
	Freqs map[string]int `json:"top,omitempty"`
}

type ColumnProfile struct {
	Name string
	Kind ds.Kind
	Num  *NumStats
	Bool *BoolStats
	Text *TextStats
}

// Collector accumulates statistics over one or more frames sharing a schema.
// Columns not present in the schema given to NewCollector are ignored.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

func NewCollector(schema ds.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case ds.KindFloat, ds.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case ds.KindBool:
			cp.Bool = &BoolStats{}
		default:
			cp.Text = &TextStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

func (c *Collector) ConsumeFrame(f *ds.Frame) {
	for ci := 0; ci < f.Cols(); ci++ {
		col := f.Column(ci)
		idx, ok := c.index[col.Name()]
		if !ok || c.cols[idx].Kind != col.Kind() {
			continue
		}
		cp := &c.cols[idx]
		for i := 0; i < col.Len(); i++ {
			switch {
			case cp.Num != nil:
				v, ok := ds.Float(col, i)
				if !ok {
					cp.Num.Nulls++
					continue
				}
				cp.Num.Count++
				cp.Num.Min = math.Min(cp.Num.Min, v)
				cp.Num.Max = math.Max(cp.Num.Max, v)
				cp.Num.Sum += v
			case cp.Bool != nil:
				v, ok := col.(*ds.BoolColumn).Get(i)
				if !ok {
					cp.Bool.Nulls++
					continue
				}
				cp.Bool.Count++
				if v {
					cp.Bool.True++
				} else {
					cp.Bool.False++
				}
			default:
				if col.IsNull(i) {
					cp.Text.Nulls++
					continue
				}
				cp.Text.Count++
				if c.topK > 0 {
					cp.Text.Freqs[ds.FormatCell(col, i)]++
				}
			}
		}
	}
}

func (c *Collector) Columns() []ColumnProfile { return c.cols }

type freq struct {
	Value string
	Count int
}

// top returns the k most frequent values, ties broken by value.
func top(m map[string]int, k int) []freq {
	arr := make([]freq, 0, len(m))
	for v, n := range m {
		arr = append(arr, freq{v, n})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].Count != arr[j].Count {
			return arr[i].Count > arr[j].Count
		}
		return arr[i].Value < arr[j].Value
	})
	if k > 0 && k < len(arr) {
		arr = arr[:k]
	}
	return arr
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			if cp.Num.Count == 0 {
				fmt.Fprintf(&b, "count=0 nulls=%d\n", cp.Num.Nulls)
				continue
			}
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Text.Count, cp.Text.Nulls)
			for _, fr := range top(cp.Text.Freqs, c.topK) {
				fmt.Fprintf(&b, "  * %q: %d\n", fr.Value, fr.Count)
			}
		}
	}
	return b.String()
}

type JSONProfile struct {
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name string     `json:"name"`
	Kind string     `json:"kind"`
	Num  *NumStats  `json:"num,omitempty"`
	Bool *BoolStats `json:"bool,omitempty"`
	Text *TextStats `json:"text,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Columns: make([]JSONColumn, 0, len(c.cols))}
	for _, cp := range c.cols {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String(), Num: cp.Num, Bool: cp.Bool}
		if cp.Text != nil {
			t := &TextStats{Count: cp.Text.Count, Nulls: cp.Text.Nulls}
			if fs := top(cp.Text.Freqs, c.topK); len(fs) > 0 {
				t.Freqs = make(map[string]int, len(fs))
				for _, fr := range fs {
					t.Freqs[fr.Value] = fr.Count
				}
			}
			jc.Text = t
		}
		if jc.Num != nil && jc.Num.Count == 0 {
			// +Inf/-Inf do not encode as JSON
			jc.Num = &NumStats{Nulls: cp.Num.Nulls}
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}
