// Package outliers finds and limits extreme numeric values.
package outliers

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

type Method int

const (
	// IQR flags values outside [Q1 - k*IQR, Q3 + k*IQR].
	IQR Method = iota
	// ZScore flags values with |x - mean| / stddev > k.
	ZScore
)

func (m Method) String() string {
	if m == ZScore {
		return "zscore"
	}
	return "iqr"
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "iqr":
		return IQR, nil
	case "zscore", "z":
		return ZScore, nil
	}
	return 0, fmt.Errorf("unknown outlier method %q (want iqr|zscore)", s)
}

// DefaultThreshold is k for both methods when none is given.
const DefaultThreshold = 3.0

type Summary struct {
	Column   string
	Checked  int
	Outliers int
	Lower    float64
	Upper    float64
}

func (s Summary) Percent() float64 {
	if s.Checked == 0 {
		return 0
	}
	return float64(s.Outliers) / float64(s.Checked) * 100
}

// Bounds returns the inclusive acceptance interval for vals under m.
// vals is sorted in place.
func Bounds(vals []float64, m Method, k float64) (lo, hi float64) {
	if m == ZScore {
		mean, sd := stat.MeanStdDev(vals, nil)
		if sd == 0 || math.IsNaN(sd) {
			return mean, mean
		}
		return mean - k*sd, mean + k*sd
	}
	sort.Float64s(vals)
	q1, q3 := Quantile(vals, 0.25), Quantile(vals, 0.75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}

// Quantile interpolates linearly between the closest ranks at
// position p*(n-1) of sorted (Hyndman-Fan type 7).
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Detect counts outliers per column and, with Flag set, adds a
// "<col>_outlier" bool column (null where the value is null). Columns that
// are missing, non-numeric or entirely null are skipped. Columns defaults
// to every numeric column.
type Detect struct {
	Columns   []string
	Method    Method
	Threshold float64
	Flag      bool
	Logger    *slog.Logger

	// Summaries holds one entry per column with at least one outlier,
	// in column order. Set by Apply.
	Summaries []Summary
}

func (t *Detect) Name() string { return "detect_outliers" }

func (t *Detect) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	k := t.Threshold
	if k <= 0 {
		k = DefaultThreshold
	}
	cols := t.Columns
	if len(cols) == 0 {
		for i := 0; i < f.Cols(); i++ {
			if c := f.Column(i); c.Kind().Numeric() {
				cols = append(cols, c.Name())
			}
		}
	}
	log := t.Logger
	if log == nil {
		log = slog.Default()
	}
	t.Summaries = t.Summaries[:0]
	for _, name := range cols {
		col, ok := f.ColumnByName(name)
		if !ok || !col.Kind().Numeric() {
			continue
		}
		vals := make([]float64, 0, col.Len())
		for i := 0; i < col.Len(); i++ {
			if v, ok := ds.Float(col, i); ok {
				vals = append(vals, v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		s := Summary{Column: name, Checked: len(vals)}
		s.Lower, s.Upper = Bounds(vals, t.Method, k)
		var flags *ds.BoolColumn
		if t.Flag {
			flags = ds.NewBoolColumn(name+"_outlier", col.Len())
		}
		for i := 0; i < col.Len(); i++ {
			v, ok := ds.Float(col, i)
			if !ok {
				continue
			}
			out := v < s.Lower || v > s.Upper
			if out {
				s.Outliers++
			}
			if flags != nil {
				flags.Set(i, out)
			}
		}
		if flags != nil {
			var err error
			if _, exists := f.ColumnByName(flags.Name()); exists {
				err = f.ReplaceColumn(flags)
			} else {
				err = f.AddColumn(flags)
			}
			if err != nil {
				return nil, fmt.Errorf("detect_outliers: %w", err)
			}
		}
		if s.Outliers > 0 {
			t.Summaries = append(t.Summaries, s)
			log.Info("outliers found", "column", name, "method", t.Method.String(), "count", s.Outliers,
				"percent", fmt.Sprintf("%.1f", s.Percent()))
		}
	}
	return f, nil
}
