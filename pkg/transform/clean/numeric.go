// Package clean normalizes textual numbers into typed numeric columns.
package clean

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// Numeric converts every column except IDColumns to float64 and every
// IntColumns entry to int64. Unparseable or non-finite floats become null;
// an int column that cannot be coerced is an error because it is used as a
// join key. Apply replaces the columns of the frame it is given and returns
// that same frame.
type Numeric struct {
	IDColumns  []string
	IntColumns []string // default ["Year"]
	Separators []string // default [","]
}

func (t *Numeric) Name() string { return "clean_numeric" }

func (t *Numeric) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	ints := t.IntColumns
	if ints == nil {
		ints = []string{"Year"}
	}
	seps := t.Separators
	if seps == nil {
		seps = []string{","}
	}
	if err := f.Require(t.IDColumns...); err != nil {
		return nil, fmt.Errorf("clean: identifier %w", err)
	}
	if err := f.Require(ints...); err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}
	skip := make(map[string]bool, len(t.IDColumns))
	for _, n := range t.IDColumns {
		skip[n] = true
	}
	isInt := make(map[string]bool, len(ints))
	for _, n := range ints {
		isInt[n] = true
	}

	for i := 0; i < f.Cols(); i++ {
		c := f.Column(i)
		switch {
		case skip[c.Name()]:
			continue
		case isInt[c.Name()]:
			nc, err := ToIntStrict(c, seps)
			if err != nil {
				return nil, err
			}
			if err := f.ReplaceColumn(nc); err != nil {
				return nil, err
			}
		default:
			if err := f.ReplaceColumn(ToFloat(c, seps)); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// StripSeparators removes every separator and surrounding whitespace.
func StripSeparators(s string, seps []string) string {
	for _, sep := range seps {
		s = strings.ReplaceAll(s, sep, "")
	}
	return strings.TrimSpace(s)
}

// ParseFloat parses a textual number after stripping separators. NaN and
// infinities are rejected.
func ParseFloat(s string, seps []string) (float64, bool) {
	v := StripSeparators(s, seps)
	if v == "" {
		return 0, false
	}
	x, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}

// ToFloat returns a float copy of c. Cells that do not parse, and NaN or
// infinite values, become null.
func ToFloat(c ds.Column, seps []string) *ds.FloatColumn {
	out := ds.NewFloatColumn(c.Name(), c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		if v, ok := ds.Float(c, i); ok {
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				out.Set(i, v)
			}
			continue
		}
		if sc, ok := c.(*ds.StringColumn); ok {
			s, _ := sc.Get(i)
			if v, ok := ParseFloat(s, seps); ok {
				out.Set(i, v)
			}
		}
	}
	return out
}

// ToIntStrict returns an int copy of c and fails on the first null,
// unparseable or fractional cell.
func ToIntStrict(c ds.Column, seps []string) (*ds.IntColumn, error) {
	if ic, ok := c.(*ds.IntColumn); ok {
		for i := 0; i < ic.Len(); i++ {
			if ic.IsNull(i) {
				return nil, fmt.Errorf("clean: column %s row %d: missing integer value", c.Name(), i)
			}
		}
		return ic, nil
	}
	out := ds.NewIntColumn(c.Name(), c.Len())
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			return nil, fmt.Errorf("clean: column %s row %d: missing integer value", c.Name(), i)
		}
		v, ok := ds.Float(c, i)
		if !ok {
			v, ok = ParseFloat(ds.FormatCell(c, i), seps)
		}
		if !ok || math.IsInf(v, 0) || v != math.Trunc(v) {
			return nil, fmt.Errorf("clean: column %s row %d: %q is not an integer", c.Name(), i, ds.FormatCell(c, i))
		}
		out.Set(i, int64(v))
	}
	return out, nil
}
