// Package standardize rewrites text cells in place. Non-string and missing
// columns are skipped.
package standardize

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

// rewrite applies fn to every non-null cell of the named string columns.
func rewrite(f *ds.Frame, columns []string, fn func(string) string) {
	for _, name := range columns {
		col, ok := f.ColumnByName(name)
		if !ok {
			continue
		}
		c, ok := col.(*ds.StringColumn)
		if !ok {
			continue
		}
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				c.Set(i, fn(v))
			}
		}
	}
}

// Trim strips surrounding whitespace. Identifier columns go through it
// before any join so "Abra " and "Abra" are one key.
type Trim struct{ Columns []string }

func (t *Trim) Name() string { return "trim" }

func (t *Trim) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	rewrite(f, t.Columns, strings.TrimSpace)
	return f, nil
}

type Lower struct{ Columns []string }

func (t *Lower) Name() string { return "lower" }

func (t *Lower) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	rewrite(f, t.Columns, strings.ToLower)
	return f, nil
}

type RegexReplace struct {
	Columns []string
	Pattern string
	Replace string
	re      *regexp.Regexp
}

func (t *RegexReplace) Name() string { return "regex_replace" }

func (t *RegexReplace) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	if t.re == nil {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return nil, fmt.Errorf("regex_replace: %w", err)
		}
		t.re = re
	}
	rewrite(f, t.Columns, func(s string) string { return t.re.ReplaceAllString(s, t.Replace) })
	return f, nil
}

// MapValues replaces exact matches; unmapped values are kept.
type MapValues struct {
	Columns []string
	Map     map[string]string
}

func (t *MapValues) Name() string { return "map_values" }

func (t *MapValues) Apply(ctx context.Context, f *ds.Frame) (*ds.Frame, error) {
	rewrite(f, t.Columns, func(s string) string {
		if nv, ok := t.Map[s]; ok {
			return nv
		}
		return s
	})
	return f, nil
}
