// Package golearn converts frames to and from golearn DenseInstances so a
// processed grid can feed a model directly.
package golearn

import (
	"fmt"
	"math"

	"github.com/sjwhitworth/golearn/base"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

type Options struct {
	// Columns selects and orders the exported columns; empty means all.
	Columns []string
	// ClassColumn, when set, becomes the class attribute.
	ClassColumn string
}

// ToDenseInstances converts numeric columns to float attributes (null as
// NaN) and every other column to a categorical attribute (null as "").
func ToDenseInstances(f *ds.Frame, opt Options) (*base.DenseInstances, error) {
	names := opt.Columns
	if len(names) == 0 {
		names = f.Names()
	}
	cols := make([]ds.Column, len(names))
	attrs := make([]base.Attribute, len(names))
	for i, name := range names {
		c, err := f.MustColumn(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
		if c.Kind().Numeric() {
			attrs[i] = base.NewFloatAttribute(name)
		} else {
			attrs[i] = base.NewCategoricalAttribute()
			attrs[i].SetName(name)
		}
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if opt.ClassColumn != "" {
		found := false
		for i, name := range names {
			if name == opt.ClassColumn {
				if err := inst.AddClassAttribute(attrs[i]); err != nil {
					return nil, err
				}
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("class column %s: %w", opt.ClassColumn, ds.ErrMissingColumn)
		}
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}
	for r := 0; r < f.Rows(); r++ {
		for c, col := range cols {
			if col.Kind().Numeric() {
				v, ok := ds.Float(col, r)
				if !ok {
					v = math.NaN()
				}
				inst.Set(specs[c], r, base.PackFloatToBytes(v))
				continue
			}
			inst.Set(specs[c], r, attrs[c].GetSysValFromString(ds.FormatCell(col, r)))
		}
	}
	return inst, nil
}

// FromDenseInstances is the inverse of ToDenseInstances: float attributes
// become float columns with NaN as null, the rest string columns with ""
// as null.
func FromDenseInstances(inst *base.DenseInstances) (*ds.Frame, error) {
	attrs := inst.AllAttributes()
	schema := ds.Schema{Columns: make([]ds.ColumnSchema, len(attrs))}
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		k := ds.KindString
		if a.GetType() == base.Float64Type {
			k = ds.KindFloat
		}
		schema.Columns[i] = ds.ColumnSchema{Name: a.GetName(), Type: k, Nullable: true}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	f := ds.NewFrame(schema)
	_, nrows := inst.Size()
	for r := 0; r < nrows; r++ {
		f.AppendNullRow()
		for c, cs := range schema.Columns {
			raw := inst.Get(specs[c], r)
			if cs.Type == ds.KindFloat {
				if v := base.UnpackBytesToFloat(raw); !math.IsNaN(v) {
					_ = f.SetCell(r, cs.Name, v)
				}
				continue
			}
			if v := specs[c].GetAttribute().GetStringFromSysVal(raw); v != "" {
				_ = f.SetCell(r, cs.Name, v)
			}
		}
	}
	return f, nil
}
