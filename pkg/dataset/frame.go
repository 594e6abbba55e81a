package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMissingColumn is wrapped by every structural error about an expected
// column that is absent from a frame.
var ErrMissingColumn = errors.New("missing column")

// TimeLayout is used whenever a time cell is rendered as text.
const TimeLayout = "2006-01-02T15:04:05Z07:00"

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Numeric reports whether values of this kind can be widened to float64.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	AppendNull()
	// Value returns the cell as a Go value, or nil when null.
	Value(i int) any
}

type BoolColumn struct {
	name  string
	data  []bool
	nulls []bool
}

func NewBoolColumn(name string, n int) *BoolColumn {
	return &BoolColumn{name: name, data: make([]bool, n), nulls: nullMask(n)}
}
func (c *BoolColumn) Name() string           { return c.name }
func (c *BoolColumn) Kind() Kind             { return KindBool }
func (c *BoolColumn) Len() int               { return len(c.data) }
func (c *BoolColumn) IsNull(i int) bool      { return c.nulls[i] }
func (c *BoolColumn) SetNull(i int)          { c.nulls[i] = true }
func (c *BoolColumn) Get(i int) (bool, bool) { return c.data[i], !c.nulls[i] }
func (c *BoolColumn) Set(i int, v bool)      { c.data[i] = v; c.nulls[i] = false }
func (c *BoolColumn) AppendNull()            { c.data = append(c.data, false); c.nulls = append(c.nulls, true) }
func (c *BoolColumn) Append(v bool)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *BoolColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

type IntColumn struct {
	name  string
	data  []int64
	nulls []bool
}

func NewIntColumn(name string, n int) *IntColumn {
	return &IntColumn{name: name, data: make([]int64, n), nulls: nullMask(n)}
}
func (c *IntColumn) Name() string            { return c.name }
func (c *IntColumn) Kind() Kind              { return KindInt }
func (c *IntColumn) Len() int                { return len(c.data) }
func (c *IntColumn) IsNull(i int) bool       { return c.nulls[i] }
func (c *IntColumn) SetNull(i int)           { c.nulls[i] = true }
func (c *IntColumn) Get(i int) (int64, bool) { return c.data[i], !c.nulls[i] }
func (c *IntColumn) Set(i int, v int64)      { c.data[i] = v; c.nulls[i] = false }
func (c *IntColumn) AppendNull()             { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *IntColumn) Append(v int64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *IntColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

type FloatColumn struct {
	name  string
	data  []float64
	nulls []bool
}

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{name: name, data: make([]float64, n), nulls: nullMask(n)}
}
func (c *FloatColumn) Name() string              { return c.name }
func (c *FloatColumn) Kind() Kind                { return KindFloat }
func (c *FloatColumn) Len() int                  { return len(c.data) }
func (c *FloatColumn) IsNull(i int) bool         { return c.nulls[i] }
func (c *FloatColumn) SetNull(i int)             { c.nulls[i] = true }
func (c *FloatColumn) Get(i int) (float64, bool) { return c.data[i], !c.nulls[i] }
func (c *FloatColumn) Set(i int, v float64)      { c.data[i] = v; c.nulls[i] = false }
func (c *FloatColumn) AppendNull()               { c.data = append(c.data, 0); c.nulls = append(c.nulls, true) }
func (c *FloatColumn) Append(v float64)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *FloatColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

type StringColumn struct {
	name  string
	data  []string
	nulls []bool
}

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{name: name, data: make([]string, n), nulls: nullMask(n)}
}
func (c *StringColumn) Name() string             { return c.name }
func (c *StringColumn) Kind() Kind               { return KindString }
func (c *StringColumn) Len() int                 { return len(c.data) }
func (c *StringColumn) IsNull(i int) bool        { return c.nulls[i] }
func (c *StringColumn) SetNull(i int)            { c.nulls[i] = true }
func (c *StringColumn) Get(i int) (string, bool) { return c.data[i], !c.nulls[i] }
func (c *StringColumn) Set(i int, v string)      { c.data[i] = v; c.nulls[i] = false }
func (c *StringColumn) AppendNull()              { c.data = append(c.data, ""); c.nulls = append(c.nulls, true) }
func (c *StringColumn) Append(v string)          { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }
func (c *StringColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

type TimeColumn struct {
	name  string
	data  []time.Time
	nulls []bool
}

func NewTimeColumn(name string, n int) *TimeColumn {
	return &TimeColumn{name: name, data: make([]time.Time, n), nulls: nullMask(n)}
}
func (c *TimeColumn) Name() string                { return c.name }
func (c *TimeColumn) Kind() Kind                  { return KindTime }
func (c *TimeColumn) Len() int                    { return len(c.data) }
func (c *TimeColumn) IsNull(i int) bool           { return c.nulls[i] }
func (c *TimeColumn) SetNull(i int)               { c.nulls[i] = true }
func (c *TimeColumn) Get(i int) (time.Time, bool) { return c.data[i], !c.nulls[i] }
func (c *TimeColumn) Set(i int, v time.Time)      { c.data[i] = v; c.nulls[i] = false }
func (c *TimeColumn) AppendNull() {
	c.data = append(c.data, time.Time{})
	c.nulls = append(c.nulls, true)
}
func (c *TimeColumn) Append(v time.Time) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}
func (c *TimeColumn) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

// nullMask returns n cells that all start out null, so a freshly sized
// column never reports zero values as observations.
func nullMask(n int) []bool {
	m := make([]bool, n)
	for i := range m {
		m[i] = true
	}
	return m
}

// NewColumn allocates an all-null column of the given kind.
func NewColumn(name string, k Kind, n int) Column {
	switch k {
	case KindBool:
		return NewBoolColumn(name, n)
	case KindInt:
		return NewIntColumn(name, n)
	case KindFloat:
		return NewFloatColumn(name, n)
	case KindString:
		return NewStringColumn(name, n)
	case KindTime:
		return NewTimeColumn(name, n)
	default:
		panic("invalid column kind")
	}
}

// FormatCell renders a cell the way the text writers do; null is "".
func FormatCell(c Column, i int) string {
	switch col := c.(type) {
	case *FloatColumn:
		if v, ok := col.Get(i); ok {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
	case *IntColumn:
		if v, ok := col.Get(i); ok {
			return strconv.FormatInt(v, 10)
		}
	case *BoolColumn:
		if v, ok := col.Get(i); ok {
			return strconv.FormatBool(v)
		}
	case *StringColumn:
		if v, ok := col.Get(i); ok {
			return v
		}
	case *TimeColumn:
		if v, ok := col.Get(i); ok {
			return v.Format(TimeLayout)
		}
	}
	return ""
}

// Float reads a numeric cell as float64. Non-numeric columns report false.
func Float(c Column, i int) (float64, bool) {
	switch col := c.(type) {
	case *FloatColumn:
		return col.Get(i)
	case *IntColumn:
		v, ok := col.Get(i)
		return float64(v), ok
	}
	return 0, false
}

// Compare orders cells i and j of one column. Nulls sort after every value.
func Compare(c Column, i, j int) int {
	ni, nj := c.IsNull(i), c.IsNull(j)
	switch {
	case ni && nj:
		return 0
	case ni:
		return 1
	case nj:
		return -1
	}
	switch col := c.(type) {
	case *TimeColumn:
		a, _ := col.Get(i)
		b, _ := col.Get(j)
		return a.Compare(b)
	case *BoolColumn:
		a, _ := col.Get(i)
		b, _ := col.Get(j)
		if a == b {
			return 0
		}
		if !a {
			return -1
		}
		return 1
	case *StringColumn:
		a, _ := col.Get(i)
		b, _ := col.Get(j)
		return strings.Compare(a, b)
	}
	a, _ := Float(c, i)
	b, _ := Float(c, j)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Frame is a columnar container for tabular data.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		f.cols[i] = NewColumn(cs.Name, cs.Type, 0)
		f.index[cs.Name] = i
	}
	return f
}

// FromColumns builds a frame around existing columns, which must share a length.
func FromColumns(cols ...Column) (*Frame, error) {
	f := NewFrame(Schema{})
	for _, c := range cols {
		if err := f.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (f *Frame) Schema() Schema  { return f.schema }
func (f *Frame) Rows() int       { return f.nrows }
func (f *Frame) Cols() int       { return len(f.cols) }
func (f *Frame) Names() []string { return f.schema.Names() }

// Column returns the i-th column in schema order.
func (f *Frame) Column(i int) Column { return f.cols[i] }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// MustColumn is ColumnByName with an ErrMissingColumn error instead of a flag.
func (f *Frame) MustColumn(name string) (Column, error) {
	c, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return c, nil
}

// Require checks that every named column exists.
func (f *Frame) Require(names ...string) error {
	for _, n := range names {
		if _, err := f.MustColumn(n); err != nil {
			return err
		}
	}
	return nil
}

// AddColumn appends a column. On a frame without columns it sets the row count.
func (f *Frame) AddColumn(c Column) error {
	if _, dup := f.index[c.Name()]; dup {
		return fmt.Errorf("duplicate column: %s", c.Name())
	}
	if len(f.cols) > 0 && c.Len() != f.nrows {
		return fmt.Errorf("column %s has %d rows, frame has %d", c.Name(), c.Len(), f.nrows)
	}
	if len(f.cols) == 0 {
		f.nrows = c.Len()
	}
	f.index[c.Name()] = len(f.cols)
	f.cols = append(f.cols, c)
	f.schema.Columns = append(f.schema.Columns, ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: true})
	return nil
}

// ReplaceColumn swaps the same-named column, possibly changing its kind.
func (f *Frame) ReplaceColumn(c Column) error {
	i, ok := f.index[c.Name()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingColumn, c.Name())
	}
	if c.Len() != f.nrows {
		return fmt.Errorf("column %s has %d rows, frame has %d", c.Name(), c.Len(), f.nrows)
	}
	f.cols[i] = c
	f.schema.Columns[i].Type = c.Kind()
	return nil
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.AppendNull()
	}
	f.nrows++
}

// Take returns a new frame holding copies of the given rows, in order.
func (f *Frame) Take(rows []int) *Frame {
	out := NewFrame(Schema{Columns: append([]ColumnSchema(nil), f.schema.Columns...)})
	for range rows {
		out.AppendNullRow()
	}
	for c, src := range f.cols {
		dst := out.cols[c]
		for r, i := range rows {
			if !src.IsNull(i) {
				_ = out.setColumnCell(dst, r, src.Value(i))
			}
		}
	}
	return out
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	rows := make([]int, f.nrows)
	for i := range rows {
		rows[i] = i
	}
	return f.Take(rows)
}

// Select returns a deep copy restricted to, and ordered by, the given columns.
func (f *Frame) Select(names ...string) (*Frame, error) {
	if err := f.Require(names...); err != nil {
		return nil, err
	}
	all := f.Clone()
	out := NewFrame(Schema{})
	for _, n := range names {
		c, _ := all.ColumnByName(n)
		if err := out.AddColumn(c); err != nil {
			return nil, err
		}
	}
	out.nrows = f.nrows
	return out, nil
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("unknown column: %s", name)
	}
	return f.setColumnCell(f.cols[i], row, v)
}

func (f *Frame) setColumnCell(c Column, row int, v any) error {
	name := c.Name()
	if v == nil {
		c.SetNull(row)
		return nil
	}
	switch col := c.(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool", name)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64", name)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64", name)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string", name)
		}
		col.Set(row, s)
	case *TimeColumn:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("column %s expects time.Time", name)
		}
		col.Set(row, t)
	default:
		return fmt.Errorf("unknown column kind")
	}
	return nil
}
