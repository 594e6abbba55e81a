// Package jsonlio reads and writes frames as one JSON object per line.
package jsonlio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	iox "github.com/wdm0006/socioprep/pkg/io/ioutils"
)

type ReaderOptions struct {
	SampleRows int
	// Raw reads every column as text, as csvio does.
	Raw bool
}

type Reader struct {
	dec  *json.Decoder
	opt  ReaderOptions
	buf  []map[string]any
	keys []string
}

// Open opens path (gzip is detected). The returned closer releases the file.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReaderFrom(rc, opt), rc, nil
}

func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	return &Reader{dec: json.NewDecoder(r), opt: opt}
}

// next decodes one object and appends unseen keys in document order.
func (r *Reader) next(seen map[string]bool) (map[string]any, error) {
	var raw json.RawMessage
	if err := r.dec.Decode(&raw); err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("jsonl: %w", err)
	}
	if seen == nil {
		return m, nil
	}
	kd := json.NewDecoder(bytes.NewReader(raw))
	if _, err := kd.Token(); err != nil { // {
		return nil, err
	}
	for kd.More() {
		tok, err := kd.Token()
		if err != nil {
			return nil, err
		}
		k := tok.(string)
		if !seen[k] {
			seen[k] = true
			r.keys = append(r.keys, k)
		}
		var skip json.RawMessage
		if err := kd.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// InferSchema samples rows; columns appear in the order keys are first seen.
func (r *Reader) InferSchema() (ds.Schema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	seen := map[string]bool{}
	for len(r.buf) < max {
		m, err := r.next(seen)
		if err == io.EOF {
			break
		}
		if err != nil {
			return ds.Schema{}, err
		}
		r.buf = append(r.buf, m)
	}
	schema := ds.Schema{Columns: make([]ds.ColumnSchema, len(r.keys))}
	kinds := inferKinds(r.buf, r.keys)
	for i, k := range r.keys {
		if r.opt.Raw {
			kinds[i] = ds.KindString
		}
		schema.Columns[i] = ds.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	return schema, nil
}

// ReadAll loads the rest of the stream. Keys outside schema are ignored.
func (r *Reader) ReadAll(schema ds.Schema) (*ds.Frame, error) {
	f := ds.NewFrame(schema)
	for _, m := range r.buf {
		setRowFromMap(f, m)
	}
	r.buf = nil
	for {
		m, err := r.next(nil)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		setRowFromMap(f, m)
	}
	return f, nil
}

func setRowFromMap(f *ds.Frame, m map[string]any) {
	f.AppendNullRow()
	row := f.Rows() - 1
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		s, isStr := v.(string)
		if isStr {
			s = strings.TrimSpace(s)
		}
		switch cs.Type {
		case ds.KindFloat:
			switch t := v.(type) {
			case float64:
				_ = f.SetCell(row, cs.Name, t)
			case string:
				if x, err := strconv.ParseFloat(s, 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case ds.KindInt:
			switch t := v.(type) {
			case float64:
				if t == float64(int64(t)) {
					_ = f.SetCell(row, cs.Name, int64(t))
				}
			case string:
				if x, err := strconv.ParseInt(s, 10, 64); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		case ds.KindBool:
			switch t := v.(type) {
			case bool:
				_ = f.SetCell(row, cs.Name, t)
			case string:
				if x, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
					_ = f.SetCell(row, cs.Name, x)
				}
			}
		default:
			switch t := v.(type) {
			case string:
				if t != "" {
					_ = f.SetCell(row, cs.Name, t)
				}
			case float64:
				_ = f.SetCell(row, cs.Name, strconv.FormatFloat(t, 'g', -1, 64))
			default:
				b, _ := json.Marshal(t)
				_ = f.SetCell(row, cs.Name, string(b))
			}
		}
	}
}

func inferKinds(sample []map[string]any, keys []string) []ds.Kind {
	kinds := make([]ds.Kind, len(keys))
	for i, k := range keys {
		nNum, nInt, nBool, nOther := 0, 0, 0, 0
		for _, m := range sample {
			switch t := m[k].(type) {
			case nil:
			case float64:
				nNum++
				if float64(int64(t)) == t {
					nInt++
				}
			case bool:
				nBool++
			default:
				nOther++
			}
		}
		switch {
		case nOther > 0 || (nNum > 0 && nBool > 0) || nNum+nBool == 0:
			kinds[i] = ds.KindString
		case nBool > 0:
			kinds[i] = ds.KindBool
		case nInt == nNum:
			kinds[i] = ds.KindInt
		default:
			kinds[i] = ds.KindFloat
		}
	}
	return kinds
}

// ReadFile opens, infers and loads path in one go.
func ReadFile(path string, opt ReaderOptions) (*ds.Frame, error) {
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f, err := r.ReadAll(schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
