// Package csvio reads and writes frames as delimited text.
package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	iox "github.com/wdm0006/socioprep/pkg/io/ioutils"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records
	// Raw reads every column as text and leaves parsing to later steps.
	// Numbers with thousands separators need this to survive loading.
	Raw bool
}

type Reader struct {
	r   *csv.Reader
	opt ReaderOptions
	buf [][]string
	// repair/warning counters
	shortRecords int
	longRecords  int
}

// Open opens a CSV file (optionally gzip compressed, "-" for stdin). The
// returned closer releases the underlying file.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	br := bufio.NewReader(rc)
	if opt.Delimiter == 0 {
		sample, _ := br.Peek(4096)
		opt.Delimiter = sniffDelimiter(sample)
	}
	return NewReaderFrom(br, opt), rc, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	rr.LazyQuotes = true
	return &Reader{r: rr, opt: opt}
}

// InferSchema reads header (if present) and samples rows to determine column kinds.
func (r *Reader) InferSchema() (ds.Schema, []string, error) {
	var names []string
	rec, err := r.r.Read()
	if err != nil {
		return ds.Schema{}, nil, fmt.Errorf("csv header: %w", err)
	}
	if r.opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		}
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
		rec = nil
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	var sample [][]string
	if rec != nil {
		sample = append(sample, rec)
	}
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(sample) < max {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ds.Schema{}, nil, err
		}
		sample = append(sample, rr)
	}

	kinds := make([]ds.Kind, len(names))
	for i := range kinds {
		kinds[i] = ds.KindString
	}
	if !r.opt.Raw {
		kinds = inferKinds(sample, len(names))
	}
	schema := ds.Schema{Columns: make([]ds.ColumnSchema, len(names))}
	seen := map[string]bool{}
	for i := range names {
		if seen[names[i]] {
			return ds.Schema{}, nil, fmt.Errorf("csv header: duplicate column %q", names[i])
		}
		seen[names[i]] = true
		schema.Columns[i] = ds.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}
	// retain sampled rows for subsequent ReadAll
	r.buf = append(r.buf, sample...)
	return schema, names, nil
}

// ReadAll loads the rest of the CSV into a Frame. Cells that do not parse
// as the column kind become null.
func (r *Reader) ReadAll(schema ds.Schema) (*ds.Frame, error) {
	f := ds.NewFrame(schema)
	for _, rec := range r.buf {
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	r.buf = nil
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (r *Reader) appendRecord(f *ds.Frame, rec []string) error {
	cols := f.Schema().Columns
	switch {
	case len(rec) > len(cols):
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record at row %d: need %d fields, got %d", f.Rows()+1, len(cols), len(rec))
		}
	case len(rec) < len(cols):
		r.shortRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv short record at row %d: need %d fields, got %d", f.Rows()+1, len(cols), len(rec))
		}
	}
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range cols {
		if i >= len(rec) {
			break
		}
		val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		if val == "" {
			continue
		}
		switch cs.Type {
		case ds.KindFloat:
			if x, err := strconv.ParseFloat(val, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case ds.KindInt:
			if x, err := strconv.ParseInt(val, 10, 64); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		case ds.KindBool:
			if x, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
				_ = f.SetCell(row, cs.Name, x)
			}
		default:
			_ = f.SetCell(row, cs.Name, val)
		}
	}
	return nil
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// inferKinds picks int, float or bool only when every non-empty sampled
// value fits; anything else stays string so no cell is lost at load time.
func inferKinds(rows [][]string, ncol int) []ds.Kind {
	kinds := make([]ds.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, boolean, other := 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			switch {
			case v == "":
			case numre.MatchString(v):
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
			case strings.EqualFold(v, "true") || strings.EqualFold(v, "false"):
				boolean++
			default:
				other++
			}
		}
		switch {
		case other > 0 || (num > 0 && boolean > 0) || num+boolean == 0:
			kinds[c] = ds.KindString
		case boolean > 0:
			kinds[c] = ds.KindBool
		case integer == num:
			kinds[c] = ds.KindInt
		default:
			kinds[c] = ds.KindFloat
		}
	}
	return kinds
}

// sniffDelimiter counts candidate separators in the first line of sample.
func sniffDelimiter(sample []byte) rune {
	if i := strings.IndexByte(string(sample), '\n'); i >= 0 {
		sample = sample[:i]
	}
	best, bestCount := byte(','), 0
	for _, c := range []byte{',', '\t', ';', '|'} {
		cnt := 0
		inQuote := false
		for _, b := range sample {
			switch {
			case b == '"':
				inQuote = !inQuote
			case b == c && !inQuote:
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount, best = cnt, c
		}
	}
	return rune(best)
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	if r.shortRecords == 0 && r.longRecords == 0 {
		return ""
	}
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}

// ReadFile opens, infers and loads path in one go. The header is required.
func ReadFile(path string, opt ReaderOptions) (*ds.Frame, string, error) {
	opt.HasHeader = true
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = c.Close() }()
	schema, _, err := r.InferSchema()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	f, err := r.ReadAll(schema)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return f, r.Warnings(), nil
}
