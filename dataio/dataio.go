// Package dataio loads and saves whole frames, picking CSV, JSON Lines or
// Parquet from the file extension.
package dataio

import (
	"fmt"
	"log/slog"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	"github.com/wdm0006/socioprep/pkg/io/csvio"
	iox "github.com/wdm0006/socioprep/pkg/io/ioutils"
	"github.com/wdm0006/socioprep/pkg/io/jsonlio"
	"github.com/wdm0006/socioprep/pkg/io/parquetio"
)

type Options struct {
	// Format overrides the extension: "csv", "jsonl" or "parquet".
	Format    string
	Delimiter rune
	// Raw keeps text columns as text (CSV and JSONL only).
	Raw    bool
	Logger *slog.Logger
}

func (o Options) format(path string) (string, error) {
	f := o.Format
	if f == "" {
		f = iox.Format(path)
	}
	switch f {
	case "csv", "jsonl", "parquet":
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q (want csv|jsonl|parquet)", f)
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Load reads path into memory. CSV record length mismatches are logged
// as warnings, not returned.
func Load(path string, opt Options) (*ds.Frame, error) {
	format, err := opt.format(path)
	if err != nil {
		return nil, err
	}
	log := opt.logger()
	var f *ds.Frame
	switch format {
	case "csv":
		var warn string
		f, warn, err = csvio.ReadFile(path, csvio.ReaderOptions{Delimiter: opt.Delimiter, Raw: opt.Raw})
		if warn != "" {
			log.Warn("malformed csv records", "path", path, "detail", warn)
		}
	case "jsonl":
		f, err = jsonlio.ReadFile(path, jsonlio.ReaderOptions{Raw: opt.Raw})
	case "parquet":
		f, err = parquetio.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	log.Info("data loaded", "path", path, "format", format, "rows", f.Rows(), "cols", f.Cols())
	return f, nil
}

// Save writes f to path atomically. "-" writes CSV or JSONL to stdout.
func Save(path string, f *ds.Frame, opt Options) error {
	format, err := opt.format(path)
	if err != nil {
		return err
	}
	switch format {
	case "csv":
		err = csvio.WriteAll(path, f, csvio.WriterOptions{Delimiter: opt.Delimiter})
	case "jsonl":
		err = jsonlio.WriteAll(path, f)
	case "parquet":
		if path == "-" {
			return fmt.Errorf("parquet output needs a file path")
		}
		err = parquetio.WriteAll(path, f)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	opt.logger().Info("data saved", "path", path, "format", format, "rows", f.Rows())
	return nil
}
