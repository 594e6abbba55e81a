// Package ioutils holds file helpers shared by the format packages:
// transparent gzip, atomic output and the processed-data path convention.
package ioutils

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a reader.
// If the input appears to be gzip (by extension or magic), it wraps with gzip.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return maybeGzip(bufio.NewReader(os.Stdin), func() error { return nil })
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := maybeGzip(bufio.NewReader(f), f.Close)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rc, nil
}

func maybeGzip(br *bufio.Reader, closeFn func() error) (io.ReadCloser, error) {
	b, err := br.Peek(2)
	if err == nil && b[0] == 0x1f && b[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return closeFn() }}, nil
	}
	return readCloser{Reader: br, closeFn: closeFn}, nil
}

// AtomicFile buffers writes into a temp file next to the destination.
// Commit renames it into place; Close without Commit removes it, so a failed
// run never leaves partial output behind.
type AtomicFile struct {
	io.Writer
	f    *os.File
	bw   *bufio.Writer
	zw   *gzip.Writer
	path string
	done bool
}

// CreateAtomic creates the parent directory if needed. A ".gz" destination
// is gzip compressed.
func CreateAtomic(path string) (*AtomicFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, err
	}
	a := &AtomicFile{f: f, path: path, bw: bufio.NewWriter(f)}
	a.Writer = a.bw
	if strings.HasSuffix(path, ".gz") {
		a.zw = gzip.NewWriter(a.bw)
		a.Writer = a.zw
	}
	return a, nil
}

// File exposes the temp file for writers that need random access.
// Callers using it must not also write through the AtomicFile.
func (a *AtomicFile) File() *os.File { return a.f }

func (a *AtomicFile) Commit() error {
	if a.done {
		return nil
	}
	a.done = true
	err := a.flush()
	if cerr := a.f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(a.f.Name(), a.path)
	}
	if err != nil {
		_ = os.Remove(a.f.Name())
	}
	return err
}

func (a *AtomicFile) flush() error {
	if a.zw != nil {
		if err := a.zw.Close(); err != nil {
			return err
		}
	}
	return a.bw.Flush()
}

// Close discards the output unless Commit already succeeded.
func (a *AtomicFile) Close() error {
	if a.done {
		return nil
	}
	a.done = true
	_ = a.f.Close()
	return os.Remove(a.f.Name())
}

// CreateMaybeCompressed creates a file (or stdout if path is "-") and
// returns a writer. If the path ends in .gz, the writer is gzip compressed.
// File output is atomic: nothing appears at path until Close succeeds.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		bw := bufio.NewWriter(os.Stdout)
		return writeCloser{Writer: bw, closeFn: bw.Flush}, nil
	}
	a, err := CreateAtomic(path)
	if err != nil {
		return nil, err
	}
	return writeCloser{Writer: a, closeFn: a.Commit}, nil
}

// WriteFile runs fn against path ("-" for stdout). File output goes through
// CreateAtomic and is discarded when fn fails.
func WriteFile(path string, fn func(io.Writer) error) error {
	if path == "-" || path == "" {
		bw := bufio.NewWriter(os.Stdout)
		if err := fn(bw); err != nil {
			return err
		}
		return bw.Flush()
	}
	a, err := CreateAtomic(path)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	if err := fn(a); err != nil {
		return err
	}
	return a.Commit()
}

// ProcessedPath maps <dir>/<sub>/<stem>.<ext> to
// <dir>/processed-data/<stem>_processed.<ext>. A ".gz" suffix is kept after
// the inner extension.
func ProcessedPath(input string) string {
	base := filepath.Base(input)
	gz := ""
	if strings.HasSuffix(base, ".gz") {
		gz, base = ".gz", strings.TrimSuffix(base, ".gz")
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	root := filepath.Dir(filepath.Dir(input))
	return filepath.Join(root, "processed-data", stem+"_processed"+ext+gz)
}

// Format names the table format of path from its extension, ignoring ".gz".
func Format(path string) string {
	p := strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch filepath.Ext(p) {
	case ".jsonl", ".ndjson":
		return "jsonl"
	case ".parquet":
		return "parquet"
	}
	return "csv"
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error { return w.closeFn() }
