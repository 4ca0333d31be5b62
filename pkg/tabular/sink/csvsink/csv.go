// Package csvsink writes export tables as delimited text: a single file for
// flat exports, or one file per table for multi-table exports.
package csvsink

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/openrow/tabular/pkg/tabular/record"
)

// DefaultNullValue is written for absent values.
const DefaultNullValue = "n/a"

// Writer streams one table to a single CSV stream.
type Writer struct {
	w       *csv.Writer
	closer  io.Closer
	null    string
	columns []string
}

// NewWriter wraps an io.Writer. The caller keeps ownership of the underlying
// stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w), null: DefaultNullValue}
}

// Create opens path for writing and returns a Writer that closes the file on
// Close.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := NewWriter(f)
	w.closer = f
	return w, nil
}

// SetNullValue overrides the representation of absent values.
func (w *Writer) SetNullValue(null string) { w.null = null }

// WriteTable implements sink.TableSink. The table name is ignored; every
// batch is appended to the same stream.
func (w *Writer) WriteTable(name string, columns []string, rows []record.Row, header bool) error {
	if header {
		w.columns = append([]string(nil), columns...)
		if err := w.w.Write(columns); err != nil {
			return err
		}
	}
	for _, row := range rows {
		cells := make([]string, len(w.columns))
		for i, col := range w.columns {
			cells[i] = formatCell(row[col], w.null)
		}
		if err := w.w.Write(cells); err != nil {
			return err
		}
	}
	w.w.Flush()
	return w.w.Error()
}

// Close flushes the stream and closes the underlying file if this Writer
// opened it.
func (w *Writer) Close() error {
	w.w.Flush()
	if err := w.w.Error(); err != nil {
		return err
	}
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// Dir writes one CSV file per table into a directory, created lazily on the
// first batch for each table.
type Dir struct {
	dir     string
	null    string
	writers map[string]*Writer
}

// NewDir creates the directory if needed and returns a per-table sink.
func NewDir(dir string) (*Dir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Dir{dir: dir, null: DefaultNullValue, writers: map[string]*Writer{}}, nil
}

// SetNullValue overrides the representation of absent values for all tables.
func (d *Dir) SetNullValue(null string) { d.null = null }

// WriteTable implements sink.TableSink.
func (d *Dir) WriteTable(name string, columns []string, rows []record.Row, header bool) error {
	w, ok := d.writers[name]
	if !ok {
		var err error
		w, err = Create(filepath.Join(d.dir, name+".csv"))
		if err != nil {
			return fmt.Errorf("create table file %q: %w", name, err)
		}
		w.SetNullValue(d.null)
		d.writers[name] = w
	}
	return w.WriteTable(name, columns, rows, header)
}

// Close closes every table file, returning the first error encountered.
func (d *Dir) Close() error {
	var firstErr error
	for _, w := range d.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func formatCell(value any, null string) string {
	switch v := value.(type) {
	case nil:
		return null
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}
