// Package memsink captures sink writes in memory for tests.
package memsink

import "github.com/openrow/tabular/pkg/tabular/record"

// Write records one WriteTable call.
type Write struct {
	Name    string
	Columns []string
	Rows    []record.Row
	Header  bool
}

// Sink is an in-memory implementation of sink.TableSink.
type Sink struct {
	Writes []Write
	Closed bool
}

// New creates an empty capture sink.
func New() *Sink { return &Sink{} }

// WriteTable implements sink.TableSink.
func (s *Sink) WriteTable(name string, columns []string, rows []record.Row, header bool) error {
	s.Writes = append(s.Writes, Write{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    rows,
		Header:  header,
	})
	return nil
}

// Close implements sink.TableSink.
func (s *Sink) Close() error {
	s.Closed = true
	return nil
}

// TableRows returns all rows written for a table across batches.
func (s *Sink) TableRows(name string) []record.Row {
	var rows []record.Row
	for _, w := range s.Writes {
		if w.Name == name {
			rows = append(rows, w.Rows...)
		}
	}
	return rows
}
