// Package sink defines the output contract the export drivers write to.
package sink

import "github.com/openrow/tabular/pkg/tabular/record"

// TableSink receives ordered batches of rows for named tables and owns their
// physical encoding. The header flag is set only on the first batch written
// for a table; drivers never send empty row batches.
type TableSink interface {
	WriteTable(name string, columns []string, rows []record.Row, header bool) error
	Close() error
}
