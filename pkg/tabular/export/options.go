package export

import (
	"strings"
	"time"
)

// Column group delimiters.
const (
	DefaultGroupDelimiter = "/"
	GroupDelimiterDot     = "."
)

// Defaults and spreadsheet capacity ceilings.
const (
	DefaultBatchSize  = 1000
	DefaultPageSize   = 30000
	DefaultBatchDelay = 100 * time.Millisecond
	DefaultMaxSheets  = 255
	DefaultMaxColumns = 255
)

// Options configures an export invocation.
type Options struct {
	// GroupDelimiter replaces the default slash in output column names.
	GroupDelimiter string
	// SplitSelectMultiples expands choice-multiple fields into per-option
	// indicator columns.
	SplitSelectMultiples bool
	// BinarySelectMultiples renders indicators as 1/0 instead of booleans.
	BinarySelectMultiples bool
	// BatchSize is the retrieval window for multi-table exports.
	BatchSize int
	// PageSize bounds the rows flushed per write in flat exports.
	PageSize int
	// BatchDelay is the pacing sleep between retrieval batches.
	BatchDelay time.Duration
	// MaxSheets and MaxColumns are the capacity ceilings used by limit
	// detection.
	MaxSheets  int
	MaxColumns int
}

// DefaultOptions returns the standard export configuration.
func DefaultOptions() Options {
	return Options{
		GroupDelimiter:       DefaultGroupDelimiter,
		SplitSelectMultiples: true,
		BatchSize:            DefaultBatchSize,
		PageSize:             DefaultPageSize,
		BatchDelay:           DefaultBatchDelay,
		MaxSheets:            DefaultMaxSheets,
		MaxColumns:           DefaultMaxColumns,
	}
}

func (o Options) withDefaults() Options {
	if o.GroupDelimiter == "" {
		o.GroupDelimiter = DefaultGroupDelimiter
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.BatchDelay < 0 {
		o.BatchDelay = DefaultBatchDelay
	}
	if o.MaxSheets <= 0 {
		o.MaxSheets = DefaultMaxSheets
	}
	if o.MaxColumns <= 0 {
		o.MaxColumns = DefaultMaxColumns
	}
	return o
}

// outKey maps a slash-delimited field path to its output column name.
func (o Options) outKey(path string) string {
	if o.GroupDelimiter == DefaultGroupDelimiter {
		return path
	}
	return strings.ReplaceAll(path, DefaultGroupDelimiter, o.GroupDelimiter)
}
