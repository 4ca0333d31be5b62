// Package source defines the document-retrieval contract consumed by the
// export drivers.
package source

import (
	"context"

	"github.com/openrow/tabular/pkg/tabular/record"
)

// Filter is an opaque, caller-supplied predicate passed through to the
// document source. The export core attaches no semantics to it; the provided
// implementations interpret it as a JSON object of field equality
// constraints, with the empty string matching everything.
type Filter string

// Source retrieves stored submissions for one form. Retrieval is always
// bounded by an explicit start/limit window; pagination and retries are the
// caller's concern.
type Source interface {
	// Count returns the number of submissions matching the filter.
	Count(ctx context.Context, filter Filter) (int, error)
	// Fetch returns up to limit submissions matching the filter, starting at
	// the given offset, in stable storage order.
	Fetch(ctx context.Context, filter Filter, start, limit int) ([]record.Document, error)
}
