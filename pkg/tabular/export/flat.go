package export

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/openrow/tabular/pkg/tabular/internalerr"
	"github.com/openrow/tabular/pkg/tabular/record"
	"github.com/openrow/tabular/pkg/tabular/schema"
	"github.com/openrow/tabular/pkg/tabular/sink"
	"github.com/openrow/tabular/pkg/tabular/source"
)

// FlatBuilder produces exactly one row per top-level document, embedding
// repeat-group occurrences as positionally-suffixed columns instead of
// separate tables.
type FlatBuilder struct {
	root     *schema.Node
	idx      schema.Index
	opts     Options
	manifest *columnManifest
	name     string
}

// NewFlat walks the schema and builds the column manifest: repeating groups
// become expandable entries populated during re-indexing, leaves outside any
// repeat become scalar columns, and choice-multiple/geolocation groups are
// pre-registered from the schema.
func NewFlat(root *schema.Node, opts Options) (*FlatBuilder, error) {
	b := &FlatBuilder{
		root:     root,
		idx:      schema.BuildIndex(root),
		opts:     opts.withDefaults(),
		manifest: newColumnManifest(),
	}
	name, err := assignSheetName(root.Name, map[string]bool{})
	if err != nil {
		return nil, err
	}
	b.name = name
	b.buildColumns(root, false)

	if b.opts.SplitSelectMultiples {
		for _, key := range b.idx.Fields {
			if options, ok := b.idx.SelectMultiples[key]; ok {
				b.manifest.setGroup(key, options)
			}
		}
	}
	for _, key := range b.idx.GeoFields {
		b.manifest.setGroup(key, schema.GeoXPaths(key))
	}
	return b, nil
}

func (b *FlatBuilder) buildColumns(node *schema.Node, inRepeat bool) {
	for _, child := range node.Children {
		switch child.Kind {
		case schema.KindRepeat:
			b.manifest.addGroup(child.Path)
			b.buildColumns(child, true)
		case schema.KindGroup:
			b.buildColumns(child, inRepeat)
		default:
			// leaves inside a repeat get their columns minted by re-indexing
			if child.Excluded() || inRepeat {
				continue
			}
			b.manifest.addScalar(child.Path)
		}
	}
}

// Name returns the export's table name.
func (b *FlatBuilder) Name() string { return b.name }

// Columns returns the final column order: the manifest's insertion order with
// expandable entries replaced by their discovered members, the group
// delimiter applied, followed by the reserved metadata columns. Only valid
// after every document has been formatted.
func (b *FlatBuilder) Columns() []string {
	flattened := b.manifest.flatten()
	cols := make([]string, 0, len(flattened)+len(record.AdditionalColumns))
	for _, col := range flattened {
		cols = append(cols, b.opts.outKey(col))
	}
	return append(cols, record.AdditionalColumns...)
}

// FormatBatch transforms a batch of documents into flat rows, registering any
// newly discovered occurrence columns in the manifest.
func (b *FlatBuilder) FormatBatch(docs []record.Document) []record.Row {
	rows := make([]record.Row, 0, len(docs))
	for _, doc := range docs {
		if b.opts.SplitSelectMultiples {
			record.SplitSelectMultiples(doc, b.idx.SelectMultiples, b.opts.BinarySelectMultiples)
		}
		record.SplitGeoFields(doc, b.idx.GeoFields)
		record.FlattenNotes(doc)
		record.TagString(doc)

		flat := record.Row{}
		for _, key := range sortedKeys(doc) {
			for path, value := range b.reindex(key, doc[key], nil) {
				flat[path] = value
			}
		}
		if b.opts.GroupDelimiter != DefaultGroupDelimiter {
			mapped := record.Row{}
			for key, value := range flat {
				mapped[b.opts.outKey(key)] = value
			}
			flat = mapped
		}
		rows = append(rows, flat)
	}
	return rows
}

// reindex flattens a repeat-group occurrence list by inserting the 1-based
// occurrence position after the group segment of each leaf path, so
// "group/field" at occurrence 2 of "group" becomes "group[2]/field". Nested
// occurrence lists recurse with the newly computed prefix. Scalar values pass
// through unchanged; the reserved annotation and attachment fields are never
// re-indexed.
func (b *FlatBuilder) reindex(key string, value any, parentPrefix []string) record.Row {
	d := record.Row{}
	list, isList := value.([]any)
	if isList && len(list) > 0 && key != record.FieldNotes && key != record.FieldAttachments {
		for i, item := range list {
			pos := i + 1
			nested, ok := item.(map[string]any)
			if !ok {
				d[key] = value
				continue
			}
			for _, nkey := range sortedKeys(nested) {
				nval := nested[nkey]
				cut := strings.Index(nkey, key)
				if cut < 0 {
					d[nkey] = nval
					continue
				}
				cut += len(key)
				full := fmt.Sprintf("%s[%d]", nkey[:cut], pos)
				if cut < len(nkey) {
					full += nkey[cut:]
				}
				parts := strings.Split(full, "/")
				if _, nestedList := nval.([]any); nestedList {
					prefix := parts[:len(parts)-1]
					for path, v := range b.reindex(nkey, nval, prefix) {
						d[path] = v
					}
					continue
				}
				if n := len(parentPrefix); n > 0 && n <= len(parts) {
					parts = append(append([]string{}, parentPrefix...), parts[n:]...)
				}
				path := strings.Join(parts, "/")
				b.manifest.appendToGroup(key, path)
				d[path] = nval
			}
		}
		return d
	}

	switch key {
	case record.FieldAttachments:
		// attachments are not represented in tabular output
		d[key] = ""
	default:
		d[key] = value
	}
	return d
}

// ExportTo counts and paginates the document source, accumulates rows in
// pages bounded by the configured page size, then flushes every page to the
// sink under the final column order, header on the first page only. All
// pages share the one manifest, which must see every document before the
// column order is fixed, so the whole result set is held in memory until the
// last page is formatted; the page size bounds write granularity, not memory.
func (b *FlatBuilder) ExportTo(ctx context.Context, src source.Source, filter source.Filter, snk sink.TableSink) error {
	total, err := src.Count(ctx, filter)
	if err != nil {
		return fmt.Errorf("count records: %w", err)
	}
	if total == 0 {
		return fmt.Errorf("export %q: %w", b.name, internalerr.ErrNoRecords)
	}

	var pages [][]record.Row
	for start := 0; start < total; start += b.opts.PageSize {
		docs, err := src.Fetch(ctx, filter, start, b.opts.PageSize)
		if err != nil {
			return fmt.Errorf("fetch records at %d: %w", start, err)
		}
		if len(docs) == 0 {
			return fmt.Errorf("fetch records at %d: %w", start, internalerr.ErrEmptyBatch)
		}
		pages = append(pages, b.FormatBatch(docs))
	}

	columns := b.Columns()
	for i, page := range pages {
		if err := snk.WriteTable(b.name, columns, page, i == 0); err != nil {
			return fmt.Errorf("write table %q: %w", b.name, err)
		}
	}
	return nil
}

func sortedKeys(doc map[string]any) []string {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
