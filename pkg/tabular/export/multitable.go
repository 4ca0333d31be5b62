package export

import (
	"context"
	"fmt"
	"time"

	"github.com/openrow/tabular/pkg/tabular/internalerr"
	"github.com/openrow/tabular/pkg/tabular/record"
	"github.com/openrow/tabular/pkg/tabular/schema"
	"github.com/openrow/tabular/pkg/tabular/sink"
	"github.com/openrow/tabular/pkg/tabular/source"
)

// MultiTableBuilder maps the schema tree to a forest of Sections, one table
// per repeating group plus a root table, and emits parent-linked rows.
type MultiTableBuilder struct {
	root     *schema.Node
	idx      schema.Index
	opts     Options
	order    []string
	sections map[string]*Section
	rootName string
	exceeds  bool
}

// NewMultiTable walks the schema once and builds the section forest.
func NewMultiTable(root *schema.Node, opts Options) (*MultiTableBuilder, error) {
	b := &MultiTableBuilder{
		root:     root,
		idx:      schema.BuildIndex(root),
		opts:     opts.withDefaults(),
		sections: map[string]*Section{},
	}
	names := map[string]bool{}
	rootName, err := assignSheetName(root.Name, names)
	if err != nil {
		return nil, err
	}
	names[rootName] = true
	b.rootName = rootName
	b.createSection(rootName, root.Path, false)
	if err := b.buildSections(rootName, root, names); err != nil {
		return nil, err
	}

	for _, name := range b.order {
		sec := b.sections[name]
		for _, col := range record.AdditionalColumns {
			sec.addColumn(col)
		}
	}
	b.exceeds = b.computeExceeds()
	return b, nil
}

func (b *MultiTableBuilder) createSection(name, path string, repeat bool) *Section {
	sec := &Section{Name: name, Path: path, Repeat: repeat}
	b.sections[name] = sec
	b.order = append(b.order, name)
	return sec
}

// buildSections recurses the schema: repeating groups spawn new sections,
// non-repeating groups contribute their descendants to the current one.
func (b *MultiTableBuilder) buildSections(sectionName string, node *schema.Node, names map[string]bool) error {
	sec := b.sections[sectionName]
	for _, child := range node.Children {
		switch child.Kind {
		case schema.KindGroup:
			if err := b.buildSections(sectionName, child, names); err != nil {
				return err
			}
		case schema.KindRepeat:
			name, err := assignSheetName(child.Name, names)
			if err != nil {
				return err
			}
			names[name] = true
			b.createSection(name, child.Path, true)
			if err := b.buildSections(name, child, names); err != nil {
				return err
			}
		case schema.KindSelectMultiple:
			if b.opts.SplitSelectMultiples {
				for _, opt := range child.Children {
					sec.addColumn(opt.Path)
				}
			} else {
				sec.addColumn(child.Path)
			}
		case schema.KindQuestion:
			if child.Excluded() {
				continue
			}
			if child.BindType == schema.GeopointBindType {
				// the raw geopoint column is replaced by its components
				for _, xpath := range schema.GeoXPaths(child.Path) {
					sec.addColumn(xpath)
				}
				continue
			}
			sec.addColumn(child.Path)
		}
	}
	return nil
}

// RootName returns the root section's table name.
func (b *MultiTableBuilder) RootName() string { return b.rootName }

// Sections returns the sections in creation order.
func (b *MultiTableBuilder) Sections() []*Section {
	out := make([]*Section, len(b.order))
	for i, name := range b.order {
		out[i] = b.sections[name]
	}
	return out
}

// ExceedsLimits reports whether the section count or any section's column
// count exceeds the configured spreadsheet ceilings. Advisory only.
func (b *MultiTableBuilder) ExceedsLimits() bool { return b.exceeds }

func (b *MultiTableBuilder) computeExceeds() bool {
	if len(b.order) > b.opts.MaxSheets {
		return true
	}
	for _, sec := range b.sections {
		if len(sec.Columns) > b.opts.MaxColumns {
			return true
		}
	}
	return false
}

// FormatBatch runs row emission for a batch of documents: one root row per
// document plus one row per repeat-group occurrence, keyed by section name.
// Occurrences nested more than one repeat level deep are not examined.
func (b *MultiTableBuilder) FormatBatch(docs []record.Document) map[string][]record.Row {
	data := map[string][]record.Row{}
	for _, doc := range docs {
		rootRow := b.buildRow(b.sections[b.rootName], doc, -1, nil)
		data[b.rootName] = append(data[b.rootName], rootRow)
		parentIndex := rootRow[ColumnIndex].(int)

		for _, name := range b.order {
			sec := b.sections[name]
			if !sec.Repeat {
				continue
			}
			value, ok := doc[sec.Path]
			if !ok {
				continue
			}
			for _, nested := range record.NestedDocs(value) {
				row := b.buildRow(sec, nested, parentIndex, b.rootName)
				data[name] = append(data[name], row)
			}
		}
	}
	return data
}

func (b *MultiTableBuilder) buildRow(sec *Section, rec record.Document, parentIndex int, parentTable any) record.Row {
	idx := sec.nextIndex()
	if b.opts.SplitSelectMultiples {
		record.SplitSelectMultiples(rec, b.idx.SelectMultiples, b.opts.BinarySelectMultiples)
	}
	record.SplitGeoFields(rec, b.idx.GeoFields)
	record.FlattenNotes(rec)
	record.TagString(rec)

	row := record.Row{}
	for _, col := range sec.Columns {
		// a record may simply not have captured a response
		value, ok := rec[col]
		if !ok {
			value = nil
		}
		row[b.opts.outKey(col)] = value
	}
	row[ColumnIndex] = idx
	row[ColumnParentIndex] = parentIndex
	row[ColumnParentTable] = parentTable
	return row
}

// outputColumns returns the sink column order for a section: its field paths
// with the group delimiter applied, followed by the linkage columns.
func (b *MultiTableBuilder) outputColumns(sec *Section) []string {
	cols := make([]string, 0, len(sec.Columns)+len(ExtraColumns))
	for _, col := range sec.Columns {
		cols = append(cols, b.opts.outKey(col))
	}
	return append(cols, ExtraColumns...)
}

// ExportTo paginates the document source, emits rows for every section and
// flushes each batch to the sink, with a header on each table's first write
// and a pacing delay between batches. Sections with no rows in a batch are
// skipped rather than written empty.
func (b *MultiTableBuilder) ExportTo(ctx context.Context, src source.Source, filter source.Filter, snk sink.TableSink) error {
	total, err := src.Count(ctx, filter)
	if err != nil {
		return fmt.Errorf("count records: %w", err)
	}
	if total == 0 {
		return fmt.Errorf("export %q: %w", b.rootName, internalerr.ErrNoRecords)
	}

	// a repeat section's first occurrence may arrive in any batch
	written := map[string]bool{}
	for start := 0; start < total; start += b.opts.BatchSize {
		docs, err := src.Fetch(ctx, filter, start, b.opts.BatchSize)
		if err != nil {
			return fmt.Errorf("fetch records at %d: %w", start, err)
		}
		if len(docs) == 0 {
			return fmt.Errorf("fetch records at %d: %w", start, internalerr.ErrEmptyBatch)
		}

		data := b.FormatBatch(docs)
		for _, name := range b.order {
			rows := data[name]
			if len(rows) == 0 {
				continue
			}
			if err := snk.WriteTable(name, b.outputColumns(b.sections[name]), rows, !written[name]); err != nil {
				return fmt.Errorf("write table %q: %w", name, err)
			}
			written[name] = true
		}

		if start+b.opts.BatchSize < total {
			time.Sleep(b.opts.BatchDelay)
		}
	}
	return nil
}
